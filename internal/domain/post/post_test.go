package post

import "testing"

func TestParseResult_Variants(t *testing.T) {
	p := Post{Title: "t", Body: "b", Tags: []string{"x"}}

	ok := OK(p)
	if ok.Kind() != KindOK {
		t.Errorf("Kind() = %q", ok.Kind())
	}
	if got, present := ok.Post(); !present || got.Title != "t" {
		t.Errorf("Post() = %+v, %v", got, present)
	}

	rep := Repaired(p)
	if rep.Kind() != KindRepaired {
		t.Errorf("Kind() = %q", rep.Kind())
	}
	if _, present := rep.Post(); !present {
		t.Error("repaired result must carry a post")
	}

	failed := Failed("no json object")
	if failed.Kind() != KindFailed || failed.Reason() != "no json object" {
		t.Errorf("unexpected failed result %+v", failed)
	}
	if _, present := failed.Post(); present {
		t.Error("failed result must not carry a post")
	}
}
