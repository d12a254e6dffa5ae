package trend

import "testing"

func TestSort_CountThenKeyword(t *testing.T) {
	trends := []Trend{
		{Keyword: "выборы", Count: 2},
		{Keyword: "нефть", Count: 5},
		{Keyword: "ai", Count: 2},
	}
	Sort(trends)

	want := []string{"нефть", "ai", "выборы"}
	for i, w := range want {
		if trends[i].Keyword != w {
			t.Fatalf("position %d: got %q, want %q", i, trends[i].Keyword, w)
		}
	}
}

func TestSnapshot_Top(t *testing.T) {
	s := Snapshot{Trends: []Trend{{Keyword: "a"}, {Keyword: "b"}, {Keyword: "c"}}}
	if len(s.Top(2)) != 2 {
		t.Errorf("Top(2) returned %d", len(s.Top(2)))
	}
	if len(s.Top(0)) != 3 || len(s.Top(10)) != 3 {
		t.Error("Top with n<=0 or n>len must return all")
	}
}
