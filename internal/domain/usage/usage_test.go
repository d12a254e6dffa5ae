package usage

import "testing"

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
		ok   bool
	}{
		{"", PeriodDay, true},
		{"day", PeriodDay, true},
		{"month", PeriodMonth, true},
		{"year", "", false},
	}
	for _, tc := range tests {
		got, ok := ParsePeriod(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParsePeriod(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestReport_Exhausted(t *testing.T) {
	r := NewReport(PeriodDay, 0, 1, "openai", 100, 100, 0)
	if !r.Exhausted() {
		t.Error("expected exhausted")
	}

	unlimited := NewReport(PeriodDay, 0, 1, "openai", 100, 0, -1)
	if unlimited.Exhausted() {
		t.Error("unlimited budget must never be exhausted")
	}
	if unlimited.Remaining() != -1 {
		t.Errorf("expected -1 remaining, got %d", unlimited.Remaining())
	}
}
