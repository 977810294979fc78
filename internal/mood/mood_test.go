package mood

import "testing"

func TestColorFor(t *testing.T) {
	if got := ColorFor("기쁨"); got != "#fef08a" {
		t.Errorf("expected the 기쁨 color, got %s", got)
	}
	if got := ColorFor("슬픔"); got != "#d1d5db" {
		t.Errorf("expected the 슬픔 color, got %s", got)
	}
	if got := ColorFor("무표정"); got != DefaultColor {
		t.Errorf("expected the default color for an unknown label, got %s", got)
	}
	if got := ColorFor(""); got != DefaultColor {
		t.Errorf("expected the default color for an empty label, got %s", got)
	}
}

func TestFold(t *testing.T) {
	days := []Day{
		{Date: "2026-08-01", Emotion: "기쁨"},
		{Date: "2026-08-02", Emotion: "불안"},
	}

	m := Fold(days)
	if len(m) != 2 {
		t.Fatalf("expected 2 days, got %d", len(m))
	}
	if m["2026-08-02"] != "불안" {
		t.Errorf("expected 불안 on the 2nd, got %s", m["2026-08-02"])
	}
}
