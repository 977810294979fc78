package counsel

import "testing"

func TestParseAnalysis(t *testing.T) {
	emotion, counseling := parseAnalysis("감정: 기쁨\n정말 좋은 하루를 보내셨네요.\n내일도 응원할게요.")
	if emotion != "기쁨" {
		t.Errorf("expected 기쁨, got %q", emotion)
	}
	if counseling != "정말 좋은 하루를 보내셨네요.\n내일도 응원할게요." {
		t.Errorf("unexpected counseling body %q", counseling)
	}
}

func TestParseAnalysisWithoutHeader(t *testing.T) {
	emotion, counseling := parseAnalysis("오늘 많이 힘드셨겠어요.")
	if emotion != "" {
		t.Errorf("expected no emotion without a header, got %q", emotion)
	}
	if counseling != "오늘 많이 힘드셨겠어요." {
		t.Errorf("expected the whole text as counseling, got %q", counseling)
	}
}

func TestParseAnalysisHeaderOnly(t *testing.T) {
	emotion, counseling := parseAnalysis("감정: 슬픔")
	if emotion != "슬픔" {
		t.Errorf("expected 슬픔, got %q", emotion)
	}
	if counseling != "" {
		t.Errorf("expected an empty body, got %q", counseling)
	}
}

func TestMemoryLookup(t *testing.T) {
	m := newMemory()
	id := m.begin("일기", "상담")

	// A guest ref resolves by its issued session id.
	key, history, ok := m.lookup(ConversationRef{GuestSessionID: id})
	if !ok || key != id {
		t.Fatalf("expected the guest conversation, ok=%v key=%q", ok, key)
	}
	if len(history) != 2 {
		t.Fatalf("expected the seeded exchange, got %d turns", len(history))
	}

	// A member ref with an unknown diary id falls back to the session id.
	key, _, ok = m.lookup(ConversationRef{DiaryID: 7, GuestSessionID: id})
	if !ok || key != id {
		t.Errorf("expected the fallback to the session id, ok=%v key=%q", ok, key)
	}

	m.extend(key, "추가 질문", "추가 답변")
	_, history, _ = m.lookup(ConversationRef{GuestSessionID: id})
	if len(history) != 4 {
		t.Errorf("expected 4 turns after extend, got %d", len(history))
	}

	if _, _, ok := m.lookup(ConversationRef{DiaryID: 99}); ok {
		t.Error("expected no match for an unknown ref")
	}
}

func TestMemoryLookupCopies(t *testing.T) {
	m := newMemory()
	id := m.begin("일기", "상담")

	_, history, _ := m.lookup(ConversationRef{GuestSessionID: id})
	history[0].content = "mutated"

	_, fresh, _ := m.lookup(ConversationRef{GuestSessionID: id})
	if fresh[0].content != "일기" {
		t.Error("mutating a returned history leaked into the memory")
	}
}
