package counsel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// systemPrompt mirrors the backend's counseling persona for the direct modes.
const systemPrompt = `당신은 'Inner Canvas'의 따뜻한 AI 상담사입니다. 사용자의 일기를 읽고
공감하며, 판단하지 않고 위로와 조언을 건넵니다. 답변은 한국어로, 3~5문장으로 작성하세요.

일기 분석 요청에는 반드시 첫 줄에 "감정: <분노|기쁨|상처|불안|당황|슬픔>" 형식으로
가장 두드러진 감정 하나를 적고, 그 다음 줄부터 상담 내용을 작성하세요.`

// analyzeUserPrompt wraps the diary text for the first analysis turn.
func analyzeUserPrompt(diaryText string, hasDoodle bool) string {
	if hasDoodle {
		return fmt.Sprintf("오늘의 일기입니다 (손그림 낙서도 함께 그렸어요):\n\n%s", diaryText)
	}
	return fmt.Sprintf("오늘의 일기입니다:\n\n%s", diaryText)
}

// parseAnalysis splits the "감정: X" header from the counseling body.
// Responses without the header fall back to an empty emotion.
func parseAnalysis(raw string) (emotion, counseling string) {
	raw = strings.TrimSpace(raw)
	first, rest, found := strings.Cut(raw, "\n")
	if label, ok := strings.CutPrefix(strings.TrimSpace(first), "감정:"); ok {
		emotion = strings.TrimSpace(label)
		if found {
			return emotion, strings.TrimSpace(rest)
		}
		return emotion, ""
	}
	return "", raw
}

// turn is one exchange in a locally held conversation.
type turn struct {
	role    string // "user" or "assistant"
	content string
}

// memory holds conversation transcripts for the direct modes, keyed the same
// way the backend keys them: diary id for members, session id for guests.
type memory struct {
	mu    sync.Mutex
	convs map[string][]turn
}

func newMemory() *memory {
	return &memory{convs: make(map[string][]turn)}
}

// begin opens a conversation seeded with the analysis exchange and returns
// its locally issued session id.
func (m *memory) begin(userMsg, assistantMsg string) string {
	id := uuid.NewString()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[id] = []turn{
		{role: "user", content: userMsg},
		{role: "assistant", content: assistantMsg},
	}
	return id
}

// extend appends a user/assistant exchange to the conversation.
func (m *memory) extend(id, userMsg, assistantMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convs[id] = append(m.convs[id],
		turn{role: "user", content: userMsg},
		turn{role: "assistant", content: assistantMsg},
	)
}

// lookup resolves a ConversationRef to a known conversation. Members are
// tried by diary id first; locally issued session ids cover the rest.
func (m *memory) lookup(ref ConversationRef) (string, []turn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ref.DiaryID > 0 {
		key := fmt.Sprintf("diary-%d", ref.DiaryID)
		if conv, ok := m.convs[key]; ok {
			return key, append([]turn(nil), conv...), true
		}
	}
	if ref.GuestSessionID != "" {
		if conv, ok := m.convs[ref.GuestSessionID]; ok {
			return ref.GuestSessionID, append([]turn(nil), conv...), true
		}
	}
	return "", nil, false
}
