// Package counsel produces the AI counseling text and chat replies for diary
// entries. The remote implementation talks to the backend's analysis
// endpoints; the direct implementations call an LLM provider with a personal
// API key for self-hosted use.
package counsel

import "context"

// Analysis is the result of analyzing one diary entry.
type Analysis struct {
	CounselingText string
	MainEmotion    string
	// GuestSessionID locates the conversation for unauthenticated users.
	// Empty for members, whose conversation is keyed by diary id.
	GuestSessionID string
}

// ConversationRef identifies the conversational context for a chat turn.
// DiaryID > 0 means a member conversation; otherwise GuestSessionID is used.
type ConversationRef struct {
	DiaryID        int
	GuestSessionID string
}

// Counselor analyzes diary entries and continues the conversation about them.
type Counselor interface {
	Analyze(ctx context.Context, diaryText string, doodlePNG []byte) (Analysis, error)
	Chat(ctx context.Context, ref ConversationRef, message string) (string, error)
}
