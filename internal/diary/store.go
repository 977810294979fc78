// Package diary holds the currently viewed entry and its chat transcript.
package diary

import (
	"sync"
	"time"
)

// UnsavedID is the sentinel diary id for drafts and guest entries that were
// never sent to a persistence endpoint.
const UnsavedID = -1

// Sender identifies the author of a chat turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Turn is one message of the diary conversation.
type Turn struct {
	Sender  Sender `json:"sender"`
	Message string `json:"message"`
}

// Entry is a diary entry as seen by the client. Guest entries keep
// DiaryID == UnsavedID for their whole lifetime.
type Entry struct {
	DiaryID          int       `json:"diaryId"`
	DiaryText        string    `json:"diaryText"`
	MoodColor        string    `json:"moodColor,omitempty"`
	DoodleURL        string    `json:"doodleUrl,omitempty"`
	AICounselingText string    `json:"aiCounselingText,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	ChatHistory      []Turn    `json:"chatDtos,omitempty"`
}

// State is the diary/chat snapshot.
// Invariant: Turns always belongs to CurrentDiary; every entry switch goes
// through SetCurrentDiary, never an incremental patch.
type State struct {
	CurrentDiary *Entry
	Turns        []Turn
	AIResponding bool
	TempGuestID  string
}

// Store is the process-wide diary/chat container.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []func(State)
}

// NewStore creates an empty diary store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	if st.CurrentDiary != nil {
		e := *st.CurrentDiary
		e.ChatHistory = append([]Turn(nil), e.ChatHistory...)
		st.CurrentDiary = &e
	}
	st.Turns = append([]Turn(nil), st.Turns...)
	return st
}

// Subscribe registers a listener invoked after every mutation.
// The returned function unsubscribes.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
	idx := len(s.listeners) - 1
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners[idx] = nil
	}
}

func (s *Store) notifyLocked() {
	st := s.snapshotLocked()
	for _, fn := range s.listeners {
		if fn != nil {
			fn(st)
		}
	}
}

// SetCurrentDiary atomically replaces the entry and its transcript.
func (s *Store) SetCurrentDiary(entry *Entry, turns []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry != nil {
		e := *entry
		e.ChatHistory = append([]Turn(nil), e.ChatHistory...)
		entry = &e
	}
	s.state.CurrentDiary = entry
	s.state.Turns = append([]Turn(nil), turns...)
	s.notifyLocked()
}

// AddTurn appends one chat turn.
func (s *Store) AddTurn(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Turns = append(s.state.Turns, t)
	s.notifyLocked()
}

// SetAIResponding flags whether a chat request is outstanding.
func (s *Store) SetAIResponding(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AIResponding = v
	s.notifyLocked()
}

// SetTempGuestID records the guest-session id issued by the backend.
// Once set it is reused for every chat turn until Reset.
func (s *Store) SetTempGuestID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TempGuestID = id
	s.notifyLocked()
}

// Reset clears the entry, transcript, responding flag and guest id.
// Used on date change and navigation away. Idempotent.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.notifyLocked()
}
