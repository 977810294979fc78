// Package journal orchestrates the diary page: loading the entry for a
// selected date, submitting a new entry for AI counseling, and running the
// follow-up chat. Views read the stores; all mutations go through here.
package journal

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/innercanvas/innercanvas/internal/api"
	"github.com/innercanvas/innercanvas/internal/counsel"
	"github.com/innercanvas/innercanvas/internal/diary"
	"github.com/innercanvas/innercanvas/internal/mood"
	"github.com/innercanvas/innercanvas/internal/session"
)

var (
	// ErrNoDate is returned when no date has been selected yet.
	ErrNoDate = errors.New("no date selected")
	// ErrEmptyDiary blocks analysis of an empty entry before any network call.
	ErrEmptyDiary = errors.New("diary text is empty")
	// ErrNotToday enforces the authoring policy: only today's entry may be
	// written; every other date is read-only.
	ErrNotToday = errors.New("only today's entry can be written")
	// ErrAlreadyWritten rejects a second entry for a date that has one.
	ErrAlreadyWritten = errors.New("an entry already exists for this date")
	// ErrEmptyMessage blocks empty chat turns before any network call.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrChatNotReady means analysis has not produced an AI message yet.
	ErrChatNotReady = errors.New("chat opens after the AI analysis")
	// ErrChatBusy means a chat request is already outstanding.
	ErrChatBusy = errors.New("the AI is still responding")
)

// apologyMessage is the fixed fallback turn appended when a chat request
// fails. The optimistic user turn is intentionally never rolled back.
const apologyMessage = "죄송해요, 지금은 답변을 드리기 어려워요. 잠시 후 다시 시도해주세요."

// Archiver receives analyzed and loaded entries for the local review/search
// commands. Failures are logged, never surfaced.
type Archiver interface {
	SaveEntry(ctx context.Context, date string, entry diary.Entry, emotion string) error
}

// Controller drives the diary/chat flow for one selected date at a time.
type Controller struct {
	api       *api.Client
	session   *session.Store
	diary     *diary.Store
	counselor counsel.Counselor
	archive   Archiver // optional

	now func() time.Time

	mu           sync.Mutex
	selectedDate string
}

// New creates a controller. archive may be nil.
func New(client *api.Client, sess *session.Store, store *diary.Store, counselor counsel.Counselor, archive Archiver) *Controller {
	return &Controller{
		api:       client,
		session:   sess,
		diary:     store,
		counselor: counselor,
		archive:   archive,
		now:       time.Now,
	}
}

// DateString formats a time the way the backend keys diary dates.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}

// SelectedDate returns the date the controller is focused on, or "".
func (c *Controller) SelectedDate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedDate
}

// IsToday reports whether date is today in local time.
func (c *Controller) IsToday(date string) bool {
	return date == DateString(c.now())
}

// principal is the tagged identity consumed by the analysis and chat paths,
// so guest and member share one code path instead of parallel branches.
type principal struct {
	member   bool
	username string
	diaryID  int
	guestID  string
}

func (p principal) chatRef() counsel.ConversationRef {
	if p.member {
		return counsel.ConversationRef{DiaryID: p.diaryID, GuestSessionID: p.guestID}
	}
	return counsel.ConversationRef{GuestSessionID: p.guestID}
}

func (c *Controller) principal() principal {
	sess := c.session.Snapshot()
	st := c.diary.Snapshot()

	p := principal{guestID: st.TempGuestID}
	if sess.IsAuthenticated && sess.User != nil {
		p.member = true
		p.username = sess.User.Username
	}
	if st.CurrentDiary != nil {
		p.diaryID = st.CurrentDiary.DiaryID
	}
	return p
}

// LoadDate selects a date and populates the diary store for it. Members get
// their stored entry when one exists; a missing entry or a fetch failure
// yields an empty draft with the unsaved sentinel id, as does a guest.
func (c *Controller) LoadDate(ctx context.Context, date string) error {
	c.mu.Lock()
	c.selectedDate = date
	c.mu.Unlock()

	// The previous date's entry, transcript and guest id never leak into
	// the new selection.
	c.diary.Reset()

	sess := c.session.Snapshot()
	if sess.IsAuthenticated && sess.User != nil {
		entry, err := c.api.GetDiary(ctx, sess.User.Username, date)
		if err != nil {
			log.Printf("failed to load diary for %s: %v", date, err)
		}
		if entry != nil && entry.DiaryID > 0 {
			c.diary.SetCurrentDiary(entry, entry.ChatHistory)
			c.archiveEntry(ctx, date, *entry, "")
			return nil
		}
	}

	c.diary.SetCurrentDiary(&diary.Entry{DiaryID: diary.UnsavedID, CreatedAt: c.now()}, nil)
	return nil
}

// CanWrite reports whether the current selection accepts a new entry:
// the date is today and no stored entry exists yet.
func (c *Controller) CanWrite() bool {
	c.mu.Lock()
	date := c.selectedDate
	c.mu.Unlock()
	if date == "" || !c.IsToday(date) {
		return false
	}

	st := c.diary.Snapshot()
	return st.CurrentDiary == nil || st.CurrentDiary.DiaryID == diary.UnsavedID && st.CurrentDiary.DiaryText == ""
}

// SaveAndAnalyze submits today's entry (plus an optional doodle PNG) for AI
// counseling. Members persist first: diary row, then doodle tagged with the
// new id, then analysis, each step awaited before the next. Guests skip
// persistence entirely and keep the unsaved sentinel id; the returned
// guest-session id is captured for the chat that follows. Any failure leaves
// the draft untouched.
func (c *Controller) SaveAndAnalyze(ctx context.Context, text, moodColor string, doodlePNG []byte) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyDiary
	}

	c.mu.Lock()
	date := c.selectedDate
	c.mu.Unlock()
	if date == "" {
		return ErrNoDate
	}
	if !c.IsToday(date) {
		return ErrNotToday
	}
	if st := c.diary.Snapshot(); st.CurrentDiary != nil && st.CurrentDiary.DiaryID > 0 {
		return ErrAlreadyWritten
	}

	p := c.principal()

	diaryID := diary.UnsavedID
	doodleURL := ""
	if p.member {
		id, err := c.api.CreateDiary(ctx, p.username, text, moodColor)
		if err != nil {
			return err
		}
		diaryID = id

		if doodlePNG != nil {
			url, err := c.api.UploadDoodle(ctx, diaryID, doodlePNG)
			if err != nil {
				return err
			}
			doodleURL = url
		}
	}

	analysis, err := c.counselor.Analyze(ctx, text, doodlePNG)
	if err != nil {
		return err
	}

	color := moodColor
	if analysis.MainEmotion != "" {
		color = mood.ColorFor(analysis.MainEmotion)
	}

	entry := diary.Entry{
		DiaryID:          diaryID,
		DiaryText:        text,
		MoodColor:        color,
		DoodleURL:        doodleURL,
		AICounselingText: analysis.CounselingText,
		CreatedAt:        c.now(),
	}
	c.diary.SetCurrentDiary(&entry, []diary.Turn{
		{Sender: diary.SenderAI, Message: analysis.CounselingText},
	})
	if analysis.GuestSessionID != "" {
		c.diary.SetTempGuestID(analysis.GuestSessionID)
	}

	c.archiveEntry(ctx, date, entry, analysis.MainEmotion)
	return nil
}

// SendChat sends one user turn. The user turn is appended optimistically and
// never rolled back; a failed request appends the fixed apology turn instead
// of an AI reply. One outstanding request at a time.
func (c *Controller) SendChat(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}

	st := c.diary.Snapshot()
	if len(st.Turns) == 0 {
		return ErrChatNotReady
	}
	if st.AIResponding {
		return ErrChatBusy
	}

	p := c.principal()

	c.diary.AddTurn(diary.Turn{Sender: diary.SenderUser, Message: message})
	c.diary.SetAIResponding(true)
	defer c.diary.SetAIResponding(false)

	reply, err := c.counselor.Chat(ctx, p.chatRef(), message)
	if err != nil {
		log.Printf("chat request failed: %v", err)
		c.diary.AddTurn(diary.Turn{Sender: diary.SenderAI, Message: apologyMessage})
		return nil
	}

	c.diary.AddTurn(diary.Turn{Sender: diary.SenderAI, Message: reply})
	return nil
}

// Reset discards the current selection. Used on navigation away and logout;
// in-flight requests are not aborted, their results are simply dropped.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.selectedDate = ""
	c.mu.Unlock()
	c.diary.Reset()
}

func (c *Controller) archiveEntry(ctx context.Context, date string, entry diary.Entry, emotion string) {
	if c.archive == nil {
		return
	}
	if err := c.archive.SaveEntry(ctx, date, entry, emotion); err != nil {
		log.Printf("failed to archive entry for %s: %v", date, err)
	}
}
