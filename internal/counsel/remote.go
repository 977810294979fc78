package counsel

import (
	"context"

	"github.com/innercanvas/innercanvas/internal/api"
)

// Remote is the default Counselor: it delegates to the backend's analysis
// endpoints, so the server owns prompts, moderation and conversation state.
type Remote struct {
	client *api.Client
}

// NewRemote creates a backend-delegating counselor.
func NewRemote(client *api.Client) *Remote {
	return &Remote{client: client}
}

func (r *Remote) Analyze(ctx context.Context, diaryText string, doodlePNG []byte) (Analysis, error) {
	res, err := r.client.Analyze(ctx, diaryText, doodlePNG)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{
		CounselingText: res.Text(),
		MainEmotion:    res.MainEmotion,
		GuestSessionID: res.GuestSessionID,
	}, nil
}

func (r *Remote) Chat(ctx context.Context, ref ConversationRef, message string) (string, error) {
	return r.client.Chat(ctx, api.ChatRef{
		DiaryID:        ref.DiaryID,
		GuestSessionID: ref.GuestSessionID,
	}, message)
}
