package api

import (
	"context"
	"net/http"
)

// AnalysisResponse is the AI counseling result for a diary entry. Older
// backend revisions key the counseling text as counseling_response, so both
// spellings are accepted.
type AnalysisResponse struct {
	CounselingText     string `json:"counselingText"`
	CounselingResponse string `json:"counseling_response"`
	MainEmotion        string `json:"mainEmotion"`
	GuestSessionID     string `json:"guestSessionId"`
}

// Text returns the counseling text regardless of which key carried it.
func (r AnalysisResponse) Text() string {
	if r.CounselingText != "" {
		return r.CounselingText
	}
	return r.CounselingResponse
}

// Analyze submits diary text plus an optional doodle PNG for AI counseling.
// Unauthenticated callers receive a guest-session id to thread into chat.
func (c *Client) Analyze(ctx context.Context, diaryText string, doodlePNG []byte) (*AnalysisResponse, error) {
	cl, err := multipartCall("/analysis/ai", map[string]string{
		"diaryText": diaryText,
	}, "file", "doodle.png", doodlePNG)
	if err != nil {
		return nil, err
	}

	var res AnalysisResponse
	if err := c.do(ctx, cl, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ChatRef locates the conversational context on the backend: the diary id
// for members, the guest-session id for everyone else.
type ChatRef struct {
	DiaryID        int
	GuestSessionID string
}

// Chat sends one user turn and returns the AI reply.
func (c *Client) Chat(ctx context.Context, ref ChatRef, message string) (string, error) {
	payload := map[string]any{"message": message}
	if ref.DiaryID > 0 {
		payload["diaryId"] = ref.DiaryID
	} else if ref.GuestSessionID != "" {
		payload["guestSessionId"] = ref.GuestSessionID
	}

	cl, err := jsonCall(http.MethodPost, "/analysis/chat", payload)
	if err != nil {
		return "", err
	}

	var res struct {
		CounselingText string `json:"counselingText"`
	}
	if err := c.do(ctx, cl, &res); err != nil {
		return "", err
	}
	return res.CounselingText, nil
}
