package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/innercanvas/innercanvas/internal/diary"
)

// GetDiary fetches the entry for a date (YYYY-MM-DD). A 404 means no entry
// exists and is returned as nil, nil so the caller can draft instead.
func (c *Client) GetDiary(ctx context.Context, username, date string) (*diary.Entry, error) {
	cl := &call{
		method: http.MethodGet,
		path:   "/diary",
		query:  url.Values{"username": {username}, "date": {date}},
	}
	var entry diary.Entry
	if err := c.do(ctx, cl, &entry); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// CreateDiary persists today's entry and returns the new diary id.
func (c *Client) CreateDiary(ctx context.Context, username, diaryText, moodColor string) (int, error) {
	payload := map[string]any{
		"username":  username,
		"diaryText": diaryText,
	}
	if moodColor != "" {
		payload["moodColor"] = moodColor
	}
	cl, err := jsonCall(http.MethodPost, "/diary", payload)
	if err != nil {
		return 0, err
	}

	var res struct {
		DiaryID int `json:"diaryId"`
	}
	if err := c.do(ctx, cl, &res); err != nil {
		return 0, err
	}
	return res.DiaryID, nil
}

// UploadDoodle attaches a PNG doodle to a persisted diary entry.
func (c *Client) UploadDoodle(ctx context.Context, diaryID int, png []byte) (string, error) {
	cl, err := multipartCall("/doodles", map[string]string{
		"diaryId": strconv.Itoa(diaryID),
	}, "file", "doodle.png", png)
	if err != nil {
		return "", err
	}

	var res struct {
		DoodleURL string `json:"doodleUrl"`
	}
	if err := c.do(ctx, cl, &res); err != nil {
		return "", err
	}
	return res.DoodleURL, nil
}
