package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/innercanvas/innercanvas/internal/mood"
)

// MoodByMonth fetches the emotion-by-date data backing the mood calendar.
func (c *Client) MoodByMonth(ctx context.Context, year, month int) ([]mood.Day, error) {
	cl := &call{
		method: http.MethodGet,
		path:   fmt.Sprintf("/mood/%d/%d", year, month),
	}
	var days []mood.Day
	if err := c.do(ctx, cl, &days); err != nil {
		return nil, err
	}
	return days, nil
}
