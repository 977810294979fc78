package api

import (
	"context"
	"fmt"
	"net/http"
)

// Inquiry is a support ticket. Status is PENDING until an admin answers.
type Inquiry struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Answer    string `json:"answer,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// MyInquiries lists the authenticated user's support inquiries.
func (c *Client) MyInquiries(ctx context.Context) ([]Inquiry, error) {
	cl, _ := jsonCall(http.MethodGet, "/inquiries", nil)
	var list []Inquiry
	if err := c.do(ctx, cl, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateInquiry files a new support inquiry.
func (c *Client) CreateInquiry(ctx context.Context, title, content string) error {
	cl, err := jsonCall(http.MethodPost, "/inquiries", map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}

// AdminInquiries lists every inquiry. Requires the admin role.
func (c *Client) AdminInquiries(ctx context.Context) ([]Inquiry, error) {
	cl, _ := jsonCall(http.MethodGet, "/admin/inquiries", nil)
	var list []Inquiry
	if err := c.do(ctx, cl, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AnswerInquiry posts an admin answer to an inquiry.
func (c *Client) AnswerInquiry(ctx context.Context, id int64, answer string) error {
	cl, err := jsonCall(http.MethodPost, fmt.Sprintf("/admin/inquiries/%d/answer", id), map[string]string{
		"answer": answer,
	})
	if err != nil {
		return err
	}
	return c.do(ctx, cl, nil)
}
