package toolkit

import (
	"context"
	"strconv"
	"time"
)

// Email is one message as returned by the mail tool. Providers disagree on
// field names, so body and sender carry aliases.
type Email struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	Body      string  `json:"body"`
	Snippet   string  `json:"snippet"`
	Text      string  `json:"text"`
	Sender    string  `json:"sender"`
	From      string  `json:"from"`
	Date      string  `json:"date"`
	Timestamp float64 `json:"timestamp"`
}

// BodyText returns the first non-empty body field.
func (e Email) BodyText() string {
	switch {
	case e.Body != "":
		return e.Body
	case e.Snippet != "":
		return e.Snippet
	default:
		return e.Text
	}
}

// SenderAddress returns the first non-empty sender field.
func (e Email) SenderAddress() string {
	if e.Sender != "" {
		return e.Sender
	}
	return e.From
}

// ReceivedAt parses the message date. The zero time is returned when the
// provider sent no usable date.
func (e Email) ReceivedAt() time.Time {
	if e.Date != "" {
		for _, layout := range []string{time.RFC3339, time.RFC1123Z, time.RFC1123, time.RFC822Z} {
			if t, err := time.Parse(layout, e.Date); err == nil {
				return t
			}
		}
		if unix, err := strconv.ParseFloat(e.Date, 64); err == nil {
			return time.Unix(int64(unix), 0).UTC()
		}
	}
	if e.Timestamp > 0 {
		return time.Unix(int64(e.Timestamp), 0).UTC()
	}
	return time.Time{}
}

// ListEmails fetches the n most recent messages from the user's inbox.
func (c *Client) ListEmails(ctx context.Context, n int) ([]Email, error) {
	var emails []Email
	err := c.Execute(ctx, "Gmail.ListEmails", map[string]any{"n_emails": n}, &emails)
	if err != nil {
		return nil, err
	}
	return emails, nil
}

type sendEmailResult struct {
	ID string `json:"id"`
}

// SendEmail sends a plain-text message and returns the provider message ID.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	var result sendEmailResult
	err := c.Execute(ctx, "Gmail.SendEmail", map[string]any{
		"to":          to,
		"subject":     subject,
		"body":        body,
		"body_format": "text",
	}, &result)
	if err != nil {
		return "", err
	}
	return result.ID, nil
}
