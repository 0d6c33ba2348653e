// Package mail adapts the toolkit client to the inbox context's MailSource
// port.
package mail

import (
	"context"
	"fmt"

	"github.com/ayaanrathod/studybalance/internal/inbox/domain"
	"github.com/ayaanrathod/studybalance/internal/toolkit"
)

// ToolkitSource fetches emails through the toolkit API.
type ToolkitSource struct {
	client *toolkit.Client
}

// NewToolkitSource creates a new mail source.
func NewToolkitSource(client *toolkit.Client) *ToolkitSource {
	return &ToolkitSource{client: client}
}

// ListEmails fetches the most recent messages and maps them to domain
// messages. Messages without a parseable date keep a zero ReceivedAt.
func (s *ToolkitSource) ListEmails(ctx context.Context, limit int) ([]domain.EmailMessage, error) {
	emails, err := s.client.ListEmails(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}

	messages := make([]domain.EmailMessage, 0, len(emails))
	for _, email := range emails {
		messages = append(messages, domain.EmailMessage{
			ID:         email.ID,
			Subject:    email.Subject,
			Body:       email.BodyText(),
			Sender:     email.SenderAddress(),
			ReceivedAt: email.ReceivedAt(),
		})
	}
	return messages, nil
}
