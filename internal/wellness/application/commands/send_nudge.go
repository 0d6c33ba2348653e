package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayaanrathod/studybalance/internal/wellness/domain"
)

// EmailSender sends a plain-text email and returns the provider message ID.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
}

// SendNudgeCommand delivers one nudge immediately. When Nudge carries
// rendered content it is sent as-is; otherwise Type and Data render a
// fresh one.
type SendNudgeCommand struct {
	To    string
	Type  domain.NudgeType
	Data  domain.TemplateData
	DueAt time.Time

	Nudge *domain.Nudge
}

// SendNudgeHandler handles the SendNudgeCommand.
type SendNudgeHandler struct {
	sender EmailSender
	logger *slog.Logger
}

// NewSendNudgeHandler creates a new handler.
func NewSendNudgeHandler(sender EmailSender, logger *slog.Logger) *SendNudgeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendNudgeHandler{sender: sender, logger: logger}
}

// Handle renders the nudge and sends it.
func (h *SendNudgeHandler) Handle(ctx context.Context, cmd SendNudgeCommand) (domain.Nudge, error) {
	var nudge domain.Nudge
	if cmd.Nudge != nil {
		nudge = *cmd.Nudge
	} else {
		dueAt := cmd.DueAt
		if dueAt.IsZero() {
			dueAt = time.Now().UTC()
		}

		var err error
		nudge, err = domain.NewNudge(cmd.Type, dueAt, cmd.Data)
		if err != nil {
			return domain.Nudge{}, err
		}
	}

	messageID, err := h.sender.SendEmail(ctx, cmd.To, nudge.Subject, nudge.Body)
	if err != nil {
		return domain.Nudge{}, fmt.Errorf("send nudge: %w", err)
	}

	h.logger.Info("nudge sent",
		"type", nudge.Type,
		"to", cmd.To,
		"message_id", messageID,
	)
	return nudge, nil
}
