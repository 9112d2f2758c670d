package notify

import (
	"context"
	"fmt"
	"log/slog"

	"medidocs/internal/email"
	"medidocs/internal/models"
	"medidocs/internal/service"
	"medidocs/pkg/validator"
)

// Mailer sends a workflow notification mail
type Mailer interface {
	SendDocumentNotification(to string, n email.DocumentNotification) error
}

// Directory resolves users and department members
type Directory interface {
	GetUser(ctx context.Context, id string) (*models.DirectoryUser, error)
	ListByDepartment(ctx context.Context, department string) ([]models.DirectoryUser, error)
}

// EmailNotifier mails the recipient of an event, or every active member of an addressed department
type EmailNotifier struct {
	async
	mailer    Mailer
	directory Directory
}

// NewEmailNotifier creates a new e-mail notifier
func NewEmailNotifier(mailer Mailer, directory Directory) *EmailNotifier {
	n := &EmailNotifier{mailer: mailer, directory: directory}
	n.async = async{name: "email", deliver: n.deliver}
	return n
}

func (n *EmailNotifier) deliver(ctx context.Context, event service.Event) error {
	recipients, err := n.recipients(ctx, event)
	if err != nil {
		return err
	}

	var firstErr error
	for _, r := range recipients {
		if err := validator.ValidateEmail(r.Email); err != nil {
			slog.Debug("Skipping notification for user without valid email", "user_id", r.ID)
			continue
		}
		err := n.mailer.SendDocumentNotification(r.Email, email.DocumentNotification{
			RecipientName: r.DisplayName,
			ActorName:     event.ActorName,
			Title:         titleOf(event),
			Action:        string(event.Action),
			Status:        event.Status,
			Message:       event.Message,
			OccurredAt:    event.OccurredAt,
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to mail %s: %w", r.ID, err)
		}
	}
	return firstErr
}

func (n *EmailNotifier) recipients(ctx context.Context, event service.Event) ([]models.DirectoryUser, error) {
	if event.RecipientID != "" {
		user, err := n.directory.GetUser(ctx, event.RecipientID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve recipient: %w", err)
		}
		if user == nil || !user.IsActive {
			return nil, nil
		}
		return []models.DirectoryUser{*user}, nil
	}

	if event.RecipientDepartment == "" {
		return nil, nil
	}
	members, err := n.directory.ListByDepartment(ctx, event.RecipientDepartment)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve department members: %w", err)
	}

	out := members[:0]
	for _, m := range members {
		if m.ID != event.ActorID {
			out = append(out, m)
		}
	}
	return out, nil
}

func titleOf(event service.Event) string {
	if event.Title != "" {
		return event.Title
	}
	return "document " + event.DocumentID
}
