package email

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/wlin7245/remindly/internal/models"
)

// Recipients resolves the destination address for a user's reminder emails.
type Recipients func(userID int64) (string, bool)

// StaticRecipient sends everything to one address.
func StaticRecipient(addr string) Recipients {
	return func(int64) (string, bool) { return addr, addr != "" }
}

// Service renders and sends reminder emails. It satisfies the dispatcher's
// Emailer interface.
type Service struct {
	registry   *Registry
	recipients Recipients
}

func NewService(registry *Registry, recipients Recipients) *Service {
	return &Service{registry: registry, recipients: recipients}
}

// Send renders the snapshot and hands it to the preferred transport. A user
// with no configured address is skipped silently.
func (s *Service) Send(ctx context.Context, snap models.Snapshot) error {
	to, ok := s.recipients(snap.UserID)
	if !ok {
		log.Debug().Int64("user_id", snap.UserID).Msg("no email recipient configured")
		return nil
	}

	sender, ok := s.registry.Pick()
	if !ok {
		return errors.New("no email transport registered")
	}

	msg := Compose(snap)
	if err := sender.Send(ctx, to, msg); err != nil {
		return err
	}
	log.Info().Int("reminder_id", snap.ID).Str("transport", sender.Name()).Msg("reminder email sent")
	return nil
}
