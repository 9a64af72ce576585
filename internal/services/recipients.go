package services

import (
	"context"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
)

type RecipientService struct {
	documents *store.Store
}

func NewRecipientService(documents *store.Store) *RecipientService {
	return &RecipientService{documents: documents}
}

func (service *RecipientService) List(sess *session.Session) []string {
	return sess.Snapshot().Recipients
}

// Add appends email to the recipient list. The address must be a bare
// address such as "cook@example.com".
func (service *RecipientService) Add(ctx context.Context, sess *session.Session, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	address, err := mail.ParseAddress(email)
	if err != nil || address.Address != email {
		return fmt.Errorf("%w: %q is not an email address", ErrInvalidInput, email)
	}

	return sess.Do(func(state *session.State) error {
		recipients := append(state.Recipients, email)
		return service.write(ctx, state, recipients, "Add: "+email)
	})
}

func (service *RecipientService) Delete(ctx context.Context, sess *session.Session, index int) (string, error) {
	var removed string
	err := sess.Do(func(state *session.State) error {
		if err := checkIndex(index, len(state.Recipients)); err != nil {
			return fmt.Errorf("removing recipient: %w", err)
		}
		removed = state.Recipients[index]
		recipients := slices.Delete(state.Recipients, index, index+1)
		return service.write(ctx, state, recipients, "Remove member")
	})
	if err != nil {
		return "", err
	}
	return removed, nil
}

func (service *RecipientService) write(ctx context.Context, state *session.State, recipients []string, message string) error {
	document := models.RecipientConfig{Recipients: recipients}
	revision, err := service.documents.Write(ctx, ConfigPath, document, state.RecipientsRevision, message)
	if err != nil {
		return fmt.Errorf("saving recipients: %w", err)
	}
	state.Recipients = recipients
	state.RecipientsRevision = revision
	return nil
}
