package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
	"github.com/piyush-tyagi-13/meal-planner/internal/testutil"
)

func newRecipientFixture(t *testing.T, recipients ...string) (*testutil.FakeGitHub, *RecipientService, *session.Session) {
	t.Helper()
	fake, documents, syncService := newSyncFixture(t)
	if recipients != nil {
		seedDocument(t, fake, ConfigPath, models.RecipientConfig{Recipients: recipients})
	}
	return fake, NewRecipientService(documents), loadedSession(t, syncService)
}

func storedRecipients(t *testing.T, fake *testutil.FakeGitHub) []string {
	t.Helper()
	text, ok := fake.File(ConfigPath)
	if !ok {
		t.Fatal("config document missing")
	}
	var config models.RecipientConfig
	if err := json.Unmarshal([]byte(text), &config); err != nil {
		t.Fatalf("parsing stored config: %v", err)
	}
	return config.Recipients
}

func TestAddRecipient(t *testing.T) {
	fake, service, sess := newRecipientFixture(t, "amma@example.com")

	if err := service.Add(context.Background(), sess, "  papa@example.com "); err != nil {
		t.Fatalf("adding recipient: %v", err)
	}

	stored := storedRecipients(t, fake)
	if len(stored) != 2 || stored[1] != "papa@example.com" {
		t.Errorf("unexpected stored recipients: %v", stored)
	}
	if got := service.List(sess); len(got) != 2 {
		t.Errorf("expected 2 recipients in session, got %v", got)
	}
}

func TestAddRecipient_BrokenConfigIsLeftInPlace(t *testing.T) {
	fake, documents, syncService := newSyncFixture(t)
	fake.SetFile(ConfigPath, "{not json")
	sess := loadedSession(t, syncService)
	service := NewRecipientService(documents)

	err := service.Add(context.Background(), sess, "amma@example.com")
	if !errors.Is(err, store.ErrSync) {
		t.Fatalf("expected ErrSync, got %v", err)
	}
	if store.IsConflict(err) {
		t.Errorf("expected a rejected create, not a revision conflict: %v", err)
	}
	if text, _ := fake.File(ConfigPath); text != "{not json" {
		t.Errorf("expected broken config left untouched, got %q", text)
	}
	if got := service.List(sess); len(got) != 0 {
		t.Errorf("expected session recipients unchanged, got %v", got)
	}
}

func TestAddRecipient_CreatesMissingConfig(t *testing.T) {
	fake, service, sess := newRecipientFixture(t)

	if err := service.Add(context.Background(), sess, "amma@example.com"); err != nil {
		t.Fatalf("adding recipient: %v", err)
	}
	if stored := storedRecipients(t, fake); len(stored) != 1 {
		t.Errorf("expected config created with one recipient, got %v", stored)
	}
	if sess.Snapshot().RecipientsRevision != fake.SHA(ConfigPath) {
		t.Error("expected session revision to match the created blob")
	}
}

func TestAddRecipient_Validation(t *testing.T) {
	_, service, sess := newRecipientFixture(t, "amma@example.com")

	for _, email := range []string{"", "   ", "not-an-email", "Amma <amma@example.com>"} {
		err := service.Add(context.Background(), sess, email)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%q: expected ErrInvalidInput, got %v", email, err)
		}
	}
}

func TestDeleteRecipient(t *testing.T) {
	fake, service, sess := newRecipientFixture(t, "a@example.com", "b@example.com", "c@example.com")

	removed, err := service.Delete(context.Background(), sess, 0)
	if err != nil {
		t.Fatalf("removing recipient: %v", err)
	}
	if removed != "a@example.com" {
		t.Errorf("expected a@example.com removed, got %s", removed)
	}
	stored := storedRecipients(t, fake)
	if len(stored) != 2 || stored[0] != "b@example.com" || stored[1] != "c@example.com" {
		t.Errorf("unexpected stored recipients: %v", stored)
	}

	if _, err := service.Delete(context.Background(), sess, -1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestDeleteRecipient_FailedWriteKeepsSession(t *testing.T) {
	fake, service, sess := newRecipientFixture(t, "a@example.com")
	fake.FailNext(500)

	_, err := service.Delete(context.Background(), sess, 0)
	if !errors.Is(err, store.ErrSync) {
		t.Fatalf("expected ErrSync, got %v", err)
	}
	if store.IsConflict(err) {
		t.Error("a server error is not a conflict")
	}
	if got := service.List(sess); len(got) != 1 {
		t.Errorf("expected recipient kept, got %v", got)
	}
}
