package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/piyush-tyagi-13/meal-planner/internal/schedule"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
	"github.com/piyush-tyagi-13/meal-planner/internal/testutil"
)

const testWorkflow = `name: Daily Meal Plan
on:
  schedule:
    - cron: '0 1 * * *' # every morning
  workflow_dispatch:
jobs:
  send:
    runs-on: ubuntu-latest
`

func newScheduleFixture(t *testing.T) (*testutil.FakeGitHub, *ScheduleService) {
	t.Helper()
	fake := testutil.NewFakeGitHub(t)
	client := fake.Client()
	service := NewScheduleService(store.New(client), client, "daily.yml")
	service.now = func() time.Time { return time.Date(2026, 10, 19, 3, 0, 0, 0, time.UTC) }
	fake.SetFile(service.WorkflowPath(), testWorkflow)
	return fake, service
}

func TestReadSchedule(t *testing.T) {
	fake, service := newScheduleFixture(t)

	current, err := service.Read(context.Background())
	if err != nil {
		t.Fatalf("reading schedule: %v", err)
	}
	if current.Expression != "0 1 * * *" {
		t.Errorf("expected '0 1 * * *', got %q", current.Expression)
	}
	if current.Display != "6:30 AM (IST)" {
		t.Errorf("expected '6:30 AM (IST)', got %q", current.Display)
	}
	if current.Revision != fake.SHA(".github/workflows/daily.yml") {
		t.Error("expected revision of the workflow blob")
	}
}

func TestReadSchedule_NonClockExpression(t *testing.T) {
	fake, service := newScheduleFixture(t)
	fake.SetFile(service.WorkflowPath(), "on:\n  schedule:\n    - cron: '*/30 * * * *'\n")

	current, err := service.Read(context.Background())
	if err != nil {
		t.Fatalf("reading schedule: %v", err)
	}
	if current.Display != "*/30 * * * * (UTC)" {
		t.Errorf("unexpected display %q", current.Display)
	}
}

func TestReadSchedule_SeveralEntriesUsesFirstAndWarns(t *testing.T) {
	fake, service := newScheduleFixture(t)
	fake.SetFile(service.WorkflowPath(), "on:\n  schedule:\n    - cron: '0 1 * * *'\n    - cron: '0 13 * * *'\n")

	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	current, err := service.Read(context.Background())
	if err != nil {
		t.Fatalf("reading schedule: %v", err)
	}
	if current.Expression != "0 1 * * *" {
		t.Errorf("expected the first entry, got %q", current.Expression)
	}
	if !strings.Contains(logs.String(), "several cron entries") || !strings.Contains(logs.String(), "count=2") {
		t.Errorf("expected a warning about 2 cron entries, got %q", logs.String())
	}
}

func TestReadSchedule_MissingWorkflow(t *testing.T) {
	fake := testutil.NewFakeGitHub(t)
	service := NewScheduleService(store.New(fake.Client()), fake.Client(), "absent.yml")

	_, err := service.Read(context.Background())
	if !errors.Is(err, schedule.ErrNoSchedule) {
		t.Fatalf("expected ErrNoSchedule, got %v", err)
	}
}

func TestEditSchedule_PreservesFile(t *testing.T) {
	fake, service := newScheduleFixture(t)

	updated, err := service.Edit(context.Background(), "30 1 * * *")
	if err != nil {
		t.Fatalf("editing schedule: %v", err)
	}
	if updated.Display != "7:00 AM (IST)" {
		t.Errorf("expected '7:00 AM (IST)', got %q", updated.Display)
	}

	stored, _ := fake.File(service.WorkflowPath())
	want := strings.Replace(testWorkflow, "'0 1 * * *'", "'30 1 * * *'", 1)
	if stored != want {
		t.Errorf("workflow changed beyond the cron value:\n%s", stored)
	}
	if updated.Revision != fake.SHA(service.WorkflowPath()) {
		t.Error("expected new revision returned")
	}
}

func TestEditSchedule_RejectsBadExpressionWithoutWriting(t *testing.T) {
	fake, service := newScheduleFixture(t)
	before := len(fake.Requests())

	for _, expression := range []string{"", "0 1 2 3 4", "0 1 * * *'", "0 1 * * *\non: push"} {
		if _, err := service.Edit(context.Background(), expression); !errors.Is(err, schedule.ErrInvalidExpression) {
			t.Errorf("%q: expected ErrInvalidExpression, got %v", expression, err)
		}
	}
	if after := len(fake.Requests()); after != before {
		t.Errorf("expected no requests, got %d", after-before)
	}
}

func TestSetDisplayTime(t *testing.T) {
	fake, service := newScheduleFixture(t)

	updated, err := service.SetDisplayTime(context.Background(), 5, 15)
	if err != nil {
		t.Fatalf("setting display time: %v", err)
	}
	if updated.Expression != "45 23 * * *" {
		t.Errorf("expected '45 23 * * *', got %q", updated.Expression)
	}
	stored, _ := fake.File(service.WorkflowPath())
	if !strings.Contains(stored, "- cron: '45 23 * * *' # every morning") {
		t.Errorf("unexpected workflow:\n%s", stored)
	}
}

func TestTriggerSchedule(t *testing.T) {
	fake, service := newScheduleFixture(t)

	if err := service.Trigger(context.Background()); err != nil {
		t.Fatalf("triggering: %v", err)
	}
	dispatches := fake.Dispatches()
	if len(dispatches) != 1 || dispatches[0] != "daily.yml@"+testutil.FakeBranch {
		t.Errorf("unexpected dispatches: %v", dispatches)
	}

	fake.FailNext(422)
	if err := service.Trigger(context.Background()); !errors.Is(err, store.ErrSync) {
		t.Errorf("expected ErrSync, got %v", err)
	}
}

func TestScheduleCalendar(t *testing.T) {
	_, service := newScheduleFixture(t)

	feed, err := service.Calendar(context.Background())
	if err != nil {
		t.Fatalf("building calendar: %v", err)
	}
	for _, want := range []string{"BEGIN:VCALENDAR", "RRULE:FREQ=DAILY", "DTSTART:20261020T010000Z", "SUMMARY:Daily meal plan email"} {
		if !strings.Contains(feed, want) {
			t.Errorf("expected feed to contain %q:\n%s", want, feed)
		}
	}
}
