package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/piyush-tyagi-13/meal-planner/internal/schedule"
	"github.com/piyush-tyagi-13/meal-planner/internal/store"
)

const workflowDirectory = ".github/workflows/"

type WorkflowDispatcher interface {
	DispatchWorkflow(ctx context.Context, workflowFile string) error
}

type ScheduleService struct {
	documents    *store.Store
	dispatcher   WorkflowDispatcher
	workflowFile string
	now          func() time.Time
}

func NewScheduleService(documents *store.Store, dispatcher WorkflowDispatcher, workflowFile string) *ScheduleService {
	return &ScheduleService{
		documents:    documents,
		dispatcher:   dispatcher,
		workflowFile: workflowFile,
		now:          time.Now,
	}
}

func (service *ScheduleService) WorkflowPath() string {
	return workflowDirectory + service.workflowFile
}

// Read returns the first cron expression of the workflow and its time on
// the family's clock. Expressions that are not a fixed time of day are
// shown as-is in UTC. Further cron entries are ignored with a warning.
func (service *ScheduleService) Read(ctx context.Context) (models.Schedule, error) {
	text, revision, err := service.fetch(ctx)
	if err != nil {
		return models.Schedule{}, err
	}
	match, err := schedule.FindCron(text)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("reading schedule: %w", err)
	}
	if match.Count > 1 {
		slog.Warn("workflow has several cron entries, using the first",
			"path", service.WorkflowPath(), "count", match.Count, "line", match.Line)
	}
	return models.Schedule{
		Expression: match.Expression,
		Display:    displayOrRaw(match.Expression),
		Revision:   revision,
	}, nil
}

// Edit replaces the first cron expression and writes the workflow back at
// the revision it was read at.
func (service *ScheduleService) Edit(ctx context.Context, expression string) (models.Schedule, error) {
	expression = strings.TrimSpace(expression)
	if err := schedule.ValidateReplacement(expression); err != nil {
		return models.Schedule{}, err
	}
	text, revision, err := service.fetch(ctx)
	if err != nil {
		return models.Schedule{}, err
	}
	return service.write(ctx, text, revision, expression)
}

// SetDisplayTime schedules the workflow at hour:minute on the family's
// clock, keeping the day fields of the current expression.
func (service *ScheduleService) SetDisplayTime(ctx context.Context, hour, minute int) (models.Schedule, error) {
	text, revision, err := service.fetch(ctx)
	if err != nil {
		return models.Schedule{}, err
	}
	match, err := schedule.FindCron(text)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("reading schedule: %w", err)
	}
	expression, err := schedule.FromDisplayTime(hour, minute, match.Expression)
	if err != nil {
		return models.Schedule{}, err
	}
	return service.write(ctx, text, revision, expression)
}

func (service *ScheduleService) Trigger(ctx context.Context) error {
	if err := service.dispatcher.DispatchWorkflow(ctx, service.workflowFile); err != nil {
		return fmt.Errorf("%w: dispatching %s: %w", store.ErrSync, service.workflowFile, err)
	}
	slog.Info("dispatched workflow", "workflow", service.workflowFile)
	return nil
}

// Calendar renders the schedule as a feed with one daily event at the
// workflow's next run.
func (service *ScheduleService) Calendar(ctx context.Context) (string, error) {
	current, err := service.Read(ctx)
	if err != nil {
		return "", err
	}
	next, err := schedule.NextRun(current.Expression, service.now())
	if err != nil {
		return "", fmt.Errorf("building calendar: %w", err)
	}

	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId("-//meal-planner//schedule//EN")
	calendar.SetName("Daily meal plan")

	event := calendar.AddEvent("meal-plan-" + service.workflowFile)
	event.SetSummary("Daily meal plan email")
	event.SetDescription("Scheduled run of " + service.workflowFile + " (" + current.Display + ")")
	event.SetDtStampTime(service.now())
	event.SetStartAt(next)
	event.SetEndAt(next.Add(15 * time.Minute))
	event.AddRrule("FREQ=DAILY")

	return calendar.Serialize(), nil
}

func (service *ScheduleService) fetch(ctx context.Context) (string, string, error) {
	path := service.WorkflowPath()
	text, revision, found, err := service.documents.FetchText(ctx, path)
	if err != nil {
		return "", "", fmt.Errorf("reading schedule: %w", err)
	}
	if !found {
		return "", "", fmt.Errorf("reading schedule: %w: %s does not exist", schedule.ErrNoSchedule, path)
	}
	return text, revision, nil
}

func (service *ScheduleService) write(ctx context.Context, text, revision, expression string) (models.Schedule, error) {
	updated, err := schedule.ReplaceCron(text, expression)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("editing schedule: %w", err)
	}

	newRevision, err := service.documents.WriteText(ctx, service.WorkflowPath(), updated, revision, "Update schedule: "+expression)
	if err != nil {
		return models.Schedule{}, fmt.Errorf("saving schedule: %w", err)
	}
	slog.Info("updated schedule", "cron", expression)
	return models.Schedule{
		Expression: expression,
		Display:    displayOrRaw(expression),
		Revision:   newRevision,
	}, nil
}

func displayOrRaw(expression string) string {
	display, err := schedule.Display(expression)
	if err != nil {
		return expression + " (" + schedule.BaseZone.Label + ")"
	}
	return display
}
