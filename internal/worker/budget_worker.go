package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// ProgressReader evaluates the budget of a single category.
type ProgressReader interface {
	CategoryProgress(ctx context.Context, userID, category string) (core.BudgetProgress, bool, error)
}

// Alerter is notified when a budget leaves the on-track band.
type Alerter interface {
	Alert(ctx context.Context, userID string, p core.BudgetProgress) error
}

// LogAlerter reports alerts through structured logging.
type LogAlerter struct {
	logger *log.StructuredLogger
}

func NewLogAlerter(logger *log.Logger) *LogAlerter {
	return &LogAlerter{logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentWorker))}
}

func (a *LogAlerter) Alert(ctx context.Context, userID string, p core.BudgetProgress) error {
	a.logger.LogBudgetAlert(ctx, userID, p.BudgetID, p.Category, p.Percent, string(p.Status))
	return nil
}

// BudgetAlertWorker re-evaluates the affected budget after every expense or
// budget change and raises an alert when it is near or over its limit.
type BudgetAlertWorker struct {
	progress ProgressReader
	alerter  Alerter
}

func NewBudgetAlertWorker(progress ProgressReader, alerter Alerter) *BudgetAlertWorker {
	return &BudgetAlertWorker{progress: progress, alerter: alerter}
}

// HandleEvent processes one ledger event. A returned error requeues the
// message, so events that can never succeed are logged and dropped instead.
func (w *BudgetAlertWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	category, ok := affectedCategory(ev)
	if !ok {
		return nil
	}

	p, found, err := w.progress.CategoryProgress(ctx, ev.UserID, category)
	if err != nil {
		if errors.Is(err, core.ErrNotAuthenticated) || errors.Is(err, core.ErrInvalidIdentifier) {
			slog.WarnContext(ctx, "Dropping ledger event with invalid user",
				"kind", ev.Kind,
				"entity_id", ev.EntityID,
				"error", err)
			return nil
		}
		return fmt.Errorf("evaluate budget %q: %w", category, err)
	}
	if !found {
		slog.DebugContext(ctx, "No budget for category", "category", category)
		return nil
	}
	if p.Status == core.StatusOnTrack {
		return nil
	}

	if err := w.alerter.Alert(ctx, ev.UserID, p); err != nil {
		return fmt.Errorf("send budget alert: %w", err)
	}
	return nil
}

func affectedCategory(ev *amqp.LedgerEvent) (string, bool) {
	switch ev.Kind {
	case amqp.TransactionCreated:
		if ev.Type != string(core.Expense) {
			return "", false
		}
	case amqp.BudgetCreated:
	default:
		return "", false
	}
	return ev.Category, ev.Category != ""
}
