package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Publisher delivers ledger events to the broker.
type Publisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
	Close() error
}

// NewTransaction is the caller-supplied part of a ledger record.
type NewTransaction struct {
	// Label is the income source or the expense title.
	Label    string
	Category string
	Amount   decimal.Decimal
	Date     time.Time
	Icon     string
}

const (
	fieldEventKind = "kind"
	fieldEntityID  = "entity_id"
)

// LedgerService orchestrates ledger writes across the store and AMQP.
// Publish failures are logged and never fail the write.
type LedgerService struct {
	store     storage.TransactionStore
	budgets   *budget.Evaluator
	publisher Publisher
	now       func() time.Time
}

func NewLedgerService(store storage.TransactionStore, budgets *budget.Evaluator, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		budgets:   budgets,
		publisher: publisher,
		now:       time.Now,
	}
}

// AddTransaction validates and stores a record of type t for userID.
// A zero Date means now.
func (s *LedgerService) AddTransaction(ctx context.Context, userID string, t core.TransactionType, in NewTransaction) (core.Transaction, error) {
	if err := core.ValidateUserID(userID); err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.MoneyFromDecimal(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	tx := core.Transaction{
		ID:        core.NewID(),
		UserID:    userID,
		Type:      t,
		Amount:    amount,
		Date:      date.UTC(),
		Category:  strings.TrimSpace(in.Category),
		Label:     strings.TrimSpace(in.Label),
		Icon:      in.Icon,
		CreatedAt: s.now().UTC(),
	}
	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save %s: %w", t, err)
	}
	log.NewStructuredLogger(log.FromContext(ctx).WithComponent(log.ComponentLedger)).
		LogTransactionCreated(ctx, userID, saved.ID, string(saved.Type), saved.Amount.Cents, saved.Category)

	event := amqp.NewLedgerEvent(amqp.TransactionCreated, userID, saved.ID)
	event.Type = string(saved.Type)
	event.Category = saved.Category
	event.AmountCents = saved.Amount.Cents
	s.publish(ctx, event)

	return saved, nil
}

// ListTransactions returns the user's records of type t, newest first.
func (s *LedgerService) ListTransactions(ctx context.Context, userID string, t core.TransactionType) ([]core.Transaction, error) {
	if err := core.ValidateUserID(userID); err != nil {
		return nil, err
	}
	txs, err := s.store.FindTransactions(ctx, userID, t, nil)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", t, err)
	}
	return txs, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID string, t core.TransactionType, id string) error {
	if err := core.ValidateUserID(userID); err != nil {
		return err
	}
	if err := core.ValidateID(id); err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, userID, t, id); err != nil {
		return fmt.Errorf("delete %s: %w", t, err)
	}

	event := amqp.NewLedgerEvent(amqp.TransactionDeleted, userID, id)
	event.Type = string(t)
	s.publish(ctx, event)
	return nil
}

// AddBudget creates a budget through the evaluator and announces it.
func (s *LedgerService) AddBudget(ctx context.Context, userID, category string, amount decimal.Decimal) (core.Budget, error) {
	b, err := s.budgets.AddBudget(ctx, userID, category, amount)
	if err != nil {
		return core.Budget{}, err
	}
	event := amqp.NewLedgerEvent(amqp.BudgetCreated, userID, b.ID)
	event.Category = b.Category
	event.AmountCents = b.Amount.Cents
	s.publish(ctx, event)
	return b, nil
}

func (s *LedgerService) RemoveBudget(ctx context.Context, userID, id string) error {
	if err := s.budgets.RemoveBudgetByID(ctx, userID, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.BudgetDeleted, userID, id))
	return nil
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event", "kind", event.Kind)
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		fields := log.NewFields().WithErrorType(log.ErrorTypeNetwork).WithUser(event.UserID)
		fields[fieldEventKind] = event.Kind
		fields[fieldEntityID] = event.EntityID
		log.NewStructuredLogger(log.FromContext(ctx).WithComponent(log.ComponentLedger)).
			LogError(ctx, "Failed to publish ledger event", err, log.OpPublish, fields)
	}
}

// Close releases the publisher. The store is owned by the caller.
func (s *LedgerService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
