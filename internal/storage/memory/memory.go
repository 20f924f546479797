package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"
)

// Store keeps records in process memory. Useful for development and tests.
type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	budgets []core.Budget
}

// Seed is the on-disk format accepted by NewFromFile.
type Seed struct {
	Transactions []core.Transaction `json:"transactions"`
	Budgets      []core.Budget      `json:"budgets"`
}

func New() *Store {
	return &Store{}
}

// NewFromFile loads seed records from a JSON file. A missing file yields an
// empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	ctx := context.Background()
	for _, tx := range seed.Transactions {
		if _, err := s.CreateTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("seed transaction %q: %w", tx.ID, err)
		}
	}
	for _, b := range seed.Budgets {
		if _, err := s.CreateBudget(ctx, b); err != nil {
			return nil, fmt.Errorf("seed budget %q: %w", b.Category, err)
		}
	}
	return s, nil
}

func (s *Store) FindTransactions(_ context.Context, userID string, t core.TransactionType, from *time.Time) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, tx := range s.txs {
		if tx.UserID != userID || tx.Type != t {
			continue
		}
		if from != nil && tx.Date.Before(*from) {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = core.NewID()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	tx.Date = tx.Date.UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID string, t core.TransactionType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.txs {
		if tx.ID == id && tx.UserID == userID && tx.Type == t {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) FindBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Budget, 0)
	// newest first
	for i := len(s.budgets) - 1; i >= 0; i-- {
		if s.budgets[i].UserID == userID {
			out = append(out, s.budgets[i])
		}
	}
	return out, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if b.ID == "" {
		b.ID = core.NewID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.budgets {
		if existing.UserID == b.UserID && existing.Category == b.Category {
			return core.Budget{}, core.ErrDuplicateCategory
		}
	}
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) DeleteBudget(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.budgets {
		if b.ID == id && b.UserID == userID {
			s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
