package e2etest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-roulette/internal/domain"
)

// balanceStore keeps balances and entries in memory with the same
// error contract as the postgres repositories.
type balanceStore struct {
	mu       sync.Mutex
	balances map[string]domain.Balance
	entries  []domain.Entry
}

func newBalanceStore() *balanceStore {
	return &balanceStore{balances: map[string]domain.Balance{}}
}

func (s *balanceStore) Create(_ context.Context, arg domain.CreateBalanceParams) (domain.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.balances[arg.ID]; ok {
		return domain.Balance{}, domain.ErrUserAlreadyExists
	}

	now := time.Now().UTC()
	b := domain.Balance{ID: arg.ID, Balance: arg.Balance, CreatedAt: now, UpdatedAt: now}
	s.balances[arg.ID] = b

	return b, nil
}

func (s *balanceStore) Get(_ context.Context, id string) (domain.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[id]
	if !ok {
		return domain.Balance{}, domain.ErrUserNotFound
	}

	return b, nil
}

// Update overwrites the balance, last write wins.
func (s *balanceStore) Update(_ context.Context, id string, balance decimal.Decimal) (domain.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[id]
	if !ok {
		return domain.Balance{}, domain.ErrUserNotFound
	}

	if balance.IsNegative() {
		return domain.Balance{}, domain.ErrNegativeBalance
	}

	b.Balance = balance
	b.UpdatedAt = time.Now().UTC()
	s.balances[id] = b

	return b, nil
}

func (s *balanceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.balances[id]; !ok {
		return domain.ErrUserNotFound
	}

	delete(s.balances, id)

	return nil
}

func (s *balanceStore) List(_ context.Context, limit, offset int32) ([]domain.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Balance, 0, len(s.balances))
	for _, b := range s.balances {
		items = append(items, b)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return page(items, limit, offset), nil
}

func page[T any](items []T, limit, offset int32) []T {
	if int(offset) >= len(items) {
		return []T{}
	}

	end := int(offset + limit)
	if end > len(items) {
		end = len(items)
	}

	return items[offset:end]
}

// entryStore exposes the entry side of balanceStore.
type entryStore struct {
	*balanceStore
}

func (s entryStore) ApplyEntry(_ context.Context, arg domain.ApplyEntryParams) (domain.ApplyEntryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.balances[arg.UserID]
	if !ok {
		return domain.ApplyEntryResult{}, domain.ErrUserNotFound
	}

	for _, e := range s.entries {
		if e.Reference != arg.Reference {
			continue
		}

		if e.UserID != arg.UserID || !e.Amount.Equal(arg.Amount) {
			return domain.ApplyEntryResult{}, domain.ErrReferenceMismatch
		}

		return domain.ApplyEntryResult{Balance: b, Entry: e}, nil
	}

	next := b.Balance.Add(arg.Amount)
	if next.IsNegative() {
		return domain.ApplyEntryResult{}, domain.ErrInsufficientBalance
	}

	e := domain.Entry{
		ID:        int64(len(s.entries) + 1),
		UserID:    arg.UserID,
		Reference: arg.Reference,
		Amount:    arg.Amount,
		CreatedAt: time.Now().UTC(),
	}
	s.entries = append(s.entries, e)

	b.Balance = next
	b.UpdatedAt = e.CreatedAt
	s.balances[arg.UserID] = b

	return domain.ApplyEntryResult{Balance: b, Entry: e, Applied: true}, nil
}

func (s entryStore) List(_ context.Context, userID string, limit, offset int32) ([]domain.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []domain.Entry{}
	for _, e := range s.entries {
		if e.UserID == userID {
			items = append(items, e)
		}
	}

	return page(items, limit, offset), nil
}

// depositStore is the in-memory local deposit ledger.
type depositStore struct {
	mu       sync.Mutex
	deposits map[string]domain.Deposit
}

func newDepositStore() *depositStore {
	return &depositStore{deposits: map[string]domain.Deposit{}}
}

func (s *depositStore) Create(_ context.Context, arg domain.Deposit) (domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.deposits[arg.PaymentIntentID]; ok {
		d.IntentStatus = arg.IntentStatus
		s.deposits[arg.PaymentIntentID] = d

		return d, nil
	}

	now := time.Now().UTC()
	arg.CreatedAt, arg.UpdatedAt = now, now
	s.deposits[arg.PaymentIntentID] = arg

	return arg, nil
}

func (s *depositStore) Get(_ context.Context, id string) (domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deposits[id]
	if !ok {
		return domain.Deposit{}, domain.ErrDepositNotFound
	}

	return d, nil
}

func (s *depositStore) UpdateState(_ context.Context, arg domain.UpdateDepositStateParams) (domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deposits[arg.PaymentIntentID]
	if !ok {
		return domain.Deposit{}, domain.ErrDepositNotFound
	}

	d.State = arg.State
	if arg.IntentStatus != "" {
		d.IntentStatus = arg.IntentStatus
	}
	d.LastError = arg.LastError
	if arg.Attempt {
		d.Attempts++
	}
	d.UpdatedAt = time.Now().UTC()
	s.deposits[arg.PaymentIntentID] = d

	return d, nil
}

func (s *depositStore) ListOpen(_ context.Context, states []string, before time.Time, limit int32) ([]domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []domain.Deposit{}
	for _, d := range s.deposits {
		for _, state := range states {
			if d.State == state && d.UpdatedAt.Before(before) {
				items = append(items, d)
			}
		}
	}

	sort.Slice(items, func(i, j int) bool { return items[i].UpdatedAt.Before(items[j].UpdatedAt) })

	return page(items, limit, 0), nil
}

// processor fakes the payment intent endpoints of the payment processor.
// Every created intent is succeeded at once.
type processor struct {
	mu      sync.Mutex
	seq     int64
	calls   int64
	intents map[string]map[string]any
}

func newProcessor() *processor {
	return &processor{intents: map[string]map[string]any{}}
}

func (p *processor) Calls() int64 {
	return atomic.LoadInt64(&p.calls)
}

func (p *processor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&p.calls, 1)

	const prefix = "/v1/payment_intents"

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == prefix:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var amount int64
		if _, err := fmt.Sscan(r.PostForm.Get("amount"), &amount); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"Invalid integer"}}`))

			return
		}

		p.mu.Lock()
		p.seq++
		intent := map[string]any{
			"id":       fmt.Sprintf("pi_e2e_%d", p.seq),
			"object":   "payment_intent",
			"amount":   amount,
			"currency": r.PostForm.Get("currency"),
			"status":   "succeeded",
			"metadata": map[string]string{
				"userId":  r.PostForm.Get("metadata[userId]"),
				"service": r.PostForm.Get("metadata[service]"),
			},
		}
		p.intents[intent["id"].(string)] = intent
		p.mu.Unlock()

		_ = json.NewEncoder(w).Encode(intent)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, prefix+"/"):
		p.mu.Lock()
		intent, ok := p.intents[strings.TrimPrefix(r.URL.Path, prefix+"/")]
		p.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such payment_intent"}}`))

			return
		}

		_ = json.NewEncoder(w).Encode(intent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}
