package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"anoa.com/moodtracker/internal/entity"
	"anoa.com/moodtracker/pkg/apperror"
	"github.com/google/uuid"
)

// memLedgerRepo is an in-memory LedgerRepository with the same compare-and-swap
// semantics as the gorm implementation.
type memLedgerRepo struct {
	mu       sync.Mutex
	ledgers  map[uuid.UUID]entity.UserLedger
	reads    map[uuid.UUID]map[string]bool
	txns     []entity.XPTransaction
	nextID   uint
	failNext error // returned once by the next FindLedger call
	failSet  error // returned by every ApplyAward call
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{
		ledgers: map[uuid.UUID]entity.UserLedger{},
		reads:   map[uuid.UUID]map[string]bool{},
	}
}

func (m *memLedgerRepo) FindLedger(_ context.Context, userID uuid.UUID) (*entity.UserLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return nil, err
	}
	l, ok := m.ledgers[userID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &l, nil
}

func (m *memLedgerRepo) CreateLedger(_ context.Context, ledger *entity.UserLedger) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ledgers[ledger.UserID]; ok {
		return false, nil
	}
	m.ledgers[ledger.UserID] = *ledger
	return true, nil
}

func (m *memLedgerRepo) ApplyAward(_ context.Context, next *entity.UserLedger, expectedVersion int64, txn *entity.XPTransaction) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return false, m.failSet
	}
	cur, ok := m.ledgers[next.UserID]
	if !ok || cur.Version != expectedVersion {
		return false, nil
	}
	next.Version = expectedVersion + 1
	m.ledgers[next.UserID] = *next
	if txn != nil {
		m.nextID++
		txn.ID = m.nextID
		m.txns = append(m.txns, *txn)
	}
	return true, nil
}

func (m *memLedgerRepo) AddArticleRead(_ context.Context, userID uuid.UUID, articleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reads[userID] == nil {
		m.reads[userID] = map[string]bool{}
	}
	if m.reads[userID][articleID] {
		return false, nil
	}
	m.reads[userID][articleID] = true
	return true, nil
}

func (m *memLedgerRepo) RemoveArticleRead(_ context.Context, userID uuid.UUID, articleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.reads[userID], articleID)
	return nil
}

func (m *memLedgerRepo) HasTransaction(_ context.Context, userID uuid.UUID, source string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.txns {
		if t.UserID == userID && t.Source == source {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedgerRepo) ListTransactions(_ context.Context, userID uuid.UUID, limit int) ([]entity.XPTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.XPTransaction
	for _, t := range m.txns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLedgerRepo) SumTransactionsSince(_ context.Context, userID uuid.UUID, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, t := range m.txns {
		if t.UserID == userID && !t.CreatedAt.Before(since) {
			total += t.Amount
		}
	}
	return total, nil
}

func (m *memLedgerRepo) MostFrequentSource(_ context.Context, userID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[string]int{}
	for _, t := range m.txns {
		if t.UserID == userID {
			counts[t.Source]++
		}
	}
	best, bestCount := "", 0
	for src, c := range counts {
		if c > bestCount || (c == bestCount && src < best) {
			best, bestCount = src, c
		}
	}
	return best, nil
}

var errStoreDown = errors.New("connection refused")

type recordingNotifier struct {
	mu     sync.Mutex
	levels []int
}

func (n *recordingNotifier) NotifyLevelUp(_ context.Context, _ uuid.UUID, newLevel, _ int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.levels = append(n.levels, newLevel)
	return nil
}

type denyThrottle struct{}

func (denyThrottle) Allow(context.Context, uuid.UUID, Game) (bool, error) { return false, nil }
