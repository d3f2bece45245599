package ledger

import (
	"context"
	"fmt"
	"sync"
)

type memoryLedger struct {
	mu  sync.RWMutex
	txs []*Transaction // append order
	ids map[string]int
}

// NewMemoryRepository returns a process-local ledger.
func NewMemoryRepository() Repository {
	return &memoryLedger{ids: make(map[string]int)}
}

func (l *memoryLedger) Append(ctx context.Context, tx *Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[tx.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, tx.ID)
	}
	l.ids[tx.ID] = len(l.txs)
	l.txs = append(l.txs, tx.clone())
	return nil
}

func (l *memoryLedger) All(ctx context.Context) ([]*Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Transaction, 0, len(l.txs))
	for i := len(l.txs) - 1; i >= 0; i-- {
		out = append(out, l.txs[i].clone())
	}
	return out, nil
}

func (l *memoryLedger) GetByID(ctx context.Context, id string) (*Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.ids[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.txs[i].clone(), nil
}

func (l *memoryLedger) Len(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs), nil
}
