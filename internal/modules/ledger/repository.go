package ledger

import "context"

// Repository is the append-only transaction ledger. There is no update or delete.
type Repository interface {
	// Append stores tx, failing with ErrDuplicateID if its id is already present.
	Append(ctx context.Context, tx *Transaction) error

	// All returns every transaction, most recent first.
	All(ctx context.Context) ([]*Transaction, error)

	GetByID(ctx context.Context, id string) (*Transaction, error)

	Len(ctx context.Context) (int, error)
}
