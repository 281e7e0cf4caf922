package ports

import "context"

// BatchSpool holds encoded batches waiting to be submitted.
// Entries are identified by name and processed in name order.
type BatchSpool interface {
	// Enqueue validates and stores an encoded batch, returning its entry name.
	Enqueue(ctx context.Context, data []byte) (string, error)

	// Pending lists the names of entries waiting to be submitted, oldest first.
	Pending(ctx context.Context) ([]string, error)

	// Load decodes the batch stored under name.
	Load(ctx context.Context, name string) (any, error)

	// Complete removes an entry that was accepted by the store.
	Complete(ctx context.Context, name string) error

	// Fail sets aside an entry that could not be delivered so it is not picked up again.
	Fail(ctx context.Context, name string) error
}
