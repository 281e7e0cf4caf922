package ports

import "context"

// StoreGateway saves processed agent data to the remote store.
type StoreGateway interface {
	// SaveData submits a batch and reports whether the store accepted it.
	// The batch is either a domain.Payload (sent as-is) or a sequence of records.
	// All failures are absorbed into the false result; nothing is returned as an error.
	SaveData(ctx context.Context, batch any) bool
}
