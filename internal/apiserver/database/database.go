package database

import (
	"context"

	"github.com/flotillahq/flotilla/internal/account"
)

// Database is the persistence handle handed to the account service and the
// HTTP handlers. It extends the account store with transaction scoping.
type Database interface {
	account.Store

	// Transaction runs fn inside a database transaction. The transaction is
	// carried on the context, so store calls made with it join it.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the database connection.
	Close() error
}
