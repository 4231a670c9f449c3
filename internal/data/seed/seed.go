package seed

import (
	"context"
	"time"

	"github.com/akolanti/DocRagAPI/internal/domain/supportModel"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
)

// Customers inserts a small demo customer set when the collection is empty.
// Best effort: callers log the error and continue.
func Customers(ctx context.Context, store supportModel.SupportStore) error {
	logger := logger_i.NewLogger("Seed")

	count, err := store.CountCustomers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Debug("Customers already seeded", "count", count)
		return nil
	}

	now := time.Now().UTC()
	demo := []supportModel.Customer{
		{UserID: "u-1001", Name: "Ana Souza", Email: "ana.souza@example.com", Plan: "premium", UpdatedAt: now},
		{UserID: "u-1002", Name: "Bruno Lima", Email: "bruno.lima@example.com", Plan: "basic", UpdatedAt: now},
		{UserID: "u-1003", Name: "Carla Diaz", Email: "carla.diaz@example.com", Plan: "basic", UpdatedAt: now},
	}
	for _, c := range demo {
		if err := store.InsertCustomer(ctx, c); err != nil {
			return err
		}
	}
	logger.Info("Seeded demo customers", "count", len(demo))
	return nil
}
