package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/DocRagAPI/internal/data/store"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
	"github.com/akolanti/DocRagAPI/internal/domain/supportModel"
)

func TestInMemoryDocStore(t *testing.T) {
	ctx := context.Background()

	t.Run("finds a file by hash", func(t *testing.T) {
		s := store.InitInMemoryDocStore()
		if _, err := s.InsertFile(ctx, ragModel.File{ID: "f-1", FileHash: "abc", Filename: "a.pdf"}); err != nil {
			t.Fatal(err)
		}

		found, err := s.FindFileByHash(ctx, "abc")
		if err != nil || found == nil || found.ID != "f-1" {
			t.Errorf("Expected to find f-1, got %v, %v", found, err)
		}
		missing, err := s.FindFileByHash(ctx, "nope")
		if err != nil || missing != nil {
			t.Errorf("Expected nil for an unknown hash, got %v, %v", missing, err)
		}
	})

	t.Run("deletes a file with its chunks", func(t *testing.T) {
		s := store.InitInMemoryDocStore()
		s.InsertFile(ctx, ragModel.File{ID: "f-1", FileHash: "abc"})
		s.InsertChunks(ctx, []ragModel.Chunk{
			{ID: "c-1", FileID: "f-1"},
			{ID: "c-2", FileID: "f-1"},
		})

		chunksDeleted, filesDeleted, err := s.DeleteFileAndChunks(ctx, "f-1")
		if err != nil {
			t.Fatal(err)
		}
		if chunksDeleted != 2 || filesDeleted != 1 {
			t.Errorf("Expected 2 chunks and 1 file deleted, got %d and %d", chunksDeleted, filesDeleted)
		}
		if found, _ := s.FindFileByHash(ctx, "abc"); found != nil {
			t.Error("Expected the file record to be gone")
		}
	})
}

func TestInMemorySupportStore(t *testing.T) {
	ctx := context.Background()

	t.Run("filters open tickets by user", func(t *testing.T) {
		s := store.InitInMemorySupportStore()
		now := time.Now().UTC()
		s.InsertTicket(ctx, supportModel.Ticket{TicketID: "TCK-1", UserID: "u-1", Status: "open", CreatedAt: now})
		s.InsertTicket(ctx, supportModel.Ticket{TicketID: "TCK-2", UserID: "u-1", Status: "closed", CreatedAt: now})
		s.InsertTicket(ctx, supportModel.Ticket{TicketID: "TCK-3", UserID: "u-2", Status: "open", CreatedAt: now})

		open, err := s.FindOpenTickets(ctx, "u-1")
		if err != nil {
			t.Fatal(err)
		}
		if len(open) != 1 || open[0].TicketID != "TCK-1" {
			t.Errorf("Expected only TCK-1, got %v", open)
		}
	})

	t.Run("counts customers", func(t *testing.T) {
		s := store.InitInMemorySupportStore()
		s.InsertCustomer(ctx, supportModel.Customer{UserID: "u-1"})
		s.InsertCustomer(ctx, supportModel.Customer{UserID: "u-2"})

		count, err := s.CountCustomers(ctx)
		if err != nil || count != 2 {
			t.Errorf("Expected 2 customers, got %d, %v", count, err)
		}
	})
}
