package store

import (
	"context"
	"sync"

	"github.com/akolanti/DocRagAPI/internal/domain/supportModel"
)

type InMemorySupportStore struct {
	mu        *sync.RWMutex
	customers map[string]supportModel.Customer //keyed by user id
	tickets   []supportModel.Ticket
	runLogs   []supportModel.RunLog
}

func InitInMemorySupportStore() *InMemorySupportStore {
	return &InMemorySupportStore{
		mu:        new(sync.RWMutex),
		customers: make(map[string]supportModel.Customer),
	}
}

func (s *InMemorySupportStore) FindCustomer(ctx context.Context, userID string) (*supportModel.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.customers[userID]; ok {
		found := c
		return &found, nil
	}
	return nil, nil
}

func (s *InMemorySupportStore) InsertCustomer(ctx context.Context, customer supportModel.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.UserID] = customer
	return nil
}

func (s *InMemorySupportStore) CountCustomers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.customers)), nil
}

func (s *InMemorySupportStore) InsertTicket(ctx context.Context, ticket supportModel.Ticket) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = append(s.tickets, ticket)
	return ticket.TicketID, nil
}

func (s *InMemorySupportStore) FindOpenTickets(ctx context.Context, userID string) ([]supportModel.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var open []supportModel.Ticket
	for _, t := range s.tickets {
		if t.UserID == userID && (t.Status == "open" || t.Status == "pending") {
			open = append(open, t)
		}
	}
	return open, nil
}

func (s *InMemorySupportStore) InsertRunLog(ctx context.Context, log supportModel.RunLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runLogs = append(s.runLogs, log)
	return nil
}

func (s *InMemorySupportStore) RunLogCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runLogs)
}
