package supportModel

import (
	"context"
	"time"
)

type Customer struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	Plan      string    `bson:"plan,omitempty" json:"plan,omitempty"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type Ticket struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	TicketID    string    `bson:"ticket_id" json:"ticket_id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Subject     string    `bson:"subject" json:"subject"`
	Description string    `bson:"description" json:"description"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// RunLog records one agent engine run, best effort.
type RunLog struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	SessionID  string    `bson:"session_id" json:"session_id"`
	Agent      string    `bson:"agent" json:"agent"`
	UserID     string    `bson:"user_id" json:"user_id"`
	InputText  string    `bson:"input_text" json:"input_text"`
	OutputText string    `bson:"output_text" json:"output_text"`
	TraceID    string    `bson:"trace_id,omitempty" json:"trace_id,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// SupportStore backs the agent tools: customer lookups, ticket creation and
// run logging.
type SupportStore interface {
	FindCustomer(ctx context.Context, userID string) (*Customer, error)
	InsertCustomer(ctx context.Context, customer Customer) error
	CountCustomers(ctx context.Context) (int64, error)

	InsertTicket(ctx context.Context, ticket Ticket) (string, error)
	FindOpenTickets(ctx context.Context, userID string) ([]Ticket, error)

	InsertRunLog(ctx context.Context, log RunLog) error
}
