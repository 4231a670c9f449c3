package agents

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/domain/supportModel"
	"github.com/akolanti/DocRagAPI/internal/rag"
	"github.com/akolanti/DocRagAPI/pkg/logger_i"
	"github.com/openai/openai-go"
)

var toolLogger = logger_i.NewLogger("Agent Tools")

// RegisterDefaultTools wires the built-in tool set against the RAG service
// and the support store. The configuration can reference any subset.
func RegisterDefaultTools(registry *Registry, ragService rag.Service, store supportModel.SupportStore) {
	registry.Register(NewKBSearchTool(ragService))
	registry.Register(NewCreateTicketTool(store))
	registry.Register(NewCustomerOverviewTool(store))
}

// NewKBSearchTool searches the document knowledge base. Search failures are
// reported to the model as an empty result list so the agent can answer from
// its prompt instead of aborting the run.
func NewKBSearchTool(ragService rag.Service) Tool {
	return Tool{
		Name:        "kb_search",
		Description: "Search the indexed document knowledge base. Returns the most relevant chunks as JSON.",
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "The search query."},
				"top_k": map[string]any{"type": "integer", "description": "How many chunks to return."},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, argsJSON string) (string, error) {
			var args struct {
				Query string `json:"query"`
				TopK  int    `json:"top_k"`
			}
			if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
				return "", fmt.Errorf("bad kb_search arguments: %w", err)
			}
			if strings.TrimSpace(args.Query) == "" {
				return "", fmt.Errorf("kb_search requires a query")
			}

			results, err := ragService.HybridSearch(ctx, args.Query, args.TopK, config.DefaultDenseWeight, config.DefaultSparseWeight)
			if err != nil {
				toolLogger.Warn("kb_search failed, returning empty results", "error", err)
				return "[]", nil
			}
			out, err := json.Marshal(results)
			if err != nil {
				return "[]", nil
			}
			return string(out), nil
		},
	}
}

func NewCreateTicketTool(store supportModel.SupportStore) Tool {
	return Tool{
		Name:        "create_ticket",
		Description: "Open a support ticket for a customer. Returns the new ticket id.",
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"user_id":     map[string]any{"type": "string", "description": "The customer user id."},
				"subject":     map[string]any{"type": "string", "description": "Short ticket subject."},
				"description": map[string]any{"type": "string", "description": "What the customer needs."},
			},
			"required": []string{"user_id", "subject"},
		},
		Handler: func(ctx context.Context, argsJSON string) (string, error) {
			var args struct {
				UserID      string `json:"user_id"`
				Subject     string `json:"subject"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
				return "", fmt.Errorf("bad create_ticket arguments: %w", err)
			}
			if args.UserID == "" || args.Subject == "" {
				return "", fmt.Errorf("create_ticket requires user_id and subject")
			}

			ticket := supportModel.Ticket{
				TicketID:    newTicketID(),
				UserID:      args.UserID,
				Subject:     args.Subject,
				Description: args.Description,
				Status:      "open",
				CreatedAt:   time.Now().UTC(),
			}
			if _, err := store.InsertTicket(ctx, ticket); err != nil {
				return "", fmt.Errorf("saving ticket: %w", err)
			}
			out, _ := json.Marshal(map[string]string{"ticket_id": ticket.TicketID, "status": ticket.Status})
			return string(out), nil
		},
	}
}

func NewCustomerOverviewTool(store supportModel.SupportStore) Tool {
	return Tool{
		Name:        "customer_overview",
		Description: "Look up a customer profile and their open tickets.",
		Parameters: openai.FunctionParameters{
			"type": "object",
			"properties": map[string]any{
				"user_id": map[string]any{"type": "string", "description": "The customer user id."},
			},
			"required": []string{"user_id"},
		},
		Handler: func(ctx context.Context, argsJSON string) (string, error) {
			var args struct {
				UserID string `json:"user_id"`
			}
			if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
				return "", fmt.Errorf("bad customer_overview arguments: %w", err)
			}
			if args.UserID == "" {
				return "", fmt.Errorf("customer_overview requires user_id")
			}

			customer, err := store.FindCustomer(ctx, args.UserID)
			if err != nil {
				return "", fmt.Errorf("customer lookup: %w", err)
			}
			if customer == nil {
				return fmt.Sprintf(`{"error":"no customer with user_id %s"}`, args.UserID), nil
			}
			tickets, err := store.FindOpenTickets(ctx, args.UserID)
			if err != nil {
				return "", fmt.Errorf("ticket lookup: %w", err)
			}

			out, _ := json.Marshal(map[string]any{
				"customer":     customer,
				"open_tickets": tickets,
			})
			return string(out), nil
		},
	}
}

func newTicketID() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return "TCK-" + strings.ToUpper(hex.EncodeToString(buf))
}
