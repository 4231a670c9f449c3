package llm

import "context"

// Provider generates a grounded answer from the user query, the retrieved
// chunk texts and an optional prior message history.
type Provider interface {
	Generate(ctx context.Context, query string, matches []string, messageHistory []string) (string, error)
}
