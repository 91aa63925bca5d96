package generate

import "context"

// Usage accumulates token counts reported by the generation service.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Add merges another usage sample into the running total.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Request is one structured-instruction completion request.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Response is the text completion plus its usage accounting.
type Response struct {
	Text  string
	Usage Usage
}

// Client is the text-generation service boundary. Failures are opaque:
// there is no structured error taxonomy beyond success/failure.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
