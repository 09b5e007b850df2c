package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/speechforge/internal/llm"
	"github.com/jonathan/speechforge/internal/stages"
)

// stubClient is an in-memory llm.Client that records every request and
// delegates responses to a configurable function. The call number passed to
// respond is 1-based and assigned in invocation order.
type stubClient struct {
	mu      sync.Mutex
	calls   []llm.Request
	respond func(n int, req llm.Request) (string, error)
}

func (s *stubClient) Invoke(_ context.Context, req llm.Request) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	n := len(s.calls)
	s.mu.Unlock()
	return s.respond(n, req)
}

func (s *stubClient) Close() error { return nil }

// recorded returns a snapshot of all requests seen so far.
func (s *stubClient) recorded() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Request, len(s.calls))
	copy(out, s.calls)
	return out
}

// phaseOf classifies a request by distinctive template content, mirroring
// which stage template produced it.
func phaseOf(req llm.Request) string {
	switch {
	case strings.Contains(req.User, "research brief covering"):
		return "research"
	case strings.Contains(req.User, "Research brief to draw from"):
		return "drafts"
	case strings.Contains(req.User, "Score each draft"):
		return "judge"
	case strings.Contains(req.User, "focused critique"):
		return "critique"
	case strings.Contains(req.User, "Critique from editorial review"):
		return "enhancement"
	default:
		return "unknown"
	}
}

// loadCatalog loads the stage catalog or fails the test.
func loadCatalog(t *testing.T) *stages.Catalog {
	t.Helper()
	catalog, err := stages.Load()
	require.NoError(t, err)
	return catalog
}

// collect drains the event stream and returns the events plus the run error.
func collect(run *Run) ([]Event, error) {
	var events []Event
	for ev := range run.Events() {
		events = append(events, ev)
	}
	return events, run.Err()
}
