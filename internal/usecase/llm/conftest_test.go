package llm

import (
	"context"
	"sync"

	"github.com/kailas-cloud/usersearch/internal/domain"
)

// fakeCompleter replays canned replies in order, repeating the last one.
type fakeCompleter struct {
	mu       sync.Mutex
	replies  []string
	tokens   int
	err      error
	block    chan struct{}
	calls    int
	messages [][]domain.Message
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	f.mu.Lock()
	f.calls++
	f.messages = append(f.messages, messages)
	idx := f.calls - 1
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.Completion{}, ctx.Err()
		}
	}
	if f.err != nil {
		return domain.Completion{}, f.err
	}
	reply := ""
	if len(f.replies) > 0 {
		reply = f.replies[min(idx, len(f.replies)-1)]
	}
	return domain.Completion{Content: reply, TotalTokens: f.tokens}, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCompleter) lastMessages() []domain.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return nil
	}
	return f.messages[len(f.messages)-1]
}
