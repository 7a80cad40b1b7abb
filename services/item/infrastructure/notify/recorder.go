package notify

import (
	"context"
	"sync"

	"github.com/ghuser/titleguard/services/item/domain/commands"
	"github.com/ghuser/titleguard/services/item/domain/models"
)

// Recorder keeps every message it receives in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []models.ValidationMessage
}

var _ commands.Notifier = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RegisterError records msg.
func (r *Recorder) RegisterError(_ context.Context, msg models.ValidationMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of the recorded messages in arrival order.
func (r *Recorder) Messages() []models.ValidationMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ValidationMessage, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message, or false when nothing was recorded.
func (r *Recorder) Last() (models.ValidationMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return models.ValidationMessage{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Tee fans every message out to each non-nil notifier in order.
func Tee(notifiers ...commands.Notifier) commands.Notifier {
	live := make([]commands.Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			live = append(live, n)
		}
	}
	return tee(live)
}

type tee []commands.Notifier

func (t tee) RegisterError(ctx context.Context, msg models.ValidationMessage) {
	for _, n := range t {
		n.RegisterError(ctx, msg)
	}
}
