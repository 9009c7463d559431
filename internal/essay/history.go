package essay

import "sync"

// Roles used in the conversation buffer.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in the conversation buffer.
type Message struct {
	Role    string
	Content string
}

// History is a bounded, ordered buffer of conversation messages.
// When full, appending evicts the oldest message. Safe for concurrent use.
type History struct {
	mu   sync.Mutex
	max  int
	msgs []Message
}

// NewHistory creates a history holding at most max messages.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Append adds a message, evicting the oldest when the buffer is full.
func (h *History) Append(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.msgs = append(h.msgs, Message{Role: role, Content: content})
	if len(h.msgs) > h.max {
		h.msgs = h.msgs[len(h.msgs)-h.max:]
	}
}

// Messages returns a chronological snapshot of the buffer.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Clear empties the buffer.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = nil
}

// Len reports the current number of buffered messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.msgs)
}
