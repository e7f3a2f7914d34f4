// Package conversation holds the messages of the current chat session and the
// persisted recent-question history.
package conversation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/longkey1/gemchat/internal/gemchat/markup"
	"github.com/longkey1/gemchat/internal/logger"
	"github.com/longkey1/gemchat/internal/storage"
)

const (
	// HistoryKey is the storage key holding the JSON-encoded question history
	HistoryKey = "history"

	// MaxHistory is the number of recent questions kept
	MaxHistory = 10
)

// Role identifies who a message belongs to
type Role string

const (
	RoleQuestion Role = "question"
	RoleAnswer   Role = "answer"
)

// Variant is a display hint for a message
type Variant string

const (
	VariantNormal Variant = "normal"
	VariantError  Variant = "error"
)

// Message represents a single entry of the conversation.
// Messages are never modified after they are appended.
type Message struct {
	ID        string        `json:"id"`
	Role      Role          `json:"role"`
	Text      string        `json:"text"`
	Variant   Variant       `json:"variant"`
	Lines     []markup.Line `json:"lines,omitempty"` // display segmentation of an answer
	CreatedAt time.Time     `json:"created_at"`
}

// IsError reports whether the message is an error placeholder
func (m Message) IsError() bool {
	return m.Variant == VariantError
}

// GetShortID returns the shortened message ID (first 8 characters)
func (m Message) GetShortID() string {
	if len(m.ID) >= 8 {
		return m.ID[:8]
	}
	return m.ID
}

// Store owns the conversation log and the question history
type Store struct {
	mu       sync.Mutex
	messages []Message
	history  []string
	storage  storage.Storage
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for persistence failures
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithClock overrides the time source for message timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store and loads the persisted history once.
// A missing or unreadable history starts empty.
func NewStore(st storage.Storage, opts ...Option) *Store {
	s := &Store{
		storage: st,
		log:     logger.L,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = s.loadHistory()
	return s
}

func (s *Store) loadHistory() []string {
	data, err := s.storage.Get(HistoryKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("failed to load question history; starting empty", "error", err)
		}
		return []string{}
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn("question history is corrupted; starting empty", "error", err)
		return []string{}
	}

	// Entries are oldest-last; replay them so dedupe and cap hold after load
	history := []string{}
	for i := len(entries) - 1; i >= 0; i-- {
		history = pushHistory(history, entries[i])
	}
	return history
}

// AppendQuestion appends a question message and records it in the history.
func (s *Store) AppendQuestion(text string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.appendLocked(RoleQuestion, text, VariantNormal, nil)

	s.history = pushHistory(s.history, text)
	if err := s.saveHistoryLocked(); err != nil {
		s.log.Error("failed to persist question history", "error", err)
	}

	return msg
}

// AppendAnswer appends an answer message. lines is the optional display
// segmentation of the answer.
func (s *Store) AppendAnswer(text string, lines ...markup.Line) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendLocked(RoleAnswer, text, VariantNormal, lines)
}

// AppendError appends an answer message marked as an error
func (s *Store) AppendError(displayText string) Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendLocked(RoleAnswer, displayText, VariantError, nil)
}

func (s *Store) appendLocked(role Role, text string, variant Variant, lines []markup.Line) Message {
	msg := Message{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		Variant:   variant,
		CreatedAt: s.now(),
	}
	if len(lines) > 0 {
		msg.Lines = append([]markup.Line(nil), lines...)
	}
	s.messages = append(s.messages, msg)
	return msg
}

// ClearConversation removes all messages. The history is untouched.
func (s *Store) ClearConversation() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}

// ClearHistory empties the history and erases its persisted copy
func (s *Store) ClearHistory() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(HistoryKey); err != nil {
		return err
	}
	s.history = []string{}
	return nil
}

// Messages returns a copy of the conversation in arrival order
func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Message(nil), s.messages...)
}

// Len returns the number of messages in the conversation
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.messages)
}

// Last returns the most recent message, if any
func (s *Store) Last() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// History returns a copy of the recent questions, most recent first
func (s *Store) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Store) saveHistoryLocked() error {
	data, err := json.Marshal(s.history)
	if err != nil {
		return err
	}
	return s.storage.Put(HistoryKey, data)
}

// pushHistory puts question at the front, drops any earlier copy and caps the
// list at MaxHistory.
func pushHistory(history []string, question string) []string {
	if strings.TrimSpace(question) == "" {
		return history
	}

	out := make([]string, 0, MaxHistory)
	out = append(out, question)
	for _, h := range history {
		if h == question {
			continue
		}
		if len(out) == MaxHistory {
			break
		}
		out = append(out, h)
	}
	return out
}
