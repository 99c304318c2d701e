// Package session holds the client side of a chat: the conversation
// history and the Idle/Sending state machine that decides between a live
// gateway reply and local triage advice.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RichardoC/ai-doctor/internal/models"
	"github.com/RichardoC/ai-doctor/internal/triage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	Greeting       = "Hi! I'm your AI health assistant. Tell me your symptoms and goals, and I'll suggest next steps. This is not medical advice."
	EmptyReply     = "Sorry, I couldn't generate a response."
	FallbackNotice = "Falling back to local suggestions. Connect an API key for real LLM replies."
)

var (
	ErrEmptyInput = errors.New("session: empty message")
	ErrBusy       = errors.New("session: a message is already being sent")
)

type State int

const (
	Idle State = iota
	Sending
)

func (s State) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// Notifier surfaces non-blocking notices to the user.
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Recorder persists messages as they are appended.
type Recorder interface {
	SaveMessage(msg *models.Message) error
}

type Options struct {
	Notifier Notifier
	Recorder Recorder

	// ConversationID tags recorded messages. Generated when empty.
	ConversationID string

	// Analyze produces fallback advice. Defaults to triage.Analyze.
	Analyze func(text string) string

	Logger *zap.Logger
}

// Session is one chat view. Only one exchange may be in flight.
type Session struct {
	mu      sync.Mutex
	state   State
	history []models.Message

	convID   string
	gateway  Gateway
	notifier Notifier
	recorder Recorder
	analyze  func(string) string
	logger   *zap.Logger
}

// New starts a session in Idle with the greeting already in history.
func New(gw Gateway, opts Options) *Session {
	s := &Session{
		convID:   opts.ConversationID,
		gateway:  gw,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		analyze:  opts.Analyze,
		logger:   opts.Logger,
	}
	if s.convID == "" {
		s.convID = uuid.NewString()
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(string) {})
	}
	if s.analyze == nil {
		s.analyze = triage.Analyze
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	greeting := s.newMessage(models.RoleAssistant, Greeting)
	s.history = append(s.history, greeting)
	s.record(greeting)
	return s
}

func (s *Session) ConversationID() string {
	return s.convID
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// History returns a copy of the conversation in chronological order.
func (s *Session) History() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Submit sends text and blocks until the exchange finishes, returning the
// assistant message that was appended. Blank text returns ErrEmptyInput and
// a submission while another is in flight returns ErrBusy; neither touches
// the history. A gateway failure is not an error: the reply is local
// triage advice and the notifier is told.
func (s *Session) Submit(ctx context.Context, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyInput
	}

	s.mu.Lock()
	if s.state == Sending {
		s.mu.Unlock()
		return models.Message{}, ErrBusy
	}
	user := s.newMessage(models.RoleUser, text)
	s.history = append(s.history, user)
	payload := make([]models.ChatMessage, 0, len(s.history))
	for _, m := range s.history {
		payload = append(payload, m.ChatMessage())
	}
	s.state = Sending
	s.mu.Unlock()

	s.record(user)

	content, err := s.send(ctx, payload)
	switch {
	case err != nil:
		s.logger.Warn("gateway call failed, using local triage",
			zap.String("conversation_id", s.convID),
			zap.Error(err))
		s.notifier.Notify(FallbackNotice)
		content = s.analyze(text)
	case content == "":
		content = EmptyReply
	}

	s.mu.Lock()
	reply := s.newMessage(models.RoleAssistant, content)
	s.history = append(s.history, reply)
	s.state = Idle
	s.mu.Unlock()

	s.record(reply)
	return reply, nil
}

// send treats a panicking gateway as a failed call so the session always
// returns to Idle.
func (s *Session) send(ctx context.Context, payload []models.ChatMessage) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply, err = "", fmt.Errorf("gateway panicked: %v", r)
		}
	}()
	return s.gateway.Send(ctx, payload)
}

func (s *Session) newMessage(role models.Role, content string) models.Message {
	return models.Message{
		ID:        uuid.NewString(),
		ConvID:    s.convID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// record failures never block the chat.
func (s *Session) record(msg models.Message) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveMessage(&msg); err != nil {
		s.logger.Warn("failed to record message",
			zap.String("conversation_id", s.convID),
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}
}
