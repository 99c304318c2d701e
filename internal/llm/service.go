package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/RichardoC/ai-doctor/internal/config"
	"github.com/RichardoC/ai-doctor/internal/models"
	"go.uber.org/zap"
)

// Service is the gateway core: validate, select a provider, adapt, call.
// It keeps no per-request state.
type Service struct {
	cfg      *config.Config
	lookup   config.LookupFunc
	adapters map[models.Provider]Adapter
	logger   *zap.Logger
}

// Completion is a successful gateway call.
type Completion struct {
	Reply    string
	Provider models.Provider
	Model    string
}

// New creates the service. lookup reads credentials on every call; a nil
// lookup uses the process environment. A nil client means no timeout of the
// gateway's own: the upstream provider bounds the call.
func New(cfg *config.Config, lookup config.LookupFunc, client *http.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		lookup:   lookup,
		adapters: NewAdapters(client),
		logger:   logger,
	}
}

// Validate checks the request shape. It runs before provider resolution.
func Validate(req models.ChatRequest) error {
	if len(req.Messages) == 0 {
		return validationError("Missing messages array")
	}
	for i, m := range req.Messages {
		if !m.Role.Valid() {
			return validationError(fmt.Sprintf("Invalid role %q for message %d", m.Role, i))
		}
	}
	if req.Provider != "" && !req.Provider.Valid() {
		return validationError(fmt.Sprintf("Unknown provider %q", req.Provider))
	}
	return nil
}

// Complete routes the conversation to one provider and returns its reply.
// Every error returned is an *Error.
func (s *Service) Complete(ctx context.Context, req models.ChatRequest) (*Completion, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	p, err := Select(req.Provider, s.cfg.Providers(s.lookup))
	if err != nil {
		return nil, err
	}

	adapter, ok := s.adapters[p.Name]
	if !ok {
		return nil, AsError(fmt.Errorf("no adapter registered for provider %s", p.Name))
	}
	if !p.HasCredential() {
		return nil, configurationError(p.Name, p.CredentialEnv+" not set")
	}

	model := req.Model
	if model == "" {
		model = p.DefaultModel
	}

	httpReq, err := adapter.BuildRequest(ctx, p, model, req.Messages)
	if err != nil {
		return nil, s.fail(p, err)
	}

	start := time.Now()
	body, err := adapter.Invoke(p, httpReq)
	if err != nil {
		return nil, s.fail(p, err)
	}

	s.logger.Debug("provider call completed",
		zap.String("provider", string(p.Name)),
		zap.String("model", model),
		zap.Duration("latency", time.Since(start)))

	return &Completion{
		Reply:    adapter.ExtractReply(body),
		Provider: p.Name,
		Model:    model,
	}, nil
}

func (s *Service) fail(p config.ProviderConfig, err error) *Error {
	e := AsError(err)
	if e.Provider == "" {
		e.Provider = p.Name
	}
	s.logger.Error("provider call failed",
		zap.String("provider", string(p.Name)),
		zap.String("kind", e.Kind.String()),
		zap.Error(err))
	return e
}
