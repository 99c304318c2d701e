package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/RichardoC/ai-doctor/internal/llm"
	"github.com/RichardoC/ai-doctor/internal/metrics"
	"github.com/RichardoC/ai-doctor/internal/models"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Handler struct {
	llm     *llm.Service
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewHandler(llmService *llm.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		llm:     llmService,
		metrics: m,
		logger:  logger,
	}
}

// maxBodyBytes bounds a chat request body.
const maxBodyBytes = 1 << 20

type replyResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleChat is the gateway endpoint. OPTIONS is a preflight, POST carries
// a ChatRequest, anything else is rejected.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		return
	}

	start := time.Now()
	if r.Method != http.MethodPost {
		h.writeError(w, r, llm.MethodNotAllowed(), start)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.writeError(w, r, llm.RequestTooLarge(tooLarge.Limit), start)
		return
	}
	req := decodeChatRequest(body)

	completion, err := h.llm.Complete(r.Context(), req)
	if err != nil {
		h.writeError(w, r, llm.AsError(err), start)
		return
	}

	h.observe(string(completion.Provider), http.StatusOK, start)
	h.logger.Info("chat request completed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("provider", string(completion.Provider)),
		zap.String("model", completion.Model),
		zap.Int("messages", len(req.Messages)),
		zap.Duration("latency", time.Since(start)))

	writeJSON(w, http.StatusOK, replyResponse{Reply: completion.Reply})
}

// HandleMethodNotAllowed answers methods the router rejects before reaching
// HandleChat.
func (h *Handler) HandleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, llm.MethodNotAllowed(), time.Now())
}

// decodeChatRequest treats an unreadable or syntactically invalid body as {}.
// A field of the wrong type is dropped and the rest of the request kept.
func decodeChatRequest(body []byte) models.ChatRequest {
	var req models.ChatRequest
	err := json.Unmarshal(body, &req)
	var typeErr *json.UnmarshalTypeError
	if err != nil && !errors.As(err, &typeErr) {
		return models.ChatRequest{}
	}
	return req
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, e *llm.Error, start time.Time) {
	status := e.Status()
	h.observe(string(e.Provider), status, start)

	fields := []zap.Field{
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("kind", e.Kind.String()),
		zap.String("provider", string(e.Provider)),
		zap.Int("status", status),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("chat request failed", append(fields, zap.Error(e))...)
	} else {
		h.logger.Info("chat request rejected", append(fields, zap.String("reason", e.Message))...)
	}

	writeJSON(w, status, errorResponse{Error: e.Error()})
}

func (h *Handler) observe(provider string, status int, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.ObserveRequest(provider, status, time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
