package api

import (
	"fmt"
	"net/http"

	"github.com/RichardoC/ai-doctor/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ChatPath is the path the web client posts to.
const ChatPath = "/functions/v1/ai-doctor"

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

// CORS sets the permissive cross-origin headers on every response.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range corsHeaders {
			w.Header().Set(k, v)
		}
		next.ServeHTTP(w, r)
	})
}

// Recover turns a panic into the gateway's JSON error shape with a 500.
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				msg := fmt.Sprint(rec)
				if err, ok := rec.(error); ok {
					msg = err.Error()
				}
				logger.Error("panic in handler",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("panic", msg),
					zap.Stack("stack"))
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msg})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func NewRouter(h *Handler, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CORS)
	r.Use(Recover(logger))

	// chi answers methods outside its known set before routing.
	r.MethodNotAllowed(h.HandleMethodNotAllowed)

	r.HandleFunc(ChatPath, h.HandleChat)
	r.HandleFunc("/api/chat", h.HandleChat)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	return r
}
