package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RichardoC/ai-doctor/internal/config"
	"github.com/RichardoC/ai-doctor/internal/llm"
	"github.com/RichardoC/ai-doctor/internal/metrics"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"
)

type gateway struct {
	router  http.Handler
	metrics *metrics.Metrics
}

func newGateway(t *testing.T, creds map[string]string, upstreamStatus int, upstreamBody string) *gateway {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(upstreamStatus)
		_, _ = w.Write([]byte(upstreamBody))
	}))
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		OpenAIBaseURL:     upstream.URL + "/v1",
		AnthropicBaseURL:  upstream.URL + "/v1",
		PerplexityBaseURL: upstream.URL,
	}
	lookup := func(key string) (string, bool) {
		v, ok := creds[key]
		return v, ok
	}

	logger := zaptest.NewLogger(t)
	m := metrics.New(nil)
	h := NewHandler(llm.New(cfg, lookup, upstream.Client(), logger), m, logger)
	return &gateway{router: NewRouter(h, m, logger), metrics: m}
}

func (gw *gateway) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	gw.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func expectCORS(g *WithT, rec *httptest.ResponseRecorder) {
	g.Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	g.Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(Equal("authorization, x-client-info, apikey, content-type"))
	g.Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(Equal("POST, OPTIONS"))
}

const validBody = `{"messages":[{"role":"user","content":"I have a fever"}]}`

func TestHandleChat_Preflight(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, nil, http.StatusOK, "")

	rec := gw.do(http.MethodOptions, ChatPath, "")
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	expectCORS(g, rec)
}

func TestHandleChat_MethodNotAllowed(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, map[string]string{config.OpenAIKeyEnv: "sk-o"}, http.StatusOK, "")

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, "PROPFIND", "BREW"} {
		rec := gw.do(method, ChatPath, validBody)
		g.Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed), method)
		g.Expect(decode(t, rec)).To(Equal(map[string]string{"error": "Method not allowed"}))
		expectCORS(g, rec)
	}
}

func TestHandleChat_Success(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, map[string]string{config.OpenAIKeyEnv: "sk-o"}, http.StatusOK,
		`{"choices":[{"message":{"content":"Hydrate and rest."}}]}`)

	for _, path := range []string{ChatPath, "/api/chat"} {
		rec := gw.do(http.MethodPost, path, validBody)
		g.Expect(rec.Code).To(Equal(http.StatusOK))
		g.Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
		g.Expect(decode(t, rec)).To(Equal(map[string]string{"reply": "Hydrate and rest."}))
		expectCORS(g, rec)
	}
	g.Expect(testutil.ToFloat64(gw.metrics.RequestCounter("openai", "200"))).To(Equal(2.0))
}

func TestHandleChat_EmptyReplyStillHasReplyField(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, map[string]string{config.AnthropicKeyEnv: "sk-a"}, http.StatusOK, `{"content":[]}`)

	rec := gw.do(http.MethodPost, ChatPath, validBody)
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(decode(t, rec)).To(Equal(map[string]string{"reply": ""}))
}

func TestHandleChat_MissingMessages(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, map[string]string{config.OpenAIKeyEnv: "sk-o"}, http.StatusOK, "")

	for _, body := range []string{`{"messages":[]}`, `{}`, `not json`, ``, `{"messages":"hello"}`} {
		rec := gw.do(http.MethodPost, ChatPath, body)
		g.Expect(rec.Code).To(Equal(http.StatusBadRequest), body)
		g.Expect(decode(t, rec)).To(Equal(map[string]string{"error": "Missing messages array"}), body)
	}
}

func TestHandleChat_WrongFieldTypeKeepsMessages(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, map[string]string{config.OpenAIKeyEnv: "sk-o"}, http.StatusOK,
		`{"choices":[{"message":{"content":"Rest."}}]}`)

	rec := gw.do(http.MethodPost, ChatPath, `{"model":123,"messages":[{"role":"user","content":"fever"}]}`)
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(decode(t, rec)).To(Equal(map[string]string{"reply": "Rest."}))
}

func TestHandleChat_BodyTooLarge(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, map[string]string{config.OpenAIKeyEnv: "sk-o"}, http.StatusOK, "")

	big := `{"messages":[{"role":"user","content":"` + strings.Repeat("a", maxBodyBytes) + `"}]}`
	rec := gw.do(http.MethodPost, ChatPath, big)
	g.Expect(rec.Code).To(Equal(http.StatusRequestEntityTooLarge))
	g.Expect(decode(t, rec)["error"]).To(ContainSubstring("exceeds"))
	expectCORS(g, rec)
}

func TestHandleChat_NoProviderConfigured(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, nil, http.StatusOK, "")

	rec := gw.do(http.MethodPost, ChatPath, validBody)
	g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
	msg := decode(t, rec)["error"]
	g.Expect(msg).To(ContainSubstring(config.OpenAIKeyEnv))
	g.Expect(msg).To(ContainSubstring(config.AnthropicKeyEnv))
	g.Expect(msg).To(ContainSubstring(config.PerplexityKeyEnv))
}

func TestHandleChat_ExplicitProviderMissingCredential(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, map[string]string{config.AnthropicKeyEnv: "sk-a"}, http.StatusOK, "")

	rec := gw.do(http.MethodPost, ChatPath, `{"provider":"openai","messages":[{"role":"user","content":"hi"}]}`)
	g.Expect(rec.Code).To(Equal(http.StatusBadRequest))
	g.Expect(decode(t, rec)).To(Equal(map[string]string{"error": "OPENAI_API_KEY not set"}))
}

func TestHandleChat_UpstreamError(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, map[string]string{config.PerplexityKeyEnv: "sk-p"}, http.StatusUnauthorized, "invalid api key")

	rec := gw.do(http.MethodPost, ChatPath, validBody)
	g.Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	g.Expect(decode(t, rec)).To(Equal(map[string]string{"error": "Perplexity error: invalid api key"}))
	expectCORS(g, rec)
	g.Expect(testutil.ToFloat64(gw.metrics.RequestCounter("perplexity", "500"))).To(Equal(1.0))
}

func TestRecover_ConvertsPanicToJSON(t *testing.T) {
	g := NewWithT(t)

	h := CORS(Recover(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, ChatPath, nil))

	g.Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	g.Expect(decode(t, rec)).To(Equal(map[string]string{"error": "boom"}))
	expectCORS(g, rec)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	g := NewWithT(t)
	gw := newGateway(t, nil, http.StatusOK, "")

	rec := gw.do(http.MethodGet, "/healthz", "")
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(Equal("ok"))

	gw.do(http.MethodPost, ChatPath, `{}`)
	rec = gw.do(http.MethodGet, "/metrics", "")
	g.Expect(rec.Code).To(Equal(http.StatusOK))
	g.Expect(rec.Body.String()).To(ContainSubstring(`ai_doctor_gateway_requests_total{provider="none",status="400"} 1`))
}
