package handle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobtakir/api/internal/prompt"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/technique"
)

type stubEngine struct {
	reply    string
	err      error
	deadline time.Duration
}

func (s *stubEngine) Name() string     { return "stub" }
func (s *stubEngine) GetModel() string { return "stub-1" }
func (s *stubEngine) Generate(ctx context.Context, _ prompt.Prompt) (string, error) {
	if dl, ok := ctx.Deadline(); ok {
		s.deadline = time.Until(dl)
	}
	return s.reply, s.err
}

const okReply = `{"techniqueId":"SIX_HATS","analysis":"a","solutions":[{"title":"t","text":"x","emoji":"🎩","category":"c"}]}`

func newMux(eng solver.Engine) *http.ServeMux {
	mux := http.NewServeMux()
	New(&solver.Engines{Gemini: eng}, "gemini", nil, nil).Routes(mux)
	return mux
}

func post(t *testing.T, mux http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/solve", strings.NewReader(body)))
	return rec
}

func TestSolveOK(t *testing.T) {
	rec := post(t, newMux(&stubEngine{reply: okReply}), `{"problem":"كيف نحسن الاجتماعات؟"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "كيف نحسن الاجتماعات؟", out.Problem)
	assert.Equal(t, technique.ID("SIX_HATS"), out.TechniqueID)
	assert.Equal(t, technique.Resolve("SIX_HATS").Icon, out.Technique.Icon)
	require.Len(t, out.Solutions, 1)
}

func TestSolveErrors(t *testing.T) {
	tests := []struct {
		name string
		eng  *stubEngine
		body string
		code int
	}{
		{"empty problem", &stubEngine{reply: okReply}, `{"problem":"  "}`, http.StatusBadRequest},
		{"bad json", &stubEngine{reply: okReply}, `{`, http.StatusBadRequest},
		{"unknown engine", &stubEngine{reply: okReply}, `{"problem":"p","llm_name":"nope"}`, http.StatusBadRequest},
		{"transport", &stubEngine{err: errors.New("dial tcp: refused")}, `{"problem":"p"}`, http.StatusBadGateway},
		{"malformed reply", &stubEngine{reply: "not json"}, `{"problem":"p"}`, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, newMux(tt.eng), tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.NotContains(t, rec.Body.String(), "refused")
		})
	}
}

func TestSolveMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(&stubEngine{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/solve", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSolveDeadlineHeader(t *testing.T) {
	eng := &stubEngine{reply: okReply}
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", strings.NewReader(`{"problem":"p"}`))
	req.Header.Set("X-Request-Timeout", "5")
	rec := httptest.NewRecorder()
	newMux(eng).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.LessOrEqual(t, eng.deadline, 5*time.Second)
	assert.Greater(t, eng.deadline, 4*time.Second)
}

func TestSolveDeadlineQuery(t *testing.T) {
	eng := &stubEngine{reply: okReply}
	req := httptest.NewRequest(http.MethodPost, "/v1/solve?timeoutSec=3", strings.NewReader(`{"problem":"p"}`))
	rec := httptest.NewRecorder()
	newMux(eng).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.LessOrEqual(t, eng.deadline, 3*time.Second)
}

func TestTechniques(t *testing.T) {
	mux := newMux(&stubEngine{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/techniques", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var all TechniquesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, technique.ID("SCAMPER"), all.Default)
	assert.Len(t, all.Techniques, len(technique.All()))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/techniques?q=triz", nil))
	var some TechniquesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &some))
	require.NotEmpty(t, some.Techniques)
	assert.Equal(t, technique.ID("TRIZ"), some.Techniques[0].ID)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/techniques?q=zzzzzz", nil))
	assert.JSONEq(t, `{"default":"SCAMPER","techniques":[]}`, rec.Body.String())
}

func TestExamplesAndEngines(t *testing.T) {
	mux := newMux(&stubEngine{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/examples", nil))
	var ex []technique.Example
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ex))
	assert.Equal(t, technique.Examples(), ex)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/engines", nil))
	assert.JSONEq(t, `{"default":"gemini","engines":["gemini"]}`, rec.Body.String())
}
