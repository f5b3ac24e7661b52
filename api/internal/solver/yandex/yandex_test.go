package yandex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"mobtakir/api/internal/prompt"
)

const okCompletion = `{"result":{"alternatives":[{"message":{"role":"assistant","text":"{}"},"status":"ALTERNATIVE_STATUS_FINAL"}]}}`

func staticIAM(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func newTestEngine(t *testing.T, iamHandler, completion http.HandlerFunc, opts ...Option) (*Engine, *atomic.Int32) {
	t.Helper()
	var iamHits atomic.Int32
	iam := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		iamHits.Add(1)
		iamHandler(w, r)
	}))
	t.Cleanup(iam.Close)
	if completion == nil {
		completion = func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(okCompletion)) }
	}
	llm := httptest.NewServer(completion)
	t.Cleanup(llm.Close)

	e := New("oauth", "folder", "yandexgpt/latest", opts...)
	e.tokens.url = iam.URL
	e.url = llm.URL
	return e, &iamHits
}

// fakeNow is a settable clock for the token cache.
type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeNow) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeNow) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestGenerate(t *testing.T) {
	e, iamHits := newTestEngine(t, staticIAM(`{"iamToken":"iam-1"}`), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer iam-1", r.Header.Get("Authorization"))
		assert.Equal(t, "folder", r.Header.Get("x-folder-id"))

		var req completionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt://folder/yandexgpt/latest", req.ModelURI)
		assert.Len(t, req.Messages, 2)

		_, _ = w.Write([]byte(okCompletion))
	})

	for i := 0; i < 2; i++ {
		out, err := e.Generate(context.Background(), prompt.Prompt{System: "s", User: "u"})
		require.NoError(t, err)
		assert.Equal(t, "{}", out)
	}
	assert.EqualValues(t, 1, iamHits.Load(), "iam token is cached")
}

func TestTokenHonorsExpiresAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := &fakeNow{t: start}
	var minted atomic.Int32
	iam := func(w http.ResponseWriter, r *http.Request) {
		n := minted.Add(1)
		fmt.Fprintf(w, `{"iamToken":"iam-%d","expiresAt":%q}`, n, clock.now().Add(10*time.Minute).Format(time.RFC3339Nano))
	}
	core, logs := observer.New(zapcore.DebugLevel)
	e, iamHits := newTestEngine(t, iam, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(okCompletion))
	}, WithLogger(zap.New(core)))
	e.tokens.now = clock.now

	tok, err := e.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "iam-1", tok)

	clock.advance(8 * time.Minute)
	tok, err = e.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "iam-1", tok, "still outside the refresh margin")

	clock.advance(90 * time.Second)
	tok, err = e.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "iam-2", tok, "refreshed before expiresAt")
	assert.EqualValues(t, 2, iamHits.Load())

	refreshed := logs.FilterMessage("iam token refreshed").All()
	require.Len(t, refreshed, 2)
	assert.Equal(t, "yandex", refreshed[0].LoggerName)
}

func TestTokenFallbackTTL(t *testing.T) {
	clock := &fakeNow{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	e, iamHits := newTestEngine(t, staticIAM(`{"iamToken":"iam-1"}`), nil)
	e.tokens.now = clock.now

	_, err := e.tokens.Token(context.Background())
	require.NoError(t, err)
	clock.advance(fallbackTokenTTL - 2*refreshMargin)
	_, err = e.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, iamHits.Load())

	clock.advance(2 * refreshMargin)
	_, err = e.tokens.Token(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, iamHits.Load())
}

func TestTokenErrors(t *testing.T) {
	e, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid oauth token", http.StatusUnauthorized)
	}, nil)
	_, err := e.Generate(context.Background(), prompt.Prompt{})
	assert.ErrorContains(t, err, "iam 401: invalid oauth token")

	e, _ = newTestEngine(t, staticIAM(`{"iamToken":""}`), nil)
	_, err = e.Generate(context.Background(), prompt.Prompt{})
	assert.ErrorContains(t, err, "empty token")

	_, err = New("", "folder", "m").Generate(context.Background(), prompt.Prompt{})
	assert.ErrorContains(t, err, "YC_OAUTH_TOKEN")
}

func TestUnauthorizedDropsToken(t *testing.T) {
	var calls atomic.Int32
	e, iamHits := newTestEngine(t, staticIAM(`{"iamToken":"iam-1"}`), func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "token expired", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(okCompletion))
	})

	_, err := e.Generate(context.Background(), prompt.Prompt{})
	assert.ErrorContains(t, err, "401")
	_, err = e.Generate(context.Background(), prompt.Prompt{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, iamHits.Load(), "token minted again after 401")
}

func TestWithModelSharesTokens(t *testing.T) {
	e, iamHits := newTestEngine(t, staticIAM(`{"iamToken":"iam-1"}`), func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(okCompletion))
	})
	other := e.WithModel("yandexgpt-lite/latest")
	assert.Equal(t, "yandexgpt/latest", e.GetModel())
	assert.Equal(t, "yandexgpt-lite/latest", other.GetModel())

	_, err := e.Generate(context.Background(), prompt.Prompt{})
	require.NoError(t, err)
	_, err = other.Generate(context.Background(), prompt.Prompt{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, iamHits.Load())
}

func TestGenerateErrorStatus(t *testing.T) {
	e, _ := newTestEngine(t, staticIAM(`{"iamToken":"iam-1"}`), func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad folder", http.StatusForbidden)
	})
	_, err := e.Generate(context.Background(), prompt.Prompt{})
	assert.ErrorContains(t, err, "403")
}

func TestGenerateNeedsFolder(t *testing.T) {
	_, err := New("oauth", "", "m").Generate(context.Background(), prompt.Prompt{})
	assert.ErrorContains(t, err, "YC_FOLDER_ID")
}
