package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const iamURL = "https://iam.api.cloud.yandex.net/iam/v1/tokens"

// fallbackTokenTTL is used when the IAM reply carries no expiresAt.
const fallbackTokenTTL = 11 * time.Hour

// refreshMargin keeps a token from being sent just as it expires.
const refreshMargin = time.Minute

// iamTokens mints IAM tokens from a passport OAuth token and hands out the
// cached one until refreshMargin before its expiry. Safe for concurrent use;
// engine copies made by WithModel share one cache.
type iamTokens struct {
	httpc *http.Client
	url   string
	oauth string
	log   *zap.Logger
	now   func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newIAMTokens(oauth string, log *zap.Logger) *iamTokens {
	return &iamTokens{
		httpc: &http.Client{Timeout: 20 * time.Second},
		url:   iamURL,
		oauth: strings.TrimSpace(oauth),
		log:   log,
		now:   time.Now,
	}
}

type iamReply struct {
	IamToken  string    `json:"iamToken"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Token returns a valid IAM token, minting a new one when needed.
func (s *iamTokens) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expires.Add(-refreshMargin)) {
		return s.token, nil
	}
	reply, err := s.mint(ctx)
	if err != nil {
		return "", err
	}

	s.token = reply.IamToken
	s.expires = reply.ExpiresAt
	if s.expires.IsZero() {
		s.expires = s.now().Add(fallbackTokenTTL)
	}
	s.log.Debug("iam token refreshed", zap.Time("expires_at", s.expires))
	return s.token, nil
}

// invalidate drops the cached token after the API rejected it.
func (s *iamTokens) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != "" {
		s.log.Info("iam token rejected, dropping cache")
	}
	s.token = ""
	s.expires = time.Time{}
}

func (s *iamTokens) mint(ctx context.Context) (iamReply, error) {
	if s.oauth == "" {
		return iamReply{}, fmt.Errorf("YC_OAUTH_TOKEN is empty")
	}
	b, err := json.Marshal(map[string]string{"yandexPassportOauthToken": s.oauth})
	if err != nil {
		return iamReply{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return iamReply{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return iamReply{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return iamReply{}, fmt.Errorf("iam %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var out iamReply
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return iamReply{}, fmt.Errorf("iam: bad reply: %w", err)
	}
	if out.IamToken == "" {
		return iamReply{}, fmt.Errorf("iam: empty token")
	}
	return out, nil
}
