// Package httpapi implements the identity.Provider interface against the
// hosted auth API.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"chambers/internal/identity"
	id "chambers/pkg/domain"
)

// Config configures the hosted auth API client.
type Config struct {
	BaseURL string
	// ServiceToken authenticates provisioning calls (user create/delete).
	ServiceToken string
	// JWTSecret enables local verification of HS256 access tokens. When
	// empty every CurrentIdentity call goes to the remote API.
	JWTSecret string
	// Timeout is the transport-level ceiling; callers usually impose a
	// tighter deadline per call via ctx.
	Timeout time.Duration
}

// Provider talks to the hosted identity API. It satisfies identity.Admin.
type Provider struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
	verifier     *tokenVerifier
	logger       *slog.Logger

	mu   sync.Mutex
	subs map[int]chan identity.Event
	next int
}

// New creates a provider client.
func New(cfg Config, logger *slog.Logger) *Provider {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Provider{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: timeout},
		verifier:     newTokenVerifier(cfg.JWTSecret, nil),
		logger:       logger,
		subs:         make(map[int]chan identity.Event),
	}
}

type userResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// CurrentIdentity resolves the credential to an identity. A verifiable JWT
// short-circuits the remote call; opaque credentials hit the user endpoint.
func (p *Provider) CurrentIdentity(ctx context.Context, credential string) (*identity.Identity, error) {
	if credential == "" {
		return nil, nil
	}

	if ident, err := p.verifier.Verify(credential); err == nil {
		return ident, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		// Expired or revoked session: unauthenticated, not an error.
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, p.normalizeError(ctx, resp, "fetch current identity")
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("identity response missing id")
	}

	ident := &identity.Identity{
		ID:       id.IdentityID(user.ID),
		Email:    user.Email,
		IssuedAt: user.CreatedAt,
	}
	if user.ExpiresAt != nil {
		ident.ExpiresAt = *user.ExpiresAt
	}
	return ident, nil
}

// SignOut revokes the session behind the credential and notifies subscribers.
func (p *Provider) SignOut(ctx context.Context, credential string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("build logout request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return p.normalizeError(ctx, resp, "sign out")
	}

	p.publish(identity.Event{Kind: identity.EventSignedOut, Credential: credential})
	return nil
}

// CreateUser provisions a confirmed login at the provider.
func (p *Provider) CreateUser(ctx context.Context, email, password string) (id.IdentityID, error) {
	payload, err := json.Marshal(map[string]any{
		"email":         email,
		"password":      password,
		"email_confirm": true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal create user request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/admin/users", strings.NewReader(string(payload)))
	if err != nil {
		return "", fmt.Errorf("build create user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.serviceToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", p.normalizeError(ctx, resp, "create user")
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decode create user response: %w", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("create user response missing id")
	}
	return id.IdentityID(user.ID), nil
}

// DeleteUser removes the login at the provider.
func (p *Provider) DeleteUser(ctx context.Context, identityID id.IdentityID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, p.baseURL+"/auth/v1/admin/users/"+identityID.String(), nil)
	if err != nil {
		return fmt.Errorf("build delete user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.serviceToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return p.normalizeError(ctx, resp, "delete user")
	}
	return nil
}

// Subscribe registers an identity-change listener.
func (p *Provider) Subscribe() (<-chan identity.Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := p.next
	p.next++
	ch := make(chan identity.Event, 8)
	p.subs[key] = ch

	return ch, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if c, ok := p.subs[key]; ok {
			delete(p.subs, key)
			close(c)
		}
	}
}

func (p *Provider) publish(ev identity.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop rather than block the caller.
		}
	}
}

// normalizeError collapses provider failures into a single error string
// while keeping the status code in the log for diagnosis.
func (p *Provider) normalizeError(ctx context.Context, resp *http.Response, op string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := ""
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		switch {
		case envelope.Message != "":
			message = envelope.Message
		case envelope.Msg != "":
			message = envelope.Msg
		case envelope.Error != "":
			message = envelope.Error
		}
	}

	p.logger.ErrorContext(ctx, "identity provider error",
		"op", op,
		"status", resp.StatusCode,
		"message", message,
	)

	if message == "" {
		return fmt.Errorf("%s: identity provider returned status %d", op, resp.StatusCode)
	}
	return fmt.Errorf("%s: %s", op, message)
}

// Verify interface satisfaction.
var _ identity.Admin = (*Provider)(nil)
