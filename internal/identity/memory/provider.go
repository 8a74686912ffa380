// Package memory implements the identity provider in process for dev and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chambers/internal/identity"
	id "chambers/pkg/domain"
	"chambers/pkg/platform/sentinel"
)

const sessionTTL = 24 * time.Hour

type account struct {
	identityID   id.IdentityID
	email        string
	passwordHash []byte
	createdAt    time.Time
}

type session struct {
	identityID id.IdentityID
	issuedAt   time.Time
	expiresAt  time.Time
}

// Provider keeps accounts and sessions in memory. Credentials are opaque
// UUID strings; passwords are stored as bcrypt hashes.
type Provider struct {
	mu       sync.RWMutex
	accounts map[string]*account // keyed by email
	sessions map[string]*session // keyed by credential
	subs     map[int]chan identity.Event
	next     int
	now      func() time.Time
}

// New constructs an empty in-memory provider.
func New() *Provider {
	return &Provider{
		accounts: make(map[string]*account),
		sessions: make(map[string]*session),
		subs:     make(map[int]chan identity.Event),
		now:      time.Now,
	}
}

// SignIn checks the password and issues a fresh credential.
func (p *Provider) SignIn(_ context.Context, email, password string) (string, *identity.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[email]
	if ok {
		if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
			ok = false
		}
	}
	if !ok {
		return "", nil, fmt.Errorf("invalid email or password: %w", sentinel.ErrInvalidInput)
	}

	credential := uuid.New().String()
	now := p.now()
	p.sessions[credential] = &session{
		identityID: acct.identityID,
		issuedAt:   now,
		expiresAt:  now.Add(sessionTTL),
	}

	ident := p.identityForLocked(acct, now)
	p.publishLocked(identity.Event{Kind: identity.EventSignedIn, Identity: ident, Credential: credential})
	return credential, ident, nil
}

func (p *Provider) CurrentIdentity(_ context.Context, credential string) (*identity.Identity, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sess, ok := p.sessions[credential]
	if !ok || p.now().After(sess.expiresAt) {
		return nil, nil
	}

	for _, acct := range p.accounts {
		if acct.identityID == sess.identityID {
			ident := p.identityForLocked(acct, sess.issuedAt)
			ident.ExpiresAt = sess.expiresAt
			return ident, nil
		}
	}
	return nil, nil
}

func (p *Provider) SignOut(_ context.Context, credential string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.sessions, credential)
	p.publishLocked(identity.Event{Kind: identity.EventSignedOut, Credential: credential})
	return nil
}

func (p *Provider) CreateUser(_ context.Context, email, password string) (id.IdentityID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return "", fmt.Errorf("account already exists: %w", sentinel.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	identityID := id.IdentityID(uuid.New().String())
	p.accounts[email] = &account{
		identityID:   identityID,
		email:        email,
		passwordHash: hash,
		createdAt:    p.now(),
	}
	return identityID, nil
}

func (p *Provider) DeleteUser(_ context.Context, identityID id.IdentityID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for email, acct := range p.accounts {
		if acct.identityID == identityID {
			delete(p.accounts, email)
			for credential, sess := range p.sessions {
				if sess.identityID == identityID {
					delete(p.sessions, credential)
				}
			}
			return nil
		}
	}
	return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
}

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

func (p *Provider) identityForLocked(acct *account, issuedAt time.Time) *identity.Identity {
	return &identity.Identity{
		ID:       acct.identityID,
		Email:    acct.email,
		IssuedAt: issuedAt,
	}
}

func (p *Provider) publishLocked(ev identity.Event) {
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Verify interface satisfaction.
var _ identity.Admin = (*Provider)(nil)
