// Package resolver turns a presented session credential into an AuthStatus
// and keeps the shared role cache current as the identity provider reports
// sign-ins and sign-outs.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	authmetrics "chambers/internal/auth/metrics"
	"chambers/internal/auth/models"
	"chambers/internal/auth/store"
	"chambers/internal/identity"
	"chambers/internal/platform/tracer"
	id "chambers/pkg/domain"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/memo"
	"chambers/pkg/platform/sentinel"
)

// User-facing error messages. The two phases fail with distinct texts so a
// stuck identity fetch is distinguishable from a failed role lookup.
const (
	msgAuthTimeout     = "Authentication timeout"
	msgAuthUnavailable = "Authentication service unavailable"
	msgRoleLoadFailed  = "Failed to load admin user data"
)

// Config bounds the resolver's two network phases and the cache freshness.
type Config struct {
	// AuthTimeout bounds the identity fetch.
	AuthTimeout time.Duration
	// RoleLookupTimeout bounds the role repository lookup.
	RoleLookupTimeout time.Duration
	// RoleCacheTTL bounds how long a resolved grant is reused without a
	// fresh lookup.
	RoleCacheTTL time.Duration
	// Clock is injected for tests; nil means time.Now.
	Clock memo.Clock
}

// roleEntry is what the single cache slot holds: the identity the grant was
// resolved for and the grant itself. A nil Role is a valid cached answer
// meaning "authenticated but not an admin".
type roleEntry struct {
	identityID id.IdentityID
	role       *models.AdminRole
}

// Resolver orchestrates session retrieval, role lookup, timeout enforcement,
// and the shared cache slot. It is safe for concurrent use.
type Resolver struct {
	provider identity.Provider
	roles    store.RoleStore
	cache    *memo.Slot[roleEntry]
	cfg      Config
	logger   *slog.Logger
	metrics  *authmetrics.Metrics
	tracer   tracer.Tracer
	group    singleflight.Group

	mu     sync.Mutex
	status models.AuthStatus
	gen    uint64
	closed bool
}

// New constructs a resolver. metrics and trc may be nil (no-op).
func New(provider identity.Provider, roles store.RoleStore, cfg Config, logger *slog.Logger, m *authmetrics.Metrics, trc tracer.Tracer) *Resolver {
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 10 * time.Second
	}
	if cfg.RoleLookupTimeout <= 0 {
		cfg.RoleLookupTimeout = 8 * time.Second
	}
	if cfg.RoleCacheTTL <= 0 {
		cfg.RoleCacheTTL = 5 * time.Minute
	}
	if trc == nil {
		trc = tracer.NewNoop()
	}
	return &Resolver{
		provider: provider,
		roles:    roles,
		cache:    memo.NewSlot[roleEntry](cfg.RoleCacheTTL, cfg.Clock),
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		tracer:   trc,
		status:   models.Loading(),
	}
}

// Status returns the last published status snapshot.
func (r *Resolver) Status() models.AuthStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Close marks the resolver as disposed. Late completions from in-flight
// lookups check this flag and never mutate shared state afterwards.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Resolve produces the AuthStatus for the presented credential.
//
// Phase one fetches the identity within AuthTimeout; no identity means
// Unauthenticated and no role lookup is attempted. Phase two resolves the
// role through the cache slot, falling back to a repository lookup bounded
// by RoleLookupTimeout.
func (r *Resolver) Resolve(ctx context.Context, credential string) models.AuthStatus {
	gen := r.generation()

	ctx, span := r.tracer.Start(ctx, tracer.SpanAuthResolve)
	status := r.resolve(ctx, gen, credential)
	span.SetAttributes(tracer.String("state", status.State.String()))
	span.End(status.Err)

	r.publish(gen, status)
	return status
}

func (r *Resolver) resolve(ctx context.Context, gen uint64, credential string) models.AuthStatus {
	identCtx, cancel := context.WithTimeout(ctx, r.cfg.AuthTimeout)
	defer cancel()

	ident, err := r.provider.CurrentIdentity(identCtx, credential)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			r.countFailure("auth_timeout")
			return models.Failed("", dErrors.New(dErrors.CodeTimeout, msgAuthTimeout))
		}
		r.countFailure("identity_fetch_failed")
		r.logger.ErrorContext(ctx, "identity fetch failed", "error", err)
		return models.Failed("", dErrors.Wrap(err, dErrors.CodeUnavailable, msgAuthUnavailable))
	}
	if ident == nil {
		return models.Unauthenticated()
	}

	return r.resolveRole(ctx, gen, ident.ID)
}

// resolveRole consults the cache slot first; a fresh entry for the same
// identity is returned without a repository call. Concurrent misses for the
// same identity collapse into one lookup.
func (r *Resolver) resolveRole(ctx context.Context, gen uint64, identityID id.IdentityID) models.AuthStatus {
	if entry, ok := r.cache.Get(); ok && entry.identityID == identityID {
		if r.metrics != nil {
			r.metrics.RoleCacheHits.Inc()
		}
		return statusFor(identityID, entry.role)
	}
	if r.metrics != nil {
		r.metrics.RoleCacheMisses.Inc()
	}

	ctx, span := r.tracer.Start(ctx, tracer.SpanRoleLookup,
		tracer.String(tracer.AttrIdentityID, identityID.String()),
		tracer.Bool(tracer.AttrCacheHit, false),
	)

	start := time.Now()
	result, err, _ := r.group.Do(identityID.String(), func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(ctx, r.cfg.RoleLookupTimeout)
		defer cancel()

		role, err := r.roles.FindByIdentity(lookupCtx, identityID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// No grant is a valid answer, not a failure.
				return (*models.AdminRole)(nil), nil
			}
			return nil, err
		}
		return role, nil
	})
	if r.metrics != nil {
		r.metrics.RoleLookupLatency.Observe(time.Since(start).Seconds())
	}
	span.End(err)

	if err != nil {
		// A failed lookup must not leave a stale grant behind.
		r.withCurrent(gen, func() { r.cache.Invalidate() })
		if errors.Is(err, context.DeadlineExceeded) {
			r.countFailure("role_lookup_timeout")
			return models.Failed(identityID, dErrors.New(dErrors.CodeTimeout, msgRoleLoadFailed))
		}
		r.countFailure("role_lookup_failed")
		r.logger.ErrorContext(ctx, "admin role lookup failed",
			"identity_id", identityID.String(),
			"error", err,
		)
		return models.Failed(identityID, dErrors.Wrap(err, dErrors.CodeInternal, msgRoleLoadFailed))
	}

	role := result.(*models.AdminRole)
	if !r.withCurrent(gen, func() { r.cache.Put(roleEntry{identityID: identityID, role: role}) }) {
		// A newer request superseded this lookup; its answer wins.
		if r.metrics != nil {
			r.metrics.StaleResolutions.Inc()
		}
	}
	return statusFor(identityID, role)
}

// Retry invalidates the cache, resets to Loading, and re-resolves. It is
// idempotent: repeated calls against a stable backend converge on the same
// terminal status.
func (r *Resolver) Retry(ctx context.Context, credential string) models.AuthStatus {
	gen := r.advance(func() {
		r.cache.Invalidate()
		r.status = models.Loading()
	})
	status := r.resolve(ctx, gen, credential)
	r.publish(gen, status)
	return status
}

// Run consumes identity-change events for the life of ctx. Sign-outs clear
// the cache immediately, even while a role lookup is in flight; sign-ins
// re-resolve under a fresh generation so stale completions are discarded.
func (r *Resolver) Run(ctx context.Context) {
	events, unsubscribe := r.provider.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			r.handleEvent(ctx, ev)
		}
	}
}

func (r *Resolver) handleEvent(ctx context.Context, ev identity.Event) {
	switch ev.Kind {
	case identity.EventSignedOut:
		r.advance(func() {
			r.cache.Invalidate()
			r.status = models.Unauthenticated()
		})
		if r.metrics != nil {
			r.metrics.SignOuts.Inc()
		}
	case identity.EventSignedIn, identity.EventTokenRefreshed:
		gen := r.advance(func() {
			r.status = models.Loading()
		})
		status := r.resolve(ctx, gen, ev.Credential)
		r.publish(gen, status)
		if ev.Kind == identity.EventSignedIn && r.metrics != nil && status.State == models.StateAuthenticatedWithRole {
			r.metrics.SignIns.Inc()
		}
	}
}

// generation returns the current generation stamp.
func (r *Resolver) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// advance bumps the generation and applies fn under the lock, unless the
// resolver is closed. Returns the new generation.
func (r *Resolver) advance(fn func()) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.gen
	}
	r.gen++
	fn()
	return r.gen
}

// withCurrent applies fn under the lock only when gen is still current and
// the resolver is live. Reports whether fn ran.
func (r *Resolver) withCurrent(gen uint64, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.gen != gen {
		return false
	}
	fn()
	return true
}

// publish records the status snapshot when gen is still current.
func (r *Resolver) publish(gen uint64, status models.AuthStatus) {
	r.withCurrent(gen, func() { r.status = status })
}

func (r *Resolver) countFailure(reason string) {
	if r.metrics != nil {
		r.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

func statusFor(identityID id.IdentityID, role *models.AdminRole) models.AuthStatus {
	if role == nil {
		return models.NoRole(identityID)
	}
	return models.WithRole(identityID, role)
}
