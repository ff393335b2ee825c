// Package editor tracks a visitor's authentication state and the derived
// "editor mode" flag that unlocks content-mutation affordances. The flag is
// a UI affordance only; authorization is enforced separately by the route
// middleware on every request.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Session states.
type State int

const (
	// StateAnonymous means no identity is established.
	StateAnonymous State = iota
	// StateAuthenticating means a credential check is in flight.
	StateAuthenticating
	// StateAuthenticatedNoPrivilege means an identity exists but the
	// privilege check has not (yet) resolved true.
	StateAuthenticatedNoPrivilege
	// StateAuthenticatedWithPrivilege means the identity holds an editor
	// or admin label.
	StateAuthenticatedWithPrivilege
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticatedNoPrivilege:
		return "authenticated"
	case StateAuthenticatedWithPrivilege:
		return "editor"
	default:
		return "unknown"
	}
}

// Sign-in failure reasons surfaced to the caller.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnavailable        = errors.New("authentication service unavailable")
)

// Identity is the authenticated visitor. The zero value means "absent".
type Identity struct {
	UserID int64
	Email  string
}

// IsZero reports whether no identity is present.
func (id Identity) IsZero() bool { return id.UserID == 0 }

// Authenticator checks credentials and returns the established identity.
// Implementations return ErrInvalidCredentials or ErrUnavailable (possibly
// wrapped) so callers can surface the reason.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (Identity, error)
}

// PrivilegeChecker resolves whether an identity holds an editing label.
type PrivilegeChecker interface {
	HasEditorRole(ctx context.Context, id Identity) (bool, error)
}

// SessionRevoker tears down the remote session. Best effort: local state is
// cleared regardless of the outcome.
type SessionRevoker interface {
	Revoke(ctx context.Context, id Identity) error
}

// Gate is the source of truth for one visitor's editor privilege. Mutation
// is serialized by a mutex because the privilege check resolves on its own
// goroutine.
type Gate struct {
	auth    Authenticator
	priv    PrivilegeChecker
	revoker SessionRevoker

	mu       sync.Mutex
	state    State
	identity Identity
	settled  chan struct{} // closed when the pending privilege check resolves
}

// NewGate creates a Gate in the Anonymous state. revoker may be nil when
// there is no remote session to tear down.
func NewGate(auth Authenticator, priv PrivilegeChecker, revoker SessionRevoker) *Gate {
	return &Gate{auth: auth, priv: priv, revoker: revoker, state: StateAnonymous}
}

// State returns the current session state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Identity returns the current identity, zero when anonymous.
func (g *Gate) Identity() Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.identity
}

// IsEditorMode reports whether editing affordances should be shown.
func (g *Gate) IsEditorMode() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StateAuthenticatedWithPrivilege
}

// SignIn attempts authentication. On success the identity is established
// and the privilege check is dispatched asynchronously; use WaitPrivilege
// to observe its outcome. On failure the gate returns to Anonymous and the
// reason is returned for the caller to surface - a session is never left
// partially established.
func (g *Gate) SignIn(ctx context.Context, email, password string) error {
	g.mu.Lock()
	g.state = StateAuthenticating
	g.mu.Unlock()

	id, err := g.auth.Authenticate(ctx, email, password)
	if err != nil {
		g.mu.Lock()
		g.state = StateAnonymous
		g.identity = Identity{}
		g.mu.Unlock()
		return err
	}

	g.establish(ctx, id)
	return nil
}

// Restore establishes a previously issued identity (session restore at
// startup) and dispatches the privilege check, exactly as after sign-in.
func (g *Gate) Restore(ctx context.Context, id Identity) {
	if id.IsZero() {
		return
	}
	g.establish(ctx, id)
}

func (g *Gate) establish(ctx context.Context, id Identity) {
	g.mu.Lock()
	g.state = StateAuthenticatedNoPrivilege
	g.identity = id
	settled := make(chan struct{})
	g.settled = settled
	g.mu.Unlock()

	go g.checkPrivilege(ctx, id, settled)
}

// checkPrivilege resolves the privilege label asynchronously. Errors count
// as "no privilege" (fail-closed). A resolution for an identity that is no
// longer current is discarded, so a stale check can never reinstate
// privilege after sign-out.
func (g *Gate) checkPrivilege(ctx context.Context, id Identity, settled chan struct{}) {
	defer close(settled)

	ok, err := g.priv.HasEditorRole(ctx, id)
	if err != nil {
		slog.Warn("privilege check failed, treating as no privilege",
			"user_id", id.UserID, "error", err)
		ok = false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.identity != id {
		// Superseded by sign-out or a newer sign-in.
		return
	}
	if ok {
		g.state = StateAuthenticatedWithPrivilege
	}
}

// WaitPrivilege blocks until the pending privilege check settles or the
// context is done, then reports IsEditorMode. With no check in flight it
// returns immediately.
func (g *Gate) WaitPrivilege(ctx context.Context) bool {
	g.mu.Lock()
	settled := g.settled
	g.mu.Unlock()

	if settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
		}
	}
	return g.IsEditorMode()
}

// SignOut tears down the session. Idempotent: local state is cleared even
// when the remote revoke fails, so the UI can never be stranded looking
// privileged.
func (g *Gate) SignOut(ctx context.Context) {
	g.mu.Lock()
	id := g.identity
	g.mu.Unlock()

	if g.revoker != nil && !id.IsZero() {
		if err := g.revoker.Revoke(ctx, id); err != nil {
			slog.Error("remote session revoke failed", "user_id", id.UserID, "error", err)
		}
	}

	g.mu.Lock()
	g.state = StateAnonymous
	g.identity = Identity{}
	g.settled = nil
	g.mu.Unlock()
}
