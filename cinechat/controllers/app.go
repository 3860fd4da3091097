// cinechat/controllers/app.go
package controllers

import (
	"cinechat/cinechat/pipeline"
	"cinechat/cinechat/sessions"
	"cinechat/cinechat/utils/logging"
	"cinechat/cinechat/utils/types"
	"context"
	"sync"

	"go.uber.org/zap"
)

type Phase string

const (
	PhaseUnauthenticated Phase = "unauthenticated"
	PhaseLoadingSessions Phase = "loading_sessions"
	PhaseReady           Phase = "ready"
)

// IdentityStore is the durable token/username/email capability.
type IdentityStore interface {
	Identity() (types.Identity, error)
	SaveIdentity(id types.Identity) error
	ClearIdentity() error
}

// Authenticator is the external credential issuer.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (types.Identity, error)
	Signup(ctx context.Context, username, email, password string) error
}

// SessionRemote is the remote session mirror plus its read-once load.
type SessionRemote interface {
	sessions.Remote
	ListSessions(ctx context.Context, username string) ([]types.Session, error)
}

// AppController owns the identity state machine. Entering Ready loads
// all sessions and auto-selects the most recently active one; logout
// tears down all in-memory session state without touching remote data.
type AppController struct {
	ids      IdentityStore
	auth     Authenticator
	remote   SessionRemote
	rec      pipeline.Recommender
	enricher pipeline.Enricher

	mu       sync.Mutex
	phase    Phase
	identity types.Identity
	store    *sessions.Store
	pipe     *pipeline.Pipeline
	onChange func()
}

func NewAppController(ids IdentityStore, auth Authenticator, remote SessionRemote, rec pipeline.Recommender, enricher pipeline.Enricher) *AppController {
	return &AppController{
		ids:      ids,
		auth:     auth,
		remote:   remote,
		rec:      rec,
		enricher: enricher,
		phase:    PhaseUnauthenticated,
	}
}

// SetOnChange installs the hook fired on every phase or session change.
func (c *AppController) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	store := c.store
	c.mu.Unlock()
	if store != nil {
		store.SetOnChange(fn)
	}
}

func (c *AppController) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Bootstrap reads the persisted identity once at startup and, when a
// token and username are present, goes straight to session loading.
func (c *AppController) Bootstrap(ctx context.Context) {
	identity, err := c.ids.Identity()
	if err != nil {
		logging.ErrorLogger.Error("identity read failed", zap.Error(err))
		return
	}
	if identity.Token == "" || identity.Username == "" {
		return
	}
	c.enterSession(ctx, identity)
}

// Login exchanges credentials, persists the identity, and loads sessions.
func (c *AppController) Login(ctx context.Context, email, password string) error {
	identity, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := c.ids.SaveIdentity(identity); err != nil {
		logging.ErrorLogger.Error("identity persist failed", zap.Error(err))
	}
	c.enterSession(ctx, identity)
	return nil
}

func (c *AppController) Signup(ctx context.Context, username, email, password string) error {
	return c.auth.Signup(ctx, username, email, password)
}

// enterSession drives Unauthenticated -> LoadingSessions -> Ready. A
// failed remote load is treated as an empty list: the store then creates
// the initial session.
func (c *AppController) enterSession(ctx context.Context, identity types.Identity) {
	c.mu.Lock()
	c.identity = identity
	c.phase = PhaseLoadingSessions
	onChange := c.onChange
	c.mu.Unlock()
	c.notify()

	list, err := c.remote.ListSessions(ctx, identity.Username)
	if err != nil {
		logging.ErrorLogger.Error("session load failed",
			zap.String("username", identity.Username), zap.Error(err))
		list = nil
	}

	store := sessions.NewStore(identity.Username, c.remote)
	if onChange != nil {
		store.SetOnChange(onChange)
	}
	pipe := pipeline.New(store, c.rec, c.enricher)

	c.mu.Lock()
	c.store = store
	c.pipe = pipe
	c.mu.Unlock()

	store.Load(list)

	c.mu.Lock()
	c.phase = PhaseReady
	c.mu.Unlock()
	logging.AppLogger.Info("sessions loaded",
		zap.String("username", identity.Username), zap.Int("count", store.Len()))
	c.notify()
}

// Logout clears the persisted identity and every piece of in-memory
// session state. Remote data stays put.
func (c *AppController) Logout() {
	if err := c.ids.ClearIdentity(); err != nil {
		logging.ErrorLogger.Error("identity clear failed", zap.Error(err))
	}
	c.mu.Lock()
	c.identity = types.Identity{}
	c.phase = PhaseUnauthenticated
	c.store = nil
	c.pipe = nil
	c.mu.Unlock()
	c.notify()
}

func (c *AppController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *AppController) Identity() types.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Token returns the current opaque identity token, empty when logged out.
func (c *AppController) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity.Token
}

// Store returns the current session store, nil outside Ready.
func (c *AppController) Store() *sessions.Store {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store
}

// Submit routes a query into the active session's pipeline. It is a
// silent no-op unless the controller is Ready and a current member
// session is active.
func (c *AppController) Submit(ctx context.Context, query string) bool {
	c.mu.Lock()
	phase, store, pipe := c.phase, c.store, c.pipe
	c.mu.Unlock()
	if phase != PhaseReady || store == nil || pipe == nil {
		return false
	}
	active, ok := store.Active()
	if !ok {
		return false
	}
	return pipe.Submit(ctx, active.ID, query)
}

// InFlight reports whether the active session has a pending pipeline.
func (c *AppController) InFlight() bool {
	c.mu.Lock()
	store, pipe := c.store, c.pipe
	c.mu.Unlock()
	if store == nil || pipe == nil {
		return false
	}
	return pipe.InFlight(store.ActiveID())
}
