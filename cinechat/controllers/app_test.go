package controllers

import (
	"cinechat/cinechat/utils/logging"
	"cinechat/cinechat/utils/types"
	"context"
	"errors"
	"sync"
	"testing"
)

// --- Fakes ---

type memIdentity struct {
	id      types.Identity
	cleared int
}

func (m *memIdentity) Identity() (types.Identity, error) { return m.id, nil }
func (m *memIdentity) SaveIdentity(id types.Identity) error {
	m.id = id
	return nil
}
func (m *memIdentity) ClearIdentity() error {
	m.id = types.Identity{}
	m.cleared++
	return nil
}

type fakeAuth struct {
	identity types.Identity
	err      error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (types.Identity, error) {
	return f.identity, f.err
}
func (f *fakeAuth) Signup(ctx context.Context, username, email, password string) error {
	return f.err
}

type fakeSessionRemote struct {
	mu      sync.Mutex
	list    []types.Session
	listErr error
	created []types.Session
	deleted []string
}

func (f *fakeSessionRemote) ListSessions(ctx context.Context, username string) ([]types.Session, error) {
	return f.list, f.listErr
}
func (f *fakeSessionRemote) CreateSession(ctx context.Context, username string, s types.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, s)
	return nil
}
func (f *fakeSessionRemote) ReplaceSession(ctx context.Context, username string, s types.Session) error {
	return nil
}
func (f *fakeSessionRemote) DeleteSession(ctx context.Context, username, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeRecommender struct{}

func (fakeRecommender) ProcessQuery(ctx context.Context, query string) (types.QueryResponse, error) {
	return types.QueryResponse{Message: "ok"}, nil
}

type fakeEnricher struct{}

func (fakeEnricher) EnrichAll(ctx context.Context, recs []types.Recommendation) []types.Recommendation {
	return recs
}

func setupApp(t *testing.T, ids *memIdentity, auth *fakeAuth, remote *fakeSessionRemote) *AppController {
	logging.InitLogger(t.TempDir())
	return NewAppController(ids, auth, remote, fakeRecommender{}, fakeEnricher{})
}

// --- Tests ---

func TestStartsUnauthenticated(t *testing.T) {
	app := setupApp(t, &memIdentity{}, &fakeAuth{}, &fakeSessionRemote{})
	if app.Phase() != PhaseUnauthenticated {
		t.Errorf("expected unauthenticated start, got %s", app.Phase())
	}
	if app.Store() != nil {
		t.Errorf("expected no session store before login")
	}
}

func TestLoginWithZeroSessionsAutoCreatesOne(t *testing.T) {
	ids := &memIdentity{}
	remote := &fakeSessionRemote{}
	app := setupApp(t, ids, &fakeAuth{identity: types.Identity{Token: "user:ada", Username: "ada"}}, remote)

	if err := app.Login(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if app.Phase() != PhaseReady {
		t.Fatalf("expected ready phase, got %s", app.Phase())
	}
	store := app.Store()
	if store == nil {
		t.Fatalf("expected a session store after login")
	}
	if store.Len() != 1 {
		t.Fatalf("expected exactly one auto-created session, got %d", store.Len())
	}
	active, ok := store.Active()
	if !ok {
		t.Fatalf("expected the auto-created session active")
	}
	if active.Title != types.PlaceholderTitle || len(active.Messages) != 0 {
		t.Errorf("expected fresh placeholder session, got %+v", active)
	}
	if ids.id.Token != "user:ada" {
		t.Errorf("expected identity persisted, got %+v", ids.id)
	}
	if len(remote.created) != 1 {
		t.Errorf("expected initial session mirrored, got %d creates", len(remote.created))
	}
}

func TestLoginSelectsMostRecentlyActiveSession(t *testing.T) {
	remote := &fakeSessionRemote{list: []types.Session{
		{ID: "stale", UpdatedAt: "2024-01-01T00:00:00Z"},
		{ID: "fresh", UpdatedAt: "2024-06-01T00:00:00Z"},
	}}
	app := setupApp(t, &memIdentity{}, &fakeAuth{identity: types.Identity{Token: "user:ada", Username: "ada"}}, remote)

	app.Login(context.Background(), "ada@example.com", "pw")
	if got := app.Store().ActiveID(); got != "fresh" {
		t.Errorf("expected most recently active session selected, got %s", got)
	}
}

func TestLoginFailureStaysUnauthenticated(t *testing.T) {
	app := setupApp(t, &memIdentity{}, &fakeAuth{err: errors.New("Invalid credentials")}, &fakeSessionRemote{})

	if err := app.Login(context.Background(), "x@y.z", "bad"); err == nil {
		t.Fatalf("expected login error")
	}
	if app.Phase() != PhaseUnauthenticated {
		t.Errorf("expected unauthenticated after failed login, got %s", app.Phase())
	}
}

func TestRemoteLoadFailureFallsBackToFreshSession(t *testing.T) {
	remote := &fakeSessionRemote{listErr: errors.New("mirror down")}
	app := setupApp(t, &memIdentity{}, &fakeAuth{identity: types.Identity{Token: "user:ada", Username: "ada"}}, remote)

	app.Login(context.Background(), "ada@example.com", "pw")
	if app.Phase() != PhaseReady {
		t.Errorf("expected ready despite load failure, got %s", app.Phase())
	}
	if app.Store().Len() != 1 {
		t.Errorf("expected one fresh session, got %d", app.Store().Len())
	}
}

func TestBootstrapWithPersistedIdentity(t *testing.T) {
	ids := &memIdentity{id: types.Identity{Token: "user:ada", Username: "ada"}}
	app := setupApp(t, ids, &fakeAuth{}, &fakeSessionRemote{})

	app.Bootstrap(context.Background())
	if app.Phase() != PhaseReady {
		t.Errorf("expected ready after bootstrap, got %s", app.Phase())
	}
}

func TestBootstrapWithoutIdentityDoesNothing(t *testing.T) {
	app := setupApp(t, &memIdentity{}, &fakeAuth{}, &fakeSessionRemote{})
	app.Bootstrap(context.Background())
	if app.Phase() != PhaseUnauthenticated {
		t.Errorf("expected unauthenticated without persisted identity, got %s", app.Phase())
	}
}

func TestLogoutClearsEverythingButRemote(t *testing.T) {
	ids := &memIdentity{}
	remote := &fakeSessionRemote{}
	app := setupApp(t, ids, &fakeAuth{identity: types.Identity{Token: "user:ada", Username: "ada"}}, remote)
	app.Login(context.Background(), "ada@example.com", "pw")

	app.Logout()
	if app.Phase() != PhaseUnauthenticated {
		t.Errorf("expected unauthenticated after logout, got %s", app.Phase())
	}
	if app.Store() != nil {
		t.Errorf("expected session state torn down")
	}
	if app.Token() != "" {
		t.Errorf("expected token cleared, got %q", app.Token())
	}
	if ids.cleared != 1 {
		t.Errorf("expected persisted identity cleared once, got %d", ids.cleared)
	}
	if len(remote.deleted) != 0 {
		t.Errorf("expected logout to leave remote data alone, got deletes %v", remote.deleted)
	}
}

func TestSubmitRoutesIntoActiveSession(t *testing.T) {
	app := setupApp(t, &memIdentity{}, &fakeAuth{identity: types.Identity{Token: "user:ada", Username: "ada"}}, &fakeSessionRemote{})
	app.Login(context.Background(), "ada@example.com", "pw")

	if !app.Submit(context.Background(), "heist movies") {
		t.Fatalf("expected submit to run")
	}
	active, _ := app.Store().Active()
	if len(active.Messages) != 2 {
		t.Errorf("expected user+bot pair in active session, got %d messages", len(active.Messages))
	}
}

func TestSubmitBeforeLoginIsNoOp(t *testing.T) {
	app := setupApp(t, &memIdentity{}, &fakeAuth{}, &fakeSessionRemote{})
	if app.Submit(context.Background(), "anything") {
		t.Errorf("expected submit to be rejected before login")
	}
}

func TestSubmitWithNoActiveSessionIsNoOp(t *testing.T) {
	app := setupApp(t, &memIdentity{}, &fakeAuth{identity: types.Identity{Token: "user:ada", Username: "ada"}}, &fakeSessionRemote{})
	app.Login(context.Background(), "ada@example.com", "pw")
	app.Store().Select("gone")

	if app.Submit(context.Background(), "anything") {
		t.Errorf("expected submit without an active member session to be rejected")
	}
}
