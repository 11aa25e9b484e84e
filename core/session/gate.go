package session

import (
	"context"
	"sync"

	"github.com/trezcool/classroom/core"
	"github.com/trezcool/classroom/core/user"
)

const (
	LoginRoute = "/login"

	userFetchedMsg = "User fetched"
)

type Outcome int

const (
	Resolving Outcome = iota
	Authorized
	Redirected
)

func (o Outcome) String() string {
	switch o {
	case Authorized:
		return "authorized"
	case Redirected:
		return "redirected"
	default:
		return "resolving"
	}
}

// Decision is the result of resolving a Gate.
// Err is set when the redirect was caused by a failure (not by a missing token).
type Decision struct {
	Outcome    Outcome
	User       *user.User
	RedirectTo string
	Err        error
}

// IdentityFetcher asks the backend who owns the current token.
type IdentityFetcher interface {
	GetCurrentUser(ctx context.Context) (user.User, error)
}

type GateDeps struct {
	Store    *Store
	Storage  Storage
	Fetcher  IdentityFetcher
	Notifier core.Notifier
	Logger   core.Logger // optional
}

// Gate decides whether the holder of a session may see protected content.
// It resolves at most once; later calls return the first decision.
type Gate struct {
	deps     GateDeps
	once     sync.Once
	mu       sync.RWMutex
	decision Decision
}

func NewGate(deps GateDeps) *Gate {
	if deps.Notifier == nil {
		deps.Notifier = core.NopNotifier{}
	}
	return &Gate{deps: deps}
}

// Decision returns the current decision without resolving.
func (g *Gate) Decision() Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.decision
}

func (g *Gate) Resolve(ctx context.Context) Decision {
	g.once.Do(func() {
		d := g.resolve(ctx)
		g.mu.Lock()
		g.decision = d
		g.mu.Unlock()
	})
	return g.Decision()
}

func (g *Gate) resolve(ctx context.Context) Decision {
	token, err := g.deps.Storage.Token(ctx)
	if err != nil {
		g.logError("reading token", err)
	}
	if token == "" {
		return redirect(err)
	}

	cached, err := g.deps.Storage.CachedUser(ctx)
	if err != nil {
		g.logError("reading cached user", err)
	}
	if cached != nil {
		g.deps.Store.DispatchLoader(HideLoader)
		g.deps.Store.DispatchUser(user.LoginUser{Payload: *cached})
		return authorize(*cached)
	}

	g.deps.Store.DispatchLoader(ShowLoader)
	defer g.deps.Store.DispatchLoader(HideLoader)

	usr, err := g.deps.Fetcher.GetCurrentUser(ctx)
	if err != nil {
		g.deps.Notifier.Notify(core.Failure(err))
		return redirect(err)
	}

	if usr.Role.Cacheable() {
		if err := g.deps.Storage.CacheUser(ctx, usr); err != nil {
			g.logError("caching user", err)
		}
	}
	g.deps.Store.DispatchUser(user.LoginUser{Payload: usr})
	g.deps.Notifier.Notify(core.Success(userFetchedMsg))
	return authorize(usr)
}

func (g *Gate) logError(msg string, err error) {
	if g.deps.Logger != nil {
		g.deps.Logger.Error(msg, err)
	}
}

func authorize(usr user.User) Decision {
	return Decision{Outcome: Authorized, User: &usr}
}

func redirect(err error) Decision {
	return Decision{Outcome: Redirected, RedirectTo: LoginRoute, Err: err}
}
