package browser

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/authz"
)

// GateState is the render state of a client gate.
type GateState int

const (
	// GateLoading renders the placeholder; no redirect may fire yet.
	GateLoading GateState = iota
	// GateAllow renders the protected children unchanged.
	GateAllow
	// GateDeny renders nothing; entering it issues exactly one navigation.
	GateDeny
)

func (g GateState) String() string {
	switch g {
	case GateLoading:
		return "loading"
	case GateAllow:
		return "allow"
	case GateDeny:
		return "deny"
	}
	return "unknown"
}

// Navigator performs a client-side navigation. The gate calls it at most
// once per deny, and never after Unmount.
type Navigator interface {
	Navigate(location string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(location string)

func (f NavigatorFunc) Navigate(location string) { f(location) }

// GateConfig configures a client gate mount.
type GateConfig struct {
	Rules      authz.Ruleset
	Path       string // path active at mount time; also the return target
	SignInPath string
	HomePath   string
}

// Gate is the client-rendered authorization boundary. It mirrors the edge
// gate's decision table at the render layer, which the edge cannot cover
// for in-app route transitions. The state machine is Loading → Allow|Deny;
// a session change re-enters Loading and re-evaluates.
type Gate struct {
	mu sync.Mutex

	sess  *SessionContext
	nav   Navigator
	cfg   GateConfig
	class authz.Classification

	state      GateState
	redirected bool
	unmounted  bool
	unsub      func()
}

// Mount attaches a gate to the session context. The mount path is
// classified once with the shared ruleset; the gate then tracks session
// transitions until Unmount.
func Mount(sess *SessionContext, nav Navigator, cfg GateConfig) *Gate {
	g := &Gate{
		sess:  sess,
		nav:   nav,
		cfg:   cfg,
		class: cfg.Rules.Classify(cfg.Path),
	}

	ch, unsub := sess.Subscribe()
	g.unsub = unsub

	g.apply(sess.State())

	go func() {
		for state := range ch {
			g.apply(state)
		}
	}()

	return g
}

// State returns the gate's current render state.
func (g *Gate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Render resolves the three render outcomes: children when allowed, the
// placeholder while loading, and nothing when denied.
func (g *Gate) Render(children, placeholder string) string {
	switch g.State() {
	case GateAllow:
		return children
	case GateLoading:
		return placeholder
	default:
		return ""
	}
}

// Unmount detaches the gate. A resolution that completes afterwards is
// discarded: no redirect fires and no state changes apply.
func (g *Gate) Unmount() {
	g.mu.Lock()
	g.unmounted = true
	unsub := g.unsub
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// transition is the pure state machine step. It returns the next gate
// state and, for denials, the navigation target.
func transition(state State, class authz.Classification, cfg GateConfig) (GateState, string) {
	if state.Status == StatusLoading {
		return GateLoading, ""
	}

	switch authz.Evaluate(class, state.Claims) {
	case authz.Allow:
		return GateAllow, ""
	case authz.RedirectHome:
		return GateDeny, cfg.HomePath
	default:
		return GateDeny, authz.SignInRedirect(cfg.SignInPath, cfg.Path)
	}
}

// apply feeds a session state through the transition function. The
// redirect is a side effect of entering GateDeny, latched so repeated
// evaluation with unchanged inputs never issues a duplicate navigation.
// Re-entering GateLoading resets the latch so a later sign-out can deny
// again.
func (g *Gate) apply(state State) {
	g.mu.Lock()
	if g.unmounted {
		g.mu.Unlock()
		return
	}

	next, location := transition(state, g.class, g.cfg)
	if next == GateLoading {
		g.redirected = false
	}

	fire := next == GateDeny && !g.redirected
	if fire {
		g.redirected = true
	}
	g.state = next
	nav := g.nav
	g.mu.Unlock()

	if fire {
		log.Debug().
			Str("path", g.cfg.Path).
			Str("location", location).
			Msg("Client gate denied, navigating")
		nav.Navigate(location)
	}
}
