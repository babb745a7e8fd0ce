// ABOUTME: Route gate deciding which screen a navigation request may render
// ABOUTME: Default-deny: protected and unknown paths redirect to login without a token

package route

// Known paths
const (
	Login     = "/login"
	Register  = "/register"
	Dashboard = "/dashboard"
)

// TokenReader is the part of the session store the gate needs
type TokenReader interface {
	Token() (string, bool)
}

// Decision is the outcome of resolving a path
type Decision struct {
	Path     string // path to render
	Redirect bool   // true when Path differs from the requested path
}

// Gate resolves navigation requests against the session
type Gate struct {
	tokens TokenReader
}

// New creates a gate over the given token reader
func New(tokens TokenReader) *Gate {
	return &Gate{tokens: tokens}
}

// Resolve decides what to render for path. It only checks that a token is
// present; validity is left to the backend.
func (g *Gate) Resolve(path string) Decision {
	switch path {
	case Login, Register:
		return Decision{Path: path}
	case Dashboard:
		if _, ok := g.tokens.Token(); ok {
			return Decision{Path: Dashboard}
		}
	}
	return Decision{Path: Login, Redirect: true}
}
