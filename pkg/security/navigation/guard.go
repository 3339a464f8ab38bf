// Package navigation decides which URLs the shared browser may be sent to.
package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// ErrBlocked is matched by errors.Is for every rejected URL.
var ErrBlocked = errors.New("navigation blocked")

// BlockedError reports a URL rejected by the guard.
type BlockedError struct {
	URL    string
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("navigation to %s blocked: %s", e.URL, e.Reason)
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}

// Guard matches URLs against glob patterns. Denied patterns take precedence;
// with no allowed patterns every URL not denied is allowed.
type Guard struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// NewGuard compiles the allowed and denied patterns.
func NewGuard(allowed, denied []string) (*Guard, error) {
	g := &Guard{}

	for _, pattern := range allowed {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		g.allowed = append(g.allowed, compiled)
	}

	for _, pattern := range denied {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		g.denied = append(g.denied, compiled)
	}

	return g, nil
}

// Check returns nil if the browser may navigate to rawURL.
func (g *Guard) Check(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return &BlockedError{URL: rawURL, Reason: fmt.Sprintf("invalid URL: %v", err)}
	}
	if u.Scheme == "" {
		return &BlockedError{URL: rawURL, Reason: "URL must be absolute"}
	}

	target := u.String()

	for _, pattern := range g.denied {
		if pattern.Match(target) {
			return &BlockedError{URL: rawURL, Reason: "matches a denied pattern"}
		}
	}

	if len(g.allowed) == 0 {
		return nil
	}

	for _, pattern := range g.allowed {
		if pattern.Match(target) {
			return nil
		}
	}

	return &BlockedError{URL: rawURL, Reason: "does not match any allowed pattern"}
}
