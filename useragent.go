package doctools

import "math/rand/v2"

// UserAgentSource supplies the User-Agent header for each download attempt.
type UserAgentSource interface {
	UserAgent() string
}

// DefaultUserAgents is a pool of current desktop browser identities.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:131.0) Gecko/20100101 Firefox/131.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.6; rv:131.0) Gecko/20100101 Firefox/131.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36 Edg/129.0.0.0",
}

// RandomUserAgents picks uniformly from its entries on every call.
// An empty pool falls back to DefaultUserAgents.
type RandomUserAgents []string

// UserAgent returns a random entry. Safe for concurrent use.
func (p RandomUserAgents) UserAgent() string {
	pool := p
	if len(pool) == 0 {
		pool = DefaultUserAgents
	}
	return pool[rand.IntN(len(pool))]
}

// StaticUserAgent always returns the same value.
type StaticUserAgent string

// UserAgent returns s.
func (s StaticUserAgent) UserAgent() string { return string(s) }

// Compile-time interface checks.
var (
	_ UserAgentSource = RandomUserAgents(nil)
	_ UserAgentSource = StaticUserAgent("")
)
