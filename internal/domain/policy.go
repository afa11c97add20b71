package domain

import (
	"encoding/json"
	"time"
)

// WindowNever is the sentinel stored for tenants whose payment proofs never
// expire.
const WindowNever = int64(-1)

// Destination is a fixed payment target configured per referrer.
type Destination struct {
	Account string  `json:"account"`
	Tag     *uint32 `json:"tag,omitempty"`
}

// ReturnURLRule maps a payload origin page to post-sign redirect targets.
// Rules are ordered; the first matching From wins.
type ReturnURLRule struct {
	From   string `json:"from"`
	AppURL string `json:"app_url"`
	WebURL string `json:"web_url"`
}

// OriginPolicy is one tenant application's configuration. At most one policy
// exists per (origin, application) pair.
type OriginPolicy struct {
	ApplicationID  string
	Origin         string
	AllowedOrigins []string

	// Destinations and FixedAmounts are keyed by referrer, with "*" as
	// wildcard. FixedAmounts values keep the wire form of amounts.
	Destinations map[string]Destination
	FixedAmounts map[string]json.RawMessage

	// ValidationWindows is keyed by exact referrer, origin+"/*" or "*".
	// Values are milliseconds; WindowNever means proofs never expire.
	ValidationWindows map[string]int64

	ReturnURLs []ReturnURLRule

	APIKey        string
	APISecret     string
	WebhookSecret string
}

// ValidationWindow is the resolved acceptance window for a payment proof.
type ValidationWindow struct {
	Never bool
	TTL   time.Duration
}

// ResolveWindow resolves the acceptance window for a referrer.
// Precedence, first match wins: exact referrer, origin+"/*", global "*".
// ok=false means the tenant has no window configured at all, which callers
// must report as a configuration gap rather than an expired proof.
func (p *OriginPolicy) ResolveWindow(referrer string) (ValidationWindow, bool) {
	if len(p.ValidationWindows) == 0 {
		return ValidationWindow{}, false
	}
	for _, key := range []string{referrer, p.Origin + "/*", "*"} {
		if key == "" {
			continue
		}
		if ms, ok := p.ValidationWindows[key]; ok {
			if ms == WindowNever {
				return ValidationWindow{Never: true}, true
			}
			return ValidationWindow{TTL: time.Duration(ms) * time.Millisecond}, true
		}
	}
	return ValidationWindow{}, false
}

// ResolveDestination returns the fixed destination for a referrer, falling
// back to the wildcard entry.
func (p *OriginPolicy) ResolveDestination(referrer string) (Destination, bool) {
	if dest, ok := p.Destinations[referrer]; ok {
		return dest, true
	}
	dest, ok := p.Destinations["*"]
	return dest, ok
}

// ResolveFixedAmount returns the amount override for a referrer, falling back
// to the wildcard entry.
func (p *OriginPolicy) ResolveFixedAmount(referrer string) (json.RawMessage, bool) {
	if amt, ok := p.FixedAmounts[referrer]; ok {
		return amt, true
	}
	amt, ok := p.FixedAmounts["*"]
	return amt, ok
}

// ResolveReturnURL walks the ordered rules and returns the first match.
func (p *OriginPolicy) ResolveReturnURL(from string) (ReturnURLRule, bool) {
	for _, rule := range p.ReturnURLs {
		if rule.From == from {
			return rule, true
		}
	}
	return ReturnURLRule{}, false
}

// OriginAllowed reports whether a caller origin is listed for this tenant.
func (p *OriginPolicy) OriginAllowed(origin string) bool {
	for _, allowed := range p.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

// WithinWindow reports whether a proof resolved at resolvedAt is still
// acceptable at now. A missing or unparseable timestamp counts as expired.
func WithinWindow(resolvedAt string, window ValidationWindow, now time.Time) bool {
	if window.Never {
		return true
	}
	if resolvedAt == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339, resolvedAt)
	if err != nil {
		return false
	}
	return !now.After(ts.Add(window.TTL))
}
