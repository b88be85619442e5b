// Package apikey implements the API-Key/Rate Limiter (spec §4.H): a
// per-key, in-process counter set gating how many live subscriptions a
// key may hold concurrently and how many requests it may issue per
// rolling 60-second window.
//
// Grounded on
// _examples/original_source/crates/web-utils/src/api_key/rate_limiter.rs.
package apikey

// Role is the closed set of API-key roles. Unlike most of this module's
// entity enums, this one is never widened by a variant the wire format
// doesn't know about — a key's role is assigned at provisioning time, not
// discovered from ingested data.
type Role string

const (
	Admin     Role = "admin"
	Builder   Role = "builder"
	WebClient Role = "web_client"
)

// limits is the original's exact cap table (SPEC_FULL.md §3), reproduced
// verbatim rather than re-derived: Admin is unlimited on both axes,
// Builder caps at 50 concurrent subscriptions and 1000 requests/minute,
// WebClient caps at 100 concurrent subscriptions and 1000 requests/minute.
type limits struct {
	maxSubscriptions uint64 // 0 means unlimited
	maxRequestsPerMin uint64
}

var roleLimits = map[Role]limits{
	Admin:     {maxSubscriptions: 0, maxRequestsPerMin: 0},
	Builder:   {maxSubscriptions: 50, maxRequestsPerMin: 1000},
	WebClient: {maxSubscriptions: 100, maxRequestsPerMin: 1000},
}

// limitsFor returns the role's cap table entry, defaulting unknown roles
// to WebClient's (the original's MockApiKeyRole setup does the same for
// an unrecognized role string).
func limitsFor(role Role) limits {
	if l, ok := roleLimits[role]; ok {
		return l
	}
	return roleLimits[WebClient]
}

func (l limits) validateSubscriptions(count uint64) bool {
	return l.maxSubscriptions == 0 || count <= l.maxSubscriptions
}

func (l limits) validateRequests(count uint64) bool {
	return l.maxRequestsPerMin == 0 || count <= l.maxRequestsPerMin
}
