package domain

import "strings"

// OverridePolicy names the founder identities exempt from every limit and
// decay rule: trust decay, pending-match caps, onboarding gating, and circle
// entry/exit rules. It is an explicit value injected into each job and engine
// so tests can supply their own sets.
//
// The exemption is a policy layer applied wherever limits are checked; it is
// never folded into scoring math.
type OverridePolicy struct {
	emails map[string]struct{}
}

// NewOverridePolicy builds a policy from a list of exempt email addresses.
// Addresses are compared case-insensitively.
func NewOverridePolicy(emails []string) OverridePolicy {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return OverridePolicy{emails: set}
}

// Exempt reports whether the given email has override privileges.
func (p OverridePolicy) Exempt(email string) bool {
	if email == "" {
		return false
	}
	_, ok := p.emails[strings.ToLower(email)]
	return ok
}

// Len returns the number of exempt identities.
func (p OverridePolicy) Len() int {
	return len(p.emails)
}
