package domain

import "time"

// EngagementCounter tracks per-channel engagement totals for one contact.
// Missing CRM counters arrive as zeros; a zero counter is a valid state.
type EngagementCounter struct {
	Emails   int `json:"emails"`
	Meetings int `json:"meetings"`
	Calls    int `json:"calls"`
	Total    int `json:"total"`
}

// Sum returns the per-channel sum, falling back to Total when the CRM only
// supplied the aggregate counter.
func (e EngagementCounter) Sum() int {
	s := e.Emails + e.Meetings + e.Calls
	if s == 0 && e.Total > 0 {
		return e.Total
	}
	if e.Total > s {
		return e.Total
	}
	return s
}

// Contact is one stakeholder on a deal, as supplied by the CRM fetch layer.
// Immutable within a scoring pass.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Title string `json:"title"`

	// ExplicitRole is the CRM's buying-role property (hs_buying_role).
	// Empty or placeholder values mean "not set"; a real value is
	// authoritative and always wins over inference.
	ExplicitRole string `json:"explicit_role,omitempty"`

	// EffectiveRole is the normalized role computed once by the role
	// inference engine. It is the sole source of truth downstream; raw
	// role fields are never consulted again after inference.
	EffectiveRole Role `json:"effective_role,omitempty"`

	Engagement     EngagementCounter `json:"engagement"`
	LastEngagedAt  *time.Time        `json:"last_engaged_at,omitempty"`
	FirstEngagedAt *time.Time        `json:"first_engaged_at,omitempty"`

	// Notes carries free communication text used by language-pattern
	// inference. Optional; empty means no language signal.
	Notes string `json:"notes,omitempty"`
}

// Key returns the stable identifier used to match contacts across
// snapshots: the contact id, falling back to the email address.
func (c Contact) Key() string {
	if c.ID != "" {
		return c.ID
	}
	return c.Email
}

// Engaged reports whether the contact has any recorded engagement.
func (c Contact) Engaged() bool {
	return c.Engagement.Sum() > 0
}
