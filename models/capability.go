package models

// Capability flags are resolved from platform role membership before a request
// reaches the core. The core never inspects role objects, only these flags.
type Capability string

const (
	CapabilityAdmin     Capability = "admin"
	CapabilityOverwatch Capability = "overwatch"
	CapabilityStaff     Capability = "staff"
)

// Actor identifies who triggered a state-changing operation.
type Actor struct {
	UserID       int64
	Capabilities CapabilitySet
}

type CapabilitySet map[Capability]bool

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// IsStaff reports whether the actor may run staff-gated operations:
// admins, overwatch and tournament staff all qualify.
func (s CapabilitySet) IsStaff() bool {
	return s.Has(CapabilityAdmin) || s.Has(CapabilityOverwatch) || s.Has(CapabilityStaff)
}
