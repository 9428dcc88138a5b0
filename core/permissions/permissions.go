// Package permissions defines the all-or-nothing capability gate consumed by
// the workflow orchestrator.
package permissions

import "context"

// Gate reports and requests authorization for every device capability a
// workflow needs. From the orchestrator's point of view a gate is
// all-or-nothing: RequestAll never partially grants silently.
type Gate interface {
	// AllGranted reports whether every required capability is currently
	// authorized.
	AllGranted() bool
	// RequestAll asks for every missing capability in a single round-trip
	// and reports whether all of them ended up granted.
	RequestAll(ctx context.Context) (bool, error)
}

// Capability is one individually authorizable device capability, e.g. audio
// capture or speech recognition.
type Capability interface {
	Authorized() bool
	Request(ctx context.Context) (bool, error)
}

// CapabilityGate aggregates capabilities into a single all-or-nothing gate.
type CapabilityGate struct {
	capabilities []Capability
}

// NewCapabilityGate creates a gate over the provided capabilities. A gate
// with no capabilities is always granted.
func NewCapabilityGate(capabilities ...Capability) *CapabilityGate {
	return &CapabilityGate{capabilities: capabilities}
}

func (g *CapabilityGate) AllGranted() bool {
	for _, capability := range g.capabilities {
		if !capability.Authorized() {
			return false
		}
	}
	return true
}

func (g *CapabilityGate) RequestAll(ctx context.Context) (bool, error) {
	allGranted := true
	for _, capability := range g.capabilities {
		if capability.Authorized() {
			continue
		}

		granted, err := capability.Request(ctx)
		if err != nil {
			return false, err
		}
		if !granted {
			allGranted = false
		}
	}
	return allGranted, nil
}

// StaticGate answers with a fixed decision. Useful for wiring environments
// where authorization is managed out of band, and for tests.
type StaticGate struct {
	granted bool
}

func NewStaticGate(granted bool) *StaticGate { return &StaticGate{granted: granted} }

func (g *StaticGate) AllGranted() bool { return g.granted }

func (g *StaticGate) RequestAll(context.Context) (bool, error) { return g.granted, nil }
