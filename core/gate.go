package workflow

import (
	"context"

	"github.com/voxloop/voxloop-core/core/permissions"
)

// permissionGate is the gate facade used to handle optional client wiring.
// An unconfigured gate grants everything: there is nothing to deny.
type permissionGate struct {
	gate permissions.Gate
}

func (g *permissionGate) set(gate permissions.Gate) {
	if g != nil {
		g.gate = gate
	}
}

func (g *permissionGate) isConfigured() bool {
	return g != nil && g.gate != nil
}

func (g *permissionGate) allGranted() bool {
	if !g.isConfigured() {
		return true
	}

	return g.gate.AllGranted()
}

func (g *permissionGate) requestAll(ctx context.Context) (bool, error) {
	if !g.isConfigured() {
		return true, nil
	}

	return g.gate.RequestAll(ctx)
}
