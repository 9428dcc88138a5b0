package permissions

import (
	"context"
	"errors"
	"testing"
)

type capabilityStub struct {
	authorized bool
	grant      bool
	err        error

	requests int
}

func (c *capabilityStub) Authorized() bool { return c.authorized }

func (c *capabilityStub) Request(context.Context) (bool, error) {
	c.requests++
	if c.err != nil {
		return false, c.err
	}
	return c.grant, nil
}

func TestEmptyCapabilityGateIsAlwaysGranted(t *testing.T) {
	gate := NewCapabilityGate()

	if !gate.AllGranted() {
		t.Fatalf("expected empty gate to be granted")
	}

	granted, err := gate.RequestAll(context.Background())
	if err != nil || !granted {
		t.Fatalf("expected empty gate request to grant, got granted=%v err=%v", granted, err)
	}
}

func TestRequestAllOnlyAsksForMissingCapabilities(t *testing.T) {
	authorized := &capabilityStub{authorized: true}
	missing := &capabilityStub{grant: true}
	gate := NewCapabilityGate(authorized, missing)

	if gate.AllGranted() {
		t.Fatalf("expected gate with a missing capability to not be granted")
	}

	granted, err := gate.RequestAll(context.Background())
	if err != nil || !granted {
		t.Fatalf("expected request to grant, got granted=%v err=%v", granted, err)
	}
	if authorized.requests != 0 {
		t.Fatalf("expected authorized capability to not be re-requested")
	}
	if missing.requests != 1 {
		t.Fatalf("expected missing capability requested once, got %d", missing.requests)
	}
}

func TestRequestAllReportsDenialWithoutError(t *testing.T) {
	gate := NewCapabilityGate(&capabilityStub{grant: false})

	granted, err := gate.RequestAll(context.Background())
	if err != nil {
		t.Fatalf("expected denial without error, got %v", err)
	}
	if granted {
		t.Fatalf("expected denial")
	}
}

func TestRequestAllSurfacesRequestErrors(t *testing.T) {
	requestErr := errors.New("prompt dismissed")
	gate := NewCapabilityGate(&capabilityStub{err: requestErr})

	granted, err := gate.RequestAll(context.Background())
	if !errors.Is(err, requestErr) {
		t.Fatalf("expected request error, got %v", err)
	}
	if granted {
		t.Fatalf("expected no grant on error")
	}
}

func TestStaticGateAnswersFixedDecision(t *testing.T) {
	granted := NewStaticGate(true)
	if !granted.AllGranted() {
		t.Fatalf("expected static granted gate")
	}

	denied := NewStaticGate(false)
	if decision, err := denied.RequestAll(context.Background()); err != nil || decision {
		t.Fatalf("expected static denial, got decision=%v err=%v", decision, err)
	}
}
