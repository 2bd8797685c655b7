package verify

import (
	"context"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(codeSentProvider("vid-1", "rst-1"), acceptingStore("u123"), ManagerOptions{
		IdleTTL:       time.Hour,
		sweepInterval: time.Hour,
	})
	t.Cleanup(m.Shutdown)
	return m
}

func TestManagerBeginGetRemove(t *testing.T) {
	m := newTestManager(t)

	id, flow := m.Begin()
	if id == "" || flow == nil {
		t.Fatalf("begin returned empty flow")
	}
	if flow.State() != StateEnterPhone {
		t.Fatalf("new flow must start at enter_phone, got %s", flow.State())
	}

	if got := m.Get(id); got != flow {
		t.Fatalf("get returned a different flow")
	}
	if got := m.Get("missing"); got != nil {
		t.Fatalf("expected nil for unknown flow id")
	}

	m.Remove(id)
	if got := m.Get(id); got != nil {
		t.Fatalf("expected nil after remove")
	}
}

func TestManagerSweepEvictsIdleFlows(t *testing.T) {
	m := newTestManager(t)

	idleID, _ := m.Begin()
	activeID, active := m.Begin()

	// Mark the cutoff after both flows exist, then touch only one of them.
	time.Sleep(2 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(2 * time.Millisecond)
	if _, err := active.SubmitPhoneNumber(context.Background(), "+15550001111"); err != nil {
		t.Fatalf("submit phone: %v", err)
	}

	m.sweep(cutoff)

	if m.Get(idleID) != nil {
		t.Fatalf("idle flow should have been evicted")
	}
	if m.Get(activeID) == nil {
		t.Fatalf("active flow must survive the sweep")
	}
}

func TestManagerShutdownDropsFlows(t *testing.T) {
	m := NewManager(codeSentProvider("vid-1", "rst-1"), acceptingStore("u123"), ManagerOptions{
		IdleTTL:       time.Hour,
		sweepInterval: time.Hour,
	})

	id, _ := m.Begin()
	m.Shutdown()

	if m.Get(id) != nil {
		t.Fatalf("expected flows dropped after shutdown")
	}
}
