/*
Package verify implements the phone-verification flow.

This file defines the Manager, the registry of all in-flight login attempts.
It creates flows, hands them out by opaque flow ID, and runs a janitor loop
that evicts flows left idle past their TTL.
*/
package verify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chatterbox/internal/pkg/logx"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Flow is applied to every flow the manager creates.
	Flow Options

	// IdleTTL is how long a flow may go untouched before eviction. Zero means
	// DefaultIdleTTL.
	IdleTTL time.Duration

	// sweepInterval overrides the janitor period in tests.
	sweepInterval time.Duration
}

// Manager coordinates all active verification flows, keyed by flow ID.
type Manager struct {
	provider Provider
	ids      IdentityStore
	opts     Options
	idleTTL  time.Duration

	// mu protects concurrent access to the flows map.
	mu    sync.RWMutex
	flows map[string]*Flow

	done chan struct{}
	wg   sync.WaitGroup

	logger zerolog.Logger
}

// NewManager constructs a Manager and starts its janitor goroutine.
func NewManager(provider Provider, ids IdentityStore, opts ManagerOptions) *Manager {
	idleTTL := opts.IdleTTL
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}

	sweep := opts.sweepInterval
	if sweep <= 0 {
		sweep = time.Minute
	}

	m := &Manager{
		provider: provider,
		ids:      ids,
		opts:     opts.Flow,
		idleTTL:  idleTTL,
		flows:    make(map[string]*Flow),
		done:     make(chan struct{}),
		logger:   logx.Logger().With().Str("component", "VerifyManager").Logger(),
	}

	m.wg.Add(1)
	go m.runJanitor(sweep)

	return m
}

// Begin creates a new flow in StateEnterPhone, registers it, and returns its
// opaque flow ID.
func (m *Manager) Begin() (string, *Flow) {
	id := uuid.New().String()
	flow := NewFlow(m.provider, m.ids, m.opts)

	m.mu.Lock()
	m.flows[id] = flow
	m.mu.Unlock()

	m.logger.Info().Str("flow_id", id).Msg("Verification flow started.")
	return id, flow
}

// Get retrieves a flow by its ID, or nil if it does not exist (never created,
// evicted, or removed).
func (m *Manager) Get(id string) *Flow {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flows[id]
}

// Remove drops a flow from the registry. Called once a login attempt has
// completed or been abandoned.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.flows[id]; ok {
		delete(m.flows, id)
		m.logger.Info().Str("flow_id", id).Msg("Verification flow removed.")
	}
}

// Len returns the number of active flows.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.flows)
}

// Shutdown stops the janitor goroutine and drops all remaining flows.
func (m *Manager) Shutdown() {
	m.logger.Info().Msg("Shutting down verification flow manager...")

	close(m.done)
	m.wg.Wait()

	m.mu.Lock()
	count := len(m.flows)
	m.flows = make(map[string]*Flow)
	m.mu.Unlock()

	m.logger.Info().Int("dropped_flows", count).Msg("Verification flow manager stopped.")
}

// runJanitor periodically evicts flows that have been idle past the TTL.
func (m *Manager) runJanitor(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep(time.Now().Add(-m.idleTTL))
		}
	}
}

// sweep removes every flow idle since the cutoff.
func (m *Manager) sweep(cutoff time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id, flow := range m.flows {
		if flow.idleSince(cutoff) {
			delete(m.flows, id)
			count++
		}
	}

	if count > 0 {
		m.logger.Info().Int("evicted", count).Int("remaining", len(m.flows)).Msg("Evicted idle verification flows.")
	}
}
