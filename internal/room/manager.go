package room

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"bingoroom/internal/identity"
)

// Metadata is what the manager needs to know about a game to open its
// room. It comes from the games store when one is configured.
type Metadata struct {
	Name     string
	Game     string
	Password string
}

// MetadataSource looks up game metadata by slug. A miss is not an
// error: rooms can be opened for slugs with no stored game.
type MetadataSource interface {
	RoomMetadata(ctx context.Context, slug string) (Metadata, bool)
}

// ManagerConfig holds registry-level settings.
type ManagerConfig struct {
	// RebroadcastNoops is applied to every room the manager opens.
	RebroadcastNoops bool

	// IdleTTL is how long a room may sit with zero channels before
	// the reaper shuts it down. Zero disables reaping.
	IdleTTL time.Duration

	// ReapInterval is how often the reaper scans. Defaults to one
	// minute when IdleTTL is set.
	ReapInterval time.Duration
}

// DefaultManagerConfig returns registry defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		RebroadcastNoops: true,
		IdleTTL:          30 * time.Minute,
		ReapInterval:     time.Minute,
	}
}

type managedRoom struct {
	room      *Room
	cancel    context.CancelFunc
	idleSince time.Time
}

// Manager routes slugs to live rooms, opening them on demand. Rooms
// are fully independent; the manager holds only the registry.
type Manager struct {
	cfg      ManagerConfig
	resolver identity.Resolver
	relay    Relay
	source   MetadataSource
	clock    clockwork.Clock

	mu    sync.Mutex
	rooms map[string]*managedRoom
}

// NewManager creates a room registry. relay and source may be nil.
func NewManager(cfg ManagerConfig, resolver identity.Resolver, relay Relay, source MetadataSource, clock clockwork.Clock) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.IdleTTL > 0 && cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}
	return &Manager{
		cfg:      cfg,
		resolver: resolver,
		relay:    relay,
		source:   source,
		clock:    clock,
		rooms:    make(map[string]*managedRoom),
	}
}

// GetOrCreate returns the live room for slug, opening one if needed.
// The same *Room is returned for every call with the same slug until
// the room is reaped or shut down.
func (m *Manager) GetOrCreate(ctx context.Context, slug string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if mr, ok := m.rooms[slug]; ok {
		return mr.room
	}

	cfg := DefaultConfig(slug)
	cfg.RebroadcastNoops = m.cfg.RebroadcastNoops
	if m.source != nil {
		if meta, ok := m.source.RoomMetadata(ctx, slug); ok {
			cfg.Name = meta.Name
			cfg.Game = meta.Game
			cfg.Password = meta.Password
		}
	}

	r := New(cfg, m.resolver, m.relay)
	roomCtx, cancel := context.WithCancel(context.Background())
	go r.Run(roomCtx)

	m.rooms[slug] = &managedRoom{
		room:      r,
		cancel:    cancel,
		idleSince: m.clock.Now(),
	}

	log.Info().Str("slug", slug).Int("rooms", len(m.rooms)).Msg("room opened")
	return r
}

// Shutdown stops the room for slug, if any.
func (m *Manager) Shutdown(slug string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownLocked(slug)
}

func (m *Manager) shutdownLocked(slug string) {
	mr, ok := m.rooms[slug]
	if !ok {
		return
	}
	mr.cancel()
	delete(m.rooms, slug)
	log.Info().Str("slug", slug).Int("rooms", len(m.rooms)).Msg("room closed")
}

// ShutdownAll stops every live room.
func (m *Manager) ShutdownAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for slug := range m.rooms {
		m.shutdownLocked(slug)
	}
}

// Stats reports channel counts per live room. Used by the transport's
// stats endpoint.
func (m *Manager) Stats() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make(map[string]int, len(m.rooms))
	for slug, mr := range m.rooms {
		stats[slug] = mr.room.ChannelCount()
	}
	return stats
}

// RunReaper periodically shuts down rooms that have had zero channels
// for longer than IdleTTL. Blocks until ctx is cancelled.
func (m *Manager) RunReaper(ctx context.Context) {
	if m.cfg.IdleTTL <= 0 {
		return
	}

	ticker := m.clock.NewTicker(m.cfg.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.reap()
		}
	}
}

func (m *Manager) reap() {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for slug, mr := range m.rooms {
		if mr.room.ChannelCount() > 0 {
			mr.idleSince = now
			continue
		}
		if now.Sub(mr.idleSince) >= m.cfg.IdleTTL {
			log.Info().Str("slug", slug).Msg("reaping idle room")
			m.shutdownLocked(slug)
		}
	}
}
