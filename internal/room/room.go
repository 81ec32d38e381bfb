// Package room implements the per-game real-time synchronization
// engine: one actor per active game session that owns the board,
// authenticates inbound actions, and broadcasts deltas to every
// connected channel.
package room

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"bingoroom/internal/board"
	"bingoroom/internal/identity"
	"bingoroom/internal/protocol"
)

// System chat sentinels broadcast on connect and disconnect. These are
// distinct from the attributed "<nickname> has joined/left." lines the
// join and leave actions produce.
const (
	noticeConnect    = "join"
	noticeDisconnect = "leave"
)

// Config holds a room's immutable metadata and policy knobs.
type Config struct {
	Name     string
	Game     string
	Slug     string
	Password string

	// RebroadcastNoops keeps the legacy behavior of emitting a
	// cellUpdate/chat pair even when a mark or unmark changed
	// nothing. When false, redundant actions are dropped instead.
	RebroadcastNoops bool

	// EventBuffer bounds the inbound event queue.
	EventBuffer int
}

// DefaultConfig returns the policy defaults for a new room.
func DefaultConfig(slug string) Config {
	return Config{
		Name:             slug,
		Slug:             slug,
		RebroadcastNoops: true,
		EventBuffer:      256,
	}
}

type eventKind int

const (
	eventAttach eventKind = iota
	eventDetach
	eventInbound
)

type event struct {
	kind eventKind
	ch   Channel
	data []byte
}

// Room owns one board and the set of channels connected to one game
// session. All state is mutated exclusively on the room's own
// goroutine; transports interact only through Attach, Detach and
// HandleMessage, which enqueue events.
type Room struct {
	cfg      Config
	board    *board.Board
	resolver identity.Resolver
	relay    Relay

	channels map[Channel]bool
	events   chan event
	stopped  chan struct{}

	channelCount atomic.Int64
}

// New creates a room with a default board. relay may be nil.
func New(cfg Config, resolver identity.Resolver, relay Relay) *Room {
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 256
	}
	return &Room{
		cfg:      cfg,
		board:    board.NewDefault(),
		resolver: resolver,
		relay:    relay,
		channels: make(map[Channel]bool),
		events:   make(chan event, cfg.EventBuffer),
		stopped:  make(chan struct{}),
	}
}

// Slug returns the room's routing key.
func (r *Room) Slug() string {
	return r.cfg.Slug
}

// ChannelCount reports how many channels are currently attached. Safe
// to call from any goroutine.
func (r *Room) ChannelCount() int {
	return int(r.channelCount.Load())
}

// Attach registers a channel with the room.
func (r *Room) Attach(ch Channel) {
	r.post(event{kind: eventAttach, ch: ch})
}

// Detach removes a channel. The transport calls this on any close,
// whether from an explicit leave or an abrupt disconnect.
func (r *Room) Detach(ch Channel) {
	r.post(event{kind: eventDetach, ch: ch})
}

// HandleMessage enqueues one raw inbound frame from a channel.
func (r *Room) HandleMessage(ch Channel, data []byte) {
	r.post(event{kind: eventInbound, ch: ch, data: data})
}

func (r *Room) post(ev event) {
	select {
	case r.events <- ev:
	case <-r.stopped:
	}
}

// Run processes events until ctx is cancelled. Board mutations and
// channel-set changes happen only here, one event at a time, so no two
// actions against the same board can interleave.
func (r *Room) Run(ctx context.Context) {
	log.Info().Str("slug", r.cfg.Slug).Msg("room started")
	defer close(r.stopped)

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			return
		case ev := <-r.events:
			switch ev.kind {
			case eventAttach:
				r.attach(ev.ch)
			case eventDetach:
				r.detach(ev.ch)
			case eventInbound:
				outcome := r.process(ev.ch, ev.data)
				if !outcome.Applied {
					log.Debug().
						Str("slug", r.cfg.Slug).
						Str("reason", string(outcome.Reason)).
						Msg("action dropped")
				}
			}
		}
	}
}

func (r *Room) attach(ch Channel) {
	r.channels[ch] = true
	r.channelCount.Store(int64(len(r.channels)))
	r.broadcast(protocol.NewChat(noticeConnect))

	log.Debug().
		Str("slug", r.cfg.Slug).
		Int("channels", len(r.channels)).
		Msg("channel attached")
}

func (r *Room) detach(ch Channel) {
	if !r.channels[ch] {
		return
	}
	delete(r.channels, ch)
	r.channelCount.Store(int64(len(r.channels)))
	r.broadcast(protocol.NewChat(noticeDisconnect))

	log.Debug().
		Str("slug", r.cfg.Slug).
		Int("channels", len(r.channels)).
		Msg("channel detached")
}

func (r *Room) shutdown() {
	r.broadcast(protocol.NewChat(noticeDisconnect))
	log.Info().Str("slug", r.cfg.Slug).Msg("room stopped")
}

// process decodes, authenticates and dispatches one inbound frame.
// Every failure collapses to a silent drop: no broadcast, no board
// mutation, nothing sent back to the sender.
func (r *Room) process(ch Channel, data []byte) Outcome {
	if !r.channels[ch] {
		return dropped(DropStaleChannel)
	}

	action, err := protocol.DecodeAction(data)
	if err != nil {
		return dropped(DropDecodeFailed)
	}

	id, err := r.resolver.Resolve(action.AuthToken)
	if err != nil {
		return dropped(DropInvalidToken)
	}

	switch action.Kind {
	case protocol.ActionJoin:
		return r.handleJoin(ch, id)
	case protocol.ActionLeave:
		return r.handleLeave(ch, id)
	case protocol.ActionMark:
		return r.handleMark(action, id)
	case protocol.ActionUnmark:
		return r.handleUnmark(action, id)
	case protocol.ActionChat:
		return r.handleChat(action)
	default:
		return dropped(DropDecodeFailed)
	}
}

func (r *Room) handleJoin(ch Channel, id identity.Identity) Outcome {
	sync := protocol.NewSyncBoard(r.board.Snapshot())
	r.sendTo(ch, sync)
	r.broadcast(protocol.NewChat(fmt.Sprintf("%s has joined.", id.Nickname)))
	return applied()
}

func (r *Room) handleLeave(ch Channel, id identity.Identity) Outcome {
	r.broadcast(protocol.NewChat(fmt.Sprintf("%s has left.", id.Nickname)))
	ch.Close()
	return applied()
}

func (r *Room) handleMark(action *protocol.Action, id identity.Identity) Outcome {
	if !action.HasCoordinates() {
		return dropped(DropMissingCoordinates)
	}
	row, col := *action.Payload.Row, *action.Payload.Col

	changed, err := r.board.Mark(row, col, id.Color)
	if err != nil {
		return dropped(DropOutOfRange)
	}
	if !changed && !r.cfg.RebroadcastNoops {
		return dropped(DropRedundant)
	}

	cell, err := r.board.CellAt(row, col)
	if err != nil {
		return dropped(DropOutOfRange)
	}
	r.broadcast(protocol.NewCellUpdate(row, col, cell))
	r.broadcast(protocol.NewChat(fmt.Sprintf("%s is marking (%d,%d)", id.Nickname, row, col)))
	return applied()
}

func (r *Room) handleUnmark(action *protocol.Action, id identity.Identity) Outcome {
	if !action.HasCoordinates() {
		return dropped(DropMissingCoordinates)
	}
	row, col := *action.Payload.Row, *action.Payload.Col

	changed, err := r.board.Unmark(row, col, id.Color)
	if err != nil {
		return dropped(DropOutOfRange)
	}
	if !changed && !r.cfg.RebroadcastNoops {
		return dropped(DropRedundant)
	}

	cell, err := r.board.CellAt(row, col)
	if err != nil {
		return dropped(DropOutOfRange)
	}
	r.broadcast(protocol.NewCellUpdate(row, col, cell))
	r.broadcast(protocol.NewChat(fmt.Sprintf("%s is unmarking (%d,%d)", id.Nickname, row, col)))
	return applied()
}

func (r *Room) handleChat(action *protocol.Action) Outcome {
	var message string
	if action.Payload != nil {
		message = action.Payload.Message
	}
	r.broadcast(protocol.NewChat(message))
	return applied()
}

// sendTo delivers a message to a single channel.
func (r *Room) sendTo(ch Channel, msg *protocol.ServerMessage) {
	data, err := msg.Encode()
	if err != nil {
		log.Error().Err(err).Str("slug", r.cfg.Slug).Msg("failed to encode message")
		return
	}
	if ch.Open() {
		ch.Send(data)
	}
}

// broadcast delivers a message to every open channel, then hands it to
// the relay. Delivery is fire-and-forget; channels that are closing
// are skipped without error.
func (r *Room) broadcast(msg *protocol.ServerMessage) {
	data, err := msg.Encode()
	if err != nil {
		log.Error().Err(err).Str("slug", r.cfg.Slug).Msg("failed to encode broadcast")
		return
	}

	for ch := range r.channels {
		if ch.Open() {
			ch.Send(data)
		}
	}

	if r.relay != nil {
		r.relay.Publish(r.cfg.Slug, msg)
	}
}
