// Package feed relays room broadcasts onto NATS JetStream so other
// services (persistence, audit, dashboards) can follow room activity
// without holding a WebSocket open.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"bingoroom/internal/protocol"
	"bingoroom/internal/room"
)

var _ room.Relay = (*Publisher)(nil)

// Config holds JetStream connection settings.
type Config struct {
	URL           string
	StreamName    string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConfig returns default relay settings.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		StreamName:    "BINGO_ROOMS",
		SubjectPrefix: "bingo.rooms",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// Event is the envelope published for every room broadcast.
type Event struct {
	Slug       string                  `json:"slug"`
	Kind       protocol.MessageKind    `json:"kind"`
	Message    *protocol.ServerMessage `json:"message"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// Publisher relays room broadcasts to JetStream. Publishing is
// asynchronous and best-effort so the room loop never blocks on NATS.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config
}

// NewPublisher connects to NATS and ensures the room activity stream
// exists.
func NewPublisher(config Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &Publisher{nc: nc, js: js, config: config}
	if err := p.ensureStream(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return p, nil
}

func (p *Publisher) ensureStream(ctx context.Context) error {
	_, err := p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      p.config.StreamName,
		Subjects:  []string{p.config.SubjectPrefix + ".>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	return err
}

// Publish relays one room broadcast. Implements room.Relay.
func (p *Publisher) Publish(slug string, msg *protocol.ServerMessage) {
	event := Event{
		Slug:       slug,
		Kind:       msg.Kind,
		Message:    msg,
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("slug", slug).Msg("failed to marshal feed event")
		return
	}

	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, slug)
	if _, err := p.js.PublishAsync(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("failed to publish feed event")
	}
}

// Close drains the connection, giving in-flight publishes a moment to
// land.
func (p *Publisher) Close() {
	select {
	case <-p.js.PublishAsyncComplete():
	case <-time.After(2 * time.Second):
		log.Warn().Msg("timed out waiting for pending feed publishes")
	}
	p.nc.Close()
}
