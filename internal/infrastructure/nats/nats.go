package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"file-share-api/config"
	"file-share-api/internal/domain/file"
)

const bufferSize = 128

// Publisher ships file events to a JetStream stream.
type Publisher struct {
	cfg      config.NATS
	log      *zap.Logger
	mCounter *prometheus.CounterVec
	conn     *nats.Conn
	js       nats.JetStreamContext
	in       chan file.Event
}

func New(cfg config.NATS, logger *zap.Logger, mCounter *prometheus.CounterVec) *Publisher {
	return &Publisher{
		cfg:      cfg,
		log:      logger,
		mCounter: mCounter,
		in:       make(chan file.Event, bufferSize),
	}
}

func (p *Publisher) Connect() error {
	conn, err := nats.Connect(p.cfg.URL,
		nats.Name("file-share-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			p.log.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			p.log.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return fmt.Errorf("nats jetstream: %w", err)
	}
	p.conn, p.js = conn, js

	p.log.Info("nats connected successfully")

	return nil
}

// Init makes sure the stream for file events exists.
func (p *Publisher) Init() error {
	if _, err := p.js.StreamInfo(p.cfg.Stream); err == nil {
		return nil
	}

	_, err := p.js.AddStream(&nats.StreamConfig{
		Name:     p.cfg.Stream,
		Subjects: []string{p.cfg.Subject + ".*"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	if err != nil {
		return fmt.Errorf("nats add stream %s: %w", p.cfg.Stream, err)
	}

	return nil
}

func (p *Publisher) Publish(e file.Event) {
	select {
	case p.in <- e:
	default:
		p.log.Warn("nats buffer full, event dropped",
			zap.String("event_action", e.Action),
			zap.Stringer("file_id", e.FileID),
		)
		if p.mCounter != nil {
			p.mCounter.WithLabelValues("event_dropped_total").Inc()
		}
	}
}

func (p *Publisher) PublisherWorker(ctx context.Context) {
	p.log.Info("starting nats publisher worker")

	defer func() {
		p.log.Info("nats publisher worker gracefully stopped")
	}()

	for {
		select {
		case e := <-p.in:
			if err := p.publish(ctx, e); err != nil {
				p.log.Error("nats publish error", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *Publisher) publish(ctx context.Context, e file.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	// the event id doubles as the JetStream dedup key
	_, err = p.js.Publish(Subject(p.cfg.Subject, e.Action), b, nats.MsgId(e.ID.String()), nats.Context(ctx))
	return err
}

// Subject maps "file.uploaded" to "<prefix>.uploaded".
func Subject(prefix, action string) string {
	return prefix + "." + strings.TrimPrefix(action, "file.")
}

func (p *Publisher) Close() error {
	if p.conn != nil {
		return p.conn.Drain()
	}
	return nil
}
