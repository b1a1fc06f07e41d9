package groundlink

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/enginewatch/enginewatch/internal/alerts"
)

const (
	defaultAlertTopic    = "ehm.alerts"
	defaultSnapshotTopic = "ehm.snapshots"
	defaultQueueSize     = 256

	// writeTimeout bounds one produce call, including the producer's own
	// internal retries.
	writeTimeout = 10 * time.Second
	// flushTimeout bounds the whole shutdown drain.
	flushTimeout = 2 * time.Second
)

// Config controls the downlink producer.
type Config struct {
	Brokers       []string
	AlertTopic    string
	SnapshotTopic string
	QueueSize     int
}

// Enabled reports whether a downlink is configured at all. An aircraft
// without a datalink fit runs with the link disabled.
func (c Config) Enabled() bool { return len(c.Brokers) > 0 }

// messageWriter is the slice of kafka.Writer the link needs. Tests swap in
// a capturing implementation.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Link queues alert events and snapshot digests for the ground station and
// ships them in the background.
type Link struct {
	alertTopic    string
	snapshotTopic string
	writer        messageWriter
	queue         chan kafka.Message
}

// New builds a Link producing to cfg.Brokers. Topics and queue size fall
// back to defaults when unset.
func New(cfg Config) *Link {
	if cfg.AlertTopic == "" {
		cfg.AlertTopic = defaultAlertTopic
	}
	if cfg.SnapshotTopic == "" {
		cfg.SnapshotTopic = defaultSnapshotTopic
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Link{
		alertTopic:    cfg.AlertTopic,
		snapshotTopic: cfg.SnapshotTopic,
		writer:        w,
		queue:         make(chan kafka.Message, cfg.QueueSize),
	}
}

// downlinkAlert is the wire shape of one alert event.
type downlinkAlert struct {
	Event   string     `json:"event"` // "alert" or "clear"
	ID      uint32     `json:"id"`
	Engine  int        `json:"engine"`
	Param   string     `json:"param"`
	Level   string     `json:"level"`
	Code    uint16     `json:"code"`
	Message string     `json:"message"`
	Value   float64    `json:"value"`
	Onset   time.Time  `json:"onset"`
	Cleared *time.Time `json:"cleared,omitempty"`
}

// Record queues one alert event for downlink. It implements
// alerts.Recorder and never blocks the caller.
func (l *Link) Record(a alerts.Alert) error {
	event := "alert"
	var cleared *time.Time
	if !a.Active {
		event = "clear"
		if !a.Cleared.IsZero() {
			t := a.Cleared.UTC()
			cleared = &t
		}
	}

	payload, err := json.Marshal(downlinkAlert{
		Event:   event,
		ID:      a.ID,
		Engine:  a.Engine.Number(),
		Param:   a.Param.String(),
		Level:   a.Level.String(),
		Code:    a.Code,
		Message: a.Message,
		Value:   a.Value,
		Onset:   a.Onset.UTC(),
		Cleared: cleared,
	})
	if err != nil {
		return err
	}

	// Key by engine so one engine's events stay ordered on a partition.
	l.enqueue(kafka.Message{
		Topic: l.alertTopic,
		Key:   []byte(strconv.Itoa(a.Engine.Number())),
		Value: payload,
		Time:  a.Onset,
	})
	return nil
}

// Summary is the per-engine digest included in a snapshot downlink.
type Summary struct {
	Engine      int       `json:"engine"`
	Health      string    `json:"health"`
	Phase       string    `json:"phase"`
	N1          float64   `json:"n1_pct"`
	EGT         float64   `json:"egt_c"`
	FuelFlow    float64   `json:"fuel_flow_kgh"`
	OilPressure float64   `json:"oil_pressure_psi"`
	Version     uint64    `json:"version"`
	SampledAt   time.Time `json:"sampled_at"`
}

// PublishSnapshot queues one digest message covering all engines.
func (l *Link) PublishSnapshot(at time.Time, engines []Summary) error {
	payload, err := json.Marshal(struct {
		GeneratedAt time.Time `json:"generated_at"`
		Engines     []Summary `json:"engines"`
	}{at.UTC(), engines})
	if err != nil {
		return err
	}

	l.enqueue(kafka.Message{
		Topic: l.snapshotTopic,
		Key:   []byte("snapshot"),
		Value: payload,
		Time:  at,
	})
	return nil
}

func (l *Link) enqueue(msg kafka.Message) {
	select {
	case l.queue <- msg:
	default:
		// Queue full: drop the oldest message, keep the newest.
		select {
		case <-l.queue:
			slog.Warn("groundlink: queue full, evicted oldest message", "queue_cap", cap(l.queue))
		default:
		}
		l.queue <- msg
	}
}

// Run ships queued messages until ctx is cancelled, then drains what it can
// and closes the producer. The producer retries transient broker failures
// itself; a message that still fails after that is dropped.
func (l *Link) Run(ctx context.Context) {
	defer l.writer.Close() //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			l.flush()
			return

		case msg := <-l.queue:
			l.send(ctx, msg)
		}
	}
}

func (l *Link) send(ctx context.Context, msg kafka.Message) {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := l.writer.WriteMessages(wctx, msg); err != nil {
		slog.Error("groundlink: downlink write failed, message dropped",
			"topic", msg.Topic, "err", err)
	}
}

func (l *Link) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for {
		select {
		case msg := <-l.queue:
			if err := l.writer.WriteMessages(ctx, msg); err != nil {
				slog.Warn("groundlink: dropped message at shutdown", "topic", msg.Topic, "err", err)
				return
			}
		default:
			return
		}
	}
}
