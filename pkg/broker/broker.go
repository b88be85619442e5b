// Package broker implements the Message Broker (spec §4.E): a durable,
// ack'd work queue handing raw blocks from ingest to the publisher, and an
// ephemeral best-effort event bus fanning persisted records out to live
// subscribers. Both channels are namespaced so concurrent test runs and
// multi-tenant deployments never cross-talk.
//
// Grounded on the teacher's pkg/eventprocessor/eventfeed/impl/eventfeed.go
// for the retry-on-failure shape (publish failures retried with backoff,
// receive failures treated as fatal to the current subscription) and on
// go.mod's nats-io/nats.go — named in the pack's other example manifests
// (ClusterCockpit-cc-backend, absmach-magistrala, storj-storj,
// tomtom215-cartographus) as the durable-queue-plus-pubsub library of
// choice for systems with this exact split.
package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// Message is a pulled, not-yet-acknowledged block-queue entry (spec §4.E
// "receive_blocks_stream... each with payload() and ack()").
type Message interface {
	Payload() []byte
	Ack() error
	Nak() error
}

// Event is one delivery from the ephemeral event bus: the concrete subject
// it was published on (namespace stripped) plus its payload.
type Event struct {
	Subject string
	Payload []byte
}

// Broker is the contract surface named verbatim in spec §4.E.
type Broker interface {
	// Setup idempotently provisions the durable block stream.
	Setup(ctx context.Context) error

	// PublishBlock enqueues payload for height with a dedup id, so replaying
	// the same height within the dedup window is a no-op on the consumer
	// side (spec §4.E "deduplicate within a 1s window").
	PublishBlock(ctx context.Context, height int64, payload []byte) error

	// ReceiveBlocksStream pulls up to batchSize unacked messages at a time,
	// pushing them onto the returned channel until ctx is cancelled.
	ReceiveBlocksStream(ctx context.Context, batchSize int) (<-chan Message, error)

	// PublishEvent broadcasts payload to every live subscriber of topic;
	// best-effort, no persistence.
	PublishEvent(ctx context.Context, topic string, payload []byte) error

	// SubscribeToEvents returns a channel of Events matching topic (which
	// may contain NATS wildcards, e.g. "receipts.call.>"). Each Event
	// carries the concrete subject the message was actually published on,
	// since a wildcard subscription fans in many distinct subjects and the
	// live subscription engine must report which one a given frame came
	// from (spec §4.G). The subscription is torn down when ctx is
	// cancelled.
	SubscribeToEvents(ctx context.Context, topic string) (<-chan Event, error)

	// Flush blocks until every buffered publish has been acknowledged by
	// the server, used during graceful shutdown (spec §5).
	Flush(ctx context.Context) error

	// IsHealthy reports whether the underlying connection is usable.
	IsHealthy() bool

	// Close releases the underlying connection.
	Close()
}

// RetryAttempts and RetryBaseDelay drive the exponential backoff spec §
// "Failure semantics" mandates for publish failures (5 attempts,
// exponential): attempt i waits RetryBaseDelay * 2^i before retrying.
const (
	RetryAttempts  = 5
	RetryBaseDelay = 100 * time.Millisecond
)

// WithRetry runs op up to RetryAttempts times with exponential backoff,
// returning the last error if every attempt fails. Used by PublishBlock
// and PublishEvent implementations; receive-side failures are not retried
// here since spec §4.E treats them as fatal to the subscription instead.
func WithRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < RetryAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == RetryAttempts-1 {
			break
		}
		delay := RetryBaseDelay * (1 << uint(attempt))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// NATS implements Broker over a single NATS connection with JetStream for
// the durable block queue and core NATS pub/sub for the ephemeral event
// bus (spec §4.E's two-channel split maps directly onto NATS's two
// delivery models).
type NATS struct {
	conn      *nats.Conn
	js        nats.JetStreamContext
	namespace string
	ackWait   time.Duration
}

var _ Broker = (*NATS)(nil)

// Config holds the connection parameters; AckWait defaults to 5s per spec
// §4.E if zero.
type Config struct {
	URL       string
	Namespace string
	AckWait   time.Duration
}

// Connect dials url and prepares a JetStream context; Setup must still be
// called before PublishBlock/ReceiveBlocksStream.
func Connect(cfg Config) (*NATS, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("fuel-indexer"))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBrokerConnection, err, "connecting to nats")
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, apperrors.Wrap(apperrors.KindBrokerSetup, err, "opening jetstream context")
	}
	ackWait := cfg.AckWait
	if ackWait <= 0 {
		ackWait = 5 * time.Second
	}
	return &NATS{conn: conn, js: js, namespace: cfg.Namespace, ackWait: ackWait}, nil
}

func (n *NATS) streamName() string  { return n.prefixed("block_importer") }
func (n *NATS) prefixed(s string) string {
	if n.namespace == "" {
		return s
	}
	return n.namespace + "." + s
}

// Setup idempotently creates the block_importer stream, scoped to this
// broker's namespace (spec §4.E "a single logical stream named
// <ns>.block_importer").
func (n *NATS) Setup(ctx context.Context) error {
	subj := n.streamName()
	_, err := n.js.StreamInfo(n.streamName())
	if err == nil {
		return nil
	}
	_, err = n.js.AddStream(&nats.StreamConfig{
		Name:     n.streamName(),
		Subjects: []string{subj},
		Storage:  nats.FileStorage,
		Retention: nats.WorkQueuePolicy,
		Duplicates: time.Second,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.KindBrokerSetup, err, "creating block stream")
	}
	return nil
}

// PublishBlock enqueues payload with a dedup id of "<ns>.block_<height>"
// (spec §4.E), retrying publish failures with exponential backoff.
func (n *NATS) PublishBlock(ctx context.Context, height int64, payload []byte) error {
	dedupID := n.prefixed(fmt.Sprintf("block_%d", height))
	return WithRetry(ctx, func() error {
		_, err := n.js.Publish(n.streamName(), payload, nats.MsgId(dedupID))
		if err != nil {
			return apperrors.Wrap(apperrors.KindBrokerPublishing, err, "publishing block")
		}
		return nil
	})
}

type natsMessage struct{ msg *nats.Msg }

func (m natsMessage) Payload() []byte { return m.msg.Data }
func (m natsMessage) Ack() error      { return m.msg.Ack() }
func (m natsMessage) Nak() error      { return m.msg.Nak() }

// ReceiveBlocksStream pulls from the durable block_importer consumer in
// batches, pushing each message onto the returned channel until ctx is
// cancelled. Competing consumers (multiple processes pulling the same
// durable name) share load, matching spec §4.E's work-queue semantics.
func (n *NATS) ReceiveBlocksStream(ctx context.Context, batchSize int) (<-chan Message, error) {
	sub, err := n.js.PullSubscribe(n.streamName(), n.prefixed("block_importer_consumer"),
		nats.AckWait(n.ackWait), nats.ManualAck())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindBrokerSubscription, err, "pull-subscribing to block stream")
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		defer func() { _ = sub.Unsubscribe() }()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			msgs, err := sub.Fetch(batchSize, nats.MaxWait(1*time.Second))
			if err != nil {
				if err == nats.ErrTimeout || err == context.DeadlineExceeded {
					continue
				}
				return
			}
			for _, m := range msgs {
				select {
				case out <- natsMessage{m}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// PublishEvent broadcasts payload on topic, prefixed with this broker's
// namespace, over core NATS (no persistence — spec §4.E's ephemeral
// event bus).
func (n *NATS) PublishEvent(ctx context.Context, topic string, payload []byte) error {
	return WithRetry(ctx, func() error {
		if err := n.conn.Publish(n.prefixed(topic), payload); err != nil {
			return apperrors.Wrap(apperrors.KindBrokerPublishing, err, "publishing event")
		}
		return nil
	})
}

// SubscribeToEvents subscribes to topic (namespace-prefixed) and streams
// matching Events, subject unprefixed back to its caller-visible form,
// until ctx is cancelled.
func (n *NATS) SubscribeToEvents(ctx context.Context, topic string) (<-chan Event, error) {
	out := make(chan Event, 64)
	sub, err := n.conn.Subscribe(n.prefixed(topic), func(m *nats.Msg) {
		select {
		case out <- Event{Subject: n.unprefixed(m.Subject), Payload: m.Data}:
		default: // backpressure: drop rather than block the dispatcher (spec §4.G)
		}
	})
	if err != nil {
		close(out)
		return nil, apperrors.Wrap(apperrors.KindBrokerSubscription, err, "subscribing to events")
	}
	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
		close(out)
	}()
	return out, nil
}

func (n *NATS) unprefixed(s string) string {
	if n.namespace == "" {
		return s
	}
	prefix := n.namespace + "."
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// Flush blocks until every buffered publish is flushed to the server.
func (n *NATS) Flush(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := n.conn.FlushTimeout(time.Until(deadline)); err != nil {
			return apperrors.Wrap(apperrors.KindBrokerFlush, err, "flushing broker")
		}
		return nil
	}
	if err := n.conn.Flush(); err != nil {
		return apperrors.Wrap(apperrors.KindBrokerFlush, err, "flushing broker")
	}
	return nil
}

func (n *NATS) IsHealthy() bool { return n.conn.IsConnected() }

func (n *NATS) Close() {
	_ = n.Flush(context.Background())
	n.conn.Close()
}
