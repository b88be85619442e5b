package wsserver

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fuel-streams/fuel-indexer/pkg/apikey"
	"github.com/fuel-streams/fuel-indexer/pkg/domain"
	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// connection is one WebSocket client's state machine (spec §4.G). Every
// frame it sends is serialized through a single writer goroutine, since
// gorilla/websocket forbids concurrent writes on one *websocket.Conn.
type connection struct {
	engine *Engine
	ws     *websocket.Conn
	keyID  string
	role   apikey.Role
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	send chan []byte

	mu   sync.Mutex
	subs map[string]context.CancelFunc
	wg   sync.WaitGroup
}

func newConnection(e *Engine, ws *websocket.Conn, keyID string, role apikey.Role) *connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &connection{
		engine: e,
		ws:     ws,
		keyID:  keyID,
		role:   role,
		log:    e.log.With().Str("api_key", keyID).Logger(),
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan []byte, sendBufferSize),
		subs:   make(map[string]context.CancelFunc),
	}
}

// run drives the connection until its read loop ends, then tears down
// every live subscription before returning.
func (c *connection) run() {
	go c.writePump()
	go func() {
		<-c.ctx.Done()
		_ = c.ws.Close()
	}()

	c.readPump()
	c.shutdown()
}

func (c *connection) readPump() {
	c.ws.SetReadLimit(1 << 20)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendError(apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing frame"))
			continue
		}
		switch frame.Type {
		case frameSubscribe:
			c.handleSubscribe(frame.Wildcard, frame.DeliverPolicy)
		case frameUnsubscribe:
			c.handleUnsubscribe(frame.Wildcard)
		default:
			c.sendError(apperrors.New(apperrors.KindMalformedSubject, "unrecognized frame type: "+frame.Type))
		}
	}
}

func (c *connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// shutdown cancels every live subscription, waits for their goroutines to
// release their limiter slots, then closes the send channel and socket
// (spec §5's 30s shutdown drain applies at the process level in cmd/api;
// per-connection teardown here is immediate once the read loop ends).
func (c *connection) shutdown() {
	c.cancel()

	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.subs))
	for _, cancel := range c.subs {
		cancels = append(cancels, cancel)
	}
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}

	c.wg.Wait()
	close(c.send)
	_ = c.ws.Close()
}

// trySend enqueues data for the writer goroutine, closing the connection
// with a protocol violation if the buffer is full rather than let a slow
// client back up the event bus (spec §4.G "backpressure").
func (c *connection) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		c.log.Warn().Msg("send buffer full, closing connection")
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseProtocolError, "send buffer full"),
			time.Now().Add(time.Second))
		c.cancel()
		return false
	}
}

func (c *connection) sendJSON(v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Msg("marshaling frame")
		return false
	}
	return c.trySend(data)
}

func (c *connection) sendError(err error) {
	c.sendJSON(apperrors.WSFrame(err))
}

// releaseSub is the single place a subscription's limiter slot and metric
// are released. It's idempotent: whichever of (explicit unsubscribe,
// subscription goroutine exit, connection shutdown) reaches it first does
// the release, everyone after is a no-op, since the map entry is the
// source of truth.
func (c *connection) releaseSub(wildcard string) {
	c.mu.Lock()
	_, ok := c.subs[wildcard]
	delete(c.subs, wildcard)
	c.mu.Unlock()
	if !ok {
		return
	}
	c.engine.limits.RemoveActiveSub(c.keyID)
	if c.engine.metrics != nil {
		c.engine.metrics.ActiveSubscriptions.Add(context.Background(), -1)
	}
}

func (c *connection) handleSubscribe(wildcard string, policy *DeliverPolicy) {
	def, ok := c.engine.registry.MostSpecificMatch(wildcard)
	if !ok {
		c.sendError(apperrors.New(apperrors.KindMalformedSubject, "unrecognized wildcard: "+wildcard))
		return
	}

	resolved := DeliverPolicy{Kind: DeliverLatest}
	if policy != nil {
		resolved = *policy
	}

	c.mu.Lock()
	if _, exists := c.subs[wildcard]; exists {
		c.mu.Unlock()
		c.sendError(apperrors.New(apperrors.KindSubjectMismatch, "already subscribed to "+wildcard))
		return
	}
	c.mu.Unlock()

	if _, err := c.engine.limits.CheckSubscriptions(c.keyID, c.role); err != nil {
		if c.engine.metrics != nil {
			c.engine.metrics.RateLimitRejections.Add(context.Background(), 1)
		}
		c.sendError(err)
		return
	}

	subCtx, cancel := context.WithCancel(c.ctx)
	c.mu.Lock()
	c.subs[wildcard] = cancel
	c.mu.Unlock()

	c.engine.limits.AddActiveSub(c.keyID)
	if c.engine.metrics != nil {
		c.engine.metrics.ActiveSubscriptions.Add(context.Background(), 1)
	}

	if !c.sendJSON(subscribedFrame(wildcard, resolved)) {
		c.releaseSub(wildcard)
		cancel()
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.releaseSub(wildcard)
		c.runSubscription(subCtx, wildcard, def.Entity, resolved)
	}()
}

func (c *connection) handleUnsubscribe(wildcard string) {
	c.mu.Lock()
	cancel, ok := c.subs[wildcard]
	c.mu.Unlock()
	if !ok {
		c.sendError(apperrors.New(apperrors.KindSubjectMismatch, "not subscribed to "+wildcard))
		return
	}
	cancel()
	c.sendJSON(unsubscribedFrame(wildcard))
}

// runSubscription implements spec §4.G step 5: an optional historical
// replay (paginating by cursor until a short page signals the table is
// drained) followed by a splice into the live event bus, deduped against
// the last cursor the historical phase emitted so the client sees no gap
// and no duplicate.
func (c *connection) runSubscription(ctx context.Context, wildcard, entity string, policy DeliverPolicy) {
	var lastCursor *domain.Cursor

	if policy.HasHistory() {
		str, ok := c.engine.streams[entity]
		if !ok {
			c.sendError(apperrors.New(apperrors.KindMalformedSubject, "no historical stream for entity: "+entity))
			return
		}
		fromHeight := policy.NormalizedFromHeight()

		for {
			recs, err := str.fetch(ctx, c.engine.namespace, fromHeight, lastCursor, historyBatchSize)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.sendError(err)
				return
			}
			for _, rec := range recs {
				if !c.deliver(rec.subject, rec.value) {
					return
				}
				cp := rec.cursor
				lastCursor = &cp
			}
			if len(recs) < historyBatchSize {
				break
			}
			if ctx.Err() != nil {
				return
			}
		}
	}

	events, err := c.engine.broker.SubscribeToEvents(ctx, wildcard)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.sendError(err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if evCursor, err := cursorFromSubject(c.engine.registry, entity, ev.Subject); err == nil {
				if !shouldDeliverLive(lastCursor, evCursor) {
					continue
				}
			}
			if !c.deliver(ev.Subject, ev.Payload) {
				return
			}
		}
	}
}

// deliver decodes one record's opaque value blob and sends it as a
// response frame. A decode failure is logged and the record is skipped
// rather than aborting the subscription, mirroring ingest's "never aborts
// the block" handling of the same failure kind (spec §7).
func (c *connection) deliver(subj string, value []byte) bool {
	var payload interface{}
	if err := c.engine.parser.Decode(value, &payload); err != nil {
		c.log.Warn().Err(err).Str("subject", subj).Msg("skipping record: decode failed")
		return true
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		c.log.Warn().Err(err).Str("subject", subj).Msg("skipping record: re-encoding failed")
		return true
	}
	return c.sendJSON(responseFrame{Type: frameResponse, Subject: subj, Payload: raw})
}
