package metrics

import (
	"fmt"

	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/metric/instrument"
)

// Domain holds counters and gauges for the ingest pipeline, broker, and
// live subscription engine. Only ActiveSubscriptions and
// RateLimitRejections are updated, by pkg/wsserver; the ingest and broker
// instruments are registered but nothing adds to them. Constructed once at
// startup and injected as an immutable reference, same convention as
// BaseAttrs.
type Domain struct {
	BlocksIngested      instrument.Int64Counter
	RecordsPersisted    instrument.Int64Counter
	RecordsSkipped      instrument.Int64Counter
	BrokerPublishes     instrument.Int64Counter
	BrokerPublishErrors instrument.Int64Counter
	BrokerAcks          instrument.Int64Counter
	ActiveSubscriptions instrument.Int64UpDownCounter
	RateLimitRejections instrument.Int64Counter
}

// NewDomain registers the domain instruments against the global meter
// provider. Call after SetupInstrumentation.
func NewDomain() (*Domain, error) {
	meter := global.MeterProvider().Meter("fuel_indexer")

	d := &Domain{}
	var err error

	if d.BlocksIngested, err = meter.Int64Counter(
		"indexer.ingest.blocks",
		instrument.WithDescription("Number of blocks successfully ingested"),
	); err != nil {
		return nil, fmt.Errorf("creating blocks ingested counter: %s", err)
	}
	if d.RecordsPersisted, err = meter.Int64Counter(
		"indexer.ingest.records",
		instrument.WithDescription("Number of records upserted, labeled by entity"),
	); err != nil {
		return nil, fmt.Errorf("creating records persisted counter: %s", err)
	}
	if d.RecordsSkipped, err = meter.Int64Counter(
		"indexer.ingest.records_skipped",
		instrument.WithDescription("Number of records skipped due to decode failure"),
	); err != nil {
		return nil, fmt.Errorf("creating records skipped counter: %s", err)
	}
	if d.BrokerPublishes, err = meter.Int64Counter(
		"indexer.broker.publishes",
		instrument.WithDescription("Number of messages published to the broker"),
	); err != nil {
		return nil, fmt.Errorf("creating broker publishes counter: %s", err)
	}
	if d.BrokerPublishErrors, err = meter.Int64Counter(
		"indexer.broker.publish_errors",
		instrument.WithDescription("Number of failed broker publish attempts"),
	); err != nil {
		return nil, fmt.Errorf("creating broker publish errors counter: %s", err)
	}
	if d.BrokerAcks, err = meter.Int64Counter(
		"indexer.broker.acks",
		instrument.WithDescription("Number of block-queue messages acknowledged"),
	); err != nil {
		return nil, fmt.Errorf("creating broker acks counter: %s", err)
	}
	if d.ActiveSubscriptions, err = meter.Int64UpDownCounter(
		"indexer.ws.active_subscriptions",
		instrument.WithDescription("Number of currently active live WebSocket subscriptions"),
	); err != nil {
		return nil, fmt.Errorf("creating active subscriptions gauge: %s", err)
	}
	if d.RateLimitRejections, err = meter.Int64Counter(
		"indexer.apikey.rejections",
		instrument.WithDescription("Number of requests rejected by the rate or subscription limiter"),
	); err != nil {
		return nil, fmt.Errorf("creating rate limit rejections counter: %s", err)
	}

	return d, nil
}
