package wsserver

import (
	"encoding/json"

	apperrors "github.com/fuel-streams/fuel-indexer/pkg/errors"
)

// DeliverKind is the wire-level discriminator for a subscribe frame's
// deliverPolicy (spec §6.3): either the bare string "latest"/"all" or an
// object carrying a starting height.
type DeliverKind int

const (
	DeliverLatest DeliverKind = iota
	DeliverAll
	DeliverFromHeight
)

// DeliverPolicy resolves to one of Latest, FromHeight(h), or All (treated
// as FromHeight(0)) per spec §4.G step 5.
type DeliverPolicy struct {
	Kind       DeliverKind
	FromHeight int64
}

// NormalizedFromHeight returns the height historical replay should start
// from: All collapses to 0, Latest has no historical phase at all.
func (d DeliverPolicy) NormalizedFromHeight() int64 {
	if d.Kind == DeliverAll {
		return 0
	}
	return d.FromHeight
}

// HasHistory reports whether this policy has a historical-replay phase
// before splicing into the live bus.
func (d DeliverPolicy) HasHistory() bool {
	return d.Kind == DeliverFromHeight || d.Kind == DeliverAll
}

type fromHeightFrame struct {
	FromHeight int64 `json:"fromHeight"`
}

// UnmarshalJSON accepts either a bare string ("latest"/"all") or an object
// ({"fromHeight": N}), matching spec §6.3's deliverPolicy grammar.
func (d *DeliverPolicy) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "latest":
			*d = DeliverPolicy{Kind: DeliverLatest}
		case "all":
			*d = DeliverPolicy{Kind: DeliverAll}
		default:
			return apperrors.New(apperrors.KindMalformedSubject, "unrecognized deliverPolicy: "+s)
		}
		return nil
	}

	var f fromHeightFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return apperrors.Wrap(apperrors.KindMalformedSubject, err, "parsing deliverPolicy")
	}
	*d = DeliverPolicy{Kind: DeliverFromHeight, FromHeight: f.FromHeight}
	return nil
}

// MarshalJSON renders the policy back in whichever of the two accepted
// shapes it resolves to, so an echoed "subscribed" frame round-trips.
func (d DeliverPolicy) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case DeliverLatest:
		return json.Marshal("latest")
	case DeliverAll:
		return json.Marshal("all")
	default:
		return json.Marshal(fromHeightFrame{FromHeight: d.FromHeight})
	}
}

// clientFrame is the shape of every message a connected client sends (spec
// §6.3): subscribe carries wildcard+deliverPolicy, unsubscribe only
// wildcard.
type clientFrame struct {
	Type          string         `json:"type"`
	Wildcard      string         `json:"wildcard"`
	DeliverPolicy *DeliverPolicy `json:"deliverPolicy,omitempty"`
}

const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"

	frameSubscribed   = "subscribed"
	frameUnsubscribed = "unsubscribed"
	frameResponse     = "response"
	frameError        = "error"
)

// ackFrame acknowledges a subscribe/unsubscribe request. DeliverPolicy is a
// pointer so unsubscribedFrame can omit it entirely rather than rendering a
// misleading zero value.
type ackFrame struct {
	Type          string         `json:"type"`
	Wildcard      string         `json:"wildcard"`
	DeliverPolicy *DeliverPolicy `json:"deliverPolicy,omitempty"`
}

// responseFrame carries one delivered record (spec §6.3): subject is the
// concrete (not wildcard) subject string the record was published on,
// payload is the entity's decoded JSON body.
type responseFrame struct {
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Payload json.RawMessage `json:"payload"`
}

func subscribedFrame(wildcard string, policy DeliverPolicy) ackFrame {
	return ackFrame{Type: frameSubscribed, Wildcard: wildcard, DeliverPolicy: &policy}
}

func unsubscribedFrame(wildcard string) ackFrame {
	return ackFrame{Type: frameUnsubscribed, Wildcard: wildcard}
}
