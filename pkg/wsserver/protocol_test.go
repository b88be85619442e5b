package wsserver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverPolicyRoundTripBareStrings(t *testing.T) {
	for _, raw := range []string{`"latest"`, `"all"`} {
		var p DeliverPolicy
		require.NoError(t, json.Unmarshal([]byte(raw), &p))

		out, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}
}

func TestDeliverPolicyRoundTripFromHeight(t *testing.T) {
	var p DeliverPolicy
	require.NoError(t, json.Unmarshal([]byte(`{"fromHeight": 42}`), &p))
	assert.Equal(t, DeliverFromHeight, p.Kind)
	assert.EqualValues(t, 42, p.FromHeight)
	assert.EqualValues(t, 42, p.NormalizedFromHeight())
	assert.True(t, p.HasHistory())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fromHeight": 42}`, string(out))
}

func TestDeliverPolicyAllNormalizesToZero(t *testing.T) {
	p := DeliverPolicy{Kind: DeliverAll}
	assert.EqualValues(t, 0, p.NormalizedFromHeight())
	assert.True(t, p.HasHistory())
}

func TestDeliverPolicyLatestHasNoHistory(t *testing.T) {
	p := DeliverPolicy{Kind: DeliverLatest}
	assert.False(t, p.HasHistory())
}

func TestDeliverPolicyUnmarshalRejectsUnknownString(t *testing.T) {
	var p DeliverPolicy
	err := json.Unmarshal([]byte(`"soon"`), &p)
	assert.Error(t, err)
}

func TestUnsubscribedFrameOmitsDeliverPolicy(t *testing.T) {
	out, err := json.Marshal(unsubscribedFrame("blocks.*"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"unsubscribed","wildcard":"blocks.*"}`, string(out))
}

func TestSubscribedFrameIncludesDeliverPolicy(t *testing.T) {
	out, err := json.Marshal(subscribedFrame("blocks.*", DeliverPolicy{Kind: DeliverLatest}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"subscribed","wildcard":"blocks.*","deliverPolicy":"latest"}`, string(out))
}

func TestClientFrameUnmarshalSubscribe(t *testing.T) {
	var f clientFrame
	raw := `{"type":"subscribe","wildcard":"receipts.call.>","deliverPolicy":{"fromHeight":10}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	assert.Equal(t, frameSubscribe, f.Type)
	assert.Equal(t, "receipts.call.>", f.Wildcard)
	require.NotNil(t, f.DeliverPolicy)
	assert.Equal(t, DeliverFromHeight, f.DeliverPolicy.Kind)
	assert.EqualValues(t, 10, f.DeliverPolicy.FromHeight)
}
