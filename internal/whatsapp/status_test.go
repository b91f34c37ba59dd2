package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStatusAliases(t *testing.T) {
	cases := map[string]Status{
		"sent":        StatusDelivered,
		"delivered":   StatusDelivered,
		"read":        StatusRead,
		"SEEN":        StatusRead,
		" error ":     StatusError,
		"failed":      StatusError,
		"undelivered": StatusError,
	}
	for raw, want := range cases {
		got, ok := NormalizeStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "queued", "bounced", "deliverd"} {
		_, ok := NormalizeStatus(raw)
		assert.False(t, ok, raw)
	}
}

func TestDecodeStatusPayloadShapes(t *testing.T) {
	canonical, err := DecodeStatusPayload([]byte(`{"message_id":"m1","status":"seen","error_code":null}`))
	require.NoError(t, err)
	assert.IsType(t, CanonicalPayload{}, canonical)
	out := Normalize(canonical)
	assert.Equal(t, "m1", out.MessageID)
	assert.Equal(t, StatusRead, out.Status)
	assert.False(t, out.Unrecognized)

	provider, err := DecodeStatusPayload([]byte(`{"messageId":"m2","state":"failed","errorCode":"131026"}`))
	require.NoError(t, err)
	assert.IsType(t, ProviderPayload{}, provider)
	out = Normalize(provider)
	assert.Equal(t, "m2", out.MessageID)
	assert.Equal(t, StatusError, out.Status)
	assert.Equal(t, "131026", out.ErrorCode)

	unknown, err := DecodeStatusPayload([]byte(`{"message_id":"m3","status":"bounced"}`))
	require.NoError(t, err)
	out = Normalize(unknown)
	assert.True(t, out.Unrecognized)
	assert.Equal(t, "bounced", out.Raw)
}

func TestDecodeStatusPayloadRejectsUnknownShapes(t *testing.T) {
	_, err := DecodeStatusPayload([]byte(`{"id":"m1","value":"read"}`))
	assert.ErrorIs(t, err, ErrUnknownPayloadShape)

	_, err = DecodeStatusPayload([]byte(`not json`))
	assert.Error(t, err)
}
