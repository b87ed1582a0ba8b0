package geonode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseFinalize(t *testing.T) {
	resp := NewResponse(`{"data":{"foo":[]}}`, true)

	require.True(t, resp.Attestable())
	require.Equal(t, `{"data":{"foo":[]}}`, resp.Body())

	t.Run("without_attestation", func(t *testing.T) {
		body, err := resp.Finalize(nil)
		require.NoError(t, err)
		require.JSONEq(t, `{"graphQLResponse":"{\"data\":{\"foo\":[]}}","attestation":null}`, string(body))
	})

	t.Run("with_attestation", func(t *testing.T) {
		body, err := resp.Finalize(json.RawMessage(`{"v":27,"r":"0x01"}`))
		require.NoError(t, err)
		require.JSONEq(t, `{"graphQLResponse":"{\"data\":{\"foo\":[]}}","attestation":{"v":27,"r":"0x01"}}`, string(body))
	})

	t.Run("invalid_attestation", func(t *testing.T) {
		_, err := resp.Finalize(json.RawMessage(`{`))
		require.Error(t, err)
	})
}

func TestNoAttester(t *testing.T) {
	att, err := NoAttester{}.Attest([]byte(`{}`), NewResponse("", true))
	require.NoError(t, err)
	require.Nil(t, att)
}
