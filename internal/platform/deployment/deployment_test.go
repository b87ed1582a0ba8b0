package deployment

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	testIPFS = "QmVfNm8Jok8fFtspmFYYGTo5Sp7BvP3nYr6UHvDrLe6ewp"
)

func TestParse(t *testing.T) {

	id, err := Parse(testIPFS)
	require.NoError(t, err)
	require.Equal(t, testIPFS, id.String())

	hexID := id.Hex()
	require.Len(t, hexID, 66)

	fromHex, err := Parse(hexID)
	require.NoError(t, err)
	require.Equal(t, testIPFS, fromHex.String())
	require.Equal(t, hexID, fromHex.Hex())
}

func TestParseInvalid(t *testing.T) {
	testCases := map[string]string{
		"empty":       "",
		"garbage":     "not-a-deployment",
		"short_hex":   "0x1234",
		"invalid_hex": "0xzz",
		"cid_v1":      "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi",
	}

	for name, input := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidID))
		})
	}
}

func TestZeroID(t *testing.T) {
	var id ID

	require.Equal(t, "", id.String())
	require.Equal(t, "", id.Hex())
}
