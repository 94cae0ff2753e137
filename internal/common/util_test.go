package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 32
	s, err := MakeRandHexString(n)
	require.NoError(t, err)
	require.Len(t, s, 2*n)

	_, err = hex.DecodeString(s)
	require.NoError(t, err)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	a, err := MakeRandHexString(16)
	require.NoError(t, err)
	b, err := MakeRandHexString(16)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("Password1!")
	WipeByteArray(b)
	for _, c := range b {
		require.EqualValues(t, 0, c)
	}

	// nil slice must not panic
	WipeByteArray(nil)
}
