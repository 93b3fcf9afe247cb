package token

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecret_HexOfExpectedLength(t *testing.T) {
	s, err := NewSecret()
	require.NoError(t, err)
	assert.Len(t, s, 2*secretBytes)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err)
}

func TestNewOneTime_BindsAccountID(t *testing.T) {
	const account = "01HZY3K5W6N8Q9R0S1T2V3W4X5"
	a, err := NewOneTime(account)
	require.NoError(t, err)
	b, err := NewOneTime(account)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(a, account))
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(a), 72)
}
