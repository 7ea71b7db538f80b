package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLockToken_UniquePerAcquisition(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token := newLockToken()
		require.Len(t, token, 32)
		assert.False(t, seen[token], "jeton de verrou réutilisé: %s", token)
		seen[token] = true
	}
}

func TestCartLockTTL_CoversCheckoutDeadline(t *testing.T) {
	// Le handler borne un checkout à RequestDeadline. Un TTL plus court
	// laisserait expirer le verrou en plein batch et un second entrerait.
	assert.GreaterOrEqual(t, int64(cartLockTTL), 2*int64(RequestDeadline))
}
