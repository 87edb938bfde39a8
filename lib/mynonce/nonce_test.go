package mynonce

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNonce(t *testing.T) {
	t.Run("Nonce is hex encoded", func(t *testing.T) {
		nonce, err := New().Create()
		assert.NoError(t, err)
		assert.Len(t, nonce, 2*nonceByteCount)
		assert.Empty(t, strings.Trim(nonce, "0123456789abcdef"))
	})

	t.Run("Nonces differ", func(t *testing.T) {
		noncer := New()
		first, err := noncer.Create()
		assert.NoError(t, err)
		second, err := noncer.Create()
		assert.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("Short read fails", func(t *testing.T) {
		noncer := randomNoncer{reader: strings.NewReader("too short")}
		_, err := noncer.Create()
		assert.Error(t, err)
	})
}
