package catlink

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptPassword(t *testing.T) {
	out, err := EncryptPassword("s3cret")
	require.NoError(t, err)
	assert.Greater(t, len(out), 50)

	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	// 1024-bit vendor key yields 128-byte ciphertext.
	assert.Len(t, raw, 128)
}

func TestEncryptPasswordNotPlaintext(t *testing.T) {
	out, err := EncryptPassword("hunter2")
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
}
