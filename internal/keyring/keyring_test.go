package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestPasswordLifecycle(t *testing.T) {
	keyring.MockInit()

	const vaultID = "0123456789abcdef"
	assert.False(t, HasPassword(vaultID))

	_, err := GetPassword(vaultID)
	assert.True(t, IsNotFound(err))

	require.NoError(t, SavePassword(vaultID, []byte("s3cret")))
	assert.True(t, HasPassword(vaultID))

	got, err := GetPassword(vaultID)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), got)

	require.NoError(t, DeletePassword(vaultID))
	assert.False(t, HasPassword(vaultID))
	assert.True(t, IsNotFound(DeletePassword(vaultID)))
}
