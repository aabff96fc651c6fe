package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateWorkbookId(t *testing.T) {
	id := GenerateWorkbookId()
	require.Len(t, id, 8)
	require.Regexp(t, "^[0-9a-f]{8}$", id)
}

func TestGenerateDatasetName(t *testing.T) {
	name := GenerateDatasetName("Crime")
	require.True(t, strings.HasPrefix(name, "Crime_"))
	require.Regexp(t, "^Crime_[0-9a-f]{7}$", name)

	require.Equal(t, "Crime", DatasetBase(name))
	require.Equal(t, "plain", DatasetBase("plain"))
	require.Equal(t, "Crime", DatasetBase("Crime_0a1b2c3_4d5e6f7"))
}

func TestIsItemId(t *testing.T) {
	require.True(t, IsItemId("0123456789abcdef0123456789abcdef"))
	require.True(t, IsItemId("0123456789ABCDEF0123456789ABCDEF"))
	require.False(t, IsItemId("0123456789abcdef"))
	require.False(t, IsItemId("not-an-item-id"))
}

func TestGenerateClientId(t *testing.T) {
	id := GenerateClientId()
	require.Len(t, id, 36)
	require.NotEqual(t, id, GenerateClientId())
}
