package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMap_NilPassesThrough(t *testing.T) {
	v, err := encodeMap(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestMapCodec_Roundtrip(t *testing.T) {
	v, err := encodeMap(map[string]any{"metrics": map[string]any{"rssi": float64(-61)}})
	require.NoError(t, err)

	got := decodeMap(v.([]byte))
	assert.Equal(t, map[string]any{"rssi": float64(-61)}, got["metrics"])
}

func TestDecodeMap_EmptyAndCorrupt(t *testing.T) {
	assert.Nil(t, decodeMap(nil))

	// Corrupt column yields an empty map, not a failure
	got := decodeMap([]byte(`{broken`))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStringsCodec(t *testing.T) {
	b, err := encodeStrings(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	b, err = encodeStrings([]string{"devices", "readings"})
	require.NoError(t, err)
	assert.Equal(t, []string{"devices", "readings"}, decodeStrings(b))

	assert.Empty(t, decodeStrings(nil))
	assert.Empty(t, decodeStrings([]byte(`[broken`)))
}

func TestEncodeValue(t *testing.T) {
	assert.Nil(t, encodeValue(nil))
	assert.Equal(t, []byte(`{"celsius":21.5}`), encodeValue(json.RawMessage(`{"celsius":21.5}`)))
}
