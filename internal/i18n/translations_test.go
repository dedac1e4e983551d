package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateKnownLanguages(t *testing.T) {
	assert.Equal(t, "Booking Cancelled", Translate(KeyBookingCancelled, "en"))
	assert.Equal(t, "Réservation annulée", Translate(KeyBookingCancelled, "fr"))
	assert.Equal(t, "Nofoanana ny famandrihana", Translate(KeyBookingCancelled, "mg"))
}

func TestTranslateFallsBackToEnglish(t *testing.T) {
	// An unsupported language must behave exactly like English for
	// every key the default table carries.
	for _, key := range DefaultKeys() {
		assert.Equal(t, Translate(key, "en"), Translate(key, "xx"), "key %s", key)
		assert.Equal(t, Translate(key, "en"), Translate(key, ""), "key %s", key)
	}
}

func TestDefaultTableIsComplete(t *testing.T) {
	keys := DefaultKeys()
	require.Len(t, keys, 5)
	for _, key := range keys {
		assert.NotEmpty(t, Translate(key, "en"))
	}
}
