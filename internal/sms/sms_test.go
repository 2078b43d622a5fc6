package sms

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareTruncatesLongMessages(t *testing.T) {
	long := strings.Repeat("a", 200)
	got, err := prepare("+22961234567", long)
	require.NoError(t, err)
	assert.Len(t, got, 160)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 157), got[:157])
}

func TestPrepareCountsCharactersNotBytes(t *testing.T) {
	// 160 accented characters is 320 bytes but still fits a single SMS.
	accented := strings.Repeat("é", 160)
	got, err := prepare("+22961234567", accented)
	require.NoError(t, err)
	assert.Equal(t, accented, got)

	// One character over the limit truncates to 157 characters plus the ellipsis,
	// never splitting a UTF-8 sequence.
	got, err = prepare("+22961234567", strings.Repeat("é", 161))
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(got))
	runes := []rune(got)
	assert.Len(t, runes, 160)
	assert.Equal(t, strings.Repeat("é", 157), string(runes[:157]))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestPrepareKeepsShortMessages(t *testing.T) {
	got, err := prepare("+22961234567", "Lokita: test")
	require.NoError(t, err)
	assert.Equal(t, "Lokita: test", got)
}

func TestPrepareRejectsForeignNumbers(t *testing.T) {
	_, err := prepare("+33612345678", "hello")
	assert.ErrorIs(t, err, ErrInvalidRecipient)
}
