package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatJournalNumber(t *testing.T) {
	assert.Equal(t, "JRN-000042", FormatJournalNumber(42))
	assert.Equal(t, "JRN-1234567", FormatJournalNumber(1234567))
	assert.Equal(t, "", FormatJournalNumber(0))
}

func TestParseJournalNumber(t *testing.T) {
	n, err := ParseJournalNumber("JRN-000042")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	n, err = ParseJournalNumber("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = ParseJournalNumber("JRN-")
	require.Error(t, err)
	_, err = ParseJournalNumber("JRN-000000")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	for _, n := range []int64{1, 42, 999999, 1000000} {
		got, err := ParseJournalNumber(FormatJournalNumber(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}
}
