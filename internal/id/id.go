package id

import (
	"fmt"
	"strconv"
	"strings"
)

const journalPrefix = "JRN-"

// FormatJournalNumber returns the display form of a journal number,
// like "JRN-000042". The zero value (an unposted entry) renders empty.
func FormatJournalNumber(n int64) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%s%06d", journalPrefix, n)
}

// ParseJournalNumber parses "JRN-000042" (or a bare "42") back into a
// journal number.
func ParseJournalNumber(s string) (int64, error) {
	digits := strings.TrimPrefix(s, journalPrefix)
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid journal number %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid journal number %q: must be positive", s)
	}
	return n, nil
}
