package transformer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NullSentinel is how the dump spells an absent value.
const NullSentinel = "NULL"

// DataCriacaoLayout is the timestamp layout of data_criacao without its
// fractional part; a "." followed by at least one digit must come after it.
const DataCriacaoLayout = "2006-01-02 15:04:05"

// ParseInt parses a base-10 integer, ignoring surrounding whitespace.
func ParseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// ParseAtivo reports whether s is "true" ignoring case and surrounding
// whitespace. Every other value, including "1" and "t", is false.
func ParseAtivo(s string) bool {
	return strings.ToLower(strings.TrimSpace(s)) == "true"
}

// ParseFundoMunicipalID maps the null sentinel to 0 and parses anything
// else as an integer.
func ParseFundoMunicipalID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == NullSentinel {
		return 0, nil
	}
	return ParseInt(s)
}

// StripQuotes removes every leading and trailing single quote. Inner quotes
// are kept, so "'it''s'" becomes "it''s".
func StripQuotes(s string) string {
	return strings.Trim(s, "'")
}

// ParseDataCriacao parses "YYYY-MM-DD HH:MM:SS.f" where the fraction has 1
// to 9 digits. The result is in UTC; the dump carries no zone.
func ParseDataCriacao(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	n := len(DataCriacaoLayout)
	if len(s) < n+2 || s[n] != '.' || !allDigits(s[n+1:]) || len(s)-n-1 > 9 {
		return time.Time{}, fmt.Errorf("timestamp %q does not match %q", s, DataCriacaoLayout+".f")
	}
	t, err := time.Parse(DataCriacaoLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return t, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
