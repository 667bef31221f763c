package sqldump

import (
	"fmt"
	"strings"
)

// Mode selects how value groups are located in the dump text.
type Mode string

const (
	// ModeRegex matches `\(([^)]+)\)` and splits every match on commas. It
	// mis-splits string literals that contain commas or parentheses.
	ModeRegex Mode = "regex"

	// ModeQuoted scans the text respecting single-quoted literals, nested
	// parentheses and SQL comments, and splits fields on top-level commas.
	ModeQuoted Mode = "quoted"
)

// HeaderSkip selects which groups are treated as column-list headers and
// discarded before field counting.
type HeaderSkip string

const (
	// HeaderSkipFirst discards only the very first group of the whole text.
	// In a dump with several INSERT statements every later column list is
	// kept and then usually dropped by the field-count check; if the first
	// statement has no column list its first tuple is lost.
	HeaderSkipFirst HeaderSkip = "first"

	// HeaderSkipPerStatement discards the first group after each INSERT
	// keyword.
	HeaderSkipPerStatement HeaderSkip = "per-statement"

	// HeaderSkipColumnList discards groups that sit between an INSERT
	// keyword and the VALUES keyword of the same statement.
	HeaderSkipColumnList HeaderSkip = "column-list"

	// HeaderSkipNone keeps every group.
	HeaderSkipNone HeaderSkip = "none"
)

// DefaultExpectedFields is the width of a grupodemanda tuple.
const DefaultExpectedFields = 9

// Options configures Extract. The zero value means regex mode, first-group
// header skip and 9 expected fields.
type Options struct {
	Mode           Mode
	HeaderSkip     HeaderSkip
	ExpectedFields int
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeRegex
	}
	if o.HeaderSkip == "" {
		o.HeaderSkip = HeaderSkipFirst
	}
	if o.ExpectedFields <= 0 {
		o.ExpectedFields = DefaultExpectedFields
	}
	return o
}

// ParseMode validates a mode name. Empty means ModeRegex.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeRegex, nil
	case ModeRegex, ModeQuoted:
		return m, nil
	default:
		return "", fmt.Errorf("sqldump: unknown mode %q (want regex or quoted)", s)
	}
}

// ParseHeaderSkip validates a header-skip policy name. Empty means
// HeaderSkipFirst.
func ParseHeaderSkip(s string) (HeaderSkip, error) {
	switch h := HeaderSkip(strings.ToLower(strings.TrimSpace(s))); h {
	case "":
		return HeaderSkipFirst, nil
	case HeaderSkipFirst, HeaderSkipPerStatement, HeaderSkipColumnList, HeaderSkipNone:
		return h, nil
	default:
		return "", fmt.Errorf("sqldump: unknown header skip policy %q", s)
	}
}
