// Package sqldump pulls value tuples out of a SQL dump made of INSERT
// statements.
//
// Extraction is text matching, not SQL parsing: each parenthesised group is
// a candidate tuple, header groups are discarded by policy, and only groups
// with the expected number of fields survive. Groups with any other width
// are dropped without a log line; Result counts them and keeps them for an
// optional rejects file.
package sqldump

import (
	"fmt"
	"regexp"
	"strings"
)

var groupRe = regexp.MustCompile(`\(([^)]+)\)`)

// Reject is a group that was dropped because of its field count.
type Reject struct {
	// Index is the group's position among all matched groups (0-based).
	Index int `json:"index"`

	// Offset is the byte offset of the group's opening parenthesis.
	Offset int `json:"offset"`

	Fields []string `json:"fields"`
	Reason string   `json:"reason"`
}

// Result is the outcome of Extract.
type Result struct {
	// Tuples are the kept groups in document order, each with exactly
	// ExpectedFields trimmed fields.
	Tuples [][]string

	Matches        int
	HeadersSkipped int
	Dropped        int
	Rejects        []Reject
}

type group struct {
	start  int
	fields []string
}

// Extract finds the value tuples in text.
func Extract(text string, opts Options) Result {
	opts = opts.withDefaults()

	var (
		groups []group
		kwText = text
	)
	switch opts.Mode {
	case ModeQuoted:
		groups, kwText = scanGroups(text)
	default:
		groups = regexGroups(text)
	}

	isHeader := headerFunc(opts.HeaderSkip, groups, newStatementIndex(kwText))

	res := Result{Matches: len(groups)}
	for i, g := range groups {
		if isHeader(i) {
			res.HeadersSkipped++
			continue
		}
		if len(g.fields) != opts.ExpectedFields {
			res.Dropped++
			res.Rejects = append(res.Rejects, Reject{
				Index:  i,
				Offset: g.start,
				Fields: g.fields,
				Reason: fieldCountReason(len(g.fields), opts.ExpectedFields),
			})
			continue
		}
		res.Tuples = append(res.Tuples, g.fields)
	}
	return res
}

func regexGroups(text string) []group {
	idx := groupRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]group, 0, len(idx))
	for _, m := range idx {
		out = append(out, group{start: m[0], fields: splitFields(text[m[2]:m[3]])})
	}
	return out
}

// splitFields splits on every comma and trims whitespace around each part.
func splitFields(body string) []string {
	parts := strings.Split(body, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func fieldCountReason(got, want int) string {
	return fmt.Sprintf("field count %d != %d", got, want)
}
