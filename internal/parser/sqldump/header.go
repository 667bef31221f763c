package sqldump

import (
	"regexp"
	"sort"
)

var (
	insertRe = regexp.MustCompile(`(?i)\binsert\s+into\b`)
	valuesRe = regexp.MustCompile(`(?i)\bvalues\b`)
)

// statementIndex records where INSERT and VALUES keywords occur so a group
// offset can be placed inside its statement.
type statementIndex struct {
	inserts []int
	values  []int
}

func newStatementIndex(text string) statementIndex {
	return statementIndex{
		inserts: starts(insertRe.FindAllStringIndex(text, -1)),
		values:  starts(valuesRe.FindAllStringIndex(text, -1)),
	}
}

func starts(locs [][]int) []int {
	out := make([]int, len(locs))
	for i, l := range locs {
		out[i] = l[0]
	}
	return out
}

// statement returns the 1-based ordinal of the INSERT statement that
// contains offset, or 0 when offset precedes every INSERT keyword.
func (s statementIndex) statement(offset int) int {
	return sort.SearchInts(s.inserts, offset+1)
}

// inColumnList reports whether offset lies after its statement's INSERT
// keyword and before the first VALUES keyword that follows it.
func (s statementIndex) inColumnList(offset int) bool {
	st := s.statement(offset)
	if st == 0 {
		return false
	}
	insertAt := s.inserts[st-1]
	v := sort.SearchInts(s.values, insertAt)
	return v == len(s.values) || s.values[v] > offset
}

// headerFunc returns a predicate over group indexes for the given policy.
func headerFunc(policy HeaderSkip, groups []group, idx statementIndex) func(i int) bool {
	switch policy {
	case HeaderSkipNone:
		return func(int) bool { return false }

	case HeaderSkipPerStatement:
		first := make(map[int]bool, len(idx.inserts)+1)
		seen := make(map[int]bool, len(idx.inserts)+1)
		for i, g := range groups {
			st := idx.statement(g.start)
			if !seen[st] {
				seen[st] = true
				first[i] = true
			}
		}
		return func(i int) bool { return first[i] }

	case HeaderSkipColumnList:
		return func(i int) bool { return idx.inColumnList(groups[i].start) }

	default:
		// The counter runs over the whole text and is never reset per
		// statement, so only group 0 is discarded.
		return func(i int) bool { return i == 0 }
	}
}
