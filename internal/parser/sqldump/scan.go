package sqldump

import "strings"

// scanGroups walks text once, tracking single-quoted literals, nesting depth
// and comments. It returns the top-level parenthesised groups with fields
// split on depth-1 commas, plus a copy of text in which literal contents and
// comments are blanked so keyword lookups cannot match inside them.
//
// Field text is returned raw and trimmed; quotes are left in place.
// Literals may escape a quote as '' or \'. An unterminated group at EOF is
// discarded.
func scanGroups(text string) ([]group, string) {
	var (
		groups     []group
		masked     = []byte(text)
		depth      int
		inQuote    bool
		start      int
		fieldStart int
		fields     []string
	)

	blank := func(from, to int) {
		for j := from; j < to && j < len(masked); j++ {
			if masked[j] != '\n' {
				masked[j] = ' '
			}
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inQuote {
			switch c {
			case '\\':
				blank(i, i+2)
				i++
			case '\'':
				if i+1 < len(text) && text[i+1] == '\'' {
					blank(i, i+2)
					i++
					continue
				}
				inQuote = false
			default:
				blank(i, i+1)
			}
			continue
		}

		switch c {
		case '\'':
			inQuote = true

		case '-':
			if i+1 < len(text) && text[i+1] == '-' {
				end := strings.IndexByte(text[i:], '\n')
				if end < 0 {
					end = len(text) - i
				}
				blank(i, i+end)
				i += end - 1
			}

		case '/':
			if i+1 < len(text) && text[i+1] == '*' {
				end := strings.Index(text[i+2:], "*/")
				if end < 0 {
					end = len(text) - i
				} else {
					end += 4
				}
				blank(i, i+end)
				i += end - 1
			}

		case '(':
			if depth == 0 {
				start = i
				fieldStart = i + 1
				fields = nil
			}
			depth++

		case ')':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				if strings.TrimSpace(text[start+1:i]) == "" {
					continue
				}
				fields = append(fields, strings.TrimSpace(text[fieldStart:i]))
				groups = append(groups, group{start: start, fields: fields})
				fields = nil
			}

		case ',':
			if depth == 1 {
				fields = append(fields, strings.TrimSpace(text[fieldStart:i]))
				fieldStart = i + 1
			}
		}
	}

	return groups, string(masked)
}
