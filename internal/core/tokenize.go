package core

// tokenize.go splits raw export text into rows of cells.
//
// The scanner is deliberately lenient: broker exports are frequently not valid
// RFC 4180, so an unterminated quote simply closes at end of line and a stray
// quote in the middle of a field toggles quote mode instead of failing.

import (
	"strconv"
	"strings"
)

// TokenizeLine splits one line into cells, honouring double-quoted fields.
// A doubled quote inside a quoted field is a literal quote character.
// Cells are returned untrimmed.
func TokenizeLine(line string) []string {
	var (
		cells    []string
		cell     strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cell.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteByte(c)
		}
	}
	cells = append(cells, cell.String())

	return cells
}

// Tokenize splits text into rows. When hasHeaders is true the first non-blank
// line supplies the (trimmed) column names; otherwise columns are keyed by
// their zero-based position. Values are trimmed. Blank lines are skipped.
//
// Cells beyond the header width are dropped. When a header name repeats, the
// first column with that name wins.
func Tokenize(text string, hasHeaders bool) []RawRow {
	headers, rows := tokenizeLines(text, hasHeaders)
	if hasHeaders && len(headers) == 0 {
		return nil
	}

	out := make([]RawRow, 0, len(rows))
	for _, cells := range rows {
		out = append(out, buildRow(headers, cells, hasHeaders))
	}
	return out
}

// TokenizeWithHeaders is Tokenize with headers, also returning the header row.
func TokenizeWithHeaders(text string) ([]string, []RawRow) {
	headers, rows := tokenizeLines(text, true)
	if len(headers) == 0 {
		return nil, nil
	}

	out := make([]RawRow, 0, len(rows))
	for _, cells := range rows {
		out = append(out, buildRow(headers, cells, true))
	}
	return headers, out
}

func tokenizeLines(text string, hasHeaders bool) ([]string, [][]string) {
	var (
		headers []string
		rows    [][]string
	)

	text = strings.TrimPrefix(text, "\ufeff")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := TokenizeLine(line)
		if hasHeaders && headers == nil {
			headers = make([]string, len(cells))
			for i, h := range cells {
				headers[i] = strings.TrimSpace(h)
			}
			if isEmptyHeader(headers) {
				return nil, nil
			}
			continue
		}
		rows = append(rows, cells)
	}

	return headers, rows
}

func buildRow(headers, cells []string, hasHeaders bool) RawRow {
	row := make(RawRow, len(cells))
	for i, cell := range cells {
		key := strconv.Itoa(i)
		if hasHeaders {
			if i >= len(headers) {
				break
			}
			key = headers[i]
			if key == "" {
				continue
			}
		}
		if _, dup := row[key]; dup {
			continue
		}
		row[key] = strings.TrimSpace(cell)
	}
	return row
}

func isEmptyHeader(headers []string) bool {
	for _, h := range headers {
		if h != "" {
			return false
		}
	}
	return true
}
