package repository

import (
	"io"
	"strings"
)

// lineReader feeds gocsv one record per non-blank line of a catalog CSV.
// Lines are split on '\n' first, so quoted values cannot span lines.
//
// The header row is split on plain commas; data rows go through splitQuoted.
// Every token is trimmed and loses one surrounding pair of double quotes.
type lineReader struct {
	lines  []string
	pos    int
	header bool
}

func newLineReader(text string) *lineReader {
	return &lineReader{lines: strings.Split(text, "\n")}
}

func (r *lineReader) Read() ([]string, error) {
	for r.pos < len(r.lines) {
		line := strings.TrimSuffix(r.lines[r.pos], "\r")
		r.pos++

		if !r.header {
			r.header = true
			if strings.TrimSpace(line) == "" {
				return nil, ErrMissingHeader
			}
			return cleanFields(strings.Split(line, ",")), nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return cleanFields(splitQuoted(line)), nil
	}
	return nil, io.EOF
}

func (r *lineReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

// splitQuoted splits a line on commas that are outside double quotes.
// Quote characters only switch state; "" inside a quoted span is a literal quote.
func splitQuoted(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"' && inQuotes && i+1 < len(runes) && runes[i+1] == '"':
			current.WriteRune('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	return append(fields, current.String())
}

func cleanFields(fields []string) []string {
	for i, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimPrefix(f, `"`)
		f = strings.TrimSuffix(f, `"`)
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}
