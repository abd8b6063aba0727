package utils

import (
	"fmt"
	"strconv"
	"strings"

	"RMDB/internal/domain"
)

// ParseRow splits one CSV line into cells. The separator is a comma
// with optional surrounding spaces; cells are 32-bit integers.
func ParseRow(line string) (domain.Row, error) {
	fields := strings.Split(line, ",")
	row := make(domain.Row, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %q", domain.ErrParse, strings.TrimSpace(field))
		}
		row[i] = int32(v)
	}
	return row, nil
}

// ParseHeader splits a CSV header line into column names.
func ParseHeader(line string) []string {
	fields := strings.Split(line, ",")
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = strings.TrimSpace(field)
	}
	return names
}

// FormatRow renders cells joined by the separator.
func FormatRow(row domain.Row, sep string) string {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(strconv.FormatInt(int64(v), 10))
	}
	return b.String()
}

// FormatHeader renders column names joined by the separator.
func FormatHeader(columns []string, sep string) string {
	return strings.Join(columns, sep)
}
