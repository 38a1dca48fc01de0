package importer

import (
	"bytes"
	"encoding/csv"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/amirasaad/finanze/pkg/domain"
	"github.com/shopspring/decimal"
)

var (
	dateLayouts = []string{
		"02/01/2006",
		"2/1/2006",
		"02-01-2006",
		"2006-01-02",
		"02.01.2006",
	}
	decimalTail = regexp.MustCompile(`^\d{1,8}$`)
	numberHead  = regexp.MustCompile(`^[-+]?[\d.]+$`)
)

// table is a parsed CSV file: the lower-cased header and the data rows.
type table struct {
	header []string
	rows   [][]string
}

// column returns the index of the first header matching one of names.
func (t *table) column(names ...string) int {
	for _, n := range names {
		for i, h := range t.header {
			if h == n {
				return i
			}
		}
	}
	return -1
}

// readTable parses CSV text. The delimiter is ';' when the header uses it,
// ',' otherwise. Quotes are lenient and rows may have any width.
func readTable(r io.Reader) (*table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	first, _, _ := bytes.Cut(raw, []byte("\n"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		cr.Comma = ';'
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, domain.Invalid("CSV non valido: %v", err)
	}
	if len(records) == 0 {
		return nil, domain.Invalid("il file CSV è vuoto")
	}
	t := &table{header: make([]string, len(records[0]))}
	for i, h := range records[0] {
		t.header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// rejoin merges unquoted decimal commas that split a numeric column in two,
// e.g. "15,50" read as "15" and "50", while the row is wider than width.
// numeric lists the numeric column indexes in ascending order.
func rejoin(row []string, width int, numeric ...int) []string {
	out := append([]string(nil), row...)
	for _, idx := range numeric {
		if len(out) <= width {
			break
		}
		if idx+1 >= len(out) {
			continue
		}
		head, tail := strings.TrimSpace(out[idx]), strings.TrimSpace(out[idx+1])
		if numberHead.MatchString(head) && decimalTail.MatchString(tail) {
			out[idx] = head + "," + tail
			out = append(out[:idx+1], out[idx+2:]...)
		}
	}
	return out
}

// ParseAmount reads an Italian (1.234,56) or US (1,234.56) number. With
// both separators the last one is the decimal mark; with a single kind it
// is the decimal mark unless it repeats.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "€"), "€")
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToUpper(s), "EUR"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, domain.Invalid("importo mancante")
	}

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case dot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.Invalid("importo non valido: %q", s)
	}
	return d, nil
}

// ParseDate accepts the day-first and ISO layouts found in bank exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, domain.Invalid("data non valida: %q", s)
}
