package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Columns written back into the table by NormalizePhones.
const (
	CleanedPhoneColumn = "Cleaned Phone Numbers"
	CountryColumn      = "Country"
)

// PhoneRule maps digit strings of one exact length and one of several
// prefixes to a country and a canonical "+"-prefixed number.
type PhoneRule struct {
	Length    int
	Prefixes  []string
	Country   string
	Canonical func(digits string) string
}

// Matches reports whether digits has the rule's length and one of its prefixes.
func (r PhoneRule) Matches(digits string) bool {
	if utf8.RuneCountInString(digits) != r.Length {
		return false
	}
	for _, p := range r.Prefixes {
		if strings.HasPrefix(digits, p) {
			return true
		}
	}
	return false
}

func prepend(code string) func(string) string {
	return func(d string) string { return code + d }
}

func replaceLead(n int, code string) func(string) string {
	return func(d string) string { return code + d[n:] }
}

// PhoneRules is evaluated top to bottom and the first match wins. Lengths
// and prefixes overlap between entries (several countries share length 11),
// so the order is part of the behavior and must not be re-sorted.
var PhoneRules = []PhoneRule{
	// Turkey
	{10, []string{"5"}, "Turkey", prepend("+90")},
	{11, []string{"05"}, "Turkey", replaceLead(1, "+9")},
	{12, []string{"90"}, "Turkey", prepend("+")},
	{10, []string{"85"}, "Turkey", prepend("+90")},
	{12, []string{"9085"}, "Turkey", prepend("+")},

	// Russia
	{11, []string{"79"}, "Russia", prepend("+")},
	{11, []string{"89"}, "Russia", replaceLead(2, "+79")},
	{11, []string{"84"}, "Russia", replaceLead(2, "+74")},
	{11, []string{"88"}, "Russia", replaceLead(2, "+78")},

	// Kazakhstan
	{11, []string{"87"}, "Kazakhstan", replaceLead(2, "+77")},
	{11, []string{"77"}, "Kazakhstan", replaceLead(2, "+77")},

	// Luxembourg
	{11, []string{"99", "49"}, "Luxembourg", prepend("+352")},
	{14, []string{"352"}, "Luxembourg", prepend("+")},

	// Indonesia
	{11, []string{"98", "243", "240"}, "Indonesia", prepend("+62")},
	{13, []string{"62"}, "Indonesia", prepend("+")},

	// Germany
	{11, []string{"97"}, "Germany", prepend("+49")},
	{13, []string{"4997"}, "Germany", prepend("+")},
	{11, []string{"6"}, "Germany", prepend("+49")},

	// US
	{10, []string{"775"}, "US", prepend("+1")},
	{10, []string{"212"}, "US", prepend("+1")},
	{11, []string{"131"}, "US", prepend("+")},

	{8, []string{"185"}, "Sweden", prepend("+46")},
	{11, []string{"100"}, "Taiwan", prepend("+886")},
	{11, []string{"27"}, "South Africa", prepend("+")},
}

// PhoneRecord is the classification of one raw phone cell.
type PhoneRecord struct {
	Original  string `json:"original"`
	Sanitized string `json:"-"`
	Cleaned   string `json:"cleaned"`
	Country   string `json:"country"`
}

// Matched reports whether a rule recognized the number.
func (p PhoneRecord) Matched() bool { return p.Country != Placeholder }

// SanitizePhone keeps only decimal digits, including non-ASCII ones such as
// Arabic-Indic digits. A leading "+" is removed along with every other
// non-digit. Rule prefixes are ASCII, so a number led by a non-ASCII digit
// never matches a rule.
func SanitizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ClassifyPhone runs raw through PhoneRules. When nothing matches, Cleaned
// is the trimmed original and Country is the placeholder.
//
// Sanitizing has already removed any "+", so there is no separate branch for
// numbers that arrive in international form: they fall through to the
// placeholder like any other unmatched input.
func ClassifyPhone(raw string) PhoneRecord {
	rec := PhoneRecord{
		Original:  strings.TrimSpace(raw),
		Sanitized: SanitizePhone(raw),
	}
	for _, rule := range PhoneRules {
		if rule.Matches(rec.Sanitized) {
			rec.Cleaned = rule.Canonical(rec.Sanitized)
			rec.Country = rule.Country
			return rec
		}
	}
	rec.Cleaned = rec.Original
	rec.Country = Placeholder
	return rec
}

// NormalizePhones classifies every cell of column (nulls as empty strings)
// and writes the results into the "Cleaned Phone Numbers" and "Country"
// columns, overwriting them if present. Records are returned in row order.
func NormalizePhones(t *Table, column string) ([]PhoneRecord, error) {
	values, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	records := make([]PhoneRecord, len(values))
	cleaned := make([]Value, len(values))
	countries := make([]Value, len(values))
	for i, v := range values {
		rec := ClassifyPhone(v.Text())
		records[i] = rec
		cleaned[i] = String(rec.Cleaned)
		countries[i] = String(rec.Country)
	}

	if err := t.SetColumn(CleanedPhoneColumn, cleaned); err != nil {
		return nil, err
	}
	if err := t.SetColumn(CountryColumn, countries); err != nil {
		return nil, err
	}
	return records, nil
}
