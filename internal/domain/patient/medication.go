package patient

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Tally is a resolved medication with its piece count. Name keeps the raw
// trimmed medication string, embedded "(N pcs)" suffix and all; callers must
// not assume a clean drug name.
type Tally struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

var (
	firstNumberRe = regexp.MustCompile(`\d+`)
	pcsSuffixRe   = regexp.MustCompile(`(?i)\((\d+)\s*pcs\)`)
)

// ParseMedication resolves a stored medication field and its optional raw
// quantity into a tally. Returns nil for "no medication": an empty name,
// "none", or a leftover select placeholder. Quantity resolution order: the
// first number in a textual qtyRaw, a numeric qtyRaw, the "(N pcs)" suffix
// embedded in the name, and finally a default of 1.
func ParseMedication(name string, qtyRaw any) *Tally {
	lower := strings.ToLower(name)
	if name == "" || lower == "none" || strings.Contains(lower, "select medication") {
		return nil
	}

	name = strings.TrimSpace(name)

	qty := 0
	switch v := qtyRaw.(type) {
	case string:
		if m := firstNumberRe.FindString(v); m != "" {
			qty, _ = strconv.Atoi(m)
		}
	case float64:
		qty = int(v)
	case int:
		qty = v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			qty = int(f)
		}
	}

	if qty == 0 {
		if m := pcsSuffixRe.FindStringSubmatch(name); m != nil {
			qty, _ = strconv.Atoi(m[1])
		}
	}
	if qty == 0 {
		qty = 1
	}

	return &Tally{Name: name, Qty: qty}
}
