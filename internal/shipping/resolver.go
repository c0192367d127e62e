package shipping

import (
	"strings"

	"golang.org/x/text/width"
)

// ResolveFee returns the flat shipping fee for the given prefecture.
// A blank prefecture means "destination not selected yet" and reports
// ok=false without scanning the table; an unknown name also reports
// ok=false. The lookup is pure and side-effect free.
func ResolveFee(prefecture string) (int64, bool) {
	name := Normalize(prefecture)
	if name == "" {
		return 0, false
	}
	for _, region := range regionTable {
		for _, member := range region.Prefectures {
			if member == name {
				return region.Fee, true
			}
		}
	}
	return 0, false
}

// Normalize folds half-width/full-width variants and trims surrounding
// whitespace so client input matches the table's canonical names.
func Normalize(prefecture string) string {
	return strings.TrimSpace(width.Fold.String(prefecture))
}

// Prefectures lists all serviceable prefecture names in table order,
// suitable for the signup pulldown.
func Prefectures() []string {
	var out []string
	for _, region := range regionTable {
		out = append(out, region.Prefectures...)
	}
	return out
}
