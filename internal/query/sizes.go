package query

import "strings"

// sizeRanges expands range tokens offered by the size filter.
var sizeRanges = map[string][]string{
	"S-L":   {"S", "M", "L"},
	"XS-M":  {"XS", "S", "M"},
	"M-XL":  {"M", "L", "XL"},
	"L-XXL": {"L", "XL", "XXL"},
}

// ParseSizeFilter turns a size filter value into the set of sizes it
// matches. A value is a single size ("M"), a comma list ("S, M, XL") or a
// known range token ("S-L"). Unknown range tokens match literally.
func ParseSizeFilter(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if strings.Contains(value, ",") {
		var out []string
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if sizes, ok := sizeRanges[value]; ok {
		return append([]string(nil), sizes...)
	}
	return []string{value}
}
