package amadeus

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// cityCodes maps well-known destination cities to their IATA city codes. The
// assistant usually passes the code directly, but users phrase city names in
// free text, so ResolveCityCode also accepts (possibly misspelled) names.
var cityCodes = map[string]string{
	"amsterdam":      "AMS",
	"athens":         "ATH",
	"bangkok":        "BKK",
	"barcelona":      "BCN",
	"berlin":         "BER",
	"boston":         "BOS",
	"budapest":       "BUD",
	"buenos aires":   "BUE",
	"cairo":          "CAI",
	"chicago":        "CHI",
	"dubai":          "DXB",
	"dublin":         "DUB",
	"istanbul":       "IST",
	"lisbon":         "LIS",
	"london":         "LON",
	"los angeles":    "LAX",
	"madrid":         "MAD",
	"miami":          "MIA",
	"new york":       "NYC",
	"paris":          "PAR",
	"prague":         "PRG",
	"rio de janeiro": "RIO",
	"rome":           "ROM",
	"san francisco":  "SFO",
	"singapore":      "SIN",
	"sydney":         "SYD",
	"tokyo":          "TYO",
	"vienna":         "VIE",
}

// ResolveCityCode turns user input into an IATA city code. Three-letter
// uppercase-able input is taken as a code verbatim; anything else is matched
// against the known city names with typo tolerance.
func (s *Service) ResolveCityCode(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("city code is required")
	}

	if looksLikeIATACode(trimmed) {
		return strings.ToUpper(trimmed), nil
	}

	normalized := strings.ToLower(trimmed)
	if code, ok := cityCodes[normalized]; ok {
		return code, nil
	}

	names := make([]string, 0, len(cityCodes))
	for name := range cityCodes {
		names = append(names, name)
	}

	// First pass: the input read as a (possibly partial) city name.
	if ranks := fuzzy.RankFindNormalizedFold(normalized, names); len(ranks) > 0 {
		best := ranks[0]
		for _, rank := range ranks[1:] {
			if rank.Distance < best.Distance {
				best = rank
			}
		}
		return cityCodes[best.Target], nil
	}

	// Second pass: a known city name embedded in longer input, e.g.
	// "Paris, France". Prefer the longest name so "new york" beats "york".
	match := ""
	for _, name := range names {
		if fuzzy.MatchNormalizedFold(name, normalized) && len(name) > len(match) {
			match = name
		}
	}
	if match != "" {
		return cityCodes[match], nil
	}

	return "", fmt.Errorf("unknown city %q", input)
}

func looksLikeIATACode(input string) bool {
	if len(input) != 3 {
		return false
	}
	for _, r := range input {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return strings.ToUpper(input) == input
}
