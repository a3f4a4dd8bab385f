package nlp

import (
	"regexp"
	"sort"
	"strings"
)

// CountryMention is a country found in text with its mention count.
type CountryMention struct {
	Name  string
	Count int
}

// countryAliases maps lower-case names and demonyms to a display name.
var countryAliases = map[string]string{
	"united states": "United States", "usa": "United States", "u.s.": "United States", "america": "United States", "american": "United States",
	"china": "China", "chinese": "China",
	"russia": "Russia", "russian": "Russia",
	"united kingdom": "United Kingdom", "uk": "United Kingdom", "britain": "United Kingdom", "british": "United Kingdom",
	"germany": "Germany", "german": "Germany",
	"france": "France", "french": "France",
	"japan": "Japan", "japanese": "Japan",
	"india": "India", "indian": "India",
	"ukraine": "Ukraine", "ukrainian": "Ukraine",
	"israel": "Israel", "israeli": "Israel",
	"iran": "Iran", "iranian": "Iran",
	"north korea": "North Korea",
	"south korea": "South Korea",
	"taiwan":      "Taiwan",
	"canada":      "Canada", "canadian": "Canada",
	"australia": "Australia", "australian": "Australia",
	"brazil": "Brazil", "brazilian": "Brazil",
	"mexico": "Mexico", "mexican": "Mexico",
	"italy": "Italy", "italian": "Italy",
	"spain": "Spain", "spanish": "Spain",
	"turkey": "Turkey", "turkish": "Turkey",
	"saudi arabia": "Saudi Arabia",
	"egypt":        "Egypt", "egyptian": "Egypt",
	"south africa": "South Africa",
	"nigeria":      "Nigeria", "nigerian": "Nigeria",
	"indonesia": "Indonesia", "indonesian": "Indonesia",
	"pakistan": "Pakistan", "pakistani": "Pakistan",
	"poland": "Poland", "polish": "Poland",
	"netherlands": "Netherlands", "dutch": "Netherlands",
	"switzerland": "Switzerland", "swiss": "Switzerland",
	"sweden": "Sweden", "swedish": "Sweden",
	"argentina": "Argentina",
	"vietnam":   "Vietnam", "vietnamese": "Vietnam",
	"singapore": "Singapore",
}

var countryRegex = buildCountryRegex()

func buildCountryRegex() *regexp.Regexp {
	names := make([]string, 0, len(countryAliases))
	for alias := range countryAliases {
		names = append(names, regexp.QuoteMeta(alias))
	}
	// longest first so "south korea" wins over "korea"-style prefixes
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)(?:\W|$)`)
}

// LookupCountry resolves a country name or demonym to its display name.
func LookupCountry(s string) (string, bool) {
	name, ok := countryAliases[strings.ToLower(strings.TrimSpace(s))]
	return name, ok
}

// ExtractCountries counts country mentions in text, ordered by count then name.
func ExtractCountries(text string) []CountryMention {
	counts := make(map[string]int)
	for _, m := range countryRegex.FindAllStringSubmatch(text, -1) {
		if name, ok := LookupCountry(m[1]); ok {
			counts[name]++
		}
	}

	out := make([]CountryMention, 0, len(counts))
	for name, n := range counts {
		out = append(out, CountryMention{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
