package miner

import "strings"

// DefaultCountries is the allowlist applied when the run does not configure
// one.
var DefaultCountries = []string{"ID", "US", "MX", "AR", "CL", "CO"}

// CountryOther marks a candidate whose origin could not be resolved to a
// supported country. Such candidates are always filtered out.
const CountryOther = "other"

// countrySubreddits maps each supported country to the communities assumed to
// belong to it. Lookups are case-insensitive on the community name.
var countrySubreddits = map[string][]string{
	"ID": {"indonesia", "jakarta", "surabaya", "bali", "id"},
	"US": {"askanamerican", "askacademia", "parenting", "college", "unitedstates", "usa"},
	"MX": {"mexico", "monterrey", "guadalajara"},
	"AR": {"argentina", "buenosaires", "devsarg"},
	"CL": {"chile", "santiago"},
	"CO": {"colombia", "bogota", "medellin"},
}

// InferCountry resolves a candidate's country from its originating community,
// falling back to detected Indonesian as a language heuristic. A community in
// the table wins regardless of language.
func InferCountry(subreddit, lang string) string {
	subLower := strings.ToLower(subreddit)
	for code, subs := range countrySubreddits {
		for _, s := range subs {
			if s == subLower {
				return code
			}
		}
	}
	if lang == "id" {
		return "ID"
	}
	return CountryOther
}
