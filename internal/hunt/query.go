package hunt

import (
	"fmt"
	"strings"
)

// BuildQueries turns a base term into an ordered, deduplicated list of
// search queries. The two core contact-intent phrases always come first:
// callers truncate the list to their query budget, and the core phrases
// must survive truncation. HR focus appends recruiting-specific phrases,
// localized vocabulary, and professional-network site restrictions.
func BuildQueries(term string, hrFocus bool, geo string) []string {
	term = strings.TrimSpace(term)
	geo = strings.TrimSpace(geo)
	if geo == "" {
		geo = DefaultCountry
	}

	queries := []string{
		fmt.Sprintf(`"%s" email contact %s`, term, geo),
		fmt.Sprintf(`"%s" ("email us" OR "contact us") %s`, term, geo),
	}

	if hrFocus {
		queries = append(queries,
			fmt.Sprintf(`"%s" ("hr@" OR "rh@" OR "recrutement@" OR "jobs@") %s`, term, geo),
			fmt.Sprintf(`"%s" careers "send your cv" email %s`, term, geo),
			fmt.Sprintf(`"%s" ("ressources humaines" OR "recrutement" OR "human resources") contact %s`, term, geo),
			fmt.Sprintf(`site:linkedin.com/in "%s" ("recruiter" OR "talent") email`, term),
			fmt.Sprintf(`site:linkedin.com/company "%s" recruiting contact`, term),
		)
	}

	seen := make(map[string]struct{}, len(queries))
	out := queries[:0]
	for _, q := range queries {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
