// Package classify labels harvested email addresses as HR-relevant or
// general using keyword, shape, and context heuristics.
package classify

import (
	"regexp"
	"strings"
)

// Sets are the classifier's output: disjoint hr/general plus their union.
type Sets struct {
	HR      []string `json:"hr"`
	General []string `json:"general"`
	All     []string `json:"all"`
}

// genericPrefixes are role mailboxes with no recruiting value. Under
// HR-focus they are discarded outright; otherwise they file as general.
var genericPrefixes = []string{
	"info", "contact", "support", "sales", "admin", "office", "hello",
	"mail", "webmaster", "marketing", "newsletter", "noreply", "no-reply",
	"no_reply", "postmaster", "abuse", "billing", "service", "commercial",
}

// hrAddressKeywords classify by substring over the full address. The
// unanchored entries (job, career, recrut, ...) intentionally match inside
// longer words; that mirrors the established product behavior and changing
// it needs product sign-off.
var hrAddressKeywords = []string{
	"hr@", "rh@", "drh@", "recrut", "recruit", "talent", "job", "career",
	"emploi", "candidat", "hiring", "staffing", "ressourceshumaines",
	"ressources.humaines", "capitalhumain",
}

// hrContextKeywords mark surrounding page text as recruiting-flavored,
// which promotes person-shaped addresses to HR.
var hrContextKeywords = []string{
	"human resources", "ressources humaines", "recruitment", "recrutement",
	"recruiting", "careers", "carrières", "hiring", "talent acquisition",
	"emploi", "join our team", "postuler", "send your cv", "candidature",
}

// personShape matches firstname.lastname@ local parts.
var personShape = regexp.MustCompile(`^[a-z]{2,}\.[a-z]{2,}@`)

// Classify labels each candidate address. Rules apply in order: generic
// role prefixes first, then HR keyword substrings, then the
// firstname.lastname shape combined with HR focus or HR-flavored context.
// Everything else is general. The hr and general outputs are disjoint;
// All is hr followed by general.
func Classify(candidates []string, contextText string, hrFocus bool) Sets {
	ctxIsHR := containsAny(strings.ToLower(contextText), hrContextKeywords)

	var sets Sets
	seen := make(map[string]struct{}, len(candidates))
	for _, cand := range candidates {
		addr := strings.ToLower(strings.TrimSpace(cand))
		if addr == "" || !strings.Contains(addr, "@") {
			continue
		}
		if _, dup := seen[addr]; dup {
			continue
		}
		seen[addr] = struct{}{}

		if hasGenericPrefix(addr) {
			if hrFocus {
				continue
			}
			sets.General = append(sets.General, addr)
			continue
		}

		switch {
		case containsAny(addr, hrAddressKeywords):
			sets.HR = append(sets.HR, addr)
		case personShape.MatchString(addr) && (hrFocus || ctxIsHR):
			sets.HR = append(sets.HR, addr)
		default:
			sets.General = append(sets.General, addr)
		}
	}

	sets.All = make([]string, 0, len(sets.HR)+len(sets.General))
	sets.All = append(sets.All, sets.HR...)
	sets.All = append(sets.All, sets.General...)
	return sets
}

func hasGenericPrefix(addr string) bool {
	local := addr
	if at := strings.Index(addr, "@"); at >= 0 {
		local = addr[:at]
	}
	for _, p := range genericPrefixes {
		if strings.HasPrefix(local, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
