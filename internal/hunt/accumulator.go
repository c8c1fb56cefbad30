package hunt

import (
	"sort"
	"sync"

	"github.com/darrassipro/email-hunter/internal/classify"
)

// Email origins tracked by the run statistics.
const (
	sourceSnippet = "snippet"
	sourcePage    = "page"
)

// accumulator owns all run state. Page-visit workers share it, so every
// mutation happens under the mutex; the global URL budget is a reservation
// counter decremented before a visit starts.
type accumulator struct {
	mu sync.Mutex

	budget int

	hrSeen  map[string]struct{}
	genSeen map[string]struct{}
	hr      []string
	general []string

	scraped    []PageVisit
	failed     []FailedURL
	searchURLs []string
	stats      Stats
}

func newAccumulator(budget int) *accumulator {
	return &accumulator{
		budget:  budget,
		hrSeen:  make(map[string]struct{}),
		genSeen: make(map[string]struct{}),
	}
}

// reserveVisit claims one unit of the global URL budget. Visits must not
// start without a successful reservation.
func (a *accumulator) reserveVisit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.budget <= 0 {
		return false
	}
	a.budget--
	return true
}

func (a *accumulator) budgetExhausted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.budget <= 0
}

func (a *accumulator) addSearchURL(u string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.searchURLs = append(a.searchURLs, u)
}

func (a *accumulator) addVisit(v PageVisit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scraped = append(a.scraped, v)
}

func (a *accumulator) addFailed(f FailedURL) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failed = append(a.failed, f)
}

// mergeEmails folds a classification into the run sets. HR wins conflicts:
// an address already filed general moves to HR when an HR sighting arrives,
// and an address already in HR never files as general again.
func (a *accumulator) mergeEmails(sets classify.Sets, source string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, addr := range sets.HR {
		if _, ok := a.hrSeen[addr]; ok {
			continue
		}
		if _, ok := a.genSeen[addr]; ok {
			delete(a.genSeen, addr)
			a.general = removeString(a.general, addr)
		}
		a.hrSeen[addr] = struct{}{}
		a.hr = append(a.hr, addr)
		if source == sourceSnippet {
			a.stats.SnippetHR++
		} else {
			a.stats.PageHR++
		}
	}

	for _, addr := range sets.General {
		if _, ok := a.hrSeen[addr]; ok {
			continue
		}
		if _, ok := a.genSeen[addr]; ok {
			continue
		}
		a.genSeen[addr] = struct{}{}
		a.general = append(a.general, addr)
		if source == sourceSnippet {
			a.stats.SnippetGeneral++
		} else {
			a.stats.PageGeneral++
		}
	}
}

// result snapshots the accumulated state. Under HR focus the lists keep
// first-seen order so HR leads the merged listing; otherwise both lists
// are sorted lexicographically.
func (a *accumulator) result(hrFocus bool) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	hr := append([]string(nil), a.hr...)
	general := append([]string(nil), a.general...)
	if !hrFocus {
		sort.Strings(hr)
		sort.Strings(general)
	}

	return Result{
		HREmails:      hr,
		GeneralEmails: general,
		ScrapedURLs:   append([]PageVisit(nil), a.scraped...),
		FailedURLs:    append([]FailedURL(nil), a.failed...),
		AllSearchURLs: append([]string(nil), a.searchURLs...),
		Stats:         a.stats,
	}
}

func removeString(s []string, target string) []string {
	out := s[:0]
	for _, v := range s {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
