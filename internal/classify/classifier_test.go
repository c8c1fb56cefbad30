package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyGenericPrefixDiscardedUnderHRFocus(t *testing.T) {
	t.Parallel()

	sets := Classify([]string{"info@acme.com", "support@acme.com", "hr@acme.com"}, "", true)
	require.Equal(t, []string{"hr@acme.com"}, sets.HR)
	require.Empty(t, sets.General)
	require.NotContains(t, sets.All, "info@acme.com")
}

func TestClassifyGenericPrefixFiledGeneralWithoutHRFocus(t *testing.T) {
	t.Parallel()

	sets := Classify([]string{"info@acme.com", "sales@acme.com"}, "", false)
	require.Empty(t, sets.HR)
	require.Equal(t, []string{"info@acme.com", "sales@acme.com"}, sets.General)
}

func TestClassifyHRKeywordSubstring(t *testing.T) {
	t.Parallel()

	sets := Classify([]string{
		"recrutement@acme.ma",
		"talent.acquisition@acme.com",
		"jobs@acme.com",
		"accounting@acme.com",
	}, "", false)
	require.ElementsMatch(t, []string{"recrutement@acme.ma", "talent.acquisition@acme.com", "jobs@acme.com"}, sets.HR)
	require.Equal(t, []string{"accounting@acme.com"}, sets.General)
}

func TestClassifyPersonShapeUnderHRFocus(t *testing.T) {
	t.Parallel()

	sets := Classify([]string{"chris.miller@acme.com"}, "", true)
	require.Equal(t, []string{"chris.miller@acme.com"}, sets.HR)

	sets = Classify([]string{"chris.miller@acme.com"}, "quarterly revenue report", false)
	require.Equal(t, []string{"chris.miller@acme.com"}, sets.General)
}

func TestClassifyPersonShapePromotedByContext(t *testing.T) {
	t.Parallel()

	ctx := "Join our team! Send applications to our recruitment department."
	sets := Classify([]string{"amina.berrada@acme.ma"}, ctx, false)
	require.Equal(t, []string{"amina.berrada@acme.ma"}, sets.HR)
}

func TestClassifyOutputsAreDisjoint(t *testing.T) {
	t.Parallel()

	cands := []string{
		"hr@acme.com", "jobs@acme.com", "chris.miller@acme.com",
		"random@acme.com", "info@acme.com", "HR@ACME.COM",
	}
	sets := Classify(cands, "", true)

	inHR := make(map[string]struct{})
	for _, e := range sets.HR {
		inHR[e] = struct{}{}
	}
	for _, e := range sets.General {
		_, clash := inHR[e]
		require.False(t, clash, "hr and general must be disjoint: %s", e)
	}
	require.Len(t, sets.All, len(sets.HR)+len(sets.General))
}

func TestClassifyDeduplicatesCaseInsensitively(t *testing.T) {
	t.Parallel()

	sets := Classify([]string{"HR@acme.com", "hr@acme.com", "hr@ACME.com"}, "", true)
	require.Equal(t, []string{"hr@acme.com"}, sets.HR)
}

func TestClassifySkipsNonAddresses(t *testing.T) {
	t.Parallel()

	sets := Classify([]string{"", "   ", "no-at-sign"}, "", false)
	require.Empty(t, sets.All)
}
