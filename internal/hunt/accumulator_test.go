package hunt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/darrassipro/email-hunter/internal/classify"
)

func TestAccumulatorHRWinsPromotion(t *testing.T) {
	acc := newAccumulator(10)

	acc.mergeEmails(classify.Sets{General: []string{"jobs@acme.example", "info@acme.example"}}, sourcePage)
	acc.mergeEmails(classify.Sets{HR: []string{"jobs@acme.example"}}, sourceSnippet)
	// An HR sighting never demotes back to general.
	acc.mergeEmails(classify.Sets{General: []string{"jobs@acme.example"}}, sourcePage)

	result := acc.result(true)
	require.Equal(t, []string{"jobs@acme.example"}, result.HREmails)
	require.Equal(t, []string{"info@acme.example"}, result.GeneralEmails)
}

func TestAccumulatorBudgetReservation(t *testing.T) {
	acc := newAccumulator(2)
	require.True(t, acc.reserveVisit())
	require.False(t, acc.budgetExhausted())
	require.True(t, acc.reserveVisit())
	require.False(t, acc.reserveVisit())
	require.True(t, acc.budgetExhausted())
}

func TestAccumulatorOrderingPolicy(t *testing.T) {
	acc := newAccumulator(1)
	acc.mergeEmails(classify.Sets{General: []string{"zeta@a.example", "alpha@a.example"}}, sourcePage)

	require.Equal(t, []string{"zeta@a.example", "alpha@a.example"}, acc.result(true).GeneralEmails)
	require.Equal(t, []string{"alpha@a.example", "zeta@a.example"}, acc.result(false).GeneralEmails)
}
