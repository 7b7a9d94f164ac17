package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

func TestGroupByStatus(t *testing.T) {
	leads := []domain.Lead{
		{ID: "L1", Status: "Hot Lead"},
		{ID: "L2", Status: "fresh leads"},
		{ID: "L3", Status: "hot lead"},
		{ID: "L4", Status: "Support query"},
	}

	board := GroupByStatus(leads, []string{domain.StatusFreshLead, domain.StatusHotLead, domain.StatusWarm})

	require.Len(t, board.Columns, 3)
	require.Equal(t, domain.StatusFreshLead, board.Columns[0].Status)
	require.Equal(t, []domain.Lead{leads[1]}, board.Columns[0].Leads)
	require.Equal(t, []domain.Lead{leads[0], leads[2]}, board.Columns[1].Leads)
	require.Empty(t, board.Columns[2].Leads)
	require.NotNil(t, board.Columns[2].Leads)
	require.Equal(t, 1, board.Unplaced)
}

func TestGroupByStatus_DefaultColumns(t *testing.T) {
	board := GroupByStatus(nil, nil)
	require.Len(t, board.Columns, len(DefaultKanbanColumns))
}

func TestResolveColumn(t *testing.T) {
	columns := []string{domain.StatusFreshLead, domain.StatusHotLead}

	status, ok := ResolveColumn(columns, " HOT LEAD ")
	require.True(t, ok)
	require.Equal(t, domain.StatusHotLead, status)

	_, ok = ResolveColumn(columns, "lead-42")
	require.False(t, ok)
}
