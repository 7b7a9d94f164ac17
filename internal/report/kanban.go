// Package report composes the visible, filtered lead sequence into the boards,
// exports and aggregates consumed by the API.
package report

import "github.com/spec-kit/admissions-crm/internal/domain"

// DefaultKanbanColumns is used when no column list is configured.
var DefaultKanbanColumns = []string{
	domain.StatusFreshLead,
	domain.StatusHotLead,
	domain.StatusWarm,
	domain.StatusFollowup,
	domain.StatusCallBack,
	domain.StatusNotInterested,
	domain.StatusAdmissionDone,
}

// Column is one status lane of the board.
type Column struct {
	Status string
	Leads  []domain.Lead
}

// Board is the kanban grouping of a lead sequence.
type Board struct {
	Columns []Column
	// Unplaced counts leads whose status matches no column.
	Unplaced int
}

// GroupByStatus places each lead in the column whose status normalizes to the
// lead's status. Column order follows columns; lead order within a column follows leads.
func GroupByStatus(leads []domain.Lead, columns []string) Board {
	if len(columns) == 0 {
		columns = DefaultKanbanColumns
	}

	board := Board{Columns: make([]Column, len(columns))}
	index := make(map[string]int, len(columns))
	for i, status := range columns {
		board.Columns[i] = Column{Status: status, Leads: []domain.Lead{}}
		index[domain.NormalizeStatus(status)] = i
	}

	for _, lead := range leads {
		i, ok := index[domain.NormalizeStatus(lead.Status)]
		if !ok {
			board.Unplaced++
			continue
		}
		board.Columns[i].Leads = append(board.Columns[i].Leads, lead)
	}
	return board
}

// ResolveColumn returns the configured column matching target. A drag onto
// anything that is not a column is rejected.
func ResolveColumn(columns []string, target string) (string, bool) {
	if len(columns) == 0 {
		columns = DefaultKanbanColumns
	}
	for _, status := range columns {
		if domain.SameStatus(status, target) {
			return status, true
		}
	}
	return "", false
}
