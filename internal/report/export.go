package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

// UnknownAssignee is rendered for leads assigned to a user that no longer exists.
const UnknownAssignee = "Unknown"

// LeadHeaders is the column list of the lead table export.
var LeadHeaders = []string{
	"ID", "Full Name", "Email", "Phone", "Country", "Qualification", "Source",
	"Status", "Assigned To", "Course Interest", "Created At", "Updated At",
	"Notes", "Notes Date",
}

// AssigneeName renders an assignee reference for display.
func AssigneeName(assignedTo string, users map[string]domain.User) string {
	if assignedTo == "" {
		return ""
	}
	if user, ok := users[assignedTo]; ok {
		return user.Name
	}
	return UnknownAssignee
}

// UsersByID indexes a user list.
func UsersByID(users []domain.User) map[string]domain.User {
	idx := make(map[string]domain.User, len(users))
	for _, user := range users {
		idx[user.ID] = user
	}
	return idx
}

// WriteLeadsCSV writes the lead table in LeadHeaders order.
func WriteLeadsCSV(w io.Writer, leads []domain.Lead, users []domain.User) error {
	byID := UsersByID(users)
	writer := csv.NewWriter(w)
	if err := writer.Write(LeadHeaders); err != nil {
		return err
	}
	for _, lead := range leads {
		record := []string{
			lead.ID,
			lead.FullName,
			lead.Email,
			lead.Phone,
			lead.Country,
			lead.Qualification,
			lead.Source,
			lead.Status,
			AssigneeName(lead.AssignedTo, byID),
			lead.CourseInterest,
			formatTimestamp(lead.CreatedAt),
			formatTimestamp(lead.UpdatedAt),
			lead.Notes,
			lead.NotesDate,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// RowError describes an imported row that could not be turned into a lead.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ErrMissingHeader is returned when the import has no usable header row.
var ErrMissingHeader = errors.New("csv import: header row must include a name column")

// importColumns maps accepted header spellings to lead fields. Both the export
// headers and the camelCase field names are accepted.
var importColumns = map[string]string{
	"full name":       "fullName",
	"fullname":        "fullName",
	"name":            "fullName",
	"email":           "email",
	"phone":           "phone",
	"country":         "country",
	"qualification":   "qualification",
	"source":          "source",
	"status":          "status",
	"assigned to":     "assignedTo",
	"assignedto":      "assignedTo",
	"course interest": "courseInterest",
	"courseinterest":  "courseInterest",
	"priority":        "priority",
	"location":        "location",
	"notes":           "notes",
	"notes date":      "notesDate",
	"notesdate":       "notesDate",
}

// ReadLeadsCSV parses an uploaded lead sheet. Rows without a name are reported
// and skipped. The assignedTo column may hold a user ID or a user name.
func ReadLeadsCSV(r io.Reader, users []domain.User) ([]domain.Lead, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrMissingHeader
		}
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	fields := make([]string, len(header))
	hasName := false
	for i, column := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(column, "\ufeff")))
		fields[i] = importColumns[key]
		if fields[i] == "fullName" {
			hasName = true
		}
	}
	if !hasName {
		return nil, nil, ErrMissingHeader
	}

	byName := make(map[string]string, len(users))
	byID := UsersByID(users)
	for _, user := range users {
		byName[strings.ToLower(user.Name)] = user.ID
	}

	var (
		leads  []domain.Lead
		issues []RowError
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, nil, fmt.Errorf("read csv: %w", err)
			}
			issues = append(issues, RowError{Row: parseErr.StartLine, Message: err.Error()})
			continue
		}
		// Quoted cells may span lines; report the line the record starts on.
		row, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}

		lead := domain.Lead{}
		for i, value := range record {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			assignField(&lead, fields[i], strings.TrimSpace(value))
		}
		if lead.FullName == "" {
			issues = append(issues, RowError{Row: row, Message: "full name is required"})
			continue
		}
		if lead.NotesDate != "" {
			if _, err := time.Parse(domain.NotesDateLayout, lead.NotesDate); err != nil {
				issues = append(issues, RowError{Row: row, Message: "notes date must be YYYY-MM-DD HH:MM"})
				continue
			}
		}
		if lead.AssignedTo != "" {
			if _, ok := byID[lead.AssignedTo]; !ok {
				lead.AssignedTo = byName[strings.ToLower(lead.AssignedTo)]
			}
		}
		if lead.Status == "" {
			lead.Status = domain.StatusFreshLead
		} else {
			lead.Status = domain.CanonicalStatus(lead.Status)
		}
		leads = append(leads, lead)
	}
	return leads, issues, nil
}

func assignField(lead *domain.Lead, field, value string) {
	switch field {
	case "fullName":
		lead.FullName = value
	case "email":
		lead.Email = value
	case "phone":
		lead.Phone = value
	case "country":
		lead.Country = value
	case "qualification":
		lead.Qualification = value
	case "source":
		lead.Source = value
	case "status":
		lead.Status = value
	case "assignedTo":
		lead.AssignedTo = value
	case "courseInterest":
		lead.CourseInterest = value
	case "priority":
		lead.Priority = value
	case "location":
		lead.Location = value
	case "notes":
		lead.Notes = value
	case "notesDate":
		lead.NotesDate = value
	}
}

func isBlank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
