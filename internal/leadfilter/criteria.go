// Package leadfilter narrows a visibility-restricted lead sequence with the
// search, categorical and date criteria exposed by the lead views.
package leadfilter

import "strings"

// AllOption is the single-select value meaning "no restriction".
const AllOption = "All"

// DateMode selects how a DateRange compares a lead's date against its bounds.
type DateMode string

const (
	DateOn      DateMode = "on"
	DateBefore  DateMode = "before"
	DateAfter   DateMode = "after"
	DateBetween DateMode = "between"
)

// DateRange is a filter on the date portion (YYYY-MM-DD) of a timestamp.
// On is used by on/before/after; From and To by between.
type DateRange struct {
	Mode DateMode `json:"mode,omitempty"`
	On   string   `json:"on,omitempty"`
	From string   `json:"from,omitempty"`
	To   string   `json:"to,omitempty"`
}

// Active reports whether the range restricts anything. Incomplete ranges are no-ops.
func (d DateRange) Active() bool {
	switch d.Mode {
	case DateOn, DateBefore, DateAfter:
		return strings.TrimSpace(d.On) != ""
	case DateBetween:
		return strings.TrimSpace(d.From) != "" && strings.TrimSpace(d.To) != ""
	default:
		return false
	}
}

// Match compares an ISO date string. An empty date never matches an active range.
func (d DateRange) Match(date string) bool {
	if !d.Active() {
		return true
	}
	if date == "" {
		return false
	}
	on := strings.TrimSpace(d.On)
	switch d.Mode {
	case DateOn:
		return date == on
	case DateBefore:
		return date < on
	case DateAfter:
		return date > on
	case DateBetween:
		return date >= strings.TrimSpace(d.From) && date <= strings.TrimSpace(d.To)
	}
	return true
}

// Field names a lead attribute covered by free-text search.
type Field string

const (
	FieldFullName       Field = "fullName"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldCourseInterest Field = "courseInterest"
	FieldCountry        Field = "country"
	FieldStatus         Field = "status"
	FieldQualification  Field = "qualification"
)

// DefaultSearchFields are searched when Criteria.SearchFields is empty.
var DefaultSearchFields = []Field{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldCourseInterest,
	FieldCountry,
	FieldStatus,
}

// Criteria is the full set of optional lead filters. All active criteria are ANDed.
type Criteria struct {
	Search       string  `json:"search,omitempty"`
	SearchFields []Field `json:"search_fields,omitempty"`

	// Single-select filters used by the kanban and table views. "" and "All" are no-ops.
	Status    string `json:"status,omitempty"`
	Counselor string `json:"counselor,omitempty"`

	// Multi-select filters used by the advanced panel. Empty sets are no-ops.
	Statuses       []string `json:"statuses,omitempty"`
	Counselors     []string `json:"counselors,omitempty"`
	Countries      []string `json:"countries,omitempty"`
	Sources        []string `json:"sources,omitempty"`
	Qualifications []string `json:"qualifications,omitempty"`

	CreatedOn string    `json:"created_on,omitempty"`
	UpdatedOn string    `json:"updated_on,omitempty"`
	Modified  DateRange `json:"modified,omitempty"`
}

// IsEmpty reports whether no criterion is active.
func (c Criteria) IsEmpty() bool {
	return strings.TrimSpace(c.Search) == "" &&
		!singleActive(c.Status) &&
		!singleActive(c.Counselor) &&
		len(c.Statuses) == 0 &&
		len(c.Counselors) == 0 &&
		len(c.Countries) == 0 &&
		len(c.Sources) == 0 &&
		len(c.Qualifications) == 0 &&
		strings.TrimSpace(c.CreatedOn) == "" &&
		strings.TrimSpace(c.UpdatedOn) == "" &&
		!c.Modified.Active()
}

func singleActive(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != AllOption
}
