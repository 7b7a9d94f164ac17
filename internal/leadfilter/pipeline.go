package leadfilter

import (
	"strings"
	"time"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

const isoDate = "2006-01-02"

// Apply returns the leads matching every active criterion, preserving order.
// The input slice is never modified.
func Apply(leads []domain.Lead, c Criteria) []domain.Lead {
	m := newMatcher(c)
	result := make([]domain.Lead, 0, len(leads))
	for _, lead := range leads {
		if m.match(lead) {
			result = append(result, lead)
		}
	}
	return result
}

// Matches reports whether a single lead satisfies the criteria.
func Matches(lead domain.Lead, c Criteria) bool {
	return newMatcher(c).match(lead)
}

// DatePart returns the YYYY-MM-DD portion of a stored timestamp, or "" when unset.
func DatePart(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoDate)
}

type matcher struct {
	c          Criteria
	term       string
	fields     []Field
	statuses   map[string]struct{}
	counselors map[string]struct{}
	countries  map[string]struct{}
	sources    map[string]struct{}
	quals      map[string]struct{}
}

func newMatcher(c Criteria) matcher {
	fields := c.SearchFields
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	statuses := make(map[string]struct{}, len(c.Statuses))
	for _, s := range c.Statuses {
		statuses[domain.NormalizeStatus(s)] = struct{}{}
	}
	return matcher{
		c:          c,
		term:       strings.TrimSpace(c.Search),
		fields:     fields,
		statuses:   statuses,
		counselors: toSet(c.Counselors),
		countries:  toSet(c.Countries),
		sources:    toSet(c.Sources),
		quals:      toSet(c.Qualifications),
	}
}

func (m matcher) match(lead domain.Lead) bool {
	if !m.matchSearch(lead) {
		return false
	}
	if singleActive(m.c.Status) && !domain.SameStatus(lead.Status, m.c.Status) {
		return false
	}
	if singleActive(m.c.Counselor) && lead.AssignedTo != strings.TrimSpace(m.c.Counselor) {
		return false
	}
	if len(m.statuses) > 0 {
		if _, ok := m.statuses[domain.NormalizeStatus(lead.Status)]; !ok {
			return false
		}
	}
	if !inSet(m.counselors, lead.AssignedTo) ||
		!inSet(m.countries, lead.Country) ||
		!inSet(m.sources, lead.Source) ||
		!inSet(m.quals, lead.Qualification) {
		return false
	}
	if !matchDay(m.c.CreatedOn, lead.CreatedAt) || !matchDay(m.c.UpdatedOn, lead.UpdatedAt) {
		return false
	}
	return m.c.Modified.Match(DatePart(lead.UpdatedAt))
}

func (m matcher) matchSearch(lead domain.Lead) bool {
	if m.term == "" {
		return true
	}
	for _, field := range m.fields {
		value := fieldValue(lead, field)
		if value != "" && domain.FoldContains(value, m.term) {
			return true
		}
	}
	return false
}

func fieldValue(lead domain.Lead, field Field) string {
	switch field {
	case FieldFullName:
		return lead.FullName
	case FieldEmail:
		return lead.Email
	case FieldPhone:
		return lead.Phone
	case FieldCourseInterest:
		return lead.CourseInterest
	case FieldCountry:
		return lead.Country
	case FieldStatus:
		return lead.Status
	case FieldQualification:
		return lead.Qualification
	default:
		return ""
	}
}

// matchDay is the created/updated exact-day filter: a prefix match on the ISO date.
func matchDay(day string, ts time.Time) bool {
	day = strings.TrimSpace(day)
	if day == "" {
		return true
	}
	date := DatePart(ts)
	return date != "" && strings.HasPrefix(date, day)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, value string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[value]
	return ok
}
