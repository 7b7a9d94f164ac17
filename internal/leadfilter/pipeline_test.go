package leadfilter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/admissions-crm/internal/domain"
)

func day(value string) time.Time {
	t, err := time.Parse(isoDate, value)
	if err != nil {
		panic(err)
	}
	return t.Add(10 * time.Hour)
}

func sampleLeads() []domain.Lead {
	return []domain.Lead{
		{ID: "L1", FullName: "Ananya Rao", Email: "ananya@example.com", Phone: "+91 90000 00001", Country: "India", Qualification: "MBBS", Source: "Website", Status: "Hot Lead", AssignedTo: "c1", CourseInterest: "Fellowship in Diabetology", CreatedAt: day("2024-11-20"), UpdatedAt: day("2024-12-05")},
		{ID: "L2", FullName: "Rahul Mehta", Email: "rahul@example.com", Phone: "+91 90000 00002", Country: "India", Qualification: "MD", Source: "Facebook", Status: "Fresh Lead", AssignedTo: "c2", CourseInterest: "PG Diploma in Cardiology", CreatedAt: day("2024-11-25"), UpdatedAt: day("2024-11-30")},
		{ID: "L3", FullName: "Sara Khan", Email: "sara@example.com", Phone: "+971 500 0003", Country: "UAE", Qualification: "MBBS", Source: "Website", Status: "Followup", AssignedTo: "c1", CourseInterest: "Certification in Ultrasound", CreatedAt: day("2024-12-01"), UpdatedAt: day("2024-12-15")},
		{ID: "L4", FullName: "Imran Ali", Email: "imran@example.com", Phone: "+91 90000 00004", Country: "India", Qualification: "BDS", Source: "Referral", Status: "Admission done", AssignedTo: "c3", CourseInterest: "Fellowship in Diabetology", CreatedAt: day("2024-12-02")},
	}
}

func ids(leads []domain.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, lead := range leads {
		out = append(out, lead.ID)
	}
	return out
}

func TestApply_EmptyCriteriaIsIdentity(t *testing.T) {
	leads := sampleLeads()

	result := Apply(leads, Criteria{})

	require.Equal(t, leads, result)
	require.True(t, Criteria{}.IsEmpty())
	require.True(t, Criteria{Status: AllOption, Counselor: " "}.IsEmpty())
}

func TestApply_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	result := Apply(sampleLeads(), Criteria{Search: "ananya"})
	require.Equal(t, []string{"L1"}, ids(result))

	result = Apply(sampleLeads(), Criteria{Search: "DIABETOLOGY"})
	require.Equal(t, []string{"L1", "L4"}, ids(result))

	result = Apply(sampleLeads(), Criteria{Search: "uae"})
	require.Equal(t, []string{"L3"}, ids(result))

	result = Apply(sampleLeads(), Criteria{Search: "hot lead"})
	require.Equal(t, []string{"L1"}, ids(result))
}

func TestApply_SearchFieldsCanBeExtended(t *testing.T) {
	result := Apply(sampleLeads(), Criteria{Search: "bds"})
	require.Empty(t, result)

	result = Apply(sampleLeads(), Criteria{
		Search:       "bds",
		SearchFields: append(append([]Field(nil), DefaultSearchFields...), FieldQualification),
	})
	require.Equal(t, []string{"L4"}, ids(result))
}

func TestApply_SingleSelectStatusNormalizes(t *testing.T) {
	result := Apply(sampleLeads(), Criteria{Status: "  hot LEAD "})
	require.Equal(t, []string{"L1"}, ids(result))

	result = Apply(sampleLeads(), Criteria{Status: AllOption})
	require.Len(t, result, 4)
}

func TestApply_MultiSelectStatus(t *testing.T) {
	result := Apply(sampleLeads(), Criteria{Statuses: []string{"fresh lead", "FOLLOWUP"}})
	require.Equal(t, []string{"L2", "L3"}, ids(result))
}

func TestApply_StatusAliasMatchesCanonical(t *testing.T) {
	result := Apply(sampleLeads(), Criteria{Statuses: []string{"Follow up"}})
	require.Equal(t, []string{"L3"}, ids(result))
}

func TestApply_CategoricalSetsAreANDed(t *testing.T) {
	result := Apply(sampleLeads(), Criteria{
		Countries: []string{"India"},
		Sources:   []string{"Website", "Referral"},
	})
	require.Equal(t, []string{"L1", "L4"}, ids(result))

	result = Apply(sampleLeads(), Criteria{
		Counselors:     []string{"c1"},
		Qualifications: []string{"MBBS"},
		Countries:      []string{"UAE"},
	})
	require.Equal(t, []string{"L3"}, ids(result))
}

func TestApply_SingleSelectCounselor(t *testing.T) {
	result := Apply(sampleLeads(), Criteria{Counselor: "c2"})
	require.Equal(t, []string{"L2"}, ids(result))
}

func TestApply_CreatedAndUpdatedOn(t *testing.T) {
	result := Apply(sampleLeads(), Criteria{CreatedOn: "2024-12-01"})
	require.Equal(t, []string{"L3"}, ids(result))

	result = Apply(sampleLeads(), Criteria{CreatedOn: "2024-12"})
	require.Equal(t, []string{"L3", "L4"}, ids(result))

	result = Apply(sampleLeads(), Criteria{UpdatedOn: "2024-11-30"})
	require.Equal(t, []string{"L2"}, ids(result))
}

func TestApply_ModifiedBetweenIsInclusive(t *testing.T) {
	c := Criteria{Modified: DateRange{Mode: DateBetween, From: "2024-12-01", To: "2024-12-10"}}
	require.Equal(t, []string{"L1"}, ids(Apply(sampleLeads(), c)))

	c.Modified.To = "2024-12-15"
	require.Equal(t, []string{"L1", "L3"}, ids(Apply(sampleLeads(), c)))
}

func TestApply_ModifiedModes(t *testing.T) {
	on := Criteria{Modified: DateRange{Mode: DateOn, On: "2024-12-05"}}
	require.Equal(t, []string{"L1"}, ids(Apply(sampleLeads(), on)))

	before := Criteria{Modified: DateRange{Mode: DateBefore, On: "2024-12-05"}}
	require.Equal(t, []string{"L2"}, ids(Apply(sampleLeads(), before)))

	after := Criteria{Modified: DateRange{Mode: DateAfter, On: "2024-12-05"}}
	require.Equal(t, []string{"L3"}, ids(Apply(sampleLeads(), after)))
}

func TestApply_IncompleteRangeIsNoOp(t *testing.T) {
	c := Criteria{Modified: DateRange{Mode: DateBetween, From: "2024-12-01"}}
	require.True(t, c.IsEmpty())
	require.Len(t, Apply(sampleLeads(), c), 4)

	c = Criteria{Modified: DateRange{Mode: DateOn}}
	require.Len(t, Apply(sampleLeads(), c), 4)
}

func TestApply_MissingDateNeverMatchesActiveFilter(t *testing.T) {
	// L4 has no update timestamp.
	c := Criteria{Modified: DateRange{Mode: DateBefore, On: "2030-01-01"}}
	require.Equal(t, []string{"L1", "L2", "L3"}, ids(Apply(sampleLeads(), c)))

	c = Criteria{UpdatedOn: "2024"}
	require.NotContains(t, ids(Apply(sampleLeads(), c)), "L4")
}

func TestApply_IsIdempotent(t *testing.T) {
	c := Criteria{
		Search:    "in",
		Countries: []string{"India"},
		Modified:  DateRange{Mode: DateAfter, On: "2024-11-01"},
	}

	once := Apply(sampleLeads(), c)
	twice := Apply(once, c)

	require.Equal(t, once, twice)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	leads := sampleLeads()
	snapshot := sampleLeads()

	_ = Apply(leads, Criteria{Status: "Hot Lead"})

	require.Equal(t, snapshot, leads)
}

func TestMatches(t *testing.T) {
	lead := sampleLeads()[0]
	require.True(t, Matches(lead, Criteria{Search: "RAO"}))
	require.False(t, Matches(lead, Criteria{Counselor: "c9"}))
}

func TestDatePart(t *testing.T) {
	require.Equal(t, "", DatePart(time.Time{}))
	ist := time.FixedZone("IST", 5*3600+1800)
	require.Equal(t, "2024-12-04", DatePart(time.Date(2024, 12, 5, 2, 0, 0, 0, ist)))
}
