package report

import (
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/admissions-crm/internal/access"
	"github.com/spec-kit/admissions-crm/internal/domain"
)

const (
	topCourseLimit  = 10
	courseLabelRune = 30
)

// Count is a labelled tally.
type Count struct {
	Label string
	Count int
}

// Performance is a per-user conversion summary.
type Performance struct {
	UserID         string
	Name           string
	Leads          int
	HotLeads       int
	Conversions    int
	ConversionRate int
}

// Analytics is the analytics page aggregate.
type Analytics struct {
	Sources         []Count
	CourseInterests []Count
	Counselors      []Performance
}

// Dashboard holds headline totals for the visible leads.
type Dashboard struct {
	TotalLeads     int
	HotLeads       int
	Conversions    int
	ConversionRate int
	Revenue        decimal.Decimal
	ByStatus       []Count
}

// BranchAnalysis aggregates lead outcomes for the users of a branch.
type BranchAnalysis struct {
	Branch         string
	Users          int
	Leads          int
	HotLeads       int
	Conversions    int
	ConversionRate int
	PerUser        []Performance
}

// BuildAnalytics tallies sources in first-seen order, the ten most common
// course interests and performance of every counselor-role user.
func BuildAnalytics(leads []domain.Lead, users []domain.User) Analytics {
	result := Analytics{
		Sources:         tally(leads, func(l domain.Lead) string { return l.Source }),
		CourseInterests: topCourses(leads),
		Counselors:      []Performance{},
	}
	for _, user := range users {
		if user.Role != domain.RoleCounselor {
			continue
		}
		result.Counselors = append(result.Counselors, performanceOf(user, leads))
	}
	return result
}

// BuildDashboard totals leads. Conversions are admissions and revenue is fees collected.
func BuildDashboard(leads []domain.Lead) Dashboard {
	d := Dashboard{TotalLeads: len(leads)}
	for _, lead := range leads {
		if isHot(lead.Status) {
			d.HotLeads++
		}
		if lead.IsAdmission() {
			d.Conversions++
			if lead.Sales != nil {
				d.Revenue = d.Revenue.Add(lead.Sales.FeesCollected)
			}
		}
	}
	d.ConversionRate = rate(d.Conversions, d.TotalLeads)
	d.ByStatus = tally(leads, func(l domain.Lead) string { return domain.CanonicalStatus(l.Status) })
	return d
}

// BuildBranchAnalysis aggregates leads of users at or below viewer's role in
// branch. An empty branch covers all branches.
func BuildBranchAnalysis(viewer domain.User, users []domain.User, leads []domain.Lead, branch domain.Branch) BranchAnalysis {
	members := access.VisibleUsers(viewer, users, branch)
	analysis := BranchAnalysis{Branch: string(branch), Users: len(members), PerUser: make([]Performance, 0, len(members))}
	for _, user := range members {
		p := performanceOf(user, leads)
		analysis.PerUser = append(analysis.PerUser, p)
		analysis.Leads += p.Leads
		analysis.HotLeads += p.HotLeads
		analysis.Conversions += p.Conversions
	}
	analysis.ConversionRate = rate(analysis.Conversions, analysis.Leads)
	return analysis
}

// RecentLeads returns up to limit leads, most recently updated first.
func RecentLeads(leads []domain.Lead, limit int) []domain.Lead {
	sorted := append([]domain.Lead(nil), leads...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return latest(sorted[i]).After(latest(sorted[j]))
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func latest(lead domain.Lead) time.Time {
	if lead.UpdatedAt.After(lead.CreatedAt) {
		return lead.UpdatedAt
	}
	return lead.CreatedAt
}

func performanceOf(user domain.User, leads []domain.Lead) Performance {
	p := Performance{UserID: user.ID, Name: user.Name}
	for _, lead := range leads {
		if lead.AssignedTo != user.ID {
			continue
		}
		p.Leads++
		if isHot(lead.Status) {
			p.HotLeads++
		}
		if lead.IsAdmission() {
			p.Conversions++
		}
	}
	p.ConversionRate = rate(p.Conversions, p.Leads)
	return p
}

func isHot(status string) bool {
	return domain.FoldContains(status, "hot") && !domain.SameStatus(status, domain.StatusHotDropOut)
}

func rate(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func tally(leads []domain.Lead, key func(domain.Lead) string) []Count {
	counts := []Count{}
	index := map[string]int{}
	for _, lead := range leads {
		label := key(lead)
		i, ok := index[label]
		if !ok {
			i = len(counts)
			index[label] = i
			counts = append(counts, Count{Label: label})
		}
		counts[i].Count++
	}
	return counts
}

func topCourses(leads []domain.Lead) []Count {
	counts := tally(leads, func(l domain.Lead) string { return l.CourseInterest })
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > topCourseLimit {
		counts = counts[:topCourseLimit]
	}
	for i := range counts {
		counts[i].Label = truncateLabel(counts[i].Label)
	}
	return counts
}

func truncateLabel(label string) string {
	if utf8.RuneCountInString(label) <= courseLabelRune {
		return label
	}
	return string([]rune(label)[:courseLabelRune]) + "..."
}
