package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRowResponse is one admission of the sales report.
type SalesRowResponse struct {
	LeadID        string          `json:"lead_id"`
	Date          time.Time       `json:"date"`
	Name          string          `json:"name"`
	CounselorName string          `json:"counselor_name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	Country       string          `json:"country"`
	Qualification string          `json:"qualification"`
	Course        string          `json:"course"`
	Fees          decimal.Decimal `json:"fees"`
	FeesType      string          `json:"fees_type"`
	FeesCollected decimal.Decimal `json:"fees_collected"`
	Note          string          `json:"note"`
}

// SalesSummaryResponse totals the sales report.
type SalesSummaryResponse struct {
	Admissions    int             `json:"admissions"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	FeesCollected decimal.Decimal `json:"fees_collected"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// SalesReportResponse is the sales table with totals.
type SalesReportResponse struct {
	Rows    []SalesRowResponse   `json:"rows"`
	Summary SalesSummaryResponse `json:"summary"`
}

// CountResponse is a labelled tally.
type CountResponse struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PerformanceResponse is the lead outcome of one user.
type PerformanceResponse struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Leads          int    `json:"leads"`
	HotLeads       int    `json:"hot_leads"`
	Conversions    int    `json:"conversions"`
	ConversionRate int    `json:"conversion_rate"`
}

// AnalyticsResponse aggregates leads by source, course and counselor.
type AnalyticsResponse struct {
	Sources         []CountResponse       `json:"sources"`
	CourseInterests []CountResponse       `json:"course_interests"`
	Counselors      []PerformanceResponse `json:"counselors"`
}

// DashboardResponse totals the visible leads.
type DashboardResponse struct {
	TotalLeads     int             `json:"total_leads"`
	HotLeads       int             `json:"hot_leads"`
	Conversions    int             `json:"conversions"`
	ConversionRate int             `json:"conversion_rate"`
	Revenue        decimal.Decimal `json:"revenue"`
	ByStatus       []CountResponse `json:"by_status"`
}

// BranchAnalysisResponse aggregates per user within a branch.
type BranchAnalysisResponse struct {
	Branch         string                `json:"branch,omitempty"`
	Users          int                   `json:"users"`
	Leads          int                   `json:"leads"`
	HotLeads       int                   `json:"hot_leads"`
	Conversions    int                   `json:"conversions"`
	ConversionRate int                   `json:"conversion_rate"`
	PerUser        []PerformanceResponse `json:"per_user"`
}
