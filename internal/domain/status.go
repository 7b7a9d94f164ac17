package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Canonical lead statuses. Status stays an open string: anything not listed
// here is kept verbatim.
const (
	StatusAdmissionDone      = "Admission done"
	StatusWillEnrollLater    = "will enroll later"
	StatusJunk               = "Junk"
	StatusFreshLead          = "Fresh Lead"
	StatusFollowup           = "Followup"
	StatusHotLead            = "Hot Lead"
	StatusNotAnswering       = "Not Answering"
	StatusRepeatedLead       = "Repeated Lead"
	StatusOfflineCV          = "offline/cv"
	StatusWarm               = "Warm"
	StatusNotInterested      = "Not Interested"
	StatusNotEligible        = "Not Eligible"
	StatusNotValidNumber     = "Not Valid No."
	StatusInterestedSent     = "Interested, Detail Sent"
	StatusDetailSentNoReply  = "Detail Sent No responding"
	StatusAlreadyEnrolled    = "Already enrolled"
	StatusSupportQuery       = "Support query"
	StatusCallBack           = "Call Back"
	StatusFollowupReassigned = "Follow up Reassigned"
	StatusFeesIssue          = "Fees issue"
	StatusHotDropOut         = "Hot-Drop out"
	StatusTriedNoResponse    = "Tried Multiple Times -No Response"
)

var knownStatuses = []string{
	StatusAdmissionDone,
	StatusWillEnrollLater,
	StatusJunk,
	StatusFreshLead,
	StatusFollowup,
	StatusHotLead,
	StatusNotAnswering,
	StatusRepeatedLead,
	StatusOfflineCV,
	StatusWarm,
	StatusNotInterested,
	StatusNotEligible,
	StatusNotValidNumber,
	StatusInterestedSent,
	StatusDetailSentNoReply,
	StatusAlreadyEnrolled,
	StatusSupportQuery,
	StatusCallBack,
	StatusFollowupReassigned,
	StatusFeesIssue,
	StatusHotDropOut,
	StatusTriedNoResponse,
}

// statusAliases maps normalized spellings seen in imported data to a canonical status.
var statusAliases = map[string]string{
	"fresh leads": StatusFreshLead,
	"fresh":       StatusFreshLead,
	"follow-up":   StatusFollowup,
	"follow up":   StatusFollowup,
	"hot":         StatusHotLead,
}

var canonicalByNorm = buildCanonicalIndex()

func buildCanonicalIndex() map[string]string {
	idx := make(map[string]string, len(knownStatuses)+len(statusAliases))
	for _, status := range knownStatuses {
		idx[foldString(status)] = status
	}
	for alias, status := range statusAliases {
		idx[foldString(alias)] = status
	}
	return idx
}

// foldString builds a fresh Caser per call; Casers are not safe for concurrent use.
func foldString(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// KnownStatuses returns the canonical status table in display order.
func KnownStatuses() []string {
	return append([]string(nil), knownStatuses...)
}

// NormalizeStatus trims and case-folds a status for comparison.
func NormalizeStatus(status string) string {
	normalized := foldString(status)
	if canonical, ok := canonicalByNorm[normalized]; ok {
		return foldString(canonical)
	}
	return normalized
}

// CanonicalStatus maps a status onto the canonical table, keeping unknown values trimmed.
func CanonicalStatus(status string) string {
	if canonical, ok := canonicalByNorm[foldString(status)]; ok {
		return canonical
	}
	return strings.TrimSpace(status)
}

// SameStatus compares two statuses after normalization.
func SameStatus(a, b string) bool {
	return NormalizeStatus(a) == NormalizeStatus(b)
}

// IsAdmissionStatus reports whether status denotes a completed admission.
func IsAdmissionStatus(status string) bool {
	return SameStatus(status, StatusAdmissionDone)
}

// FoldContains reports whether s contains substr ignoring case.
func FoldContains(s, substr string) bool {
	fold := cases.Fold()
	return strings.Contains(fold.String(s), fold.String(substr))
}
