package dto

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(CreateLeadRequest{Email: "not-an-email", NotesDate: "10/01/2025"})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	require.Equal(t, "is required", domainErr.Details["full_name"])
	require.Equal(t, "must be a valid email", domainErr.Details["email"])
	require.Contains(t, domainErr.Details, "notes_date")
}

func TestValidate_OptionalPointers(t *testing.T) {
	require.NoError(t, Validate(UpdateLeadRequest{}))

	long := strings.Repeat("a", 201)
	require.Error(t, Validate(UpdateLeadRequest{FullName: &long}))

	branch := "Mumbai"
	require.Error(t, Validate(UpdateUserRequest{Branch: &branch}))

	category := "PG Diploma"
	require.NoError(t, Validate(CourseRequest{Category: &category}))
}

func TestValidate_NestedSales(t *testing.T) {
	err := Validate(StatusChangeRequest{Status: "Admission done", Sales: &SalesInfoRequest{FeesType: "Cash"}})
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	require.Contains(t, domainErr.Details, "sales.fees_type")
}

func TestValidate_Distribute(t *testing.T) {
	require.Error(t, Validate(DistributeLeadsRequest{}))
	require.Error(t, Validate(DistributeLeadsRequest{LeadIDs: []string{""}}))
	require.NoError(t, Validate(DistributeLeadsRequest{LeadIDs: []string{"L1"}}))
}
