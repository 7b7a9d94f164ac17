package service

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

func TestNotFoundOr_MalformedIDIsNotFound(t *testing.T) {
	err := notFoundOr(fmt.Errorf("get lead: %w", &pgconn.PgError{Code: "22P02"}), "lead", "not-a-uuid")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NOT_FOUND", domainErr.Code)
	require.Equal(t, "not-a-uuid", domainErr.Details["lead_id"])

	other := notFoundOr(&pgconn.PgError{Code: "23505"}, "lead", "x")
	require.ErrorAs(t, other, &domainErr)
	require.Equal(t, "CONFLICT", domainErr.Code)
}
