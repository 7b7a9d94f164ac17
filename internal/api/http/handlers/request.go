package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admissions-crm/internal/api/dto"
	"github.com/spec-kit/admissions-crm/internal/auth"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/leadfilter"
	apperrors "github.com/spec-kit/admissions-crm/pkg/util/errorutil"
)

const isoDate = "2006-01-02"

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.User, nil
}

// bind parses and validates a JSON body.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

// parseCriteria overlays the filter query parameters onto base. Parameters
// that are absent keep the base value.
func parseCriteria(c *fiber.Ctx, base leadfilter.Criteria) (leadfilter.Criteria, error) {
	criteria := base
	if v := c.Query("search"); v != "" {
		criteria.Search = v
	}
	if v := c.Query("status"); v != "" {
		criteria.Status = v
	}
	if v := c.Query("counselor"); v != "" {
		criteria.Counselor = v
	}
	if v := splitList(c.Query("statuses")); v != nil {
		criteria.Statuses = v
	}
	if v := splitList(c.Query("counselors")); v != nil {
		criteria.Counselors = v
	}
	if v := splitList(c.Query("countries")); v != nil {
		criteria.Countries = v
	}
	if v := splitList(c.Query("sources")); v != nil {
		criteria.Sources = v
	}
	if v := splitList(c.Query("qualifications")); v != nil {
		criteria.Qualifications = v
	}
	if v := c.Query("created_on"); v != "" {
		criteria.CreatedOn = v
	}
	if v := c.Query("updated_on"); v != "" {
		criteria.UpdatedOn = v
	}
	if mode := c.Query("modified_type"); mode != "" {
		criteria.Modified = leadfilter.DateRange{
			Mode: leadfilter.DateMode(mode),
			On:   c.Query("modified_on"),
			From: c.Query("modified_from"),
			To:   c.Query("modified_to"),
		}
	}
	return criteria, checkCriteria(criteria)
}

// checkCriteria rejects malformed dates and unknown range modes.
func checkCriteria(criteria leadfilter.Criteria) error {
	details := map[string]any{}
	for name, value := range map[string]string{
		"created_on":    criteria.CreatedOn,
		"updated_on":    criteria.UpdatedOn,
		"modified_on":   criteria.Modified.On,
		"modified_from": criteria.Modified.From,
		"modified_to":   criteria.Modified.To,
	} {
		if value = strings.TrimSpace(value); value == "" {
			continue
		}
		if _, err := time.Parse(isoDate, value); err != nil {
			details[name] = "must be YYYY-MM-DD"
		}
	}
	switch criteria.Modified.Mode {
	case "", leadfilter.DateOn, leadfilter.DateBefore, leadfilter.DateAfter, leadfilter.DateBetween:
	default:
		details["modified_type"] = "must be one of on before after between"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid filter", details)
	}
	return nil
}

func splitList(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseBool(val string) bool {
	parsed, err := strconv.ParseBool(val)
	return err == nil && parsed
}
