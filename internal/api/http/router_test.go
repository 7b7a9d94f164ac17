package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/admissions-crm/internal/access"
	"github.com/spec-kit/admissions-crm/internal/api/http/handlers"
	"github.com/spec-kit/admissions-crm/internal/auth"
	"github.com/spec-kit/admissions-crm/internal/config"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/events"
	"github.com/spec-kit/admissions-crm/internal/observability"
	"github.com/spec-kit/admissions-crm/internal/repository"
	"github.com/spec-kit/admissions-crm/internal/service"
)

const password = "secret1"

type testServer struct {
	app     *fiber.App
	users   repository.UserRepository
	leads   repository.LeadRepository
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		App:        config.AppConfig{Name: "admissions-crm", Timezone: "Asia/Kolkata"},
		Auth:       config.AuthConfig{BcryptCost: bcrypt.MinCost, JWTSecret: "test", AccessTokenTTLMinutes: 5},
		Visibility: config.VisibilityConfig{ManagerSeesAll: true},
	}
	users := repository.NewMemoryUserRepository()
	leads := repository.NewMemoryLeadRepository()
	activity := repository.NewMemoryLeadActivityRepository()
	filters := repository.NewMemorySavedFilterRepository()
	resolver := access.NewResolver(access.VisibilityConfig{ManagerSeesAll: true})
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	metrics := observability.NewMetrics()

	leadService := service.NewLeadService(cfg, service.LeadDependencies{
		LeadRepo: leads, UserRepo: users, ActivityRepo: activity, Resolver: resolver, Dispatcher: dispatcher,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		LeadRepo: leads, UserRepo: users, ActivityRepo: activity, Resolver: resolver, Dispatcher: dispatcher,
	})
	filterService := service.NewSavedFilterService(filters)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, "test", nil, nil),
		Auth: handlers.NewAuthHandler(service.NewAuthService(cfg, service.AuthDependencies{
			UserRepo: users, TokenManager: tokens,
		})),
		Users: handlers.NewUsersHandler(service.NewUserService(cfg, service.UserDependencies{
			UserRepo: users, Resolver: resolver, Dispatcher: dispatcher,
		})),
		Leads:          handlers.NewLeadsHandler(leadService, assignmentService, filterService),
		Filters:        handlers.NewFiltersHandler(filterService),
		Courses:        handlers.NewCoursesHandler(service.NewCourseService(repository.NewMemoryCourseRepository())),
		Reports:        handlers.NewReportsHandler(service.NewReportService(leadService)),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, users),
		Metrics:        metrics,
	})
	return &testServer{app: app, users: users, leads: leads, metrics: metrics}
}

func (s *testServer) addUser(t *testing.T, email string, role domain.Role, manager *domain.User) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{Name: email, Email: email, PasswordHash: hash, Role: role, IsActive: true, Branch: domain.BranchHyderabad}
	if manager != nil {
		id := manager.ID
		user.ReportsTo = &id
	}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func (s *testServer) addLead(t *testing.T, name, assignee, status string) {
	t.Helper()
	require.NoError(t, s.leads.Create(context.Background(), &domain.Lead{FullName: name, AssignedTo: assignee, Status: status}))
}

func (s *testServer) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	status, body := s.do(t, "POST", "/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, fiber.StatusOK, status, body)
	return body["data"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func leadNames(body map[string]any) []string {
	items, _ := body["data"].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.(map[string]any)["full_name"].(string))
	}
	return out
}

func TestLeads_ListIsScopedToReportingLine(t *testing.T) {
	s := newTestServer(t)
	senior := s.addUser(t, "senior@dmhca.edu", domain.RoleSeniorManager, nil)
	leader := s.addUser(t, "leader@dmhca.edu", domain.RoleTeamLeader, senior)
	counselor := s.addUser(t, "counselor@dmhca.edu", domain.RoleCounselor, leader)
	outsider := s.addUser(t, "outsider@dmhca.edu", domain.RoleCounselor, senior)
	s.addLead(t, "Asha", counselor.ID, "Hot")
	s.addLead(t, "Bilal", outsider.ID, "Hot")

	status, body := s.do(t, "GET", "/leads", s.login(t, "leader@dmhca.edu"), "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, []string{"Asha"}, leadNames(body))
	require.Equal(t, 1.0, body["meta"].(map[string]any)["total"])

	status, body = s.do(t, "GET", "/leads", s.login(t, "senior@dmhca.edu"), "")
	require.Equal(t, fiber.StatusOK, status)
	require.ElementsMatch(t, []string{"Asha", "Bilal"}, leadNames(body))
}

func TestLeads_SavedFilterIsOverriddenByQuery(t *testing.T) {
	s := newTestServer(t)
	leader := s.addUser(t, "leader@dmhca.edu", domain.RoleTeamLeader, nil)
	s.addLead(t, "Asha", leader.ID, "Hot")
	s.addLead(t, "Bilal", leader.ID, "Warm")
	s.addLead(t, "Chen", leader.ID, "Cold")
	token := s.login(t, "leader@dmhca.edu")

	status, _ := s.do(t, "PUT", "/filters/warmish", token, `{"criteria":{"statuses":["hot","warm"]}}`)
	require.Equal(t, fiber.StatusOK, status)

	status, body := s.do(t, "GET", "/leads?saved=warmish", token, "")
	require.Equal(t, fiber.StatusOK, status)
	require.ElementsMatch(t, []string{"Asha", "Bilal"}, leadNames(body))

	status, body = s.do(t, "GET", "/leads?saved=warmish&statuses=Cold", token, "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, []string{"Chen"}, leadNames(body))

	status, body = s.do(t, "GET", "/leads?saved=missing", token, "")
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestLeads_RejectsMalformedDateFilter(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "senior@dmhca.edu", domain.RoleSeniorManager, nil)

	status, body := s.do(t, "GET", "/leads?modified_type=on&modified_on=15-10-2026", s.login(t, "senior@dmhca.edu"), "")
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	require.Contains(t, details, "modified_on")
}

func TestAuth_LoginValidatesPayload(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, "POST", "/auth/login", "", `{"email":"not-an-email"}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Equal(t, "VALIDATION_FAILED", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	require.Contains(t, details, "email")
	require.Contains(t, details, "password")
}

func TestAuth_RejectsMissingAndDeactivatedTokens(t *testing.T) {
	s := newTestServer(t)
	user := s.addUser(t, "counselor@dmhca.edu", domain.RoleCounselor, nil)
	token := s.login(t, "counselor@dmhca.edu")

	status, body := s.do(t, "GET", "/leads", "", "")
	require.Equal(t, fiber.StatusUnauthorized, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(body))

	user.IsActive = false
	require.NoError(t, s.users.Update(context.Background(), user))
	status, _ = s.do(t, "GET", "/leads", token, "")
	require.Equal(t, fiber.StatusUnauthorized, status)
}

func TestCourses_WritesNeedManagerRole(t *testing.T) {
	s := newTestServer(t)
	senior := s.addUser(t, "senior@dmhca.edu", domain.RoleSeniorManager, nil)
	s.addUser(t, "counselor@dmhca.edu", domain.RoleCounselor, senior)
	payload := `{"name":"Fellowship in Diabetology","category":"Fellowship","price":"45000"}`

	status, body := s.do(t, "POST", "/courses", s.login(t, "counselor@dmhca.edu"), payload)
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", errorCode(body))

	status, body = s.do(t, "POST", "/courses", s.login(t, "senior@dmhca.edu"), payload)
	require.Equal(t, fiber.StatusCreated, status, body)
	require.Equal(t, "Fellowship", body["data"].(map[string]any)["category"])
}

func TestRouter_UnknownRouteIsNotFound(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, "GET", "/nowhere", "", "")
	require.Equal(t, fiber.StatusNotFound, status)
	require.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	status, _ := s.do(t, "GET", "/health/ready", "", "")
	require.Equal(t, fiber.StatusOK, status)

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), "crm_http_requests_total")
}

func TestUsers_ResetPasswordForManagedUser(t *testing.T) {
	s := newTestServer(t)
	leader := s.addUser(t, "leader@dmhca.edu", domain.RoleTeamLeader, nil)
	counselor := s.addUser(t, "counselor@dmhca.edu", domain.RoleCounselor, leader)
	leaderToken := s.login(t, "leader@dmhca.edu")

	status, body := s.do(t, "POST", "/users/"+counselor.ID+"/password", leaderToken, `{"new_password":"abc"}`)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Contains(t, body["error"].(map[string]any)["details"], "new_password")

	status, _ = s.do(t, "POST", "/users/"+counselor.ID+"/password", leaderToken, `{"new_password":"fresh-start"}`)
	require.Equal(t, fiber.StatusNoContent, status)

	status, _ = s.do(t, "POST", "/auth/login", "", `{"email":"counselor@dmhca.edu","password":"fresh-start"}`)
	require.Equal(t, fiber.StatusOK, status)

	status, body = s.do(t, "POST", "/users/"+leader.ID+"/password", s.login(t, "leader@dmhca.edu"), `{"new_password":"fresh-start"}`)
	require.Equal(t, fiber.StatusForbidden, status)
	require.Equal(t, "FORBIDDEN", errorCode(body))
}
