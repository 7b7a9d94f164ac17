package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admissions-crm/internal/api/dto"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/service"
)

// UsersHandler serves the organization directory.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// List GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.service.ListUsers(c.UserContext(), actor, service.UserListFilters{
		Branch:          domain.Branch(c.Query("branch")),
		Search:          c.Query("search"),
		IncludeInactive: parseBool(c.Query("include_inactive")),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// Create POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.service.CreateUser(c.UserContext(), actor, service.CreateUserInput{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Password:          req.Password,
		Role:              domain.Role(req.Role),
		ReportsTo:         req.ReportsTo,
		Department:        req.Department,
		Branch:            domain.Branch(req.Branch),
		PreferredLanguage: req.PreferredLanguage,
		WhatsAppNumber:    req.WhatsAppNumber,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// Update PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	input := service.UpdateUserInput{
		Name:              req.Name,
		Phone:             req.Phone,
		ReportsTo:         req.ReportsTo,
		Department:        req.Department,
		PreferredLanguage: req.PreferredLanguage,
		WhatsAppNumber:    req.WhatsAppNumber,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}
	if req.Branch != nil {
		branch := domain.Branch(*req.Branch)
		input.Branch = &branch
	}
	user, err := h.service.UpdateUser(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Deactivate POST /users/:id/deactivate.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.service.DeactivateUser(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// ResetPassword POST /users/:id/password.
func (h *UsersHandler) ResetPassword(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.service.ResetPassword(c.UserContext(), actor, c.Params("id"), req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReportingLine GET /users/:id/reporting-line.
func (h *UsersHandler) ReportingLine(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	line, err := h.service.ReportingLine(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(line)})
}

// Roles GET /users/roles.
func (h *UsersHandler) Roles(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	options := h.service.Roles(actor)
	return c.JSON(fiber.Map{"data": dto.RolesResponse{
		Addable:    roleOptions(options.Addable),
		Assignable: roleOptions(options.Assignable),
	}})
}

// Assignable GET /users/assignable.
func (h *UsersHandler) Assignable(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	users, err := h.service.AssignableUsers(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

func roleOptions(roles []domain.Role) []dto.RoleOption {
	out := make([]dto.RoleOption, 0, len(roles))
	for _, role := range roles {
		out = append(out, dto.RoleOption{Value: string(role), Label: role.Label()})
	}
	return out
}

func userResponses(users []domain.User) []dto.UserResponse {
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return out
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                user.ID,
		Name:              user.Name,
		Email:             user.Email,
		Phone:             user.Phone,
		Role:              string(user.Role),
		RoleLabel:         user.Role.Label(),
		ReportsTo:         user.ReportsTo,
		Department:        user.Department,
		Branch:            string(user.Branch),
		IsActive:          user.IsActive,
		PreferredLanguage: user.PreferredLanguage,
		WhatsAppNumber:    user.WhatsAppNumber,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}
}
