package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/admissions-crm/internal/api/dto"
	"github.com/spec-kit/admissions-crm/internal/domain"
	"github.com/spec-kit/admissions-crm/internal/service"
)

// CoursesHandler serves the course catalog.
type CoursesHandler struct {
	service *service.CourseService
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courseService *service.CourseService) *CoursesHandler {
	return &CoursesHandler{service: courseService}
}

// List GET /courses.
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	courses, err := h.service.List(c.UserContext(), parseBool(c.Query("active")))
	if err != nil {
		return err
	}
	resp := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		resp = append(resp, courseResponse(&courses[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create POST /courses.
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CourseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	course, err := h.service.Create(c.UserContext(), actor, courseInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": courseResponse(course)})
}

// Update PATCH /courses/:id.
func (h *CoursesHandler) Update(c *fiber.Ctx) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.CourseRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	course, err := h.service.Update(c.UserContext(), actor, c.Params("id"), courseInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": courseResponse(course)})
}

func courseInput(req dto.CourseRequest) service.CourseInput {
	input := service.CourseInput{
		Name:        req.Name,
		Price:       req.Price,
		Duration:    req.Duration,
		Eligibility: req.Eligibility,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Category != nil {
		category := domain.CourseCategory(*req.Category)
		input.Category = &category
	}
	return input
}

func courseResponse(course *domain.Course) dto.CourseResponse {
	return dto.CourseResponse{
		ID:          course.ID,
		Name:        course.Name,
		Category:    string(course.Category),
		Price:       course.Price,
		Duration:    course.Duration,
		Eligibility: course.Eligibility,
		Description: course.Description,
		IsActive:    course.IsActive,
		CreatedAt:   course.CreatedAt,
		UpdatedAt:   course.UpdatedAt,
	}
}
