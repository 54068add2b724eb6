package api

import (
	"errors"

	"notetutor/model"
	"notetutor/rag"
	"notetutor/types"

	"github.com/gofiber/fiber/v2"
)

// GradeHandler scores free-text answers against model answers.
type GradeHandler struct {
	grader *rag.Grader
}

func NewGradeHandler(grader *rag.Grader) *GradeHandler {
	return &GradeHandler{grader: grader}
}

func (h *GradeHandler) HandleGrade(c *fiber.Ctx) error {
	var params types.GradeParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	// All three fields are required before any grading call happens.
	if errs := types.Validate(&params); len(errs) > 0 {
		return NewValidationError(errs)
	}

	result, err := h.grader.Grade(c.Context(), params.Question, params.ModelAnswer, params.UserAnswer)
	if errors.Is(err, model.ErrNotConfigured) {
		return ErrProviderUnavailable("grading")
	}
	if err != nil {
		return ErrUpstream(err)
	}

	return c.JSON(result)
}
