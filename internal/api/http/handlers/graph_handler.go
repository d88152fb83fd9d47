package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ereignis/ereignis-api/internal/api/dto"
	"github.com/ereignis/ereignis-api/internal/api/graph"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

// GraphHandler serves POST /graphql.
type GraphHandler struct {
	registry *graph.Registry
	binder   *dto.Binder
}

// NewGraphHandler constructs handler.
func NewGraphHandler(registry *graph.Registry, binder *dto.Binder) *GraphHandler {
	return &GraphHandler{registry: registry, binder: binder}
}

// Execute decodes {"operationName","variables"} and answers {"data":{<operationName>: result}}.
func (h *GraphHandler) Execute(c *fiber.Ctx) error {
	var req dto.GraphRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.binder.Validate(&req); err != nil {
		return err
	}

	result, err := h.registry.Execute(c.UserContext(), req.OperationName, req.Variables)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{req.OperationName: result}})
}
