package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"recruitforge/hiring-engine/internal/models"
	"recruitforge/hiring-engine/internal/services"
)

type ScreeningHandler struct {
	screening services.ScreeningService
}

func NewScreeningHandler(screening services.ScreeningService) *ScreeningHandler {
	return &ScreeningHandler{screening: screening}
}

// HandleStart handles POST /screenings
func (h *ScreeningHandler) HandleStart(c *fiber.Ctx) error {
	var req models.StartScreeningRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid job_id format",
		})
	}

	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate_id format",
		})
	}

	types := make([]models.QuestionType, 0, len(req.QuestionTypes))
	for _, t := range req.QuestionTypes {
		types = append(types, models.QuestionType(t))
	}

	result, err := h.screening.Start(c.UserContext(), jobID, candidateID, req.NumQuestions, types)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// HandleSubmitResponse handles POST /screenings/:id/responses
func (h *ScreeningHandler) HandleSubmitResponse(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session id format",
		})
	}

	var req models.SubmitResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	result, err := h.screening.SubmitResponse(c.UserContext(), sessionID, req.QuestionID, req.Text)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(result)
}

// HandleSummary handles GET /screenings/:id/summary
func (h *ScreeningHandler) HandleSummary(c *fiber.Ctx) error {
	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session id format",
		})
	}

	summary, err := h.screening.Summary(c.UserContext(), sessionID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(summary)
}
