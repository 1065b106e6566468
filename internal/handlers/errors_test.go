package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruitforge/hiring-engine/internal/models"
)

func TestErrorResponseStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("job abc: %w", models.ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("session exists: %w", models.ErrConflict), http.StatusConflict},
		{"validation", models.NewValidationError("num_questions", "must be between 3 and 15"), http.StatusUnprocessableEntity},
		{
			"providers exhausted",
			&models.AllProvidersExhaustedError{Attempts: []models.ProviderAttemptError{{Provider: "gemini", Message: "rate limited"}}},
			http.StatusBadGateway,
		},
		{"unknown", fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/boom", func(c *fiber.Ctx) error {
				return errorResponse(c, tc.err)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
