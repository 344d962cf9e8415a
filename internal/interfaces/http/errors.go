package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/elhamd/elhamd-api/internal/application/dto"
	"github.com/elhamd/elhamd-api/internal/domain"
)

var statusByCode = map[string]int{
	domain.CodeNotFound:   fiber.StatusNotFound,
	domain.CodeValidation: fiber.StatusBadRequest,
	domain.CodeConflict:   fiber.StatusConflict,
	domain.CodeForbidden:  fiber.StatusForbidden,
	domain.CodeUnauth:     fiber.StatusUnauthorized,
	domain.CodeInternal:   fiber.StatusInternalServerError,
}

// respondError traduce un error de dominio a status HTTP + dto.ErrorResponse.
func respondError(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	body := dto.ErrorResponse{Code: code, Message: err.Error()}

	var verr *validationError
	if errors.As(err, &verr) {
		body.Fields = verr.fields
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("error interno")
		body.Message = "error interno"
	}
	return c.Status(status).JSON(body)
}
