package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/jobqueue"
	"github.com/ManuelReschke/SlotSync/internal/pkg/syncerr"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{Success: true, Message: message, Data: data})
}

func respondBadRequest(c *fiber.Ctx, message string, details any) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Error:   syncerr.Code(syncerr.ErrMissingArgument),
		Message: message,
		Details: details,
	})
}

// respondError maps err onto a status code and the error envelope.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	resp := Response{Error: syncerr.Code(err), Message: err.Error()}

	var apiErr *ghl.APIError
	if errors.As(err, &apiErr) {
		resp.Details = apiErr.Details()
	}
	if errors.Is(err, jobqueue.ErrJobNotFound) {
		resp.Error = "JobNotFound"
	}

	if status >= fiber.StatusInternalServerError {
		log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, syncerr.ErrMissingArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, syncerr.ErrTokenUnavailable):
		return fiber.StatusUnauthorized
	case errors.Is(err, syncerr.ErrCredentialNotFound),
		errors.Is(err, syncerr.ErrRemoteCalendarNotFound),
		errors.Is(err, jobqueue.ErrJobNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, syncerr.ErrRemoteFetchFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// validationDetails flattens validator errors for the response body.
func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	out := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}
