package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SlotSync/app/models"
	"github.com/ManuelReschke/SlotSync/internal/pkg/ghl"
	"github.com/ManuelReschke/SlotSync/internal/pkg/token"
)

// PassthroughController forwards single calls to the platform with the
// account's current token. Responses are relayed without storing anything.
type PassthroughController struct {
	tokens TokenSource
	api    RemoteAPI
}

func NewPassthroughController(tokens TokenSource, api RemoteAPI) *PassthroughController {
	return &PassthroughController{tokens: tokens, api: api}
}

func (pc *PassthroughController) HandleCreateAppointment(c *fiber.Ctx) error {
	var in ghl.AppointmentRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadRequest(c, "Invalid request body", err.Error())
	}
	if in.LocationID == "" {
		in.LocationID = c.Query("locationId")
	}
	if err := validate.Struct(in); err != nil {
		return respondBadRequest(c, "Invalid appointment", validationDetails(err))
	}

	tok, err := pc.tokens.Token(c.UserContext(), in.LocationID, models.AccountKindLocation)
	if err != nil {
		return respondError(c, err)
	}

	out, err := pc.api.CreateAppointment(c.UserContext(), tok, in)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, "Appointment created", out)
}

func (pc *PassthroughController) HandleUpsertContact(c *fiber.Ctx) error {
	var in ghl.ContactRequest
	if err := c.BodyParser(&in); err != nil {
		return respondBadRequest(c, "Invalid request body", err.Error())
	}
	if in.LocationID == "" {
		in.LocationID = c.Query("locationId")
	}
	if err := validate.Struct(in); err != nil {
		return respondBadRequest(c, "Invalid contact", validationDetails(err))
	}

	tok, err := pc.tokens.Token(c.UserContext(), in.LocationID, models.AccountKindLocation)
	if err != nil {
		return respondError(c, err)
	}

	out, err := pc.api.UpsertContact(c.UserContext(), tok, in)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "Contact saved", out)
}

func (pc *PassthroughController) HandleCreateCustomField(c *fiber.Ctx) error {
	locationID := c.Query("locationId")
	if locationID == "" {
		return respondBadRequest(c, "Missing locationId", nil)
	}

	tok, err := pc.tokens.Token(c.UserContext(), locationID, models.AccountKindLocation)
	if err != nil {
		return respondError(c, err)
	}

	out, err := pc.api.CreateCustomField(c.UserContext(), tok, locationID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, "Custom field created", out)
}

func (pc *PassthroughController) HandleGetLocation(c *fiber.Ctx) error {
	locationID := c.Params("locationId")
	if locationID == "" {
		return respondBadRequest(c, "Missing locationId", nil)
	}

	tok, err := pc.tokens.Token(c.UserContext(), locationID, models.AccountKindLocation)
	if err != nil {
		return respondError(c, err)
	}

	loc, err := pc.api.GetLocation(c.UserContext(), tok, locationID)
	if err != nil {
		return respondError(c, err)
	}
	if len(loc.Raw) > 0 {
		return respondOK(c, fiber.StatusOK, "", loc.Raw)
	}
	return respondOK(c, fiber.StatusOK, "", loc)
}

// HandleGetCompany reads company details with the company-level credential.
// A stale token is still tried when its refresh fails.
func (pc *PassthroughController) HandleGetCompany(c *fiber.Ctx) error {
	companyID := c.Params("companyId")
	if companyID == "" {
		return respondBadRequest(c, "Missing companyId", nil)
	}

	tok, err := pc.tokens.Token(c.UserContext(), companyID, models.AccountKindCompany, token.AllowStale())
	if err != nil {
		return respondError(c, err)
	}

	out, err := pc.api.GetCompany(c.UserContext(), tok, companyID)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, "", out)
}
