package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

const oauthStateCookie = "slotsync_oauth_state"

type OAuthController struct {
	urls       AuthURLBuilder
	authorizer CodeAuthorizer
}

func NewOAuthController(urls AuthURLBuilder, authorizer CodeAuthorizer) *OAuthController {
	return &OAuthController{urls: urls, authorizer: authorizer}
}

// HandleInstall sends the browser to the platform's consent screen.
func (oc *OAuthController) HandleInstall(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(oc.urls.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// HandleCallback exchanges the authorization code and stores the first
// credential of the installing account. Marketplace installs arrive without
// a state, so the state is only checked when both sides carry one.
func (oc *OAuthController) HandleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return respondBadRequest(c, "Missing code", nil)
	}

	state := c.Query("state")
	expected := c.Cookies(oauthStateCookie)
	if state != "" && expected != "" && state != expected {
		return c.Status(fiber.StatusBadRequest).JSON(Response{Error: "InvalidState", Message: "OAuth state mismatch"})
	}
	c.ClearCookie(oauthStateCookie)

	cred, err := oc.authorizer.Authorize(c.UserContext(), code, c.Query("user_type"))
	if err != nil {
		return respondError(c, err)
	}

	log.Infof("[OAuth] authorized %s %s", cred.AccountKind, cred.AccountID)
	return respondOK(c, fiber.StatusOK, "Authorized", fiber.Map{
		"accountId":   cred.AccountID,
		"accountType": cred.AccountKind,
		"companyId":   cred.CompanyID,
		"scope":       cred.Scope,
	})
}
