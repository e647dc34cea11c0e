// Package handlers binds HTTP requests to the service layer. Each handler
// parses and validates the body, calls exactly one service operation and maps
// its sentinel errors onto the response envelope.
package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"payflow/internal/config"
	"payflow/internal/middleware"
	"payflow/internal/services/auth"
	"payflow/internal/utils"
	"payflow/internal/utils/response"
	"payflow/internal/validation"
)

const refreshCookie = "refreshToken"

type AuthHandler struct {
	auth auth.Service
}

func NewAuthHandler(authSvc auth.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc}
}

type registerBody struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Register(body.Email, body.Password, body.FirstName)
	v.Phone("phone", body.Phone)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	user, pair, err := h.auth.Register(c.Context(), auth.RegisterRequest{
		Email:     body.Email,
		Password:  body.Password,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
	})
	if errors.Is(err, auth.ErrEmailTaken) {
		return response.Error(c, fiber.StatusConflict, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}

	setRefreshCookie(c, pair.RefreshToken)
	return response.Created(c, "Registration successful. Please verify your email.", fiber.Map{
		"user":  user,
		"token": pair.AccessToken,
	})
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("email", body.Email)
	v.Required("password", body.Password)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	user, pair, err := h.auth.Login(c.Context(), body.Email, body.Password, c.IP())
	switch {
	case errors.Is(err, auth.ErrAccountLocked):
		return response.Locked(c, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return response.Unauthorized(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}

	setRefreshCookie(c, pair.RefreshToken)
	return response.Success(c, "Login successful", fiber.Map{
		"user":  user,
		"token": pair.AccessToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if claims := middleware.Claims(c); claims != nil {
		h.auth.Logout(c.Context(), claims.UserID)
	}
	clearRefreshCookie(c)
	return response.Success(c, "Logged out", nil)
}

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var body refreshBody
	_ = c.BodyParser(&body)

	token := body.RefreshToken
	if token == "" {
		token = c.Cookies(refreshCookie)
	}
	if token == "" {
		return response.Unauthorized(c, "Refresh token required")
	}

	access, err := h.auth.Refresh(c.Context(), token)
	if errors.Is(err, auth.ErrInvalidToken) {
		clearRefreshCookie(c)
		return response.Unauthorized(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}

	return response.Success(c, "", fiber.Map{"token": access})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	user, err := h.auth.Profile(c.Context(), claims.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		return response.NotFound(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "", fiber.Map{"user": user})
}

type forgotPasswordBody struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var body forgotPasswordBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("email", body.Email)
	v.Email("email", body.Email)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	if err := h.auth.ForgotPassword(c.Context(), body.Email); err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "If an account exists for that email, a reset link has been sent.", nil)
}

type resetPasswordBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var body resetPasswordBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("token", body.Token)
	v.Password("password", body.Password)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	err := h.auth.ResetPassword(c.Context(), body.Token, body.Password)
	if errors.Is(err, auth.ErrInvalidToken) {
		return response.BadRequest(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "Password has been reset", nil)
}

type changePasswordBody struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var body changePasswordBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	v := validation.New()
	v.Required("currentPassword", body.CurrentPassword)
	v.Password("newPassword", body.NewPassword)
	if !v.Valid() {
		return response.ValidationErrors(c, v.Errors)
	}

	claims := middleware.Claims(c)
	err := h.auth.ChangePassword(c.Context(), claims.UserID, body.CurrentPassword, body.NewPassword)
	switch {
	case errors.Is(err, auth.ErrWrongPassword):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Success(c, "Password changed", nil)
}

type verifyEmailBody struct {
	Token string `json:"token"`
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var body verifyEmailBody
	_ = c.BodyParser(&body)
	token := body.Token
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		return response.BadRequest(c, "Verification token required")
	}

	err := h.auth.VerifyEmail(c.Context(), token)
	if errors.Is(err, auth.ErrInvalidToken) {
		return response.BadRequest(c, err.Error())
	}
	if err != nil {
		return response.ServerError(c)
	}
	return response.Success(c, "Email verified", nil)
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	err := h.auth.ResendVerification(c.Context(), claims.UserID)
	switch {
	case errors.Is(err, auth.ErrAlreadyVerified):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, auth.ErrUserNotFound):
		return response.NotFound(c, err.Error())
	case err != nil:
		return response.ServerError(c)
	}
	return response.Success(c, "Verification email sent", nil)
}

func setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Expires:  time.Now().Add(utils.RefreshTokenTTL),
		HTTPOnly: true,
		Secure:   config.IsProduction(),
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/api/v1/auth",
	})
}

func clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Path:     "/api/v1/auth",
	})
}
