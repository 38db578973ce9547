package rest

import (
	"context"
	"net/http"
	"time"

	"payvance/business/user"
	"payvance/domain"
	"payvance/pkg/logger"
	"payvance/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, params user.RegisterParams) (domain.User, user.TokenPair, error)
	Login(ctx context.Context, email, password, deviceFingerprint string) (domain.User, user.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (user.TokenPair, error)
	GetProfile(ctx context.Context, userID uint) (domain.User, error)
	UpdateProfile(ctx context.Context, userID uint, params user.UpdateProfileParams) (domain.User, error)
	GetUserByID(ctx context.Context, id uint) (domain.User, error)
	SetBlocked(ctx context.Context, id uint, blocked bool, actorID uint) (domain.User, error)
}

type UserHandler struct {
	userService UserService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
		timeout:     10 * time.Second,
	}
}

type RegisterRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=8"`
	FirstName         string `json:"first_name" validate:"required"`
	LastName          string `json:"last_name" validate:"required"`
	Phone             string `json:"phone"`
	DeviceFingerprint string `json:"device_fingerprint"`
	ReferralCode      string `json:"referral_code"`
}

type LoginRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required"`
	DeviceFingerprint string `json:"device_fingerprint"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type BlockRequest struct {
	Blocked bool `json:"blocked"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	registered, tokens, err := h.userService.Register(ctx, user.RegisterParams{
		Email:             req.Email,
		Password:          req.Password,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Phone:             req.Phone,
		DeviceFingerprint: req.DeviceFingerprint,
		ReferralCode:      req.ReferralCode,
	})
	if err != nil {
		logger.Error("Failed to register user", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, response.Success(echo.Map{
		"user":   registered,
		"tokens": tokens,
	}))
}

func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	loggedIn, tokens, err := h.userService.Login(ctx, req.Email, req.Password, req.DeviceFingerprint)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(echo.Map{
		"user":   loggedIn,
		"tokens": tokens,
	}))
}

func (h *UserHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	tokens, err := h.userService.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(tokens))
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	profile, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(profile))
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.userService.UpdateProfile(ctx, userID, user.UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(updated))
}

// GetUserByID is the admin lookup of any user.
func (h *UserHandler) GetUserByID(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return errorJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	found, err := h.userService.GetUserByID(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(found))
}

// SetBlocked flips a user's block flag. Admin only.
func (h *UserHandler) SetBlocked(c echo.Context) error {
	actorID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	id, err := paramUint(c, "id")
	if err != nil {
		return errorJSON(c, err)
	}

	var req BlockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updated, err := h.userService.SetBlocked(ctx, id, req.Blocked, actorID)
	if err != nil {
		return errorJSON(c, err)
	}

	message := "user unblocked"
	if req.Blocked {
		message = "user blocked"
	}
	return c.JSON(http.StatusOK, response.SuccessMessage(message, updated))
}
