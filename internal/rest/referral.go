package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"payvance/business/referral"
	"payvance/domain"
	"payvance/pkg/response"

	"github.com/labstack/echo/v4"
)

type ReferralService interface {
	GetCode(ctx context.Context, userID uint) (string, error)
	GetStats(ctx context.Context, userID uint, start, end time.Time) (referral.Stats, []domain.Referral, error)
	GetTree(ctx context.Context, userID uint, depth int) (*referral.TreeNode, error)
	Claim(ctx context.Context, userID, referralID uint) (domain.Referral, error)
}

type ReferralHandler struct {
	referralService ReferralService
	timeout         time.Duration
}

func NewReferralHandler(referralService ReferralService) *ReferralHandler {
	return &ReferralHandler{
		referralService: referralService,
		timeout:         10 * time.Second,
	}
}

func (h *ReferralHandler) GetCode(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	code, err := h.referralService.GetCode(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(echo.Map{
		"referral_code": code,
	}))
}

func (h *ReferralHandler) GetStats(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	start, end, err := dateRangeQuery(c)
	if err != nil {
		return errorJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, referrals, err := h.referralService.GetStats(ctx, userID, start, end)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(echo.Map{
		"stats":     stats,
		"referrals": referrals,
	}))
}

func (h *ReferralHandler) GetTree(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	depth := 0
	if raw := c.QueryParam("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, response.Error("invalid depth"))
		}
		depth = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	tree, err := h.referralService.GetTree(ctx, userID, depth)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(tree))
}

type ClaimRewardRequest struct {
	ReferralID uint `json:"referral_id" validate:"required"`
}

func (h *ReferralHandler) ClaimReward(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	var req ClaimRewardRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
	if req.ReferralID == 0 {
		return c.JSON(http.StatusBadRequest, response.Error("referral_id is required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	claimed, err := h.referralService.Claim(ctx, userID, req.ReferralID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("reward claimed", claimed))
}
