package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"payvance/business/notification"
	"payvance/domain"
	"payvance/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type NotificationService interface {
	Create(ctx context.Context, params notification.CreateParams) (domain.Notification, error)
	List(ctx context.Context, userID uint, opts notification.ListOptions) ([]domain.Notification, int64, error)
	MarkRead(ctx context.Context, notificationID, userID uint) (domain.Notification, error)
	SendInactivityNudge(ctx context.Context, userID uint) error
	SendKycReminder(ctx context.Context, userID uint) error
}

type NotificationHandler struct {
	notificationService NotificationService
	validator           *validator.Validate
	timeout             time.Duration
}

func NewNotificationHandler(notificationService NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		validator:           validator.New(),
		timeout:             10 * time.Second,
	}
}

type SendNotificationRequest struct {
	UserID       uint           `json:"user_id" validate:"required"`
	Type         string         `json:"type" validate:"required"`
	Channel      string         `json:"channel" validate:"required"`
	Title        string         `json:"title" validate:"required"`
	Content      string         `json:"content" validate:"required"`
	Metadata     map[string]any `json:"metadata"`
	ScheduledFor *time.Time     `json:"scheduled_for"`
}

// Send creates a notification for any user, delivered now or deferred to
// the scheduled time. Admin only.
func (h *NotificationHandler) Send(c echo.Context) error {
	var req SendNotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.Error(err.Error()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.notificationService.Create(ctx, notification.CreateParams{
		UserID:       req.UserID,
		Type:         domain.NotificationType(req.Type),
		Channel:      domain.NotificationChannel(req.Channel),
		Title:        req.Title,
		Content:      req.Content,
		Metadata:     req.Metadata,
		ScheduledFor: req.ScheduledFor,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	message := "notification sent"
	if req.ScheduledFor != nil {
		message = "notification scheduled"
	}
	return c.JSON(http.StatusCreated, response.SuccessMessage(message, created))
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	opts := notification.ListOptions{
		Type:    domain.NotificationType(c.QueryParam("type")),
		Channel: domain.NotificationChannel(c.QueryParam("channel")),
		Status:  domain.NotificationStatus(c.QueryParam("status")),
	}
	if raw := c.QueryParam("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			opts.Page = parsed
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			opts.Limit = parsed
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	notifications, total, err := h.notificationService.List(ctx, userID, opts)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.Success(echo.Map{
		"notifications": notifications,
		"total":         total,
	}))
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.Error("not authenticated"))
	}

	notificationID, err := paramUint(c, "id")
	if err != nil {
		return errorJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	marked, err := h.notificationService.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("notification marked as read", marked))
}

// SendInactivityNudge fires the nudge email for one user on demand. Admin
// only; the cron sweep covers the whole user base.
func (h *NotificationHandler) SendInactivityNudge(c echo.Context) error {
	userID, err := paramUint(c, "userId")
	if err != nil {
		return errorJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.notificationService.SendInactivityNudge(ctx, userID); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("inactivity nudge processed", nil))
}

// SendKycReminder fires the KYC reminder email for one user on demand.
// Admin only.
func (h *NotificationHandler) SendKycReminder(c echo.Context) error {
	userID, err := paramUint(c, "userId")
	if err != nil {
		return errorJSON(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.notificationService.SendKycReminder(ctx, userID); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessMessage("kyc reminder processed", nil))
}
