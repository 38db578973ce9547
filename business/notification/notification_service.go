package notification

import (
	"context"
	"fmt"
	"time"

	"payvance/domain"
	"payvance/internal/repository/postgres"
	"payvance/pkg/logger"
	"payvance/pkg/metrics"
)

// NotificationRepository contract interface
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	FindByID(ctx context.Context, id uint) (domain.Notification, error)
	FindByUser(ctx context.Context, userID uint, q postgres.NotificationQuery) ([]domain.Notification, int64, error)
	UpdateDispatchOutcome(ctx context.Context, notification *domain.Notification) error
	MarkRead(ctx context.Context, id, userID uint) (bool, error)
}

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// ScheduleQueue is the delayed-dispatch queue: ids ordered by delivery time,
// peeked and acknowledged separately.
type ScheduleQueue interface {
	Enqueue(ctx context.Context, notificationID uint, deliverAt time.Time) error
	Due(ctx context.Context, now time.Time) ([]uint, error)
	Ack(ctx context.Context, notificationID uint) error
	DeadLetter(ctx context.Context, notificationID uint, now time.Time) error
}

// EmailSender contract interface
type EmailSender interface {
	SendEmail(toName, toEmail, subject, message string) error
}

// SMSSender contract interface
type SMSSender interface {
	SendSMS(toPhone, message string) error
}

// WhatsAppSender contract interface
type WhatsAppSender interface {
	SendWhatsApp(toPhone, message string) error
}

// EventTracker records analytics facts without failing the caller.
type EventTracker interface {
	TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any)
}

type NotificationService struct {
	notifRepo      NotificationRepository
	userRepo       UserRepository
	queue          ScheduleQueue
	email          EmailSender
	sms            SMSSender
	whatsapp       WhatsAppSender
	events         EventTracker
	inactivityDays int
	maxRetries     int
}

func NewNotificationService(
	notifRepo NotificationRepository,
	userRepo UserRepository,
	queue ScheduleQueue,
	email EmailSender,
	sms SMSSender,
	whatsapp WhatsAppSender,
	events EventTracker,
	inactivityDays int,
	maxRetries int,
) *NotificationService {
	if inactivityDays <= 0 {
		inactivityDays = 7
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &NotificationService{
		notifRepo:      notifRepo,
		userRepo:       userRepo,
		queue:          queue,
		email:          email,
		sms:            sms,
		whatsapp:       whatsapp,
		events:         events,
		inactivityDays: inactivityDays,
		maxRetries:     maxRetries,
	}
}

// CreateParams carries everything needed to create a notification, for
// immediate or deferred delivery.
type CreateParams struct {
	UserID       uint
	Type         domain.NotificationType
	Channel      domain.NotificationChannel
	Title        string
	Content      string
	Metadata     map[string]any
	ScheduledFor *time.Time
}

// Create persists the notification and either defers it onto the queue or
// dispatches it inline. For immediate sends the returned notification
// carries a terminal status; a dispatch failure is returned alongside the
// (failed) record.
func (s *NotificationService) Create(ctx context.Context, params CreateParams) (domain.Notification, error) {
	if !domain.ValidNotificationTypes[params.Type] {
		return domain.Notification{}, domain.ErrValidation("invalid notification type")
	}
	if !domain.ValidChannels[params.Channel] {
		return domain.Notification{}, domain.ErrValidation("invalid notification channel")
	}
	if params.Title == "" || params.Content == "" {
		return domain.Notification{}, domain.ErrValidation("title and content are required")
	}

	metadata := params.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	notification := domain.Notification{
		UserID:       params.UserID,
		Type:         params.Type,
		Channel:      params.Channel,
		Status:       domain.NotificationPending,
		Title:        params.Title,
		Content:      params.Content,
		Metadata:     metadata,
		ScheduledFor: params.ScheduledFor,
	}

	if err := s.notifRepo.Create(ctx, &notification); err != nil {
		logger.Error("Failed to create notification", err)
		return domain.Notification{}, err
	}

	// A delivery time in the past is not worth a queue round-trip.
	if params.ScheduledFor != nil && params.ScheduledFor.After(time.Now()) {
		if err := s.queue.Enqueue(ctx, notification.ID, *params.ScheduledFor); err != nil {
			logger.Error("Failed to enqueue scheduled notification", err)
			return notification, err
		}
		return notification, nil
	}

	if err := s.Send(ctx, &notification); err != nil {
		return notification, err
	}

	return notification, nil
}

// Send resolves the channel to a transport, attempts delivery, and persists
// the outcome. On failure the status goes to failed, the retry counter in
// metadata is bumped, and the error is returned; retries are the caller's
// business.
func (s *NotificationService) Send(ctx context.Context, notification *domain.Notification) error {
	err := s.deliver(ctx, notification)
	if err != nil {
		notification.Status = domain.NotificationFailed
		if notification.Metadata == nil {
			notification.Metadata = map[string]any{}
		}
		notification.Metadata["error"] = err.Error()
		notification.Metadata["retryCount"] = notification.RetryCount() + 1

		if updateErr := s.notifRepo.UpdateDispatchOutcome(ctx, notification); updateErr != nil {
			logger.Error("Failed to record dispatch failure", updateErr)
		}

		metrics.NotificationsFailed.WithLabelValues(string(notification.Channel)).Inc()
		return err
	}

	notification.Status = domain.NotificationSent
	if notification.Metadata == nil {
		notification.Metadata = map[string]any{}
	}
	notification.Metadata["sentAt"] = time.Now().Format(time.RFC3339)

	if err := s.notifRepo.UpdateDispatchOutcome(ctx, notification); err != nil {
		logger.Error("Failed to record dispatch success", err)
		return err
	}

	metrics.NotificationsSent.WithLabelValues(string(notification.Channel)).Inc()

	s.events.TrackQuiet(ctx, notification.UserID, domain.EventNotificationSent, map[string]any{
		"notificationId": notification.ID,
		"type":           notification.Type,
		"channel":        notification.Channel,
	})

	return nil
}

func (s *NotificationService) deliver(ctx context.Context, notification *domain.Notification) error {
	user, err := s.userRepo.FindByID(ctx, notification.UserID)
	if err != nil {
		return domain.ErrNotFound("user not found")
	}

	switch notification.Channel {
	case domain.ChannelEmail:
		return s.email.SendEmail(
			user.FirstName+" "+user.LastName,
			user.Email,
			notification.Title,
			notification.Content,
		)
	case domain.ChannelSMS:
		return s.sms.SendSMS(user.Phone, notification.Content)
	case domain.ChannelWhatsApp:
		return s.whatsapp.SendWhatsApp(user.Phone, notification.Content)
	default:
		return domain.ErrValidation("unsupported notification channel")
	}
}

// ProcessScheduled drains the due portion of the delayed-dispatch queue.
// Each entry is handled independently: dispatch, then acknowledge; a failed
// dispatch stays queued until its retry budget runs out, after which it is
// parked on the dead-letter set. Returns the number of successful
// dispatches.
func (s *NotificationService) ProcessScheduled(ctx context.Context, now time.Time) (int, error) {
	timer := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(timer).Seconds())
	}()

	due, err := s.queue.Due(ctx, now)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	for _, id := range due {
		notification, err := s.notifRepo.FindByID(ctx, id)
		if err != nil {
			// Record gone or unreadable; nothing will ever dispatch for
			// this entry, so acknowledge it away.
			logger.Warn("Scheduled notification missing, dropping queue entry", "notification_id", id, "error", err)
			if ackErr := s.queue.Ack(ctx, id); ackErr != nil {
				logger.Error("Failed to ack missing notification", ackErr)
			}
			continue
		}

		if notification.Status != domain.NotificationPending {
			if ackErr := s.queue.Ack(ctx, id); ackErr != nil {
				logger.Error("Failed to ack non-pending notification", ackErr)
			}
			continue
		}

		if err := s.Send(ctx, &notification); err != nil {
			logger.Error("Failed to dispatch scheduled notification", "notification_id", id, "error", err)

			if notification.RetryCount() >= s.maxRetries {
				logger.Warn("Retry budget exhausted, dead-lettering notification", "notification_id", id)
				if dlErr := s.queue.DeadLetter(ctx, id, now); dlErr != nil {
					logger.Error("Failed to dead-letter notification", dlErr)
				} else {
					metrics.DeadLetteredNotifications.Inc()
				}
			}
			continue
		}

		dispatched++
		if ackErr := s.queue.Ack(ctx, id); ackErr != nil {
			logger.Error("Failed to ack dispatched notification", ackErr)
		}
	}

	return dispatched, nil
}

// MarkRead flips an owned notification to read, stamps the read time into
// metadata, and records the analytics fact.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) (domain.Notification, error) {
	ok, err := s.notifRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		logger.Error("Failed to mark notification read", err)
		return domain.Notification{}, err
	}
	if !ok {
		return domain.Notification{}, domain.ErrNotFound("notification not found")
	}

	notification, err := s.notifRepo.FindByID(ctx, notificationID)
	if err != nil {
		return domain.Notification{}, err
	}

	if notification.Metadata == nil {
		notification.Metadata = map[string]any{}
	}
	notification.Metadata["readAt"] = time.Now().Format(time.RFC3339)
	if err := s.notifRepo.UpdateDispatchOutcome(ctx, &notification); err != nil {
		logger.Error("Failed to record read timestamp", err)
	}

	s.events.TrackQuiet(ctx, userID, domain.EventNotificationRead, map[string]any{
		"notificationId": notification.ID,
		"type":           notification.Type,
		"channel":        notification.Channel,
	})

	return notification, nil
}

// ListOptions mirror the query parameters of the notifications listing.
type ListOptions struct {
	Type    domain.NotificationType
	Channel domain.NotificationChannel
	Status  domain.NotificationStatus
	Page    int
	Limit   int
}

func (s *NotificationService) List(ctx context.Context, userID uint, opts ListOptions) ([]domain.Notification, int64, error) {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	return s.notifRepo.FindByUser(ctx, userID, postgres.NotificationQuery{
		Type:    opts.Type,
		Channel: opts.Channel,
		Status:  opts.Status,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	})
}

// SendInactivityNudge emails a user who has been quiet for the configured
// threshold. A user active more recently is skipped without error.
func (s *NotificationService) SendInactivityNudge(ctx context.Context, userID uint) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.ErrNotFound("user not found")
	}

	daysInactive := int(time.Since(user.LastActive).Hours() / 24)
	if daysInactive < s.inactivityDays {
		return nil
	}

	_, err = s.Create(ctx, CreateParams{
		UserID:  userID,
		Type:    domain.NotificationInactivity,
		Channel: domain.ChannelEmail,
		Title:   "We Miss You!",
		Content: fmt.Sprintf("Hi %s,<br><br>We noticed you haven't been active for a while. Come back and complete your profile to unlock all features!", user.FirstName),
	})
	return err
}

// SendKycReminder emails a user who has not finished onboarding. Users who
// already completed KYC are skipped without error.
func (s *NotificationService) SendKycReminder(ctx context.Context, userID uint) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.ErrNotFound("user not found")
	}

	if user.OnboardingStep == domain.StepKycComplete {
		return nil
	}

	_, err = s.Create(ctx, CreateParams{
		UserID:  userID,
		Type:    domain.NotificationKycReminder,
		Channel: domain.ChannelEmail,
		Title:   "Complete Your KYC",
		Content: fmt.Sprintf("Hi %s,<br><br>Don't forget to complete your KYC verification to access all features of our platform.", user.FirstName),
	})
	return err
}

// NotifyReferralReward tells a referrer their reward is claimable.
func (s *NotificationService) NotifyReferralReward(ctx context.Context, referrerID uint, amount float64, currency string) error {
	user, err := s.userRepo.FindByID(ctx, referrerID)
	if err != nil {
		return domain.ErrNotFound("user not found")
	}

	_, err = s.Create(ctx, CreateParams{
		UserID:  referrerID,
		Type:    domain.NotificationReferralReward,
		Channel: domain.ChannelEmail,
		Title:   "Your Referral Reward Is Ready",
		Content: fmt.Sprintf("Hi %s,<br><br>Someone you referred just completed onboarding. A reward of %.2f %s is waiting for you to claim!", user.FirstName, amount, currency),
	})
	return err
}
