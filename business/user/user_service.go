package user

import (
	"context"
	"strconv"
	"time"

	"payvance/domain"
	"payvance/pkg/logger"
	"payvance/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// UserRepository contract interface
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (domain.User, error)
	FindByReferralCode(ctx context.Context, code string) (domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	TouchLogin(ctx context.Context, id uint, deviceFingerprint string) error
	SetBlocked(ctx context.Context, id uint, blocked bool) error
}

// ReferralRepository contract interface
type ReferralRepository interface {
	Create(ctx context.Context, referral *domain.Referral) error
}

// EventTracker records analytics facts without failing the caller.
type EventTracker interface {
	TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any)
}

type UserService struct {
	userRepo     UserRepository
	referralRepo ReferralRepository
	events       EventTracker
	validate     *validator.Validate
	jwtSecret    string
}

func NewUserService(
	userRepo UserRepository,
	referralRepo ReferralRepository,
	events EventTracker,
	validate *validator.Validate,
	jwtSecret string,
) *UserService {
	return &UserService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		events:       events,
		validate:     validate,
		jwtSecret:    jwtSecret,
	}
}

// RegisterParams carries the registration payload.
type RegisterParams struct {
	Email             string
	Password          string
	FirstName         string
	LastName          string
	Phone             string
	DeviceFingerprint string
	ReferralCode      string
}

// TokenPair is an access/refresh token set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *UserService) issueTokens(user *domain.User) (TokenPair, error) {
	userID := strconv.FormatUint(uint64(user.ID), 10)

	accessToken, err := utils.GenerateJWT(s.jwtSecret, userID, string(user.Role), utils.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := utils.GenerateJWT(s.jwtSecret, userID, string(user.Role), utils.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Register creates the user, generates their referral code, links a
// referral row when a valid code was supplied, and returns a token pair.
func (s *UserService) Register(ctx context.Context, params RegisterParams) (domain.User, TokenPair, error) {
	if err := s.validate.Var(params.Email, "required,email"); err != nil {
		return domain.User{}, TokenPair{}, domain.ErrValidation("invalid email format")
	}
	if err := s.validate.Var(params.Password, "required,min=8"); err != nil {
		return domain.User{}, TokenPair{}, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.userRepo.FindByEmailOrPhone(ctx, params.Email, params.Phone)
	if err == nil && existing.ID > 0 {
		return domain.User{}, TokenPair{}, domain.ErrValidation("user already exists")
	}

	passwordHash, err := utils.HashPassword(params.Password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return domain.User{}, TokenPair{}, err
	}

	referralCode, err := utils.GenerateReferralCode()
	if err != nil {
		logger.Error("Failed to generate referral code", err)
		return domain.User{}, TokenPair{}, err
	}

	newUser := domain.User{
		Email:             params.Email,
		Phone:             params.Phone,
		Password:          passwordHash,
		FirstName:         params.FirstName,
		LastName:          params.LastName,
		Role:              domain.RoleUser,
		Status:            domain.UserStatusActive,
		OnboardingStep:    domain.StepEmail,
		KycStatus:         domain.KycPending,
		ReferralCode:      referralCode,
		DeviceFingerprint: params.DeviceFingerprint,
		LastActive:        time.Now(),
	}

	if referrer, lookupErr := s.lookupReferrer(ctx, params.ReferralCode); lookupErr == nil && referrer.ID > 0 {
		newUser.ReferredBy = &referrer.ID
	}

	if err := s.userRepo.Create(ctx, &newUser); err != nil {
		logger.Error("Failed to create new user", err)
		return domain.User{}, TokenPair{}, err
	}

	// Link the referral after the user exists so the foreign keys hold.
	if newUser.ReferredBy != nil {
		referral := domain.Referral{
			ReferrerID:     *newUser.ReferredBy,
			ReferredID:     newUser.ID,
			ReferralCode:   params.ReferralCode,
			Status:         domain.ReferralPending,
			RewardAmount:   0,
			RewardCurrency: "NGN",
			Metadata:       map[string]any{},
		}
		if err := s.referralRepo.Create(ctx, &referral); err != nil {
			logger.Warn("Failed to create referral record", "referrer_id", *newUser.ReferredBy, "error", err)
		}
	}

	tokens, err := s.issueTokens(&newUser)
	if err != nil {
		logger.Error("Failed to generate tokens", err)
		return domain.User{}, TokenPair{}, err
	}

	s.events.TrackQuiet(ctx, newUser.ID, domain.EventUserRegistered, map[string]any{
		"referralCode":      params.ReferralCode,
		"deviceFingerprint": params.DeviceFingerprint,
	})

	newUser.Password = ""
	return newUser, tokens, nil
}

func (s *UserService) lookupReferrer(ctx context.Context, code string) (domain.User, error) {
	if code == "" {
		return domain.User{}, domain.ErrNotFound("no referral code")
	}
	return s.userRepo.FindByReferralCode(ctx, code)
}

// Login checks credentials and block status, stamps last activity, and
// returns a fresh token pair. Wrong email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password, deviceFingerprint string) (domain.User, TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return domain.User{}, TokenPair{}, domain.ErrUnauthorized("invalid credentials")
	}

	if !utils.CheckPassword(password, user.Password) {
		return domain.User{}, TokenPair{}, domain.ErrUnauthorized("invalid credentials")
	}

	if user.IsBlocked {
		return domain.User{}, TokenPair{}, domain.ErrForbidden("account is blocked")
	}

	if err := s.userRepo.TouchLogin(ctx, user.ID, deviceFingerprint); err != nil {
		logger.Warn("Failed to stamp login", "user_id", user.ID, "error", err)
	}

	tokens, err := s.issueTokens(&user)
	if err != nil {
		logger.Error("Failed to generate tokens", err)
		return domain.User{}, TokenPair{}, err
	}

	s.events.TrackQuiet(ctx, user.ID, domain.EventUserLoggedIn, map[string]any{
		"deviceFingerprint": deviceFingerprint,
	})

	user.Password = ""
	return user, tokens, nil
}

// RefreshToken validates a refresh token and issues a new pair.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := utils.ParseJWT(s.jwtSecret, refreshToken)
	if err != nil {
		return TokenPair{}, domain.ErrUnauthorized("invalid refresh token")
	}

	userID, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return TokenPair{}, domain.ErrUnauthorized("invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, uint(userID))
	if err != nil {
		return TokenPair{}, domain.ErrUnauthorized("user not found")
	}

	return s.issueTokens(&user)
}

func (s *UserService) GetProfile(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, domain.ErrNotFound("user not found")
	}

	user.Password = ""
	return user, nil
}

// UpdateProfileParams carries the editable profile fields; empty values are
// left unchanged.
type UpdateProfileParams struct {
	FirstName string
	LastName  string
	Phone     string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, params UpdateProfileParams) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, domain.ErrNotFound("user not found")
	}

	updatedFields := []string{}
	if params.FirstName != "" {
		user.FirstName = params.FirstName
		updatedFields = append(updatedFields, "firstName")
	}
	if params.LastName != "" {
		user.LastName = params.LastName
		updatedFields = append(updatedFields, "lastName")
	}
	if params.Phone != "" {
		user.Phone = params.Phone
		updatedFields = append(updatedFields, "phone")
	}

	if err := s.userRepo.UpdateProfile(ctx, &user); err != nil {
		logger.Error("Failed to update profile", err)
		return domain.User{}, err
	}

	s.events.TrackQuiet(ctx, userID, domain.EventProfileUpdated, map[string]any{
		"updatedFields": updatedFields,
	})

	user.Password = ""
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, domain.ErrNotFound("user not found")
	}

	user.Password = ""
	return user, nil
}

// SetBlocked flips a user's block flag. Admin only; the acting admin is
// recorded on the analytics event.
func (s *UserService) SetBlocked(ctx context.Context, id uint, blocked bool, actorID uint) (domain.User, error) {
	if err := s.userRepo.SetBlocked(ctx, id, blocked); err != nil {
		return domain.User{}, domain.ErrNotFound("user not found")
	}

	eventName := domain.EventUserUnblocked
	if blocked {
		eventName = domain.EventUserBlocked
	}
	s.events.TrackQuiet(ctx, id, eventName, map[string]any{
		"blockedBy": actorID,
	})

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	user.Password = ""
	return user, nil
}
