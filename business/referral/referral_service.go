package referral

import (
	"context"
	"time"

	"payvance/domain"
	"payvance/pkg/logger"
)

// ReferralRepository contract interface
type ReferralRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Referral, error)
	FindByReferrer(ctx context.Context, referrerID uint, start, end time.Time) ([]domain.Referral, error)
	ClaimReward(ctx context.Context, referralID, referrerID uint) (bool, error)
}

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

// EventTracker records analytics facts without failing the caller.
type EventTracker interface {
	TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any)
}

type ReferralService struct {
	referralRepo ReferralRepository
	userRepo     UserRepository
	events       EventTracker
}

func NewReferralService(referralRepo ReferralRepository, userRepo UserRepository, events EventTracker) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		userRepo:     userRepo,
		events:       events,
	}
}

// GetCode returns the user's own referral code.
func (s *ReferralService) GetCode(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", domain.ErrNotFound("user not found")
	}

	return user.ReferralCode, nil
}

// Stats summarizes a user's referral activity.
type Stats struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Completed    int     `json:"completed"`
	Rewarded     int     `json:"rewarded"`
	TotalRewards float64 `json:"total_rewards"`
}

func (s *ReferralService) GetStats(ctx context.Context, userID uint, start, end time.Time) (Stats, []domain.Referral, error) {
	referrals, err := s.referralRepo.FindByReferrer(ctx, userID, start, end)
	if err != nil {
		logger.Error("Failed to load referrals", err)
		return Stats{}, nil, err
	}

	stats := Stats{Total: len(referrals)}
	for _, referral := range referrals {
		switch referral.Status {
		case domain.ReferralPending:
			stats.Pending++
		case domain.ReferralCompleted:
			stats.Completed++
		case domain.ReferralRewarded:
			stats.Rewarded++
		}
		stats.TotalRewards += referral.RewardAmount
	}

	return stats, referrals, nil
}

// TreeNode is one user in the referral tree with the referrals they made.
type TreeNode struct {
	User      TreeUser     `json:"user"`
	Referrals []TreeBranch `json:"referrals"`
}

// TreeUser is the public slice of a user shown in the tree.
type TreeUser struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ReferralCode string `json:"referral_code"`
}

// TreeBranch is one referral edge plus the referred user's own subtree.
type TreeBranch struct {
	Referral domain.Referral `json:"referral"`
	Children *TreeNode       `json:"children,omitempty"`
}

const DefaultTreeDepth = 3

// GetTree walks the referral graph downward from a user, depth-limited.
func (s *ReferralService) GetTree(ctx context.Context, userID uint, depth int) (*TreeNode, error) {
	if depth <= 0 {
		depth = DefaultTreeDepth
	}

	return s.buildTree(ctx, userID, depth)
}

func (s *ReferralService) buildTree(ctx context.Context, userID uint, depth int) (*TreeNode, error) {
	if depth <= 0 {
		return nil, nil
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil
	}

	referrals, err := s.referralRepo.FindByReferrer(ctx, userID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	node := &TreeNode{
		User: TreeUser{
			ID:           user.ID,
			Email:        user.Email,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			ReferralCode: user.ReferralCode,
		},
		Referrals: make([]TreeBranch, 0, len(referrals)),
	}

	for _, referral := range referrals {
		child, err := s.buildTree(ctx, referral.ReferredID, depth-1)
		if err != nil {
			return nil, err
		}
		node.Referrals = append(node.Referrals, TreeBranch{
			Referral: referral,
			Children: child,
		})
	}

	return node, nil
}

// Claim pays out a completed referral. The eligibility check and the write
// are one conditional update, so exactly one of two concurrent claims can
// succeed; every ineligible case fails with the same message.
func (s *ReferralService) Claim(ctx context.Context, userID, referralID uint) (domain.Referral, error) {
	ok, err := s.referralRepo.ClaimReward(ctx, referralID, userID)
	if err != nil {
		logger.Error("Failed to claim referral reward", err)
		return domain.Referral{}, err
	}
	if !ok {
		return domain.Referral{}, domain.ErrValidation("invalid referral or reward already claimed")
	}

	referral, err := s.referralRepo.FindByID(ctx, referralID)
	if err != nil {
		return domain.Referral{}, err
	}

	s.events.TrackQuiet(ctx, userID, domain.EventReferralRewardClaimed, map[string]any{
		"referralId":     referral.ID,
		"rewardAmount":   referral.RewardAmount,
		"rewardCurrency": referral.RewardCurrency,
	})

	return referral, nil
}
