package referral

import (
	"context"
	"testing"
	"time"

	"payvance/domain"
)

type stubReferralRepo struct {
	claimOK    bool
	claimErr   error
	claims     int
	byID       domain.Referral
	byReferrer map[uint][]domain.Referral
}

func (s *stubReferralRepo) FindByID(ctx context.Context, id uint) (domain.Referral, error) {
	return s.byID, nil
}

func (s *stubReferralRepo) FindByReferrer(ctx context.Context, referrerID uint, start, end time.Time) ([]domain.Referral, error) {
	return s.byReferrer[referrerID], nil
}

func (s *stubReferralRepo) ClaimReward(ctx context.Context, referralID, referrerID uint) (bool, error) {
	s.claims++
	return s.claimOK, s.claimErr
}

type stubUserRepo struct {
	users map[uint]domain.User
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uint) (domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound("user not found")
	}
	return u, nil
}

type stubTracker struct {
	events []string
}

func (s *stubTracker) TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any) {
	s.events = append(s.events, eventName)
}

func TestClaimRejectedWithUniformMessage(t *testing.T) {
	repo := &stubReferralRepo{claimOK: false}
	svc := NewReferralService(repo, &stubUserRepo{}, &stubTracker{})

	_, err := svc.Claim(context.Background(), 1, 7)
	if err == nil {
		t.Fatal("expected claim rejection")
	}
	appErr, ok := domain.AsAppError(err)
	if !ok {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Message != "invalid referral or reward already claimed" {
		t.Fatalf("rejection message must not leak the reason, got %q", appErr.Message)
	}
}

func TestClaimSuccessTracksEvent(t *testing.T) {
	repo := &stubReferralRepo{
		claimOK: true,
		byID: domain.Referral{
			ID:             7,
			ReferrerID:     1,
			Status:         domain.ReferralRewarded,
			RewardAmount:   1000,
			RewardCurrency: "NGN",
		},
	}
	tracker := &stubTracker{}
	svc := NewReferralService(repo, &stubUserRepo{}, tracker)

	claimed, err := svc.Claim(context.Background(), 1, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claimed.Status != domain.ReferralRewarded {
		t.Fatalf("expected status rewarded, got %q", claimed.Status)
	}
	if len(tracker.events) != 1 || tracker.events[0] != domain.EventReferralRewardClaimed {
		t.Fatalf("expected one %s event, got %v", domain.EventReferralRewardClaimed, tracker.events)
	}
}

func TestGetStatsAggregatesByStatus(t *testing.T) {
	repo := &stubReferralRepo{
		byReferrer: map[uint][]domain.Referral{
			1: {
				{Status: domain.ReferralPending},
				{Status: domain.ReferralCompleted, RewardAmount: 1000},
				{Status: domain.ReferralCompleted, RewardAmount: 1000},
				{Status: domain.ReferralRewarded, RewardAmount: 1000},
			},
		},
	}
	svc := NewReferralService(repo, &stubUserRepo{}, &stubTracker{})

	stats, referrals, err := svc.GetStats(context.Background(), 1, time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 4 || stats.Pending != 1 || stats.Completed != 2 || stats.Rewarded != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalRewards != 3000 {
		t.Fatalf("expected total rewards 3000, got %v", stats.TotalRewards)
	}
	if len(referrals) != 4 {
		t.Fatalf("expected 4 referrals, got %d", len(referrals))
	}
}

func TestGetTreeDepthLimited(t *testing.T) {
	repo := &stubReferralRepo{
		byReferrer: map[uint][]domain.Referral{
			1: {{ID: 10, ReferrerID: 1, ReferredID: 2}},
			2: {{ID: 11, ReferrerID: 2, ReferredID: 3}},
			3: {{ID: 12, ReferrerID: 3, ReferredID: 4}},
		},
	}
	users := &stubUserRepo{users: map[uint]domain.User{
		1: {ID: 1, Email: "a@example.com"},
		2: {ID: 2, Email: "b@example.com"},
		3: {ID: 3, Email: "c@example.com"},
		4: {ID: 4, Email: "d@example.com"},
	}}
	svc := NewReferralService(repo, users, &stubTracker{})

	tree, err := svc.GetTree(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree == nil || tree.User.ID != 1 {
		t.Fatal("expected root node for user 1")
	}
	if len(tree.Referrals) != 1 {
		t.Fatalf("expected one branch, got %d", len(tree.Referrals))
	}
	child := tree.Referrals[0].Children
	if child == nil || child.User.ID != 2 {
		t.Fatal("expected depth-2 child for user 2")
	}
	// Depth budget spent; user 3 must not be expanded.
	if len(child.Referrals) != 1 || child.Referrals[0].Children != nil {
		t.Fatal("expected the tree cut off below depth 2")
	}
}
