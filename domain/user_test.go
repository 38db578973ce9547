package domain

import "testing"

func TestStepRank(t *testing.T) {
	cases := []struct {
		step OnboardingStep
		want int
	}{
		{StepEmail, 0},
		{StepPhone, 1},
		{StepBVN, 2},
		{StepSelfie, 3},
		{StepKycComplete, 4},
		{OnboardingStep("nonsense"), -1},
		{OnboardingStep(""), -1},
	}

	for _, c := range cases {
		if got := StepRank(c.step); got != c.want {
			t.Errorf("StepRank(%q) = %d, want %d", c.step, got, c.want)
		}
	}
}

func TestCanAdvance(t *testing.T) {
	cases := []struct {
		from OnboardingStep
		to   OnboardingStep
		want bool
	}{
		{StepEmail, StepPhone, true},
		{StepEmail, StepKycComplete, true},
		{StepPhone, StepEmail, false},
		{StepSelfie, StepSelfie, false},
		{StepKycComplete, StepKycComplete, false},
		{StepKycComplete, StepEmail, false},
		{StepEmail, OnboardingStep("nonsense"), false},
		{OnboardingStep("nonsense"), StepPhone, false},
	}

	for _, c := range cases {
		if got := CanAdvance(c.from, c.to); got != c.want {
			t.Errorf("CanAdvance(%q, %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}
