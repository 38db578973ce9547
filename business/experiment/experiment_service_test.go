package experiment

import (
	"context"
	"testing"
	"time"

	"payvance/domain"
)

type stubExperimentRepo struct {
	experiments map[uint]domain.Experiment
	nextID      uint
}

func newStubExperimentRepo() *stubExperimentRepo {
	return &stubExperimentRepo{experiments: map[uint]domain.Experiment{}, nextID: 1}
}

func (s *stubExperimentRepo) Create(ctx context.Context, e *domain.Experiment) error {
	e.ID = s.nextID
	s.nextID++
	s.experiments[e.ID] = *e
	return nil
}

func (s *stubExperimentRepo) FindByID(ctx context.Context, id uint) (domain.Experiment, error) {
	e, ok := s.experiments[id]
	if !ok {
		return domain.Experiment{}, domain.ErrNotFound("experiment not found")
	}
	return e, nil
}

func (s *stubExperimentRepo) FindAll(ctx context.Context) ([]domain.Experiment, error) {
	var out []domain.Experiment
	for _, e := range s.experiments {
		out = append(out, e)
	}
	return out, nil
}

type stubEventRepo struct {
	events []domain.Event
}

func (s *stubEventRepo) FindByNames(ctx context.Context, names []string, start, end time.Time) ([]domain.Event, error) {
	return s.events, nil
}

type stubTracker struct {
	events []string
}

func (s *stubTracker) TrackQuiet(ctx context.Context, userID uint, eventName string, properties map[string]any) {
	s.events = append(s.events, eventName)
}

func validVariants() []domain.ExperimentVariant {
	return []domain.ExperimentVariant{
		{Name: "control", Weight: 50},
		{Name: "treatment", Weight: 50},
	}
}

func TestValidateVariants(t *testing.T) {
	cases := []struct {
		name     string
		variants []domain.ExperimentVariant
		wantErr  bool
	}{
		{"valid split", validVariants(), false},
		{"three arms", []domain.ExperimentVariant{{Name: "a", Weight: 40}, {Name: "b", Weight: 30}, {Name: "c", Weight: 30}}, false},
		{"single arm", []domain.ExperimentVariant{{Name: "only", Weight: 100}}, true},
		{"weights under 100", []domain.ExperimentVariant{{Name: "a", Weight: 40}, {Name: "b", Weight: 40}}, true},
		{"weights over 100", []domain.ExperimentVariant{{Name: "a", Weight: 60}, {Name: "b", Weight: 60}}, true},
		{"zero weight", []domain.ExperimentVariant{{Name: "a", Weight: 0}, {Name: "b", Weight: 100}}, true},
		{"duplicate names", []domain.ExperimentVariant{{Name: "a", Weight: 50}, {Name: "a", Weight: 50}}, true},
		{"unnamed variant", []domain.ExperimentVariant{{Name: "", Weight: 50}, {Name: "b", Weight: 50}}, true},
	}

	for _, c := range cases {
		err := ValidateVariants(c.variants)
		if (err != nil) != c.wantErr {
			t.Errorf("%s: got err=%v, wantErr=%v", c.name, err, c.wantErr)
		}
	}
}

func TestCreateValidatesDates(t *testing.T) {
	svc := NewExperimentService(newStubExperimentRepo(), &stubEventRepo{}, &stubTracker{})

	start := time.Now()
	_, err := svc.Create(context.Background(), CreateParams{
		Name:        "onboarding-copy",
		Description: "copy test",
		Variants:    validVariants(),
		StartDate:   start,
		EndDate:     start.Add(-time.Hour),
		CreatedBy:   1,
	})
	if err == nil {
		t.Fatal("expected error for end date before start date")
	}
}

func TestCreateTracksEvent(t *testing.T) {
	tracker := &stubTracker{}
	svc := NewExperimentService(newStubExperimentRepo(), &stubEventRepo{}, tracker)

	start := time.Now()
	created, err := svc.Create(context.Background(), CreateParams{
		Name:        "onboarding-copy",
		Description: "copy test",
		Variants:    validVariants(),
		StartDate:   start,
		EndDate:     start.Add(24 * time.Hour),
		CreatedBy:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Status != domain.ExperimentActive {
		t.Fatalf("expected active status, got %q", created.Status)
	}
	if len(tracker.events) != 1 || tracker.events[0] != domain.EventExperimentCreated {
		t.Fatalf("expected one %s event, got %v", domain.EventExperimentCreated, tracker.events)
	}
}

func TestGetResultsAggregatesPerVariant(t *testing.T) {
	repo := newStubExperimentRepo()
	tracker := &stubTracker{}
	svc := NewExperimentService(repo, &stubEventRepo{}, tracker)

	start := time.Now().Add(-24 * time.Hour)
	created, err := svc.Create(context.Background(), CreateParams{
		Name:        "onboarding-copy",
		Description: "copy test",
		Variants:    validVariants(),
		StartDate:   start,
		EndDate:     start.Add(48 * time.Hour),
		CreatedBy:   1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// JSON round-trips numbers as float64, matching how properties come
	// back out of the events table.
	id := float64(created.ID)
	eventRepo := &stubEventRepo{events: []domain.Event{
		{EventName: domain.EventExperimentExposure, Properties: map[string]any{"experimentId": id, "variant": "control"}},
		{EventName: domain.EventExperimentExposure, Properties: map[string]any{"experimentId": id, "variant": "control"}},
		{EventName: domain.EventExperimentExposure, Properties: map[string]any{"experimentId": id, "variant": "treatment"}},
		{EventName: domain.EventExperimentConversion, Properties: map[string]any{"experimentId": id, "variant": "treatment"}},
		{EventName: domain.EventExperimentExposure, Properties: map[string]any{"experimentId": float64(999), "variant": "control"}},
	}}
	svc = NewExperimentService(repo, eventRepo, tracker)

	results, err := svc.GetResults(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results.TotalParticipants != 3 {
		t.Fatalf("expected 3 participants, got %d", results.TotalParticipants)
	}

	byName := map[string]VariantResult{}
	for _, v := range results.Variants {
		byName[v.Name] = v
	}
	if byName["control"].Participants != 2 || byName["control"].Conversions != 0 {
		t.Fatalf("unexpected control rollup: %+v", byName["control"])
	}
	treatment := byName["treatment"]
	if treatment.Participants != 1 || treatment.Conversions != 1 || treatment.ConversionRate != 1.0 {
		t.Fatalf("unexpected treatment rollup: %+v", treatment)
	}
}

func TestGetResultsUnknownExperiment(t *testing.T) {
	svc := NewExperimentService(newStubExperimentRepo(), &stubEventRepo{}, &stubTracker{})

	_, err := svc.GetResults(context.Background(), 42)
	if err == nil {
		t.Fatal("expected not-found error")
	}
	appErr, ok := domain.AsAppError(err)
	if !ok || appErr.Code != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}
