package scoring

import (
	"context"
	"testing"
	"time"

	"github.com/vidscribe-ai/platform/pkg/common/models"
)

func repeat(value int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestClassifyTierHighAveragePlays(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tier, snooze, avg := ClassifyTier(repeat(1200000, 25), DefaultThresholds(), now)
	if tier != models.TierActive {
		t.Fatalf("expected active, got %s", tier)
	}
	if snooze != nil {
		t.Fatal("active accounts must not be snoozed")
	}
	if avg != 1200000 {
		t.Fatalf("unexpected average: %v", avg)
	}
}

func TestClassifyTierMidRangeIsWatch(t *testing.T) {
	now := time.Now().UTC()
	tier, snooze, _ := ClassifyTier(repeat(80000, 10), DefaultThresholds(), now)
	if tier != models.TierWatch || snooze != nil {
		t.Fatalf("expected watch with no snooze, got %s %v", tier, snooze)
	}
}

func TestClassifyTierLowPlaysSnoozes(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tier, snooze, _ := ClassifyTier(repeat(1000, 10), DefaultThresholds(), now)
	if tier != models.TierSnoozed {
		t.Fatalf("expected snoozed, got %s", tier)
	}
	if snooze == nil {
		t.Fatal("snoozed accounts need a cooldown")
	}
	want := now.Add(7 * 24 * time.Hour)
	if !snooze.Equal(want) {
		t.Fatalf("snooze until %v, want %v", snooze, want)
	}
}

func TestClassifyTierTooFewPostsIsWatch(t *testing.T) {
	now := time.Now().UTC()
	// Even terrible numbers cannot snooze an account we barely know.
	tier, snooze, _ := ClassifyTier(repeat(10, 2), DefaultThresholds(), now)
	if tier != models.TierWatch || snooze != nil {
		t.Fatalf("expected watch for thin history, got %s %v", tier, snooze)
	}
	tier, _, _ = ClassifyTier(nil, DefaultThresholds(), now)
	if tier != models.TierWatch {
		t.Fatalf("expected watch for empty history, got %s", tier)
	}
}

func TestClassifyTierDeterministic(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	plays := []int64{400000, 600000, 550000, 480000}
	t1, s1, a1 := ClassifyTier(plays, DefaultThresholds(), now)
	t2, s2, a2 := ClassifyTier(plays, DefaultThresholds(), now)
	if t1 != t2 || a1 != a2 {
		t.Fatalf("classification changed between runs: %s/%v vs %s/%v", t1, a1, t2, a2)
	}
	if (s1 == nil) != (s2 == nil) {
		t.Fatal("snooze decision changed between runs")
	}
}

type fakeAccountStore struct {
	accounts []models.Account
	metrics  map[string][]models.PostMetric
	updates  map[string]string
}

func (f *fakeAccountStore) AllAccounts(ctx context.Context) ([]models.Account, error) {
	return f.accounts, nil
}

func (f *fakeAccountStore) RecentMetrics(ctx context.Context, ownerID string, n int) ([]models.PostMetric, error) {
	return f.metrics[ownerID], nil
}

func (f *fakeAccountStore) UpdateAccountTier(ctx context.Context, ownerID, tier string, snoozeUntil *time.Time, avgPlay, avgView float64) error {
	if f.updates == nil {
		f.updates = map[string]string{}
	}
	f.updates[ownerID] = tier
	return nil
}

func metricsWithPlays(owner string, plays int64, n int) []models.PostMetric {
	out := make([]models.PostMetric, n)
	for i := range out {
		out[i] = models.PostMetric{OwnerID: owner, Plays: plays, Views: plays / 2}
	}
	return out
}

func TestTierEngineUpdatesEveryAccount(t *testing.T) {
	store := &fakeAccountStore{
		accounts: []models.Account{
			{OwnerID: "big"},
			{OwnerID: "mid"},
			{OwnerID: "cold"},
		},
		metrics: map[string][]models.PostMetric{
			"big":  metricsWithPlays("big", 900000, 20),
			"mid":  metricsWithPlays("mid", 60000, 20),
			"cold": metricsWithPlays("cold", 100, 20),
		},
	}

	engine := NewTierEngine(store, DefaultThresholds())
	summary, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Accounts != 3 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if store.updates["big"] != models.TierActive {
		t.Fatalf("big should be active, got %s", store.updates["big"])
	}
	if store.updates["mid"] != models.TierWatch {
		t.Fatalf("mid should be watch, got %s", store.updates["mid"])
	}
	if store.updates["cold"] != models.TierSnoozed {
		t.Fatalf("cold should be snoozed, got %s", store.updates["cold"])
	}
}
