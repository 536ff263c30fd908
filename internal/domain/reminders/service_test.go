package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain/catalogs/vehicle"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	rules       map[id.ID]*Rule
	triggerings []*Triggering
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rules: make(map[id.ID]*Rule)}
}

func (r *fakeRepo) Create(_ context.Context, rule *Rule) error {
	r.rules[rule.ID] = rule
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, orgID, ruleID id.ID) (*Rule, error) {
	rule, ok := r.rules[ruleID]
	if !ok || rule.OrgID != orgID {
		return nil, apperror.NewNotFound("reminder rule", ruleID.String())
	}
	return rule, nil
}

func (r *fakeRepo) List(_ context.Context, orgID id.ID, activeOnly bool) ([]Rule, error) {
	var out []Rule
	for _, rule := range r.rules {
		if rule.OrgID != orgID {
			continue
		}
		if activeOnly && !rule.Active {
			continue
		}
		out = append(out, *rule)
	}
	return out, nil
}

func (r *fakeRepo) Delete(_ context.Context, orgID, ruleID id.ID) error {
	rule, ok := r.rules[ruleID]
	if !ok || rule.OrgID != orgID {
		return apperror.NewNotFound("reminder rule", ruleID.String())
	}
	delete(r.rules, ruleID)
	return nil
}

func (r *fakeRepo) InsertTriggering(_ context.Context, t *Triggering) error {
	r.triggerings = append(r.triggerings, t)
	return nil
}

type fakeFleet struct {
	vehicles []*vehicle.Vehicle
}

func (f *fakeFleet) ListByOrg(_ context.Context, orgID id.ID) ([]*vehicle.Vehicle, error) {
	var out []*vehicle.Vehicle
	for _, v := range f.vehicles {
		if v.OrgID == orgID {
			out = append(out, v)
		}
	}
	return out, nil
}

func newTestService(t *testing.T, fleet *fakeFleet) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	svc, err := NewService(repo, fleet, txStub{})
	require.NoError(t, err)
	return svc, repo
}

func TestCreate_CompileErrorsAreValidation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, &fakeFleet{})
	orgID := id.New()

	cases := []struct {
		name      string
		condition string
	}{
		{"syntax error", "days_to_insurance <"},
		{"unknown variable", "days_to_itp < 15"},
		{"not boolean", "current_km + 5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Create(ctx, NewRule(orgID, "bad rule", tc.condition))
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.Empty(t, repo.rules)
		})
	}
}

func TestCreate_ValidRulePersists(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, &fakeFleet{})
	orgID := id.New()

	rule := NewRule(orgID, "insurance expiring", "days_to_insurance < 15 || status == 'overdue'")
	require.NoError(t, svc.Create(ctx, rule))
	assert.Contains(t, repo.rules, rule.ID)
}

func makeVehicle(orgID id.ID, plate string, insuranceDays int, km, dueKm types.Km) *vehicle.Vehicle {
	v := vehicle.NewVehicle(orgID, plate, "DAF", "XF")
	expiry := time.Now().UTC().AddDate(0, 0, insuranceDays)
	v.InsuranceExpiry = &expiry
	v.CurrentKm = km
	if dueKm > 0 {
		v.RevisionDueKm = &dueKm
	}
	v.Refresh(time.Now().UTC())
	return v
}

func TestEvaluate_ReturnsFiringVehicles(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()

	expiring := makeVehicle(orgID, "B100AAA", 10, 0, 0)
	healthy := makeVehicle(orgID, "B200BBB", 200, 0, 0)
	foreign := makeVehicle(id.New(), "B300CCC", 10, 0, 0)

	fleet := &fakeFleet{vehicles: []*vehicle.Vehicle{expiring, healthy, foreign}}
	svc, repo := newTestService(t, fleet)

	rule := NewRule(orgID, "insurance expiring", "days_to_insurance < 15")
	require.NoError(t, svc.Create(ctx, rule))

	firings, err := svc.Evaluate(ctx, orgID, rule.ID, false)
	require.NoError(t, err)
	require.Len(t, firings, 1)
	assert.Equal(t, expiring.ID, firings[0].VehicleID)
	assert.Equal(t, "B100AAA", firings[0].Plate)
	assert.Empty(t, repo.triggerings)
}

func TestEvaluate_MissingDateDoesNotFireProximityRules(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()

	noDocs := vehicle.NewVehicle(orgID, "B400DDD", "MAN", "TGX")
	noDocs.Refresh(time.Now().UTC())

	fleet := &fakeFleet{vehicles: []*vehicle.Vehicle{noDocs}}
	svc, _ := newTestService(t, fleet)

	proximity := NewRule(orgID, "insurance expiring", "days_to_insurance < 15")
	require.NoError(t, svc.Create(ctx, proximity))

	firings, err := svc.Evaluate(ctx, orgID, proximity.ID, false)
	require.NoError(t, err)
	assert.Empty(t, firings)

	// The missing document is still reachable through status.
	byStatus := NewRule(orgID, "not ok", "status != 'ok'")
	require.NoError(t, svc.Create(ctx, byStatus))

	firings, err = svc.Evaluate(ctx, orgID, byStatus.ID, false)
	require.NoError(t, err)
	assert.Len(t, firings, 1)
}

func TestEvaluate_KmToRevision(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()

	near := makeVehicle(orgID, "B500EEE", 365, 99_600, 100_000)
	far := makeVehicle(orgID, "B600FFF", 365, 50_000, 100_000)

	fleet := &fakeFleet{vehicles: []*vehicle.Vehicle{near, far}}
	svc, _ := newTestService(t, fleet)

	rule := NewRule(orgID, "revision close", "km_to_revision < 500")
	require.NoError(t, svc.Create(ctx, rule))

	firings, err := svc.Evaluate(ctx, orgID, rule.ID, false)
	require.NoError(t, err)
	require.Len(t, firings, 1)
	assert.Equal(t, near.ID, firings[0].VehicleID)
}

func TestSweep_RecordsTriggerings(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()

	expiring := makeVehicle(orgID, "B700GGG", 5, 0, 0)
	fleet := &fakeFleet{vehicles: []*vehicle.Vehicle{expiring}}
	svc, repo := newTestService(t, fleet)

	active := NewRule(orgID, "insurance expiring", "days_to_insurance < 15")
	require.NoError(t, svc.Create(ctx, active))

	disabled := NewRule(orgID, "disabled", "true")
	disabled.Active = false
	require.NoError(t, svc.Create(ctx, disabled))

	fired, err := svc.Sweep(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	require.Len(t, repo.triggerings, 1)
	assert.Equal(t, active.ID, repo.triggerings[0].RuleID)
	assert.Equal(t, expiring.ID, repo.triggerings[0].VehicleID)
}
