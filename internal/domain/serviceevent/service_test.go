package serviceevent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/domain/catalogs/vehicle"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeNumbers struct {
	counters map[id.ID]int64
}

func (n *fakeNumbers) Next(_ context.Context, orgID id.ID, prefix string) (string, error) {
	if n.counters == nil {
		n.counters = make(map[id.ID]int64)
	}
	n.counters[orgID]++
	return fmt.Sprintf("%s-%06d", prefix, n.counters[orgID]), nil
}

type fakeVehicles struct {
	vehicles map[id.ID]*vehicle.Vehicle
}

func (v *fakeVehicles) GetByID(_ context.Context, vehicleID id.ID) (*vehicle.Vehicle, error) {
	found, ok := v.vehicles[vehicleID]
	if !ok {
		return nil, apperror.NewNotFound("vehicle", vehicleID.String())
	}
	return found, nil
}

type fakeRepo struct {
	events map[id.ID]*Event
	linked map[id.ID]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[id.ID]*Event), linked: make(map[id.ID]int64)}
}

func (r *fakeRepo) Create(_ context.Context, event *Event) error {
	r.events[event.ID] = event
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, orgID, eventID id.ID) (*Event, error) {
	e, ok := r.events[eventID]
	if !ok || e.OrgID != orgID {
		return nil, apperror.NewNotFound("service event", eventID.String())
	}
	return e, nil
}

func (r *fakeRepo) List(_ context.Context, orgID id.ID, f ListFilter) ([]Event, error) {
	var out []Event
	for _, e := range r.events {
		if e.OrgID != orgID {
			continue
		}
		if f.VehicleID != nil && e.VehicleID != *f.VehicleID {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeRepo) Delete(_ context.Context, orgID, eventID id.ID) error {
	e, ok := r.events[eventID]
	if !ok || e.OrgID != orgID {
		return apperror.NewNotFound("service event", eventID.String())
	}
	delete(r.events, eventID)
	return nil
}

func (r *fakeRepo) CountLinkedMovements(_ context.Context, eventID id.ID) (int64, error) {
	return r.linked[eventID], nil
}

func newTestService(orgID id.ID) (*Service, *fakeRepo, *vehicle.Vehicle) {
	repo := newFakeRepo()
	truck := vehicle.NewVehicle(orgID, "B100TRK", "DAF", "XF")
	vehicles := &fakeVehicles{vehicles: map[id.ID]*vehicle.Vehicle{truck.ID: truck}}
	svc := NewService(repo, vehicles, &fakeNumbers{}, txStub{})
	return svc, repo, truck
}

func TestCreate_AssignsSequentialNumbers(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	svc, _, truck := newTestService(orgID)

	first := NewEvent(orgID, truck.ID, "oil change", time.Now())
	require.NoError(t, svc.Create(ctx, first))
	assert.Equal(t, "SE-000001", first.Number)

	second := NewEvent(orgID, truck.ID, "revision", time.Now())
	require.NoError(t, svc.Create(ctx, second))
	assert.Equal(t, "SE-000002", second.Number)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	svc, _, truck := newTestService(orgID)

	missingType := NewEvent(orgID, truck.ID, "  ", time.Now())
	err := svc.Create(ctx, missingType)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	missingVehicle := NewEvent(orgID, id.Nil(), "oil change", time.Now())
	err = svc.Create(ctx, missingVehicle)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	unknownVehicle := NewEvent(orgID, id.New(), "oil change", time.Now())
	err = svc.Create(ctx, unknownVehicle)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_CrossOrgVehicleIsNotFound(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	svc, _, truck := newTestService(orgID)

	event := NewEvent(id.New(), truck.ID, "oil change", time.Now())
	err := svc.Create(ctx, event)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestList_FiltersByVehicle(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	svc, repo, truck := newTestService(orgID)

	event := NewEvent(orgID, truck.ID, "oil change", time.Now())
	require.NoError(t, svc.Create(ctx, event))

	other := NewEvent(orgID, truck.ID, "brake pads", time.Now())
	require.NoError(t, svc.Create(ctx, other))
	assert.Len(t, repo.events, 2)

	events, err := svc.List(ctx, orgID, ListFilter{VehicleID: &truck.ID})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	unknown := id.New()
	_, err = svc.List(ctx, orgID, ListFilter{VehicleID: &unknown})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_GuardsLinkedMovements(t *testing.T) {
	ctx := context.Background()
	orgID := id.New()
	svc, repo, truck := newTestService(orgID)

	event := NewEvent(orgID, truck.ID, "oil change", time.Now())
	require.NoError(t, svc.Create(ctx, event))

	repo.linked[event.ID] = 2
	err := svc.Delete(ctx, orgID, event.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Contains(t, repo.events, event.ID)

	repo.linked[event.ID] = 0
	require.NoError(t, svc.Delete(ctx, orgID, event.ID))
	assert.NotContains(t, repo.events, event.ID)
}
