package vehicle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleettrack/internal/core/apperror"
	"fleettrack/internal/core/id"
	"fleettrack/internal/core/types"
	"fleettrack/internal/domain"
	"fleettrack/internal/domain/status"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	vehicles map[id.ID]*Vehicle
	readings []*OdometerReading
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{vehicles: make(map[id.ID]*Vehicle)}
}

func (r *fakeRepo) Create(_ context.Context, v *Vehicle) error {
	r.vehicles[v.ID] = v
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, vehicleID id.ID) (*Vehicle, error) {
	v, ok := r.vehicles[vehicleID]
	if !ok {
		return nil, apperror.NewNotFound("vehicle", vehicleID.String())
	}
	return v, nil
}

func (r *fakeRepo) GetByCode(_ context.Context, code string) (*Vehicle, error) {
	for _, v := range r.vehicles {
		if v.Code == code {
			return v, nil
		}
	}
	return nil, apperror.NewNotFound("vehicle", code)
}

func (r *fakeRepo) Update(_ context.Context, v *Vehicle) error {
	if _, ok := r.vehicles[v.ID]; !ok {
		return apperror.NewNotFound("vehicle", v.ID.String())
	}
	r.vehicles[v.ID] = v
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, vehicleID id.ID) error {
	delete(r.vehicles, vehicleID)
	return nil
}

func (r *fakeRepo) SetDeletionMark(_ context.Context, vehicleID id.ID, marked bool) error {
	v, ok := r.vehicles[vehicleID]
	if !ok {
		return apperror.NewNotFound("vehicle", vehicleID.String())
	}
	v.DeletionMark = marked
	return nil
}

func (r *fakeRepo) List(_ context.Context, f domain.ListFilter) (domain.ListResult[*Vehicle], error) {
	var items []*Vehicle
	for _, v := range r.vehicles {
		if !f.IncludeDeleted && v.DeletionMark {
			continue
		}
		items = append(items, v)
	}
	return domain.ListResult[*Vehicle]{Items: items, TotalCount: int64(len(items))}, nil
}

func (r *fakeRepo) ListByOrg(_ context.Context, orgID id.ID) ([]*Vehicle, error) {
	var out []*Vehicle
	for _, v := range r.vehicles {
		if v.OrgID == orgID && !v.DeletionMark {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeRepo) Exists(_ context.Context, vehicleID id.ID) (bool, error) {
	_, ok := r.vehicles[vehicleID]
	return ok, nil
}

func (r *fakeRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, err := r.GetByCode(context.Background(), code)
	return err == nil, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, vehicleID id.ID, level status.Level) error {
	v, ok := r.vehicles[vehicleID]
	if !ok {
		return apperror.NewNotFound("vehicle", vehicleID.String())
	}
	v.Status = level
	return nil
}

func (r *fakeRepo) InsertReading(_ context.Context, reading *OdometerReading) error {
	r.readings = append(r.readings, reading)
	return nil
}

func (r *fakeRepo) LastReading(_ context.Context, orgID, vehicleID id.ID) (*OdometerReading, error) {
	for i := len(r.readings) - 1; i >= 0; i-- {
		if rd := r.readings[i]; rd.OrgID == orgID && rd.VehicleID == vehicleID {
			return rd, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ListReadings(_ context.Context, orgID, vehicleID id.ID, limit int) ([]OdometerReading, error) {
	var out []OdometerReading
	for i := len(r.readings) - 1; i >= 0 && len(out) < limit; i-- {
		if rd := r.readings[i]; rd.OrgID == orgID && rd.VehicleID == vehicleID {
			out = append(out, *rd)
		}
	}
	return out, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, txStub{}), repo
}

func TestCreate_NormalizesPlateAndComputesStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID := id.New()

	v := NewVehicle(orgID, "b-123-xyz", "DAF", "XF")
	require.NoError(t, svc.Create(ctx, v))

	assert.Equal(t, "B123XYZ", v.Plate())
	// No insurance on record classifies as expired, dragging the aggregate.
	assert.Equal(t, status.LevelOverdue, v.Status)
}

func TestRecordReading_Monotonic(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID := id.New()

	v := NewVehicle(orgID, "B200ABC", "MAN", "TGX")
	require.NoError(t, svc.Create(ctx, v))

	_, err := svc.RecordReading(ctx, orgID, v.ID, RecordReadingInput{Km: 120_000})
	require.NoError(t, err)
	assert.Equal(t, types.Km(120_000), repo.vehicles[v.ID].CurrentKm)

	// Same value is allowed, lower is a rollback.
	_, err = svc.RecordReading(ctx, orgID, v.ID, RecordReadingInput{Km: 120_000})
	require.NoError(t, err)

	_, err = svc.RecordReading(ctx, orgID, v.ID, RecordReadingInput{Km: 119_999})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeOdometerRollback, appErr.Code)

	// The rejected reading was not appended.
	readings, err := svc.ListReadings(ctx, orgID, v.ID, 10)
	require.NoError(t, err)
	assert.Len(t, readings, 2)
}

func TestRecordReading_RefreshesRevisionStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID := id.New()

	future := time.Now().UTC().AddDate(1, 0, 0)
	dueKm := types.Km(100_000)

	v := NewVehicle(orgID, "B300DEF", "Volvo", "FH")
	v.InsuranceExpiry = &future
	v.TachographExpiry = &future
	v.CopieConformaExpiry = &future
	v.RevisionDueKm = &dueKm
	require.NoError(t, svc.Create(ctx, v))
	assert.Equal(t, status.LevelOK, v.Status)

	// Crossing into the 1000 km revision window flips the stored status.
	_, err := svc.RecordReading(ctx, orgID, v.ID, RecordReadingInput{Km: 99_500})
	require.NoError(t, err)
	assert.Equal(t, status.LevelSoon, repo.vehicles[v.ID].Status)

	_, err = svc.RecordReading(ctx, orgID, v.ID, RecordReadingInput{Km: 100_001})
	require.NoError(t, err)
	assert.Equal(t, status.LevelOverdue, repo.vehicles[v.ID].Status)
}

func TestRecordReading_CrossOrgIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	orgID, otherOrg := id.New(), id.New()

	v := NewVehicle(orgID, "B400GHI", "Iveco", "S-Way")
	require.NoError(t, svc.Create(ctx, v))

	_, err := svc.RecordReading(ctx, otherOrg, v.ID, RecordReadingInput{Km: 10})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecalculateStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	orgID := id.New()

	future := time.Now().UTC().AddDate(1, 0, 0)
	v := NewVehicle(orgID, "B500JKL", "Scania", "R450")
	v.InsuranceExpiry = &future
	v.TachographExpiry = &future
	v.CopieConformaExpiry = &future
	v.RevisionDueDate = &future
	require.NoError(t, svc.Create(ctx, v))
	assert.Equal(t, status.LevelOK, v.Status)

	// An expiry slipping into the past is picked up on recalculation.
	past := time.Now().UTC().AddDate(0, 0, -1)
	repo.vehicles[v.ID].InsuranceExpiry = &past
	require.NoError(t, svc.RecalculateStatus(ctx, orgID, v.ID))
	assert.Equal(t, status.LevelOverdue, repo.vehicles[v.ID].Status)
}
