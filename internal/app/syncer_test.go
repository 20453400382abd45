package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthvault/internal/app"
	"healthvault/internal/domain"
)

type stubBmiLister struct {
	entries []domain.BmiEntry
	err     error
}

func (s *stubBmiLister) List(context.Context, int64) ([]domain.BmiEntry, error) {
	return s.entries, s.err
}

type stubVaccineStore struct {
	records []domain.VaccineRecord
	err     error
	setErr  error
}

func (s *stubVaccineStore) List(context.Context, int64) ([]domain.VaccineRecord, error) {
	out := make([]domain.VaccineRecord, len(s.records))
	copy(out, s.records)
	return out, s.err
}

func (s *stubVaccineStore) SetAdministered(_ context.Context, _ int64, id string, administered bool, dateISO string) ([]domain.VaccineRecord, error) {
	if s.setErr != nil {
		return nil, s.setErr
	}
	for i := range s.records {
		if s.records[i].ID == id {
			s.records[i].Administered = administered
			s.records[i].AdministeredDate = dateISO
		}
	}
	return s.List(context.Background(), 0)
}

func TestSyncerRefresh_ReplacesSnapshot(t *testing.T) {
	bmi := &stubBmiLister{entries: []domain.BmiEntry{{ID: 1, Date: "2024-01-01"}}}
	vaccines := &stubVaccineStore{records: []domain.VaccineRecord{{ID: "a", Name: "BCG"}}}
	syncer := app.NewSyncer(1, bmi, vaccines, time.Minute, zerolog.Nop())

	snap, err := syncer.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 1)
	assert.Len(t, snap.Vaccines, 1)
	assert.False(t, snap.RefreshedAt.IsZero())

	// A later refresh fully replaces the cached view, it never merges.
	bmi.entries = []domain.BmiEntry{{ID: 2, Date: "2024-02-01"}, {ID: 3, Date: "2024-03-01"}}
	vaccines.records = nil

	snap, err = syncer.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)
	assert.Empty(t, snap.Vaccines)
	assert.Equal(t, snap, syncer.Snapshot())
}

func TestSyncerRefresh_ErrorKeepsStaleSnapshot(t *testing.T) {
	bmi := &stubBmiLister{entries: []domain.BmiEntry{{ID: 1, Date: "2024-01-01"}}}
	vaccines := &stubVaccineStore{}
	syncer := app.NewSyncer(1, bmi, vaccines, time.Minute, zerolog.Nop())

	_, err := syncer.Refresh(context.Background())
	require.NoError(t, err)

	bmi.err = errors.New("db down")
	snap, err := syncer.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, snap.Entries, 1, "stale snapshot stays served")
}

func TestSyncerToggleAdministered_Success(t *testing.T) {
	vaccines := &stubVaccineStore{records: []domain.VaccineRecord{{ID: "a", Name: "BCG"}}}
	syncer := app.NewSyncer(1, &stubBmiLister{}, vaccines, time.Minute, zerolog.Nop())

	_, err := syncer.Refresh(context.Background())
	require.NoError(t, err)

	snap, err := syncer.ToggleAdministered(context.Background(), "a", true, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, snap.Vaccines, 1)
	assert.True(t, snap.Vaccines[0].Administered)
	assert.Equal(t, "2024-03-01", snap.Vaccines[0].AdministeredDate)
}

func TestSyncerToggleAdministered_RevertsOnError(t *testing.T) {
	vaccines := &stubVaccineStore{records: []domain.VaccineRecord{{ID: "a", Name: "BCG"}}}
	syncer := app.NewSyncer(1, &stubBmiLister{}, vaccines, time.Minute, zerolog.Nop())

	_, err := syncer.Refresh(context.Background())
	require.NoError(t, err)

	vaccines.setErr = errors.New("write failed")
	snap, err := syncer.ToggleAdministered(context.Background(), "a", true, "2024-03-01")
	require.Error(t, err)
	require.Len(t, snap.Vaccines, 1)
	assert.False(t, snap.Vaccines[0].Administered, "optimistic patch must be reverted")
	assert.Empty(t, snap.Vaccines[0].AdministeredDate)
}

func TestSyncerToggleAdministered_ColdStartRefreshes(t *testing.T) {
	vaccines := &stubVaccineStore{records: []domain.VaccineRecord{{ID: "a", Name: "BCG"}}}
	syncer := app.NewSyncer(1, &stubBmiLister{}, vaccines, time.Minute, zerolog.Nop())

	// No Refresh yet: the toggle must re-read before it can patch.
	snap, err := syncer.ToggleAdministered(context.Background(), "a", true, "2024-03-01")
	require.NoError(t, err)
	require.Len(t, snap.Vaccines, 1)
	assert.True(t, snap.Vaccines[0].Administered)
}

func TestSyncerToggleAdministered_UnknownID(t *testing.T) {
	syncer := app.NewSyncer(1, &stubBmiLister{}, &stubVaccineStore{}, time.Minute, zerolog.Nop())

	_, err := syncer.ToggleAdministered(context.Background(), "nope", true, "")
	assert.ErrorIs(t, err, app.ErrVaccineNotFound)
}

func TestSyncerRun_StopsOnContextDone(t *testing.T) {
	syncer := app.NewSyncer(1, &stubBmiLister{}, &stubVaccineStore{}, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		syncer.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.False(t, syncer.Snapshot().RefreshedAt.IsZero())
}
