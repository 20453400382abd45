package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"healthvault/internal/domain"
)

// DefaultSyncInterval is the background refresh cadence when none is
// configured.
const DefaultSyncInterval = 5 * time.Second

// Snapshot is the cached view of a user's vault served between refreshes.
type Snapshot struct {
	Entries     []domain.BmiEntry      `json:"entries"`
	Vaccines    []domain.VaccineRecord `json:"vaccines"`
	RefreshedAt time.Time              `json:"refreshedAt"`
}

type bmiLister interface {
	List(ctx context.Context, userID int64) ([]domain.BmiEntry, error)
}

type vaccineStore interface {
	List(ctx context.Context, userID int64) ([]domain.VaccineRecord, error)
	SetAdministered(ctx context.Context, userID int64, id string, administered bool, dateISO string) ([]domain.VaccineRecord, error)
}

// Syncer keeps one user's snapshot in step with the repositories. Reads are
// served from the snapshot; every refresh replaces it wholesale, so after
// concurrent writes the last refresh wins.
type Syncer struct {
	userID   int64
	bmi      bmiLister
	vaccines vaccineStore
	interval time.Duration
	log      zerolog.Logger

	onRefresh func()

	mu   sync.RWMutex
	snap Snapshot
}

// OnRefresh registers a hook invoked after every successful refresh. Set it
// before Run starts.
func (s *Syncer) OnRefresh(fn func()) {
	s.onRefresh = fn
}

// NewSyncer creates a Syncer for one user. Intervals of zero or below fall
// back to DefaultSyncInterval.
func NewSyncer(userID int64, bmi bmiLister, vaccines vaccineStore, interval time.Duration, log zerolog.Logger) *Syncer {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Syncer{
		userID:   userID,
		bmi:      bmi,
		vaccines: vaccines,
		interval: interval,
		log:      log.With().Int64("user_id", userID).Logger(),
	}
}

// Snapshot returns the current cached view.
func (s *Syncer) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh re-reads both collections and replaces the snapshot.
func (s *Syncer) Refresh(ctx context.Context) (Snapshot, error) {
	entries, err := s.bmi.List(ctx, s.userID)
	if err != nil {
		return s.Snapshot(), err
	}
	vaccines, err := s.vaccines.List(ctx, s.userID)
	if err != nil {
		return s.Snapshot(), err
	}
	snap := Snapshot{Entries: entries, Vaccines: vaccines, RefreshedAt: time.Now()}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	if s.onRefresh != nil {
		s.onRefresh()
	}
	return snap, nil
}

// Run polls on the configured interval until the context is done. Failed
// refreshes are logged and retried on the next tick; the stale snapshot
// stays served in the meantime.
func (s *Syncer) Run(ctx context.Context) {
	if _, err := s.Refresh(ctx); err != nil {
		s.log.Warn().Err(err).Msg("initial refresh failed")
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.log.Warn().Err(err).Msg("refresh failed")
			}
		}
	}
}

// ToggleAdministered flips a vaccine's received flag optimistically: the
// snapshot is patched immediately, then the write runs, and on failure the
// patch is reverted so the view drops back to stored truth.
func (s *Syncer) ToggleAdministered(ctx context.Context, id string, administered bool, dateISO string) (Snapshot, error) {
	prev, ok := s.apply(id, administered, dateISO)
	if !ok {
		// The snapshot may predate the record (or not exist yet on a cold
		// start), so re-read once before giving up.
		if _, err := s.Refresh(ctx); err != nil {
			return s.Snapshot(), err
		}
		if prev, ok = s.apply(id, administered, dateISO); !ok {
			return s.Snapshot(), ErrVaccineNotFound
		}
	}

	vaccines, err := s.vaccines.SetAdministered(ctx, s.userID, id, administered, dateISO)
	if err != nil {
		s.revert(id, prev)
		s.log.Warn().Err(err).Str("vaccine_id", id).Msg("administered toggle reverted")
		return s.Snapshot(), err
	}

	s.mu.Lock()
	s.snap.Vaccines = vaccines
	s.snap.RefreshedAt = time.Now()
	snap := s.snap
	s.mu.Unlock()
	return snap, nil
}

// apply patches the snapshot in place and returns the record's prior state.
func (s *Syncer) apply(id string, administered bool, dateISO string) (domain.VaccineRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Vaccines {
		if s.snap.Vaccines[i].ID != id {
			continue
		}
		prev := s.snap.Vaccines[i]
		s.snap.Vaccines[i].Administered = administered
		if administered {
			s.snap.Vaccines[i].AdministeredDate = dateISO
		} else {
			s.snap.Vaccines[i].AdministeredDate = ""
		}
		return prev, true
	}
	return domain.VaccineRecord{}, false
}

func (s *Syncer) revert(id string, prev domain.VaccineRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snap.Vaccines {
		if s.snap.Vaccines[i].ID == id {
			s.snap.Vaccines[i] = prev
			return
		}
	}
}
