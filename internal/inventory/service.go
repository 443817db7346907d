package inventory

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"rental-inventory-backend/config"
	"rental-inventory-backend/internal/model"
	"rental-inventory-backend/internal/store"
)

// Alerter receives shortage notices when allocation runs out of devices.
type Alerter interface {
	ShortageDetected(category string, count int, start, end time.Time)
}

// Query is one availability request.
type Query struct {
	Start      string
	End        string
	Categories []string

	// Persist writes newly decided tags back to the store so the next run
	// starts from them. The core's output is advisory until persisted.
	Persist bool
}

// Result is the response of one pipeline run.
type Result struct {
	Devices      []string
	Slots        []TimeSlot
	Decisions    []Decision
	Reservations []model.Reservation
}

// Service runs the allocation pipeline: validate window, ingest devices and
// reservations, build the conflict index, allocate tags per category, persist
// decisions, build the timeline. Everything except the two ingestion reads is
// strictly single-threaded; the processing order is a correctness
// requirement, not a performance choice.
type Service struct {
	store   store.Store
	alerter Alerter

	pageSize        int
	maxDevices      int
	maxReservations int

	// Clock is the reference for "today", which decides whether an overdue
	// reservation occupies open-endedly. Overridable in tests.
	Clock func() time.Time
}

// NewService creates the pipeline service. The alerter may be nil.
func NewService(cfg *config.Config, st store.Store, alerter Alerter) *Service {
	return &Service{
		store:           st,
		alerter:         alerter,
		pageSize:        cfg.Ingest.PageSize,
		maxDevices:      cfg.Ingest.MaxDevices,
		maxReservations: cfg.Ingest.MaxReservations,
		Clock:           time.Now,
	}
}

// Availability executes one full pipeline run.
func (s *Service) Availability(ctx context.Context, q Query) (*Result, error) {
	w, err := ParseWindow(q.Start, q.End)
	if err != nil {
		return nil, err
	}
	ref := s.Clock().UTC()

	// The two ingestion reads are independent; run them concurrently. Either
	// failure aborts the whole request, no partial inventory is ever used.
	var (
		catalog      *Catalog
		reservations []model.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = LoadCatalog(gctx, s.store, q.Categories, s.pageSize, s.maxDevices)
		return err
	})
	g.Go(func() error {
		var err error
		reservations, err = LoadReservations(gctx, s.store, w, q.Categories, s.pageSize, s.maxReservations)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := BuildConflictIndex(reservations, ref)

	// Group the untagged, still-open reservations by category; already
	// assigned reservations are never touched.
	var assigned []model.Reservation
	pending := make(map[string][]*model.Reservation)
	for i := range reservations {
		r := &reservations[i]
		if r.Assigned() {
			assigned = append(assigned, *r)
			continue
		}
		if r.Status == model.ReservationReturned {
			continue
		}
		pending[r.Category] = append(pending[r.Category], r)
	}

	engine := &Engine{Preference: ContinuityPreference(assigned)}

	categories := make([]string, 0, len(pending))
	for cat := range pending {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var decisions []Decision
	for _, cat := range categories {
		decisions = append(decisions, engine.Allocate(cat, pending[cat], catalog.TagsFor(cat), idx, ref)...)
	}

	if q.Persist {
		s.persistDecisions(ctx, decisions)
	}
	s.reportShortages(w, decisions, pending)

	return &Result{
		Devices:      catalog.Tags(),
		Slots:        BuildTimeline(w, reservations, ref),
		Decisions:    decisions,
		Reservations: reservations,
	}, nil
}

// persistDecisions writes newly assigned tags back. A lost race with a
// concurrent writer is logged and skipped, never fatal: the store's guarded
// update is the arbiter, this run's decision was advisory.
func (s *Service) persistDecisions(ctx context.Context, decisions []Decision) {
	for _, d := range decisions {
		if d.Outcome != OutcomeAssigned {
			continue
		}
		if err := s.store.AssignTag(ctx, d.ReservationID, d.Tag); err != nil {
			if errors.Is(err, store.ErrAlreadyAssigned) {
				log.Printf("reservation %s was tagged concurrently; dropping stale decision %s", d.ReservationID, d.Tag)
				continue
			}
			log.Printf("failed to persist tag %s for reservation %s: %v", d.Tag, d.ReservationID, err)
		}
	}
}

func (s *Service) reportShortages(w Window, decisions []Decision, pending map[string][]*model.Reservation) {
	if s.alerter == nil {
		return
	}
	shortages := make(map[string]int)
	byID := make(map[string]string, len(decisions))
	for cat, rs := range pending {
		for _, r := range rs {
			byID[r.ID] = cat
		}
	}
	for _, d := range decisions {
		if d.Outcome == OutcomeNoCapacity {
			shortages[byID[d.ReservationID]]++
		}
	}
	for cat, n := range shortages {
		s.alerter.ShortageDetected(cat, n, w.Start, w.End)
	}
}
