package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"case_radar_go/models"
	"case_radar_go/services/judicial"
	"case_radar_go/services/rules"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// SchedulerOptions bound the resources a monitoring cycle may use. The worker
// limit exists because the external fetch is rate-sensitive; the timeouts keep
// one slow source from stalling the whole cycle.
type SchedulerOptions struct {
	Workers          int
	FetchTimeout     time.Duration
	CycleTimeout     time.Duration
	BaselinePriority int
}

// DefaultSchedulerOptions returns conservative defaults
func DefaultSchedulerOptions() SchedulerOptions {
	return SchedulerOptions{
		Workers:          4,
		FetchTimeout:     45 * time.Second,
		CycleTimeout:     15 * time.Minute,
		BaselinePriority: 0,
	}
}

// Scheduler owns the set of monitored cases and drives the
// fetch → diff → classify → notify pipeline for the due subset.
type Scheduler struct {
	db         *gorm.DB
	opts       SchedulerOptions
	diff       *DiffEngine
	dispatcher *Dispatcher

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewScheduler creates a scheduler sharing the given rule cache with the rest
// of the application (so rule CRUD invalidation reaches cycle evaluations)
func NewScheduler(db *gorm.DB, ruleCache *rules.Cache, opts SchedulerOptions) *Scheduler {
	if opts.Workers <= 0 {
		opts.Workers = DefaultSchedulerOptions().Workers
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultSchedulerOptions().FetchTimeout
	}
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = DefaultSchedulerOptions().CycleTimeout
	}

	engine := rules.NewEngine(db, ruleCache)
	return &Scheduler{
		db:         db,
		opts:       opts,
		diff:       NewDiffEngine(db),
		dispatcher: NewDispatcher(db, engine, opts.BaselinePriority),
		inFlight:   make(map[string]bool),
	}
}

// SelectDue returns the active monitored cases whose check interval has
// elapsed (or that have never been checked) at the given time.
func (s *Scheduler) SelectDue(now time.Time) ([]models.MonitoredCase, error) {
	var all []models.MonitoredCase
	err := s.db.Where("status = ?", models.MonitoringStatusActive).Find(&all).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load monitored cases: %w", err)
	}

	due := make([]models.MonitoredCase, 0, len(all))
	for _, mc := range all {
		if mc.IsDue(now) {
			due = append(due, mc)
		}
	}
	return due, nil
}

// RunCycle processes every due case with bounded concurrency. Each case's
// pipeline is independent: one failing case never aborts the others.
func (s *Scheduler) RunCycle(ctx context.Context) {
	due, err := s.SelectDue(time.Now().UTC())
	if err != nil {
		log.Printf("[MONITOR] Failed to select due cases: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}

	log.Printf("[MONITOR] Found %d cases due for a check", len(due))

	cycleCtx, cancel := context.WithTimeout(ctx, s.opts.CycleTimeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)

	for i := range due {
		mc := due[i]
		if !s.claim(mc.CaseID) {
			continue
		}
		g.Go(func() error {
			defer s.release(mc.CaseID)
			if err := s.CheckCase(cycleCtx, &mc); err != nil {
				log.Printf("[MONITOR] Check failed for case %s: %v", mc.CaseID, err)
			}
			return nil
		})
	}

	g.Wait()
	log.Printf("[MONITOR] Cycle completed")
}

// CheckSingleCase triggers the pipeline for one case outside the normal cycle
// (manual refresh). The case must have a monitoring row.
func (s *Scheduler) CheckSingleCase(ctx context.Context, caseID string) error {
	var mc models.MonitoredCase
	if err := s.db.Where("case_id = ?", caseID).First(&mc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("case %s is not monitored", caseID)
		}
		return err
	}

	if !s.claim(mc.CaseID) {
		return fmt.Errorf("case %s is already being checked", caseID)
	}
	defer s.release(mc.CaseID)

	return s.CheckCase(ctx, &mc)
}

// CheckCase runs fetch → diff → classify → notify for one case. The steps are
// strictly sequential within the case. last_check always advances, success or
// failure, so a failing source is retried no sooner than the next interval.
func (s *Scheduler) CheckCase(ctx context.Context, mc *models.MonitoredCase) error {
	defer s.touchLastCheck(mc)

	var kase models.Case
	if err := s.db.Preload("Parties").First(&kase, "id = ?", mc.CaseID).Error; err != nil {
		return fmt.Errorf("failed to load case: %w", err)
	}

	if kase.FilingNumber == nil || *kase.FilingNumber == "" {
		log.Printf("[MONITOR] Case %s has no filing number, skipping", kase.ID)
		return nil
	}

	sources := mc.Sources
	if len(sources) == 0 {
		sources = models.StringList{models.SourceRamaJudicial}
	}

	for _, source := range sources {
		provider, err := judicial.GetProvider(source)
		if err != nil {
			log.Printf("[MONITOR] No provider for source %s on case %s: %v", source, kase.ID, err)
			continue
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
		snapshot, err := provider.GetNormalizedCase(fetchCtx, *kase.FilingNumber)
		cancel()
		if err != nil {
			// Transient: network, rate-limit, not-found. The case keeps its
			// last known state until the next successful check.
			log.Printf("[MONITOR] Fetch failed for case %s (source %s): %v", kase.ID, source, err)
			continue
		}

		cs, err := s.diff.Apply(mc, source, snapshot)
		if err != nil {
			return fmt.Errorf("diff failed for source %s: %w", source, err)
		}
		if cs.Unchanged {
			log.Printf("[MONITOR] No changes for case %s (source %s)", kase.ID, source)
			continue
		}

		for _, act := range cs.NewActs {
			if ApplyClassification(act, ClassifyAct(act)) {
				if err := s.db.Save(act).Error; err != nil {
					log.Printf("[MONITOR] Failed to save classification for act %s: %v", act.ID, err)
				}
			}
		}

		if snapshot.Office != "" && (kase.CourtOffice == nil || *kase.CourtOffice != snapshot.Office) {
			office := snapshot.Office
			kase.CourtOffice = &office
			if err := s.db.Model(&kase).Update("court_office", office).Error; err != nil {
				log.Printf("[MONITOR] Failed to update court office for case %s: %v", kase.ID, err)
			}
		}

		if err := s.dispatcher.DispatchChangeSet(&kase, cs); err != nil {
			log.Printf("[MONITOR] Dispatch failed for case %s: %v", kase.ID, err)
		}
	}

	return nil
}

func (s *Scheduler) touchLastCheck(mc *models.MonitoredCase) {
	now := time.Now().UTC()
	mc.LastCheck = &now
	if err := s.db.Model(mc).Update("last_check", now).Error; err != nil {
		log.Printf("[MONITOR] Failed to update last_check for case %s: %v", mc.CaseID, err)
	}
}

// claim marks a case as in flight so no two workers process it concurrently
func (s *Scheduler) claim(caseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[caseID] {
		return false
	}
	s.inFlight[caseID] = true
	return true
}

func (s *Scheduler) release(caseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, caseID)
}
