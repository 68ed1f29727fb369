package services

import (
	"context"
	"fmt"
	"time"

	"algoquest/logger"
	"algoquest/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Reconciler raises best-score rows that fall below the attempt log.
type Reconciler struct {
	db        *gorm.DB
	cache     *ProgressCache
	events    Publisher
	log       *logger.Logger
	scheduler gocron.Scheduler
}

func NewReconciler(db *gorm.DB, cache *ProgressCache, events Publisher, log *logger.Logger) *Reconciler {
	return &Reconciler{
		db:     db,
		cache:  cache,
		events: events,
		log:    log.With("service", "Reconciler"),
	}
}

type attemptBest struct {
	UserID  uint
	Mission int
	Phase   string
	Score   int
}

type scoreKey struct {
	userID  uint
	mission int
	phase   string
}

// Reconcile returns the number of best-score rows it created or raised.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	db := r.db.WithContext(ctx)

	var bests []attemptBest
	if err := db.Model(&models.MissionAttempt{}).
		Select("user_id, mission, phase, MAX(score) AS score").
		Where("is_correct = ?", true).
		Group("user_id, mission, phase").
		Scan(&bests).Error; err != nil {
		return 0, fmt.Errorf("failed to aggregate attempts: %w", err)
	}

	var scores []models.MissionScore
	if err := db.Find(&scores).Error; err != nil {
		return 0, fmt.Errorf("failed to load scores: %w", err)
	}
	stored := make(map[scoreKey]int, len(scores))
	for _, s := range scores {
		stored[scoreKey{s.UserID, s.Mission, s.Phase}] = s.Score
	}

	repaired := 0
	touched := make(map[uint]bool)
	for _, b := range bests {
		current, ok := stored[scoreKey{b.UserID, b.Mission, b.Phase}]
		if ok && current >= b.Score {
			continue
		}
		if err := upsertBestScore(db, b.UserID, b.Mission, b.Phase, b.Score); err != nil {
			return repaired, fmt.Errorf("failed to repair score for user %d: %w", b.UserID, err)
		}
		r.log.Warn("Best score repaired",
			"user_id", b.UserID, "mission", b.Mission, "phase", b.Phase,
			"stored", current, "expected", b.Score)
		repaired++
		touched[b.UserID] = true
	}

	for userID := range touched {
		r.cache.Invalidate(ctx, userID)
		if r.events != nil {
			r.events.PublishToUser(userID, EventProgressUpdated, map[string]interface{}{"reconciled": true})
		}
	}

	r.log.Info("Reconcile finished", "checked", len(bests), "repaired", repaired)
	return repaired, nil
}

// Start runs Reconcile every interval until Stop is called.
func (r *Reconciler) Start(interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := r.Reconcile(ctx); err != nil {
				r.log.Error("Scheduled reconcile failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile: %w", err)
	}

	sched.Start()
	r.scheduler = sched
	r.log.Info("Reconciler scheduled", "interval", interval.String())
	return nil
}

func (r *Reconciler) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}
