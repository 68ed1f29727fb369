package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"algoquest/logger"
	"algoquest/missions"
	"algoquest/models"
	"algoquest/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressService struct {
	db      *gorm.DB
	cache   *ProgressCache
	events  Publisher
	archive storage.Archive
	log     *logger.Logger
	now     func() time.Time
}

func NewProgressService(db *gorm.DB, cache *ProgressCache, events Publisher, archive storage.Archive, log *logger.Logger) *ProgressService {
	return &ProgressService{
		db:      db,
		cache:   cache,
		events:  events,
		archive: archive,
		log:     log.With("service", "ProgressService"),
		now:     time.Now,
	}
}

// MissionProgressView is one mission as the hub shows it.
type MissionProgressView struct {
	Mission      int                    `json:"mission"`
	MissionID    int                    `json:"mission_id"`
	Title        string                 `json:"title"`
	Score        int                    `json:"score"`
	Phases       map[missions.Phase]int `json:"phases"`
	Badges       []string               `json:"badges"`
	CurrentPhase missions.Phase         `json:"current_phase"`
	Completed    bool                   `json:"completed"`
	FinalScore   *int                   `json:"final_score,omitempty"`
}

type RecordProgressRequest struct {
	MissionID int `json:"missionId" binding:"required,min=1"`
	Score     int `json:"score" binding:"min=0"`
}

// GetProgress returns one entry per mission the user has touched, ordered by
// mission. A user with no activity gets an empty list.
func (s *ProgressService) GetProgress(ctx context.Context, userID uint) ([]MissionProgressView, error) {
	if view, ok := s.cache.Get(ctx, userID); ok {
		return view, nil
	}

	view, err := s.buildProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, userID, view)
	return view, nil
}

func (s *ProgressService) buildProgress(ctx context.Context, userID uint) ([]MissionProgressView, error) {
	db := s.db.WithContext(ctx)

	var scores []models.MissionScore
	if err := db.Where("user_id = ?", userID).Order("mission, id").Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	var badges []models.UserBadge
	if err := db.Where("user_id = ?", userID).Order("mission, awarded_at, id").Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("failed to load badges: %w", err)
	}

	var finals []models.MissionProgress
	if err := db.Where("user_id = ?", userID).Find(&finals).Error; err != nil {
		return nil, fmt.Errorf("failed to load mission progress: %w", err)
	}

	byMission := make(map[int]*MissionProgressView)
	entry := func(mission int) *MissionProgressView {
		if v, ok := byMission[mission]; ok {
			return v
		}
		v := &MissionProgressView{
			Mission:   mission,
			MissionID: mission,
			Phases:    make(map[missions.Phase]int),
			Badges:    []string{},
		}
		if m, ok := missions.Find(mission); ok {
			v.Title = m.Title
		}
		byMission[mission] = v
		return v
	}

	for _, row := range scores {
		v := entry(row.Mission)
		v.Phases[missions.Phase(row.Phase)] = row.Score
		v.Score += row.Score
	}
	for _, row := range badges {
		v := entry(row.Mission)
		v.Badges = append(v.Badges, row.Name)
	}
	for _, row := range finals {
		v := entry(row.MissionID)
		final := row.Score
		v.FinalScore = &final
	}

	view := make([]MissionProgressView, 0, len(byMission))
	for _, v := range byMission {
		run := missions.Resume(v.Mission, v.Phases, nil)
		v.CurrentPhase = run.Phase
		v.Completed = run.Complete()
		view = append(view, *v)
	}
	sort.Slice(view, func(i, j int) bool { return view[i].Mission < view[j].Mission })

	return view, nil
}

func (s *ProgressService) ListMissionScores(ctx context.Context, userID uint) ([]models.MissionScore, error) {
	scores := []models.MissionScore{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("mission, id").
		Find(&scores).Error; err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	return scores, nil
}

// RecordMissionComplete stores the final score of a mission run. The last
// report wins.
func (s *ProgressService) RecordMissionComplete(ctx context.Context, userID uint, req *RecordProgressRequest) (*models.MissionProgress, error) {
	if _, ok := missions.Find(req.MissionID); !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMission, req.MissionID)
	}

	row := models.MissionProgress{
		UserID:    userID,
		MissionID: req.MissionID,
		Score:     req.Score,
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "mission_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save mission progress: %w", err)
	}

	// The upsert leaves the id unset on conflict under some drivers.
	var saved models.MissionProgress
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND mission_id = ?", userID, req.MissionID).
		First(&saved).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &row, nil
		}
		return nil, fmt.Errorf("failed to reload mission progress: %w", err)
	}

	s.log.Info("Mission completed", "user_id", userID, "mission", req.MissionID, "score", req.Score)

	s.cache.Invalidate(ctx, userID)
	if s.events != nil {
		s.events.PublishToUser(userID, EventProgressUpdated, map[string]interface{}{
			"mission": req.MissionID,
		})
	}
	s.archiveSnapshot(ctx, userID, &saved)

	return &saved, nil
}

type progressSnapshot struct {
	UserID     uint                  `json:"user_id"`
	MissionID  int                   `json:"mission_id"`
	FinalScore int                   `json:"final_score"`
	RecordedAt time.Time             `json:"recorded_at"`
	Progress   []MissionProgressView `json:"progress"`
}

func snapshotKey(userID uint, missionID int, at time.Time) string {
	return fmt.Sprintf("progress/%d/mission-%d-%d.json", userID, missionID, at.Unix())
}

func (s *ProgressService) archiveSnapshot(ctx context.Context, userID uint, row *models.MissionProgress) {
	if s.archive == nil {
		return
	}

	progress, err := s.buildProgress(ctx, userID)
	if err != nil {
		s.log.Warn("Failed to build snapshot", "user_id", userID, "error", err)
		return
	}

	at := s.now().UTC()
	snap := progressSnapshot{
		UserID:     userID,
		MissionID:  row.MissionID,
		FinalScore: row.Score,
		RecordedAt: at,
		Progress:   progress,
	}
	if err := s.archive.PutJSON(ctx, snapshotKey(userID, row.MissionID, at), snap); err != nil {
		s.log.Warn("Failed to archive snapshot", "user_id", userID, "mission", row.MissionID, "error", err)
	}
}
