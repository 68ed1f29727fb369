package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"algoquest/logger"
	"algoquest/missions"
	"algoquest/models"
	"algoquest/scoring"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// A concurrent submission for the same phase can claim our attempt number
// first; the unique index rejects ours and the whole transaction is retried.
const maxSubmitTries = 3

type LedgerService struct {
	db     *gorm.DB
	cache  *ProgressCache
	events Publisher
	log    *logger.Logger
}

func NewLedgerService(db *gorm.DB, cache *ProgressCache, events Publisher, log *logger.Logger) *LedgerService {
	return &LedgerService{
		db:     db,
		cache:  cache,
		events: events,
		log:    log.With("service", "LedgerService"),
	}
}

// SubmitAttemptRequest is the body of POST /api/mission/submit. IsCorrect,
// Score and Badge are what older clients send; they are read for logging only.
type SubmitAttemptRequest struct {
	Mission   int              `json:"mission" binding:"required,min=1"`
	Phase     string           `json:"phase" binding:"required"`
	Answer    *missions.Answer `json:"answer"`
	IsCorrect *bool            `json:"isCorrect"`
	Score     *int             `json:"score"`
	Badge     *string          `json:"badge"`
}

type SubmitResult struct {
	Status        string         `json:"status"`
	Mission       int            `json:"mission"`
	Phase         missions.Phase `json:"phase"`
	AttemptNumber int            `json:"attemptNumber"`
	ScoreGiven    int            `json:"scoreGiven"`
	IsCorrect     bool           `json:"isCorrect"`
	BestScore     int            `json:"bestScore"`
	Badge         string         `json:"badge,omitempty"`
	BadgeAwarded  bool           `json:"badgeAwarded"`
	NextPhase     missions.Phase `json:"nextPhase,omitempty"`
}

// Submit grades the answer with the server-held key and records the attempt.
func (s *LedgerService) Submit(ctx context.Context, userID uint, req *SubmitAttemptRequest) (*SubmitResult, error) {
	phase, err := missions.ParsePhase(req.Phase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", missions.ErrUnknownPhase, err)
	}
	spec, err := missions.Lookup(req.Mission, phase)
	if err != nil {
		return nil, err
	}

	correct, err := missions.Grade(spec.Key, req.Answer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}

	if req.IsCorrect != nil && *req.IsCorrect != correct {
		s.log.Warn("Client verdict disagrees with answer key",
			"user_id", userID, "mission", req.Mission, "phase", phase,
			"client_correct", *req.IsCorrect, "server_correct", correct)
	}

	return s.SubmitAttempt(ctx, userID, req.Mission, phase, correct)
}

// SubmitAttempt appends an attempt, raises the best score and grants the
// phase badge on a first-try success, all in one transaction.
func (s *LedgerService) SubmitAttempt(ctx context.Context, userID uint, mission int, phase missions.Phase, isCorrect bool) (*SubmitResult, error) {
	spec, err := missions.Lookup(mission, phase)
	if err != nil {
		return nil, err
	}

	var result *SubmitResult
	for try := 1; ; try++ {
		result, err = s.submitOnce(ctx, userID, mission, spec, isCorrect)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && try < maxSubmitTries {
			s.log.Debug("Attempt number taken, retrying", "user_id", userID, "mission", mission, "phase", phase, "try", try)
			continue
		}
		return nil, fmt.Errorf("failed to record attempt: %w", err)
	}

	s.log.Info("Attempt recorded",
		"user_id", userID, "mission", mission, "phase", phase,
		"attempt", result.AttemptNumber, "correct", isCorrect, "score", result.ScoreGiven)

	s.cache.Invalidate(ctx, userID)
	s.publish(userID, result)
	return result, nil
}

func (s *LedgerService) submitOnce(ctx context.Context, userID uint, mission int, spec *missions.PhaseSpec, isCorrect bool) (*SubmitResult, error) {
	result := &SubmitResult{
		Status:    "ok",
		Mission:   mission,
		Phase:     spec.Phase,
		IsCorrect: isCorrect,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior int64
		if err := tx.Model(&models.MissionAttempt{}).
			Where("user_id = ? AND mission = ? AND phase = ?", userID, mission, string(spec.Phase)).
			Count(&prior).Error; err != nil {
			return err
		}

		result.AttemptNumber = int(prior) + 1
		result.ScoreGiven = scoring.Score(result.AttemptNumber, isCorrect)

		attempt := models.MissionAttempt{
			UserID:        userID,
			Mission:       mission,
			Phase:         string(spec.Phase),
			AttemptNumber: result.AttemptNumber,
			IsCorrect:     isCorrect,
			Score:         result.ScoreGiven,
			KeyVersion:    missions.KeyVersion,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		if isCorrect {
			if err := upsertBestScore(tx, userID, mission, string(spec.Phase), result.ScoreGiven); err != nil {
				return err
			}
			if next, ok := missions.Next(spec.Phase); ok {
				result.NextPhase = next
			}
		}

		best, err := bestScore(tx, userID, mission, string(spec.Phase))
		if err != nil {
			return err
		}
		result.BestScore = best

		if scoring.IsFirstTry(result.AttemptNumber, isCorrect) && spec.Badge != "" {
			awarded, err := grantBadge(tx, userID, mission, spec.Badge)
			if err != nil {
				return err
			}
			result.Badge = spec.Badge
			result.BadgeAwarded = awarded
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LedgerService) publish(userID uint, result *SubmitResult) {
	if s.events == nil {
		return
	}
	s.events.PublishToUser(userID, EventAttemptRecorded, result)
	if result.BadgeAwarded {
		s.events.PublishToUser(userID, EventBadgeAwarded, map[string]interface{}{
			"mission": result.Mission,
			"badge":   missions.BadgeCode(result.Badge),
			"name":    result.Badge,
		})
	}
	s.events.PublishToUser(userID, EventProgressUpdated, map[string]interface{}{
		"mission": result.Mission,
	})
}

// upsertBestScore keeps the larger of the stored and the new score.
func upsertBestScore(tx *gorm.DB, userID uint, mission int, phase string, score int) error {
	row := models.MissionScore{
		UserID:  userID,
		Mission: mission,
		Phase:   phase,
		Score:   score,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "mission"}, {Name: "phase"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":      gorm.Expr("CASE WHEN mission_scores.score < excluded.score THEN excluded.score ELSE mission_scores.score END"),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
}

func bestScore(tx *gorm.DB, userID uint, mission int, phase string) (int, error) {
	var row models.MissionScore
	err := tx.Where("user_id = ? AND mission = ? AND phase = ?", userID, mission, phase).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Score, nil
}

// grantBadge inserts the badge unless the user already holds it and reports
// whether a new row was written.
func grantBadge(tx *gorm.DB, userID uint, mission int, name string) (bool, error) {
	badge := models.UserBadge{
		UserID:  userID,
		Mission: mission,
		Badge:   missions.BadgeCode(name),
		Name:    name,
	}
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&badge)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
