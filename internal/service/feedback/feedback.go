// Package feedback 实现反馈处理
// 一次评分更新交互记录、租户基线，并并发作用于所有关联答案
package feedback

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ashwinyue/recall/internal/model"
	"github.com/ashwinyue/recall/internal/service/scoring"
)

// ErrInvalidRating 评分超出范围
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ErrInteractionNotFound 交互不存在
var ErrInteractionNotFound = errors.New("interaction not found")

// ErrAlreadyRated 交互已评分
var ErrAlreadyRated = errors.New("interaction already rated")

// AnswerStore 答案读写
type AnswerStore interface {
	GetByID(id string) (*model.Answer, error)
	UpdateStats(id string, reuseCount int, ratingSum, trustScore float64, status string) error
	Delete(id string) error
}

// InteractionStore 交互读写
type InteractionStore interface {
	GetByID(id string) (*model.Interaction, error)
	SetRating(id string, rating int) (bool, error)
}

// BaselineStore 租户基线
type BaselineStore interface {
	FoldRating(tenantID string, rating int) (float64, error)
}

// AuditStore 反馈审计
type AuditStore interface {
	Create(audit *model.FeedbackAudit) error
}

// AnswerIndex 答案向量索引（删除裁决时同步清理）
type AnswerIndex interface {
	Delete(ctx context.Context, id string) error
}

// Gate 准入门的未决标记清理
type Gate interface {
	ClearPending(ctx context.Context, userID string)
}

// Result 反馈处理结果
type Result struct {
	InteractionID  string `json:"interaction_id"`
	Rating         int    `json:"rating"`
	AnswersUpdated int    `json:"answers_updated"`
	AnswersDeleted int    `json:"answers_deleted"`
}

// Service 反馈服务
type Service struct {
	answers      AnswerStore
	interactions InteractionStore
	baseline     BaselineStore
	audits       AuditStore
	index        AnswerIndex
	gate         Gate
}

// NewService 创建反馈服务
func NewService(
	answers AnswerStore,
	interactions InteractionStore,
	baseline BaselineStore,
	audits AuditStore,
	index AnswerIndex,
	gate Gate,
) *Service {
	return &Service{
		answers:      answers,
		interactions: interactions,
		baseline:     baseline,
		audits:       audits,
		index:        index,
		gate:         gate,
	}
}

// Process 处理一次反馈
// 评分先折入租户基线，再用新基线并发重算每个关联答案
func (s *Service) Process(ctx context.Context, interactionID string, rating int) (*Result, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	interaction, err := s.interactions.GetByID(interactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interaction: %w", err)
	}
	if interaction == nil {
		return nil, ErrInteractionNotFound
	}

	// 条件更新保证评分只生效一次，并发重复提交只有一个胜出
	updated, err := s.interactions.SetRating(interactionID, rating)
	if err != nil {
		return nil, fmt.Errorf("failed to set rating: %w", err)
	}
	if !updated {
		return nil, ErrAlreadyRated
	}

	result := &Result{InteractionID: interactionID, Rating: rating}

	// 没有关联答案的交互（如生成失败后）只解除准入门，
	// 评分没有作用对象，不写审计也不污染租户基线
	answerIDs := interaction.GetAnswerIDs()
	if len(answerIDs) > 0 {
		if s.audits != nil {
			audit := &model.FeedbackAudit{
				ID:            uuid.New().String(),
				UserID:        interaction.UserID,
				InteractionID: interactionID,
				Rating:        rating,
			}
			if err := s.audits.Create(audit); err != nil {
				log.Printf("Failed to write feedback audit for interaction %s: %v", interactionID, err)
			}
		}

		baseline, err := s.baseline.FoldRating(interaction.TenantID, rating)
		if err != nil {
			return nil, err
		}

		outcomes := make([]applyOutcome, len(answerIDs))

		g, gctx := errgroup.WithContext(ctx)
		for i, answerID := range answerIDs {
			i, answerID := i, answerID
			g.Go(func() error {
				outcome, err := s.applyRating(gctx, answerID, rating, baseline)
				if err != nil {
					return err
				}
				outcomes[i] = outcome
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("failed to apply rating to answers: %w", err)
		}

		for _, outcome := range outcomes {
			switch outcome {
			case outcomeUpdated:
				result.AnswersUpdated++
			case outcomeDeleted:
				result.AnswersDeleted++
			}
		}
	}

	if s.gate != nil {
		s.gate.ClearPending(ctx, interaction.UserID)
	}
	return result, nil
}

// applyOutcome 单个答案的评分处理结果
type applyOutcome int

const (
	outcomeSkipped applyOutcome = iota
	outcomeUpdated
	outcomeDeleted
)

// applyRating 将评分作用于单个答案
func (s *Service) applyRating(ctx context.Context, answerID string, rating int, baseline float64) (applyOutcome, error) {
	answer, err := s.answers.GetByID(answerID)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("failed to load answer %s: %w", answerID, err)
	}
	if answer == nil {
		// 关联答案可能已被更早的删除裁决淘汰
		return outcomeSkipped, nil
	}

	newCount := answer.ReuseCount + 1
	newSum := answer.RatingSum + float64(rating)
	mean := newSum / float64(newCount)

	score := scoring.BayesianScore(newCount, mean, baseline)
	decision := scoring.DetermineStatus(newCount, score)

	if decision == scoring.DecisionDelete {
		if err := s.answers.Delete(answerID); err != nil {
			return outcomeSkipped, fmt.Errorf("failed to delete answer %s: %w", answerID, err)
		}
		if s.index != nil {
			if err := s.index.Delete(ctx, answerID); err != nil {
				log.Printf("Failed to remove answer %s from vector index: %v", answerID, err)
			}
		}
		return outcomeDeleted, nil
	}

	if err := s.answers.UpdateStats(answerID, newCount, newSum, score, string(decision)); err != nil {
		return outcomeSkipped, fmt.Errorf("failed to update answer %s: %w", answerID, err)
	}
	return outcomeUpdated, nil
}
