// Package retrieval 提供语义记忆与文档知识的双路检索
package retrieval

import (
	"context"
	"fmt"

	"github.com/ashwinyue/recall/internal/model"
	"github.com/ashwinyue/recall/internal/service/rerank"
	"github.com/ashwinyue/recall/internal/service/vectorindex"
)

// Searcher 向量索引的检索能力
type Searcher interface {
	Search(ctx context.Context, tenantID string, vector []float64, numCandidates, limit int) ([]vectorindex.Hit, error)
}

// AnswerLoader 按ID批量加载答案
type AnswerLoader interface {
	GetByIDs(ids []string) ([]*model.Answer, error)
}

// 记忆检索参数
// 高阈值 0.70：只有"基本是同一个问题"才允许复用，主题相关不够
const (
	memoryCandidatePool = 50
	memorySearchLimit   = 20
	memoryThreshold     = 0.70
	memoryTopN          = 2
)

// 上下文标注，按答案状态区分可信度
const (
	labelCanonical  = "Verified Good Answer"
	labelQuarantine = "AVOID THIS - INCORRECT PREVIOUS ANSWER"
	labelDraft      = "Previous Draft Answer"
)

// MemoryResult 记忆检索结果
type MemoryResult struct {
	Sections  []string // 带标注的上下文段
	AnswerIDs []string // 命中的答案ID，用于反馈关联
}

// MemoryRetriever 在租户范围内查找语义等价的历史答案
type MemoryRetriever struct {
	index   Searcher
	filter  rerank.Filter
	answers AnswerLoader
}

// NewMemoryRetriever 创建记忆检索器
func NewMemoryRetriever(index Searcher, filter rerank.Filter, answers AnswerLoader) *MemoryRetriever {
	return &MemoryRetriever{
		index:   index,
		filter:  filter,
		answers: answers,
	}
}

// Retrieve 检索与查询语义等价的历史答案
// 候选池为空时返回空结果而非错误
func (r *MemoryRetriever) Retrieve(ctx context.Context, query string, vector []float64, tenantID string) (*MemoryResult, error) {
	if r.index == nil {
		return &MemoryResult{}, nil
	}
	hits, err := r.index.Search(ctx, tenantID, vector, memoryCandidatePool, memorySearchLimit)
	if err != nil {
		return nil, fmt.Errorf("memory search failed: %w", err)
	}
	if len(hits) == 0 {
		return &MemoryResult{}, nil
	}

	// 标准问题 -> 答案ID，供精排命中后回查
	prompts := make([]string, 0, len(hits))
	promptToID := make(map[string]string, len(hits))
	for _, hit := range hits {
		prompt, _ := hit.Source[vectorindex.FieldPrompt].(string)
		if prompt == "" {
			continue
		}
		if _, seen := promptToID[prompt]; !seen {
			prompts = append(prompts, prompt)
		}
		promptToID[prompt] = hit.ID
	}
	if len(prompts) == 0 {
		return &MemoryResult{}, nil
	}

	matches, err := r.filter.Filter(ctx, query, prompts, memoryThreshold, memoryTopN)
	if err != nil {
		return nil, fmt.Errorf("memory rerank failed: %w", err)
	}
	if len(matches) == 0 {
		return &MemoryResult{}, nil
	}

	matchedIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchedIDs = append(matchedIDs, promptToID[m.Text])
	}

	// 从关系库取最新状态和答案文本；索引里残留的已删除答案在这里被过滤掉
	answers, err := r.answers.GetByIDs(matchedIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load matched answers: %w", err)
	}
	byID := make(map[string]*model.Answer, len(answers))
	for _, a := range answers {
		byID[a.ID] = a
	}

	result := &MemoryResult{}
	for _, id := range matchedIDs {
		answer, ok := byID[id]
		if !ok {
			continue
		}
		result.Sections = append(result.Sections, fmt.Sprintf("[%s]: %s", statusLabel(answer.Status), answer.Response))
		result.AnswerIDs = append(result.AnswerIDs, answer.ID)
	}
	return result, nil
}

func statusLabel(status string) string {
	switch status {
	case model.AnswerStatusCanonical:
		return labelCanonical
	case model.AnswerStatusQuarantine:
		return labelQuarantine
	default:
		return labelDraft
	}
}
