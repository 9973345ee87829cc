// Package rerank 提供带阈值的候选文本精排
// 检索先宽召回，再由 Filter 按与查询的相似度筛掉低于阈值的候选
package rerank

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cloudwego/eino/components/embedding"
)

// Match 精排命中
type Match struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Filter 精排器接口
// 返回相似度达到阈值的候选，按分数降序，最多 topN 个
type Filter interface {
	Filter(ctx context.Context, query string, texts []string, threshold float64, topN int) ([]Match, error)
}

// NewEmbeddingFilter 创建基于向量余弦相似度的精排器
func NewEmbeddingFilter(embedder embedding.Embedder) Filter {
	return &embeddingFilter{embedder: embedder}
}

type embeddingFilter struct {
	embedder embedding.Embedder
}

func (f *embeddingFilter) Filter(ctx context.Context, query string, texts []string, threshold float64, topN int) ([]Match, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if f.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}

	// 查询和候选一次性向量化
	inputs := make([]string, 0, len(texts)+1)
	inputs = append(inputs, query)
	inputs = append(inputs, texts...)

	vectors, err := f.embedder.EmbedStrings(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("embed strings failed: %w", err)
	}
	if len(vectors) != len(texts)+1 {
		return nil, fmt.Errorf("vector count mismatch: expected %d, got %d", len(texts)+1, len(vectors))
	}

	queryVec := vectors[0]
	matches := make([]Match, 0, len(texts))
	for i, text := range texts {
		score := cosineSimilarity(queryVec, vectors[i+1])
		if score >= threshold {
			matches = append(matches, Match{Text: text, Score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topN > 0 && len(matches) > topN {
		matches = matches[:topN]
	}
	return matches, nil
}

// cosineSimilarity 计算余弦相似度，维度不匹配或零向量时返回 0
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
