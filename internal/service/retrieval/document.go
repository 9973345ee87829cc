package retrieval

import (
	"context"
	"fmt"

	"github.com/ashwinyue/recall/internal/service/rerank"
	"github.com/ashwinyue/recall/internal/service/vectorindex"
)

// 文档检索参数
// 低阈值 0.25：生成模型做综合而非逐字复用，松散相关的段落也有价值
const (
	documentCandidatePool = 200
	documentSearchLimit   = 50
	documentThreshold     = 0.25
	documentTopN          = 5
)

const labelDocument = "Document Knowledge"

// DocumentResult 文档检索结果
type DocumentResult struct {
	Sections []string // 带标注的上下文段
	ChunkIDs []string // 命中的分块ID，用于答案溯源
}

// DocumentRetriever 在租户范围内查找相关文档段落
type DocumentRetriever struct {
	index  Searcher
	filter rerank.Filter
}

// NewDocumentRetriever 创建文档检索器
func NewDocumentRetriever(index Searcher, filter rerank.Filter) *DocumentRetriever {
	return &DocumentRetriever{
		index:  index,
		filter: filter,
	}
}

// Retrieve 检索与查询相关的文档段落
// 候选池为空时返回空结果而非错误
func (r *DocumentRetriever) Retrieve(ctx context.Context, query string, vector []float64, tenantID string) (*DocumentResult, error) {
	if r.index == nil {
		return &DocumentResult{}, nil
	}
	hits, err := r.index.Search(ctx, tenantID, vector, documentCandidatePool, documentSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("document search failed: %w", err)
	}
	if len(hits) == 0 {
		return &DocumentResult{}, nil
	}

	contents := make([]string, 0, len(hits))
	contentToID := make(map[string]string, len(hits))
	for _, hit := range hits {
		content, _ := hit.Source[vectorindex.FieldContent].(string)
		if content == "" {
			continue
		}
		if _, seen := contentToID[content]; !seen {
			contents = append(contents, content)
		}
		contentToID[content] = hit.ID
	}
	if len(contents) == 0 {
		return &DocumentResult{}, nil
	}

	matches, err := r.filter.Filter(ctx, query, contents, documentThreshold, documentTopN)
	if err != nil {
		return nil, fmt.Errorf("document rerank failed: %w", err)
	}

	result := &DocumentResult{}
	for _, m := range matches {
		result.Sections = append(result.Sections, fmt.Sprintf("[%s]: %s", labelDocument, m.Text))
		result.ChunkIDs = append(result.ChunkIDs, contentToID[m.Text])
	}
	return result, nil
}
