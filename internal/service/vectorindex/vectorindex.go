// Package vectorindex 提供租户隔离的向量索引
// 基于 Elasticsearch dense_vector + kNN，答案和文档块各一个索引
package vectorindex

import "context"

// Hit 向量检索命中
type Hit struct {
	ID     string
	Score  float64
	Source map[string]interface{}
}

// 索引文档的字段名
const (
	FieldTenantID  = "tenant_id"
	FieldEmbedding = "embedding"
	FieldPrompt    = "canonical_prompt"
	FieldContent   = "content"
)

// Index 向量索引接口
type Index interface {
	// Ensure 确保索引存在（不存在则创建映射）
	Ensure(ctx context.Context) error
	// Store 写入一条向量文档，id 与关系库行ID一致
	Store(ctx context.Context, id, tenantID string, fields map[string]interface{}, vector []float64) error
	// Search 在租户范围内做近邻检索
	Search(ctx context.Context, tenantID string, vector []float64, numCandidates, limit int) ([]Hit, error)
	// Delete 按ID删除向量文档
	Delete(ctx context.Context, id string) error
}
