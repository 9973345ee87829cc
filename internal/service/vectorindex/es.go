package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ESIndex Elasticsearch 向量索引实现
type ESIndex struct {
	client     *elasticsearch.Client
	name       string
	dimensions int
}

// NewESIndex 创建 ES 向量索引
func NewESIndex(client *elasticsearch.Client, name string, dimensions int) *ESIndex {
	if dimensions <= 0 {
		dimensions = 1024
	}
	return &ESIndex{
		client:     client,
		name:       name,
		dimensions: dimensions,
	}
}

// Ensure 确保索引存在（不存在则创建）
func (idx *ESIndex) Ensure(ctx context.Context) error {
	res, err := idx.client.Indices.Exists([]string{idx.name})
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil // 索引已存在
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				FieldEmbedding: map[string]interface{}{
					"type":       "dense_vector",
					"dims":       idx.dimensions,
					"index":      true,
					"similarity": "cosine",
				},
				FieldTenantID: map[string]interface{}{
					"type": "keyword",
				},
				FieldPrompt: map[string]interface{}{
					"type": "text",
				},
				FieldContent: map[string]interface{}{
					"type": "text",
				},
			},
		},
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
	}

	mappingData, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	req := esapi.IndicesCreateRequest{
		Index: idx.name,
		Body:  bytes.NewReader(mappingData),
	}

	res, err = req.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	log.Printf("Index %s created with %d dimensions", idx.name, idx.dimensions)
	return nil
}

// Store 写入向量文档
func (idx *ESIndex) Store(ctx context.Context, id, tenantID string, fields map[string]interface{}, vector []float64) error {
	doc := make(map[string]interface{}, len(fields)+2)
	for k, v := range fields {
		doc[k] = v
	}
	doc[FieldTenantID] = tenantID
	doc[FieldEmbedding] = vector

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      idx.name,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index document: %s", res.String())
	}
	return nil
}

// Search 租户范围内的 kNN 检索
func (idx *ESIndex) Search(ctx context.Context, tenantID string, vector []float64, numCandidates, limit int) ([]Hit, error) {
	body, err := json.Marshal(BuildKNNQuery(tenantID, vector, numCandidates, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := idx.client.Search(
		idx.client.Search.WithContext(ctx),
		idx.client.Search.WithIndex(idx.name),
		idx.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	return ParseSearchHits(res.Body)
}

// Delete 按ID删除向量文档
func (idx *ESIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      idx.name,
		DocumentID: id,
	}

	res, err := req.Do(ctx, idx.client)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	defer res.Body.Close()

	// 文档已不在索引中视为成功
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("failed to delete document: %s", res.String())
	}
	return nil
}

// BuildKNNQuery 构造租户过滤的 kNN 查询体
func BuildKNNQuery(tenantID string, vector []float64, numCandidates, limit int) map[string]interface{} {
	return map[string]interface{}{
		"size": limit,
		"knn": map[string]interface{}{
			"field":          FieldEmbedding,
			"query_vector":   vector,
			"k":              limit,
			"num_candidates": numCandidates,
			"filter": map[string]interface{}{
				"term": map[string]interface{}{
					FieldTenantID: tenantID,
				},
			},
		},
		"_source": map[string]interface{}{
			"excludes": []string{FieldEmbedding},
		},
	}
}

// ParseSearchHits 解析 ES 搜索响应
func ParseSearchHits(body io.Reader) ([]Hit, error) {
	var resp struct {
		Hits struct {
			Hits []struct {
				ID     string                 `json:"_id"`
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		hits = append(hits, Hit{
			ID:     h.ID,
			Score:  h.Score,
			Source: h.Source,
		})
	}
	return hits, nil
}
