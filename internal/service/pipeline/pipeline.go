// Package pipeline 实现提问处理主流程
// 准入 -> 压缩 -> 并发双路检索 -> 组装上下文 -> 生成 -> 落库与关联
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	recallmodel "github.com/ashwinyue/recall/internal/model"
	"github.com/ashwinyue/recall/internal/service/retrieval"
	"github.com/ashwinyue/recall/internal/service/vectorindex"
)

// ErrEmptyPrompt 提问为空
var ErrEmptyPrompt = errors.New("prompt text is required")

// ErrGenerationFailed 生成失败（交互已落库，等待用户重试）
var ErrGenerationFailed = errors.New("answer generation failed")

// 检索查询的向量化前缀，与文档入库侧保持非对称
const queryEmbeddingPrefix = "query: "

// InteractionStore 交互记录存储
type InteractionStore interface {
	Create(interaction *recallmodel.Interaction) error
	AppendAnswerIDs(id string, answerIDs []string) error
}

// AnswerStore 答案存储
type AnswerStore interface {
	Create(answer *recallmodel.Answer) error
}

// MemorySource 语义记忆检索
type MemorySource interface {
	Retrieve(ctx context.Context, query string, vector []float64, tenantID string) (*retrieval.MemoryResult, error)
}

// DocumentSource 文档知识检索
type DocumentSource interface {
	Retrieve(ctx context.Context, query string, vector []float64, tenantID string) (*retrieval.DocumentResult, error)
}

// Admission 提交准入控制
type Admission interface {
	Reserve(ctx context.Context, userID string) (func(), error)
	MarkPending(ctx context.Context, userID string)
}

// Condenser 超长提示词压缩
type Condenser interface {
	ShouldCompress(text string) bool
	Compress(ctx context.Context, text string) string
}

// AnswerIndexer 答案向量索引写入
type AnswerIndexer interface {
	Store(ctx context.Context, id, tenantID string, fields map[string]interface{}, vector []float64) error
}

// SubmitRequest 提问请求
type SubmitRequest struct {
	TenantID   string
	UserID     string
	PromptText string
	Model      string // 可选，覆盖默认生成模型
}

// SubmitResponse 提问响应
type SubmitResponse struct {
	InteractionID    string `json:"interaction_id"`
	Response         string `json:"response"`
	Model            string `json:"model"`
	FeedbackRequired bool   `json:"feedback_required"`
}

// Pipeline 提问处理流水线
type Pipeline struct {
	interactions InteractionStore
	answers      AnswerStore
	memory       MemorySource
	documents    DocumentSource
	admission    Admission
	condenser    Condenser
	answerIndex  AnswerIndexer

	embedder  embedding.Embedder
	chatModel model.ChatModel
	modelName string

	generateTimeout time.Duration
	searchTimeout   time.Duration
}

// Option 流水线可选配置
type Option func(*Pipeline)

// WithTimeouts 设置生成与检索超时
func WithTimeouts(generate, search time.Duration) Option {
	return func(p *Pipeline) {
		if generate > 0 {
			p.generateTimeout = generate
		}
		if search > 0 {
			p.searchTimeout = search
		}
	}
}

// NewPipeline 创建流水线
func NewPipeline(
	interactions InteractionStore,
	answers AnswerStore,
	memory MemorySource,
	documents DocumentSource,
	admission Admission,
	condenser Condenser,
	answerIndex AnswerIndexer,
	embedder embedding.Embedder,
	chatModel model.ChatModel,
	modelName string,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		interactions:    interactions,
		answers:         answers,
		memory:          memory,
		documents:       documents,
		admission:       admission,
		condenser:       condenser,
		answerIndex:     answerIndex,
		embedder:        embedder,
		chatModel:       chatModel,
		modelName:       modelName,
		generateTimeout: 60 * time.Second,
		searchTimeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit 处理一次提问
// 检索失败降级为无上下文生成；生成失败是致命错误，但交互记录保留，
// 用户重新提交同一问题不会被准入门拦截之外的状态污染
func (p *Pipeline) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	promptText := strings.TrimSpace(req.PromptText)
	if promptText == "" {
		return nil, ErrEmptyPrompt
	}

	release, err := p.admission.Reserve(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 压缩只影响检索和生成的输入，交互记录始终存原文
	retrievalQuery := promptText
	if p.condenser != nil && p.condenser.ShouldCompress(promptText) {
		retrievalQuery = p.condenser.Compress(ctx, promptText)
	}

	interaction := &recallmodel.Interaction{
		ID:         uuid.New().String(),
		PromptText: promptText,
		TenantID:   req.TenantID,
		UserID:     req.UserID,
	}
	if err := p.interactions.Create(interaction); err != nil {
		return nil, fmt.Errorf("failed to create interaction: %w", err)
	}

	memResult, docResult, queryVector := p.retrieve(ctx, retrievalQuery, req.TenantID)

	response, err := p.generate(ctx, retrievalQuery, memResult.Sections, docResult.Sections, req.Model)
	if err != nil {
		log.Printf("Generation failed for interaction %s: %v", interaction.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	modelName := p.modelName
	if req.Model != "" {
		modelName = req.Model
	}

	answer := &recallmodel.Answer{
		ID:              uuid.New().String(),
		CanonicalPrompt: retrievalQuery,
		Response:        response,
		TenantID:        req.TenantID,
		Model:           modelName,
		Status:          recallmodel.AnswerStatusCandidate,
	}
	if err := answer.SetSourceDocIDs(docResult.ChunkIDs); err != nil {
		log.Printf("Failed to encode source doc ids for answer %s: %v", answer.ID, err)
	}
	if err := p.answers.Create(answer); err != nil {
		return nil, fmt.Errorf("failed to persist answer: %w", err)
	}

	// 索引写入失败只影响后续检索命中率，不影响本次回答
	if p.answerIndex != nil && len(queryVector) > 0 {
		fields := map[string]interface{}{
			vectorindex.FieldPrompt: answer.CanonicalPrompt,
		}
		if err := p.answerIndex.Store(ctx, answer.ID, req.TenantID, fields, queryVector); err != nil {
			log.Printf("Failed to index answer %s: %v", answer.ID, err)
		}
	}

	// 新答案和被复用的历史答案都挂到本次交互上，反馈会同时作用于它们
	linked := append(append([]string{}, memResult.AnswerIDs...), answer.ID)
	if err := p.interactions.AppendAnswerIDs(interaction.ID, linked); err != nil {
		log.Printf("Failed to link answers to interaction %s: %v", interaction.ID, err)
	}

	p.admission.MarkPending(ctx, req.UserID)

	return &SubmitResponse{
		InteractionID:    interaction.ID,
		Response:         response,
		Model:            modelName,
		FeedbackRequired: true,
	}, nil
}

// retrieve 并发执行双路检索，任一路失败都降级为空结果
func (p *Pipeline) retrieve(ctx context.Context, query, tenantID string) (*retrieval.MemoryResult, *retrieval.DocumentResult, []float64) {
	memResult := &retrieval.MemoryResult{}
	docResult := &retrieval.DocumentResult{}

	if p.embedder == nil {
		return memResult, docResult, nil
	}

	vectors, err := p.embedder.EmbedStrings(ctx, []string{queryEmbeddingPrefix + query})
	if err != nil || len(vectors) == 0 {
		log.Printf("Query embedding failed, skipping retrieval: %v", err)
		return memResult, docResult, nil
	}
	queryVector := vectors[0]

	searchCtx, cancel := context.WithTimeout(ctx, p.searchTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(searchCtx)
	g.Go(func() error {
		if p.memory == nil {
			return nil
		}
		result, err := p.memory.Retrieve(gctx, query, queryVector, tenantID)
		if err != nil {
			log.Printf("Memory retrieval degraded to empty: %v", err)
			return nil
		}
		memResult = result
		return nil
	})
	g.Go(func() error {
		if p.documents == nil {
			return nil
		}
		result, err := p.documents.Retrieve(gctx, query, queryVector, tenantID)
		if err != nil {
			log.Printf("Document retrieval degraded to empty: %v", err)
			return nil
		}
		docResult = result
		return nil
	})
	_ = g.Wait() // 检索分支只降级不报错

	return memResult, docResult, queryVector
}

// generate 组装上下文并调用生成模型
func (p *Pipeline) generate(ctx context.Context, query string, memorySections, docSections []string, modelOverride string) (string, error) {
	if p.chatModel == nil {
		return "", errors.New("chat model not configured")
	}

	genCtx, cancel := context.WithTimeout(ctx, p.generateTimeout)
	defer cancel()

	prompt := BuildPrompt(query, memorySections, docSections)
	messages := []*schema.Message{schema.UserMessage(prompt)}

	resp, err := p.chatModel.Generate(genCtx, messages)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", errors.New("model returned empty response")
	}
	return content, nil
}

// BuildPrompt 组装生成提示词，记忆段在前，文档段在后
func BuildPrompt(query string, memorySections, docSections []string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for _, s := range memorySections {
		b.WriteString(s)
		b.WriteString("\n")
	}
	for _, s := range docSections {
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\nAnswer:")
	return b.String()
}
