// Package service 组装所有业务服务
// 参考 eino-examples，使用简单的 newXxx() 函数直接初始化 eino 组件
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/cloudwego/eino-ext/components/embedding/dashscope"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/recall/internal/config"
	"github.com/ashwinyue/recall/internal/repository"
	"github.com/ashwinyue/recall/internal/service/analytics"
	"github.com/ashwinyue/recall/internal/service/auth"
	"github.com/ashwinyue/recall/internal/service/condense"
	"github.com/ashwinyue/recall/internal/service/feedback"
	"github.com/ashwinyue/recall/internal/service/gate"
	"github.com/ashwinyue/recall/internal/service/ingest"
	"github.com/ashwinyue/recall/internal/service/pipeline"
	"github.com/ashwinyue/recall/internal/service/rerank"
	"github.com/ashwinyue/recall/internal/service/retrieval"
	"github.com/ashwinyue/recall/internal/service/tenant"
	"github.com/ashwinyue/recall/internal/service/vectorindex"
)

// Services 服务集合
type Services struct {
	Pipeline  *pipeline.Pipeline
	Feedback  *feedback.Service
	Analytics *analytics.Service
	Ingest    *ingest.Service
	Auth      *auth.Service
	Tenant    *tenant.Service
	Gate      *gate.Gate

	Config *config.Config

	// Eino 组件（直接使用 eino 类型，无封装）
	Embedder  embedding.Embedder
	ChatModel model.ChatModel
}

// NewServices 创建所有服务
func NewServices(repo *repository.Repositories, cfg *config.Config, redisClient *redis.Client) (*Services, error) {
	ctx := context.Background()

	chatModel, err := newChatModel(ctx, cfg)
	if err != nil {
		log.Printf("Warning: failed to create chat model: %v", err)
	}

	embedder := newEmbedder(ctx, cfg)

	answersIndex, chunksIndex := newVectorIndexes(ctx, cfg)

	// 接口变量显式置 nil，避免带类型的空指针绕过下游的 nil 判断
	var answerSearcher, chunkSearcher retrieval.Searcher
	var answerIndexer pipeline.AnswerIndexer
	var answerEvictor feedback.AnswerIndex
	var chunkIndexer ingest.ChunkIndexer
	if answersIndex != nil {
		answerSearcher = answersIndex
		answerIndexer = answersIndex
		answerEvictor = answersIndex
	}
	if chunksIndex != nil {
		chunkSearcher = chunksIndex
		chunkIndexer = chunksIndex
	}

	filter := rerank.NewEmbeddingFilter(embedder)
	memoryRetriever := retrieval.NewMemoryRetriever(answerSearcher, filter, repo.Answer)
	documentRetriever := retrieval.NewDocumentRetriever(chunkSearcher, filter)

	condenser := condense.NewCondenser(chatModel,
		condense.WithLimits(cfg.Pipeline.MaxPromptTokens, cfg.Pipeline.SummaryTokens))
	admissionGate := gate.NewGate(redisClient, repo.Interaction)

	modelName := cfg.AI.OpenAI.Model
	if cfg.AI.Provider == "deepseek" {
		modelName = cfg.AI.DeepSeek.Model
	}

	qaPipeline := pipeline.NewPipeline(
		repo.Interaction,
		repo.Answer,
		memoryRetriever,
		documentRetriever,
		admissionGate,
		condenser,
		answerIndexer,
		embedder,
		chatModel,
		modelName,
		pipeline.WithTimeouts(
			time.Duration(cfg.Pipeline.GenerateTimeout)*time.Second,
			time.Duration(cfg.Pipeline.SearchTimeout)*time.Second,
		),
	)

	feedbackService := feedback.NewService(
		repo.Answer,
		repo.Interaction,
		repo.Tenant,
		repo.Audit,
		answerEvictor,
		admissionGate,
	)

	ingestService := ingest.NewService(
		repo.Document,
		chunkIndexer,
		embedder,
		cfg.Ingest.UploadDir,
		cfg.Ingest.ChunkSize,
		cfg.Ingest.ChunkOverlap,
	)

	return &Services{
		Pipeline:  qaPipeline,
		Feedback:  feedbackService,
		Analytics: analytics.NewService(repo.Answer, repo.Tenant),
		Ingest:    ingestService,
		Auth:      auth.NewService(repo),
		Tenant:    tenant.NewService(repo),
		Gate:      admissionGate,

		Config:    cfg,
		Embedder:  embedder,
		ChatModel: chatModel,
	}, nil
}

// newChatModel 创建 ChatModel
func newChatModel(ctx context.Context, cfg *config.Config) (model.ChatModel, error) {
	aiCfg := cfg.AI

	var apiKey, baseURL, modelName string

	switch aiCfg.Provider {
	case "openai":
		apiKey = aiCfg.OpenAI.APIKey
		baseURL = aiCfg.OpenAI.BaseURL
		modelName = aiCfg.OpenAI.Model
	case "deepseek":
		apiKey = aiCfg.DeepSeek.APIKey
		baseURL = aiCfg.DeepSeek.BaseURL
		modelName = aiCfg.DeepSeek.Model
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", aiCfg.Provider)
	}

	if apiKey == "" {
		return nil, fmt.Errorf("api_key is required for provider: %s", aiCfg.Provider)
	}

	if modelName == "" {
		modelName = "gpt-4o-mini"
	}

	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
	})
}

// newEmbedder 创建 Embedding 器
func newEmbedder(ctx context.Context, cfg *config.Config) embedding.Embedder {
	embCfg := cfg.AI.Embedding

	switch embCfg.Provider {
	case "alibaba", "qwen", "dashscope", "":
	default:
		log.Printf("Warning: unsupported embedding provider: %s", embCfg.Provider)
		return nil
	}

	if embCfg.APIKey == "" {
		log.Printf("Warning: embedding api_key is empty")
		return nil
	}

	embModel := embCfg.Model
	if embModel == "" {
		embModel = "text-embedding-v3"
	}

	embConfig := &dashscope.EmbeddingConfig{
		APIKey: embCfg.APIKey,
		Model:  embModel,
	}
	if embCfg.Timeout > 0 {
		embConfig.Timeout = time.Duration(embCfg.Timeout) * time.Second
	}
	if embCfg.Dimensions > 0 {
		embConfig.Dimensions = &embCfg.Dimensions
	}

	embedder, err := dashscope.NewEmbedder(ctx, embConfig)
	if err != nil {
		log.Printf("Warning: failed to create embedder: %v", err)
		return nil
	}
	return embedder
}

// newVectorIndexes 创建答案和文档块两个向量索引
// ES 不可用时返回 nil，检索路径自行降级
func newVectorIndexes(ctx context.Context, cfg *config.Config) (*vectorindex.ESIndex, *vectorindex.ESIndex) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Elastic.Host},
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		log.Printf("Warning: failed to create elasticsearch client: %v", err)
		return nil, nil
	}

	dims := cfg.AI.Embedding.Dimensions
	answersIndex := vectorindex.NewESIndex(esClient, cfg.Elastic.AnswersIndex(), dims)
	chunksIndex := vectorindex.NewESIndex(esClient, cfg.Elastic.ChunksIndex(), dims)

	if err := answersIndex.Ensure(ctx); err != nil {
		log.Printf("Warning: failed to ensure answers index: %v", err)
	}
	if err := chunksIndex.Ensure(ctx); err != nil {
		log.Printf("Warning: failed to ensure chunks index: %v", err)
	}
	return answersIndex, chunksIndex
}
