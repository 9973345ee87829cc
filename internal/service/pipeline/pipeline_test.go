// Package pipeline 提问流水线单元测试
package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	recallmodel "github.com/ashwinyue/recall/internal/model"
	"github.com/ashwinyue/recall/internal/service/gate"
	"github.com/ashwinyue/recall/internal/service/retrieval"
)

// ========== 测试替身 ==========

type mockInteractionStore struct {
	created   []*recallmodel.Interaction
	linked    map[string][]string
	createErr error
}

func (m *mockInteractionStore) Create(interaction *recallmodel.Interaction) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, interaction)
	return nil
}

func (m *mockInteractionStore) AppendAnswerIDs(id string, answerIDs []string) error {
	if m.linked == nil {
		m.linked = make(map[string][]string)
	}
	m.linked[id] = append(m.linked[id], answerIDs...)
	return nil
}

type mockAnswerStore struct {
	created []*recallmodel.Answer
}

func (m *mockAnswerStore) Create(answer *recallmodel.Answer) error {
	m.created = append(m.created, answer)
	return nil
}

type mockMemorySource struct {
	result *retrieval.MemoryResult
	err    error
	query  string
}

func (m *mockMemorySource) Retrieve(ctx context.Context, query string, vector []float64, tenantID string) (*retrieval.MemoryResult, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &retrieval.MemoryResult{}, nil
	}
	return m.result, nil
}

type mockDocumentSource struct {
	result *retrieval.DocumentResult
	err    error
}

func (m *mockDocumentSource) Retrieve(ctx context.Context, query string, vector []float64, tenantID string) (*retrieval.DocumentResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &retrieval.DocumentResult{}, nil
	}
	return m.result, nil
}

type mockAdmission struct {
	reserveErr error
	released   bool
	pending    []string
}

func (m *mockAdmission) Reserve(ctx context.Context, userID string) (func(), error) {
	if m.reserveErr != nil {
		return nil, m.reserveErr
	}
	return func() { m.released = true }, nil
}

func (m *mockAdmission) MarkPending(ctx context.Context, userID string) {
	m.pending = append(m.pending, userID)
}

type mockCondenser struct {
	compress bool
	output   string
}

func (m *mockCondenser) ShouldCompress(text string) bool { return m.compress }

func (m *mockCondenser) Compress(ctx context.Context, text string) string {
	if m.output != "" {
		return m.output
	}
	return text
}

type mockIndexer struct {
	stored map[string][]float64
	err    error
}

func (m *mockIndexer) Store(ctx context.Context, id, tenantID string, fields map[string]interface{}, vector []float64) error {
	if m.err != nil {
		return m.err
	}
	if m.stored == nil {
		m.stored = make(map[string][]float64)
	}
	m.stored[id] = vector
	return nil
}

type mockEmbedder struct {
	vector []float64
	err    error
	inputs []string
}

func (m *mockEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	m.inputs = append(m.inputs, texts...)
	if m.err != nil {
		return nil, m.err
	}
	return [][]float64{m.vector}, nil
}

type mockChatModel struct {
	response string
	err      error
	prompt   string
}

func (m *mockChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if len(messages) > 0 {
		m.prompt = messages[len(messages)-1].Content
	}
	if m.err != nil {
		return nil, m.err
	}
	return &schema.Message{Role: schema.Assistant, Content: m.response}, nil
}

func (m *mockChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil
}

func (m *mockChatModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

type pipelineMocks struct {
	interactions *mockInteractionStore
	answers      *mockAnswerStore
	memory       *mockMemorySource
	documents    *mockDocumentSource
	admission    *mockAdmission
	condenser    *mockCondenser
	indexer      *mockIndexer
	embedder     *mockEmbedder
	chatModel    *mockChatModel
}

func newTestPipeline() (*Pipeline, *pipelineMocks) {
	m := &pipelineMocks{
		interactions: &mockInteractionStore{},
		answers:      &mockAnswerStore{},
		memory:       &mockMemorySource{},
		documents:    &mockDocumentSource{},
		admission:    &mockAdmission{},
		condenser:    &mockCondenser{},
		indexer:      &mockIndexer{},
		embedder:     &mockEmbedder{vector: []float64{0.1, 0.2}},
		chatModel:    &mockChatModel{response: "generated answer"},
	}
	p := NewPipeline(
		m.interactions, m.answers, m.memory, m.documents,
		m.admission, m.condenser, m.indexer,
		m.embedder, m.chatModel, "gpt-4o-mini",
	)
	return p, m
}

// ========== Submit 测试 ==========

func TestSubmit_HappyPath(t *testing.T) {
	p, m := newTestPipeline()
	m.memory.result = &retrieval.MemoryResult{
		Sections:  []string{"[Verified Good Answer]: reuse me"},
		AnswerIDs: []string{"a1"},
	}
	m.documents.result = &retrieval.DocumentResult{
		Sections: []string{"[Document Knowledge]: some fact"},
		ChunkIDs: []string{"c1"},
	}

	resp, err := p.Submit(context.Background(), &SubmitRequest{
		TenantID:   "t1",
		UserID:     "u1",
		PromptText: "what is the refund policy",
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	if resp.Response != "generated answer" {
		t.Errorf("Response = %q, want generated answer", resp.Response)
	}
	if !resp.FeedbackRequired {
		t.Error("FeedbackRequired should be true")
	}
	if resp.InteractionID == "" {
		t.Error("InteractionID should be set")
	}

	// 交互记录存原文
	if len(m.interactions.created) != 1 {
		t.Fatalf("created %d interactions, want 1", len(m.interactions.created))
	}
	if m.interactions.created[0].PromptText != "what is the refund policy" {
		t.Errorf("interaction stores %q, want original prompt", m.interactions.created[0].PromptText)
	}

	// 新答案以 candidate 入库并记录文档来源
	if len(m.answers.created) != 1 {
		t.Fatalf("created %d answers, want 1", len(m.answers.created))
	}
	answer := m.answers.created[0]
	if answer.Status != recallmodel.AnswerStatusCandidate {
		t.Errorf("new answer status = %q, want candidate", answer.Status)
	}
	if ids := answer.GetSourceDocIDs(); len(ids) != 1 || ids[0] != "c1" {
		t.Errorf("SourceDocIDs = %v, want [c1]", ids)
	}

	// 记忆命中和新答案都挂到交互
	linked := m.interactions.linked[resp.InteractionID]
	if len(linked) != 2 || linked[0] != "a1" || linked[1] != answer.ID {
		t.Errorf("linked answers = %v, want [a1 %s]", linked, answer.ID)
	}

	// 生成提示词包含两路上下文
	if !strings.Contains(m.chatModel.prompt, "reuse me") || !strings.Contains(m.chatModel.prompt, "some fact") {
		t.Errorf("prompt missing retrieval context: %q", m.chatModel.prompt)
	}

	// 新答案写入向量索引，未决标记置位
	if _, ok := m.indexer.stored[answer.ID]; !ok {
		t.Error("new answer should be indexed")
	}
	if len(m.admission.pending) != 1 || m.admission.pending[0] != "u1" {
		t.Errorf("pending marks = %v, want [u1]", m.admission.pending)
	}
	if !m.admission.released {
		t.Error("admission reservation should be released")
	}
}

func TestSubmit_EmptyPrompt(t *testing.T) {
	p, _ := newTestPipeline()

	_, err := p.Submit(context.Background(), &SubmitRequest{TenantID: "t1", UserID: "u1", PromptText: "   "})
	if !errors.Is(err, ErrEmptyPrompt) {
		t.Errorf("Submit() = %v, want ErrEmptyPrompt", err)
	}
}

func TestSubmit_GateDenied(t *testing.T) {
	p, m := newTestPipeline()
	m.admission.reserveErr = gate.ErrFeedbackPending

	_, err := p.Submit(context.Background(), &SubmitRequest{TenantID: "t1", UserID: "u1", PromptText: "q"})
	if !errors.Is(err, gate.ErrFeedbackPending) {
		t.Errorf("Submit() = %v, want ErrFeedbackPending", err)
	}
	if len(m.interactions.created) != 0 {
		t.Error("denied submission should not create interaction")
	}
}

func TestSubmit_GenerationFailure(t *testing.T) {
	p, m := newTestPipeline()
	m.chatModel.err = errors.New("model timeout")

	_, err := p.Submit(context.Background(), &SubmitRequest{TenantID: "t1", UserID: "u1", PromptText: "q"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Errorf("Submit() = %v, want ErrGenerationFailed", err)
	}

	// 交互记录保留，但没有答案，也不置未决标记
	if len(m.interactions.created) != 1 {
		t.Errorf("interaction should persist on generation failure, got %d", len(m.interactions.created))
	}
	if len(m.answers.created) != 0 {
		t.Error("no answer should be created on generation failure")
	}
	if len(m.admission.pending) != 0 {
		t.Error("pending mark should not be set on generation failure")
	}
}

func TestSubmit_RetrievalDegradation(t *testing.T) {
	// 两路检索都失败时仍然生成（无上下文）
	p, m := newTestPipeline()
	m.memory.err = errors.New("es down")
	m.documents.err = errors.New("es down")

	resp, err := p.Submit(context.Background(), &SubmitRequest{TenantID: "t1", UserID: "u1", PromptText: "q"})
	if err != nil {
		t.Fatalf("Submit() should degrade, got error: %v", err)
	}
	if resp.Response != "generated answer" {
		t.Errorf("Response = %q, want generated answer", resp.Response)
	}
}

func TestSubmit_EmbeddingFailureSkipsRetrieval(t *testing.T) {
	p, m := newTestPipeline()
	m.embedder.err = errors.New("embedding down")

	resp, err := p.Submit(context.Background(), &SubmitRequest{TenantID: "t1", UserID: "u1", PromptText: "q"})
	if err != nil {
		t.Fatalf("Submit() should degrade on embedding failure: %v", err)
	}
	if resp.Response == "" {
		t.Error("should still generate an answer without retrieval")
	}
	// 向量缺失时不写索引
	if len(m.indexer.stored) != 0 {
		t.Error("answer should not be indexed without a query vector")
	}
}

func TestSubmit_CompressionUsedForRetrievalOnly(t *testing.T) {
	p, m := newTestPipeline()
	m.condenser.compress = true
	m.condenser.output = "short query"

	longPrompt := strings.Repeat("verbose question ", 100)
	_, err := p.Submit(context.Background(), &SubmitRequest{TenantID: "t1", UserID: "u1", PromptText: longPrompt})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	// 检索用压缩文本，交互记录存原文
	if m.memory.query != "short query" {
		t.Errorf("retrieval query = %q, want compressed text", m.memory.query)
	}
	if m.interactions.created[0].PromptText != strings.TrimSpace(longPrompt) {
		t.Error("interaction should store the original prompt text")
	}

	// 向量化输入带检索前缀
	if len(m.embedder.inputs) == 0 || m.embedder.inputs[0] != "query: short query" {
		t.Errorf("embedding input = %v, want 'query: short query'", m.embedder.inputs)
	}
}

func TestSubmit_ModelOverride(t *testing.T) {
	p, _ := newTestPipeline()

	resp, err := p.Submit(context.Background(), &SubmitRequest{
		TenantID: "t1", UserID: "u1", PromptText: "q", Model: "deepseek-chat",
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if resp.Model != "deepseek-chat" {
		t.Errorf("Model = %q, want override to win", resp.Model)
	}
}

// ========== BuildPrompt 测试 ==========

func TestBuildPrompt_Format(t *testing.T) {
	prompt := BuildPrompt("why is the sky blue",
		[]string{"[Verified Good Answer]: scattering"},
		[]string{"[Document Knowledge]: rayleigh"},
	)

	if !strings.HasPrefix(prompt, "Context:\n") {
		t.Errorf("prompt should start with context header: %q", prompt)
	}
	if !strings.HasSuffix(prompt, "\nAnswer:") {
		t.Errorf("prompt should end with answer cue: %q", prompt)
	}
	memIdx := strings.Index(prompt, "scattering")
	docIdx := strings.Index(prompt, "rayleigh")
	if memIdx < 0 || docIdx < 0 || memIdx > docIdx {
		t.Errorf("memory sections should precede document sections: %q", prompt)
	}
	if !strings.Contains(prompt, "Question: why is the sky blue") {
		t.Errorf("prompt missing question line: %q", prompt)
	}
}
