// Package ingest 提供文档摄取：解析、分块、向量化、索引
// 直接使用 eino/eino-ext 组件，避免冗余封装
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/docx"
	"github.com/cloudwego/eino-ext/components/document/parser/html"
	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/ashwinyue/recall/internal/model"
	"github.com/ashwinyue/recall/internal/service/condense"
	"github.com/ashwinyue/recall/internal/service/vectorindex"
)

// DocumentStore 文档与分块存储
type DocumentStore interface {
	Create(doc *model.Document) error
	GetByID(id string) (*model.Document, error)
	Update(doc *model.Document) error
	ListByTenant(tenantID string, offset, limit int) ([]*model.Document, int64, error)
	CreateChunks(chunks []*model.DocumentChunk) error
	DeleteChunksByDocument(documentID string) error
}

// ChunkIndexer 文档块向量索引写入
type ChunkIndexer interface {
	Store(ctx context.Context, id, tenantID string, fields map[string]interface{}, vector []float64) error
}

// Service 文档摄取服务
type Service struct {
	docs     DocumentStore
	index    ChunkIndexer
	embedder embedding.Embedder

	uploadDir    string
	chunkSize    int
	chunkOverlap int
}

// NewService 创建摄取服务
func NewService(docs DocumentStore, index ChunkIndexer, embedder embedding.Embedder, uploadDir string, chunkSize, chunkOverlap int) *Service {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	if chunkOverlap < 0 {
		chunkOverlap = 50
	}
	return &Service{
		docs:         docs,
		index:        index,
		embedder:     embedder,
		uploadDir:    uploadDir,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// UploadRequest 上传请求
type UploadRequest struct {
	TenantID string
	Title    string
	FileName string
	Reader   io.Reader
}

// Upload 保存上传文件并创建 pending 状态的文档记录
func (s *Service) Upload(ctx context.Context, req *UploadRequest) (*model.Document, error) {
	if _, err := s.newParser(ctx, req.FileName); err != nil {
		return nil, err
	}

	docID := uuid.New().String()
	dir := filepath.Join(s.uploadDir, req.TenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(dir, docID+filepath.Ext(req.FileName))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	size, err := io.Copy(file, req.Reader)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	title := req.Title
	if title == "" {
		title = req.FileName
	}
	doc := &model.Document{
		ID:       docID,
		TenantID: req.TenantID,
		Title:    title,
		FileName: req.FileName,
		FilePath: path,
		FileSize: size,
		Status:   model.DocumentStatusPending,
	}
	if err := s.docs.Create(doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return doc, nil
}

// ProcessResult 处理结果
type ProcessResult struct {
	DocumentID string        `json:"document_id"`
	Success    bool          `json:"success"`
	ParsedDocs int           `json:"parsed_docs"`
	Chunks     int           `json:"chunks"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
}

// Process 处理文档的完整流程：解析、分块、向量化、索引
func (s *Service) Process(ctx context.Context, documentID string) (*ProcessResult, error) {
	startTime := time.Now()
	result := &ProcessResult{DocumentID: documentID}

	doc, err := s.docs.GetByID(documentID)
	if err != nil {
		result.Error = fmt.Sprintf("failed to load document: %v", err)
		return result, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil {
		result.Error = "document not found"
		return result, fmt.Errorf("document not found: %s", documentID)
	}

	doc.Status = model.DocumentStatusProcessing
	doc.ErrorMsg = ""
	if err := s.docs.Update(doc); err != nil {
		log.Printf("Warning: failed to mark document %s as processing: %v", doc.ID, err)
	}

	parsedDocs, err := s.parseDocument(ctx, doc)
	if err != nil {
		return result, s.fail(doc, result, fmt.Errorf("failed to parse document: %w", err))
	}
	result.ParsedDocs = len(parsedDocs)
	if result.ParsedDocs == 0 {
		return result, s.fail(doc, result, fmt.Errorf("no content parsed from document"))
	}

	chunks, err := s.splitDocuments(ctx, parsedDocs, doc)
	if err != nil {
		return result, s.fail(doc, result, fmt.Errorf("failed to split documents: %w", err))
	}
	result.Chunks = len(chunks)

	vectors, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return result, s.fail(doc, result, fmt.Errorf("failed to embed chunks: %w", err))
	}

	if err := s.indexChunks(ctx, doc, chunks, vectors); err != nil {
		return result, s.fail(doc, result, fmt.Errorf("failed to index chunks: %w", err))
	}

	doc.Status = model.DocumentStatusCompleted
	doc.ChunkCount = len(chunks)
	if err := s.docs.Update(doc); err != nil {
		log.Printf("Warning: failed to update document status: %v", err)
	}

	result.Duration = time.Since(startTime)
	result.Success = true
	return result, nil
}

// fail 记录失败状态并返回原错误
func (s *Service) fail(doc *model.Document, result *ProcessResult, err error) error {
	result.Error = err.Error()
	doc.Status = model.DocumentStatusFailed
	doc.ErrorMsg = err.Error()
	if uerr := s.docs.Update(doc); uerr != nil {
		log.Printf("Warning: failed to mark document %s as failed: %v", doc.ID, uerr)
	}
	return err
}

// List 按租户列出文档
func (s *Service) List(tenantID string, offset, limit int) ([]*model.Document, int64, error) {
	return s.docs.ListByTenant(tenantID, offset, limit)
}

// Get 获取文档
func (s *Service) Get(id string) (*model.Document, error) {
	return s.docs.GetByID(id)
}

// parseDocument 解析文档
func (s *Service) parseDocument(ctx context.Context, doc *model.Document) ([]*schema.Document, error) {
	if doc.FilePath == "" {
		return nil, fmt.Errorf("file path is empty")
	}

	fileParser, err := s.newParser(ctx, doc.FilePath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(doc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	docs, err := fileParser.Parse(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("parser failed: %w", err)
	}

	for _, d := range docs {
		if d.MetaData == nil {
			d.MetaData = make(map[string]any)
		}
		d.MetaData["document_id"] = doc.ID
		d.MetaData["document_title"] = doc.Title
		d.MetaData["file_name"] = doc.FileName
	}
	return docs, nil
}

// newParser 按扩展名创建解析器
func (s *Service) newParser(ctx context.Context, filePath string) (einoparser.Parser, error) {
	switch ext := filepath.Ext(filePath); ext {
	case ".pdf":
		return pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	case ".docx":
		return docx.NewDocxParser(ctx, &docx.Config{
			ToSections:      false,
			IncludeComments: false,
			IncludeHeaders:  true,
			IncludeFooters:  false,
			IncludeTables:   true,
		})
	case ".html", ".htm":
		// 使用 body 选择器提取正文内容
		bodySelector := "body"
		return html.NewParser(ctx, &html.Config{
			Selector: &bodySelector,
		})
	case ".txt", ".md":
		return &textParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
}

// textParser 纯文本解析器
type textParser struct{}

func (p *textParser) Parse(_ context.Context, reader io.Reader, opts ...einoparser.Option) ([]*schema.Document, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read: %w", err)
	}

	text := string(content)
	if text == "" {
		return []*schema.Document{}, nil
	}

	return []*schema.Document{
		{
			Content:  text,
			MetaData: make(map[string]any),
		},
	}, nil
}

// splitDocuments 分块文档
func (s *Service) splitDocuments(ctx context.Context, docs []*schema.Document, doc *model.Document) ([]*model.DocumentChunk, error) {
	splitter, err := recursive.NewSplitter(ctx, &recursive.Config{
		ChunkSize:   s.chunkSize,
		OverlapSize: s.chunkOverlap,
		Separators:  []string{"\n\n", "\n", ". ", "。", "? ", "？", "! ", "！", ", ", "，", " ", ""},
		KeepType:    recursive.KeepTypeNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter: %w", err)
	}

	splitDocs, err := splitter.Transform(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("splitter failed: %w", err)
	}

	chunks := make([]*model.DocumentChunk, 0, len(splitDocs))
	for i, splitDoc := range splitDocs {
		chunks = append(chunks, &model.DocumentChunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			TenantID:   doc.TenantID,
			ChunkIndex: i,
			Content:    splitDoc.Content,
			TokenCount: condense.EstimateTokens(splitDoc.Content),
		})
	}
	return chunks, nil
}

// embedChunks 向量化文档块
func (s *Service) embedChunks(ctx context.Context, chunks []*model.DocumentChunk) ([][]float64, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("embedder not configured")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := s.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed strings failed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("vector count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}
	return vectors, nil
}

// indexChunks 分块落库并写入向量索引
// 重新处理同一文档时先清掉旧分块
func (s *Service) indexChunks(ctx context.Context, doc *model.Document, chunks []*model.DocumentChunk, vectors [][]float64) error {
	if err := s.docs.DeleteChunksByDocument(doc.ID); err != nil {
		return fmt.Errorf("failed to clear old chunks: %w", err)
	}
	if err := s.docs.CreateChunks(chunks); err != nil {
		return fmt.Errorf("failed to save chunks to database: %w", err)
	}

	if s.index == nil {
		return fmt.Errorf("vector index not available")
	}
	for i, chunk := range chunks {
		fields := map[string]interface{}{
			vectorindex.FieldContent: chunk.Content,
			"document_id":            chunk.DocumentID,
			"chunk_index":            chunk.ChunkIndex,
		}
		if err := s.index.Store(ctx, chunk.ID, chunk.TenantID, fields, vectors[i]); err != nil {
			return fmt.Errorf("failed to index chunk %d: %w", i, err)
		}
	}

	log.Printf("Indexed %d chunks for document %s", len(chunks), doc.ID)
	return nil
}
