package document

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"FinSight/internal/document/loaders"
	"FinSight/internal/models"
	"FinSight/pkg/logger"
)

// Service owns the document lifecycle: upload, parsing, and retrieval of the
// materialized content. Parsing is idempotent; a processed document is never
// parsed again unless explicitly reprocessed.
type Service struct {
	store     *Store
	uploadDir string
	log       *logger.Logger
}

// NewService creates a new Service.
func NewService(store *Store, uploadDir string, log *logger.Logger) *Service {
	return &Service{store: store, uploadDir: uploadDir, log: log}
}

// GetDocument returns the document record, or ErrNotFound.
func (s *Service) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return s.store.GetByID(id)
}

// UploadDocument stores the uploaded file under the upload directory and
// creates the record in status uploaded. Parsing happens later via
// ProcessDocument.
func (s *Service) UploadDocument(ctx context.Context, fileName string, src io.Reader) (*models.Document, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id+filepath.Ext(fileName))

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create upload directory: %w", err)
	}
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create upload file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("cannot write upload file: %w", err)
	}

	doc := &models.Document{
		ID:        id,
		FileName:  fileName,
		FilePath:  path,
		Status:    models.DocumentUploaded,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.store.Create(doc); err != nil {
		os.Remove(path)
		return nil, err
	}

	s.log.WithPayload(map[string]interface{}{"document_id": id, "file_name": fileName}).Info("文档已上传")
	return doc, nil
}

// ProcessDocument parses the stored file into text and tables and marks the
// record processed. Calling it on an already processed document returns the
// record unchanged.
func (s *Service) ProcessDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc.Status == models.DocumentProcessed {
		return doc, nil
	}

	doc.Status = models.DocumentProcessing
	if err := s.store.Update(doc); err != nil {
		return nil, err
	}

	content, docType, loadErr := s.load(ctx, doc.FilePath)
	if loadErr != nil {
		doc.Status = models.DocumentFailed
		if updateErr := s.store.Update(doc); updateErr != nil {
			s.log.WithPayload(map[string]interface{}{"document_id": id}).Error("无法保存失败状态")
		}
		return nil, fmt.Errorf("processing document %s failed: %w", id, loadErr)
	}

	doc.Text = content.Text
	doc.DocumentType = docType
	if err := doc.SetTables(content.Tables); err != nil {
		return nil, err
	}
	doc.Status = models.DocumentProcessed
	if err := s.store.Update(doc); err != nil {
		return nil, err
	}

	s.log.WithPayload(map[string]interface{}{
		"document_id": id,
		"tables":      len(content.Tables),
		"text_bytes":  len(content.Text),
	}).Info("文档解析完成")
	return doc, nil
}

func (s *Service) load(ctx context.Context, path string) (*models.DocumentContent, models.DocumentType, error) {
	loader, docType, err := loaders.ForFile(path)
	if err != nil {
		return nil, "", err
	}
	content, err := loader.Load(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return content, docType, nil
}
