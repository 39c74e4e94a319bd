package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	reasonNoText      = "no ingredient text found"
	reasonPDF         = "PDF files not supported"
	maxLabelImageSize = 10 << 20
)

var (
	ErrNotRetryable  = errors.New("only failed uploads can be retried")
	ErrImageTooLarge = errors.New("label image is too large")
	ErrEmptyImage    = errors.New("label image is empty")
)

// ObjectStore is satisfied by *storage.R2Client and *storage.MemoryStore.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Analyzer is satisfied by *scan.Service.
type Analyzer interface {
	AnalyzeLabel(ctx context.Context, userID, ingredients string) (scanID string, err error)
}

type Service struct {
	repo      Repository
	store     ObjectStore
	extractor Extractor
	analyzer  Analyzer
	log       *zap.Logger
}

func NewService(repo Repository, store ObjectStore, extractor Extractor, analyzer Analyzer, log *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		log:       log,
	}
}

// Upload stores the photo and queues it for the worker.
func (s *Service) Upload(ctx context.Context, userID string, file io.Reader, filename, contentType string) (*Upload, error) {
	ext, err := ValidateImageName(filename)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(file, maxLabelImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read label image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if len(data) > maxLabelImageSize {
		return nil, ErrImageTooLarge
	}

	key := fmt.Sprintf("labels/%s/%s%s", userID, uuid.New().String(), ext)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(data), contentType); err != nil {
		return nil, fmt.Errorf("store label image: %w", err)
	}

	upload := &Upload{
		UserID:           userID,
		ObjectKey:        key,
		OriginalFilename: filepath.Base(filename),
	}
	if err := s.repo.Create(ctx, upload); err != nil {
		return nil, fmt.Errorf("record label upload: %w", err)
	}

	s.log.Info("LABEL_UPLOADED",
		zap.String("upload_id", upload.ID),
		zap.String("user_id", userID),
		zap.Int("bytes", len(data)),
	)
	return upload, nil
}

// ProcessOne picks ONE pending upload and processes it.
// processed is false when the queue was empty. Per-upload failures are
// recorded on the row and do not surface as errors.
func (s *Service) ProcessOne(ctx context.Context) (processed bool, err error) {
	upload, err := s.repo.ClaimNext(ctx)
	if err != nil {
		return false, fmt.Errorf("claim label upload: %w", err)
	}
	if upload == nil {
		return false, nil
	}

	log := s.log.With(zap.String("upload_id", upload.ID))
	log.Info("OCR_PROCESSING", zap.String("key", upload.ObjectKey))

	// Final status writes must survive a shutdown cancel of ctx.
	done := context.WithoutCancel(ctx)

	raw, err := s.extract(ctx, upload)
	if err != nil {
		log.Warn("OCR_FAILED", zap.Error(err))
		return true, s.repo.MarkFailed(done, upload.ID, nil, err.Error())
	}

	ingredients := CleanIngredientText(raw)
	if ingredients == "" {
		log.Info("OCR_EMPTY", zap.Int("raw_length", len(raw)))
		return true, s.repo.MarkFailed(done, upload.ID, &raw, reasonNoText)
	}

	scanID, err := s.analyzer.AnalyzeLabel(ctx, upload.UserID, ingredients)
	if err != nil {
		log.Warn("ANALYSIS_FAILED", zap.Error(err))
		return true, s.repo.MarkFailed(done, upload.ID, &raw, "analysis failed: "+err.Error())
	}

	log.Info("OCR_DONE", zap.String("scan_id", scanID), zap.Int("text_length", len(ingredients)))
	return true, s.repo.MarkAnalyzed(done, upload.ID, raw, ingredients, scanID)
}

func (s *Service) extract(ctx context.Context, upload *Upload) (string, error) {
	body, err := s.store.Get(ctx, upload.ObjectKey)
	if err != nil {
		return "", fmt.Errorf("download label image: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read label image: %w", err)
	}
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "", errors.New(reasonPDF)
	}

	tmpFile, err := os.CreateTemp("", "label-*"+filepath.Ext(upload.ObjectKey))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	return s.extractor.Extract(ctx, tmpFile.Name())
}

func (s *Service) Status(ctx context.Context, userID, id string) (*Upload, error) {
	return s.repo.Get(ctx, userID, id)
}

// Retry puts a FAILED upload back in the queue.
func (s *Service) Retry(ctx context.Context, userID, id string) (*Upload, error) {
	if _, err := s.repo.Get(ctx, userID, id); err != nil {
		return nil, err
	}

	ok, err := s.repo.Requeue(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotRetryable
	}

	s.log.Info("LABEL_REQUEUED", zap.String("upload_id", id))
	return s.repo.Get(ctx, userID, id)
}
