package services

import (
	"context"
	"fmt"
	"greenquest/internal/events"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// FileServiceConfig holds file service configuration
type FileServiceConfig struct {
	MaxImageSize      int64         `json:"max_image_size"`
	AllowedImageTypes []string      `json:"allowed_image_types"`
	UploadTimeout     time.Duration `json:"upload_timeout"`
	MaxRetries        uint64        `json:"max_retries"`
	Quality           int           `json:"quality"`
}

// DefaultFileConfig returns default file service configuration
func DefaultFileConfig() *FileServiceConfig {
	return &FileServiceConfig{
		MaxImageSize: 10 * 1024 * 1024,
		AllowedImageTypes: []string{
			"image/jpeg", "image/jpg", "image/png", "image/webp",
		},
		UploadTimeout: 2 * time.Minute,
		MaxRetries:    3,
		Quality:       85,
	}
}

// fileService implements FileService for report photo uploads
type fileService struct {
	cloudinary *cloudinary.Cloudinary
	events     events.EventBus
	logger     *zap.Logger
	config     *FileServiceConfig
}

// NewFileService creates a new file service
func NewFileService(
	cld *cloudinary.Cloudinary,
	eventBus events.EventBus,
	logger *zap.Logger,
	config *FileServiceConfig,
) FileService {
	if config == nil {
		config = DefaultFileConfig()
	}
	return &fileService{
		cloudinary: cld,
		events:     eventBus,
		logger:     logger,
		config:     config,
	}
}

// UploadImage uploads a report photo. Transient upload failures are
// retried with exponential backoff inside the upload timeout.
func (s *fileService) UploadImage(ctx context.Context, req *FileUploadRequest) (*FileUploadResult, error) {
	if err := s.validateImageUpload(req); err != nil {
		return nil, NewValidationError("image validation failed", err)
	}

	uploadCtx, cancel := context.WithTimeout(ctx, s.config.UploadTimeout)
	defer cancel()

	folder := s.uploadFolder(req.Folder, req.UserID)
	params := uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "image",
		Transformation: fmt.Sprintf("q_%d,f_auto,w_2048,h_2048,c_limit", s.config.Quality),
		UseFilename:    boolPtr(false),
		UniqueFilename: boolPtr(true),
		Tags:           []string{"greenquest", "report_image"},
	}

	var result *uploader.UploadResult
	upload := func() error {
		var err error
		result, err = s.cloudinary.Upload.Upload(uploadCtx, req.File, params)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.config.MaxRetries),
		uploadCtx,
	)
	if err := backoff.Retry(upload, policy); err != nil {
		s.logger.Error("Failed to upload image",
			zap.Error(err),
			zap.Int64("user_id", req.UserID),
			zap.String("file_name", req.FileName),
		)
		return nil, NewInternalError("failed to upload image")
	}

	uploadResult := &FileUploadResult{
		URL:       result.SecureURL,
		PublicID:  result.PublicID,
		FileSize:  int64(result.Bytes),
		Format:    result.Format,
		CreatedAt: time.Now(),
	}

	if err := s.events.Publish(ctx, events.NewFileUploadedEvent(
		"image", uploadResult.FileSize, uploadResult.URL, uploadResult.PublicID, &req.UserID,
	)); err != nil {
		s.logger.Warn("Failed to publish file uploaded event", zap.Error(err))
	}

	s.logger.Info("Image uploaded",
		zap.Int64("user_id", req.UserID),
		zap.String("public_id", uploadResult.PublicID),
		zap.Int64("size", uploadResult.FileSize),
	)

	return uploadResult, nil
}

// DeleteFile removes a previously uploaded file
func (s *fileService) DeleteFile(ctx context.Context, publicID string) error {
	if publicID == "" {
		return NewValidationError("public ID is required", nil)
	}

	deleteCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := s.cloudinary.Upload.Destroy(deleteCtx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		s.logger.Error("Failed to delete file", zap.Error(err), zap.String("public_id", publicID))
		return NewInternalError("failed to delete file")
	}
	if result.Result != "ok" {
		s.logger.Warn("File deletion result was not OK",
			zap.String("public_id", publicID),
			zap.String("result", result.Result),
		)
		return NewInternalError("file deletion was not successful")
	}

	return nil
}

// ===============================
// VALIDATION
// ===============================

func (s *fileService) validateImageUpload(req *FileUploadRequest) error {
	if req.FileSize > s.config.MaxImageSize {
		return fmt.Errorf("image too large (max %d bytes)", s.config.MaxImageSize)
	}
	if !slices.Contains(s.config.AllowedImageTypes, req.ContentType) {
		return fmt.Errorf("unsupported image type: %s", req.ContentType)
	}
	return s.validateFileName(req.FileName)
}

func (s *fileService) validateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name is required")
	}
	for _, pattern := range []string{"../", "..\\", "<", ">", "\"", "|", "?", "*"} {
		if strings.Contains(name, pattern) {
			return fmt.Errorf("file name contains invalid characters")
		}
	}
	if filepath.Ext(name) == "" {
		return fmt.Errorf("file must have an extension")
	}
	return nil
}

// uploadFolder builds a hierarchical folder path per user and month
func (s *fileService) uploadFolder(base string, userID int64) string {
	if base == "" {
		base = "reports"
	}
	now := time.Now()
	return fmt.Sprintf("greenquest/%s/%d/%02d/user_%d", base, now.Year(), now.Month(), userID)
}

func boolPtr(b bool) *bool {
	return &b
}
