package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/model"
	"github.com/kidneymate/server/internal/repository"
	"github.com/kidneymate/server/internal/storage"
	"github.com/kidneymate/server/internal/validation"
)

// ShareLink is a URL a user can hand to a doctor or family member.
// ExpiresAt is nil when the link is the authenticated download route.
type ShareLink struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type ReportService struct {
	repo        repository.ReportRepository
	storage     storage.Storage
	metrics     *metrics.Metrics
	appURL      string
	shareExpiry time.Duration
	now         func() time.Time
}

func NewReportService(repo repository.ReportRepository, storage storage.Storage, m *metrics.Metrics, appURL string, shareExpiry time.Duration) *ReportService {
	return &ReportService{
		repo:        repo,
		storage:     storage,
		metrics:     m,
		appURL:      strings.TrimSuffix(appURL, "/"),
		shareExpiry: shareExpiry,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Upload validates a captured report image or PDF, stores it and records it.
func (s *ReportService) Upload(ctx context.Context, userID string, file multipart.File, header *multipart.FileHeader) (*model.Report, error) {
	mimeType, err := validation.ValidateReportFile(header)
	if err != nil {
		return nil, invalid(ErrReportValidation, err.Error())
	}

	now := s.now()
	id := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	storagePath := filepath.ToSlash(filepath.Join("private", "reports", id+ext))

	err = s.storage.Save(ctx, storagePath, file, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	report := &model.Report{
		ID:          id,
		UserID:      userID,
		Filename:    fmt.Sprintf("report_%d%s", now.UnixMilli(), ext),
		MimeType:    mimeType,
		Size:        header.Size,
		StoragePath: storagePath,
		CreatedAt:   now,
	}

	err = s.repo.Create(report)
	if err != nil {
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete report from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create report record: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ReportUploads.Inc()
	}

	report.URL = s.downloadURL(report.ID)
	return report, nil
}

// Reports lists the user's reports, newest first.
func (s *ReportService) Reports(userID string) ([]*model.Report, error) {
	reports, err := s.repo.Reports(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	for _, r := range reports {
		r.URL = s.downloadURL(r.ID)
	}
	return reports, nil
}

// Open returns the report and a reader for its bytes. The caller closes it.
func (s *ReportService) Open(ctx context.Context, userID, reportID string) (*model.Report, io.ReadCloser, error) {
	report, err := s.repo.ByID(userID, reportID)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.storage.Open(ctx, report.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, repository.ErrReportNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open report: %w", err)
	}

	return report, body, nil
}

// Share returns a time-limited link where the backend supports one, and the
// download route otherwise.
func (s *ReportService) Share(ctx context.Context, userID, reportID string) (*ShareLink, error) {
	report, err := s.repo.ByID(userID, reportID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.SignedURL(ctx, report.StoragePath, s.shareExpiry)
	if errors.Is(err, storage.ErrNoDirectURL) {
		return &ShareLink{URL: s.downloadURL(report.ID)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to share report: %w", err)
	}

	expiresAt := s.now().Add(s.shareExpiry)
	return &ShareLink{URL: url, ExpiresAt: &expiresAt}, nil
}

func (s *ReportService) Delete(ctx context.Context, userID, reportID string) error {
	report, err := s.repo.ByID(userID, reportID)
	if err != nil {
		return err
	}

	// Best effort: a missing object must not keep the record alive.
	delErr := s.storage.Delete(ctx, report.StoragePath)
	if delErr != nil {
		slog.Error("failed to delete report from storage", "error", delErr, "path", report.StoragePath)
	}

	err = s.repo.Delete(userID, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete report record: %w", err)
	}

	return nil
}

// DeleteAllFromStorage removes every stored report object of the user.
// Records go with the user row.
func (s *ReportService) DeleteAllFromStorage(ctx context.Context, userID string) error {
	reports, err := s.repo.Reports(userID)
	if err != nil {
		return fmt.Errorf("failed to get user reports: %w", err)
	}

	for _, r := range reports {
		err = s.storage.Delete(ctx, r.StoragePath)
		if err != nil {
			slog.Warn("failed to delete report from storage", "storage_path", r.StoragePath, "error", err)
		}
	}

	return nil
}

func (s *ReportService) downloadURL(reportID string) string {
	return fmt.Sprintf("%s/api/reports/%s/file", s.appURL, reportID)
}
