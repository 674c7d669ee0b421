package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/lirra/internal/common"
	"github.com/dmitrijs2005/lirra/internal/logging"
	"github.com/dmitrijs2005/lirra/internal/server/models"
	"github.com/dmitrijs2005/lirra/internal/server/removebg"
	"github.com/dmitrijs2005/lirra/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/lirra/internal/server/storage"
)

// MaxPhotoSize bounds uploads to the catalog enhancer.
const MaxPhotoSize = 10 << 20

var photoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// BackgroundRemover cuts the subject out of a product photo.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, image []byte, contentType string) ([]byte, error)
}

// PhotoView is a job with short-lived download links.
type PhotoView struct {
	*models.PhotoJob
	SourceURL string `json:"source_url,omitempty"`
	ResultURL string `json:"result_url,omitempty"`
}

// PhotoService runs catalog-enhancer jobs synchronously: upload, cut out,
// upload the result.
type PhotoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	remover     BackgroundRemover
	log         logging.Logger
}

func NewPhotoService(db *sql.DB, m repomanager.RepositoryManager, store storage.ObjectStore, remover BackgroundRemover, log logging.Logger) *PhotoService {
	return &PhotoService{db: db, repomanager: m, store: store, remover: remover, log: log.With("module", "photos")}
}

// Submit processes one image. The type is sniffed from the bytes; a declared
// contentType that disagrees is rejected. Upstream failures mark the job
// failed and return an error matching common.ErrUpstream.
func (s *PhotoService) Submit(ctx context.Context, userID string, storeID *string, image []byte, declaredType string) (*PhotoView, error) {
	if len(image) == 0 {
		return nil, common.Validationf("image is required")
	}
	if len(image) > MaxPhotoSize {
		return nil, common.Validationf("image must be at most %d MiB", MaxPhotoSize>>20)
	}
	contentType := http.DetectContentType(image)
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, common.Validationf("unsupported image type %q", contentType)
	}
	if declaredType != "" && !strings.EqualFold(mediaType(declaredType), contentType) {
		return nil, common.Validationf("declared type %q does not match image content %q", declaredType, contentType)
	}

	if storeID != nil {
		if _, err := authorizeStore(ctx, s.repomanager, s.db, *storeID, userID); err != nil {
			return nil, err
		}
	}

	sum, err := loadSummary(ctx, s.repomanager, s.db, userID)
	if err != nil {
		return nil, err
	}
	jobs := s.repomanager.PhotoJobs(s.db)
	used, err := jobs.CountForUserSince(ctx, userID, sum.Subscription.StartedAt)
	if err != nil {
		return nil, err
	}
	if !withinLimit(used, sum.Plan.MaxPhotoJobs) {
		return nil, common.ErrorLimitReached
	}
	if _, err := s.repomanager.Subscriptions(s.db).ConsumeAPICall(ctx, sum.Subscription.ID, sum.Plan.MaxAPICalls); err != nil {
		return nil, err
	}

	sourceKey := storage.ObjectKey("photos/source", ext)
	if err := s.store.Put(ctx, sourceKey, contentType, image); err != nil {
		return nil, fmt.Errorf("upload source: %w", err)
	}

	job, err := jobs.Create(ctx, &models.PhotoJob{
		UserID:    userID,
		StoreID:   storeID,
		Status:    models.PhotoProcessing,
		SourceKey: sourceKey,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.remover.RemoveBackground(ctx, image, contentType)
	if err != nil {
		return nil, s.fail(ctx, job, err)
	}

	resultKey := storage.ObjectKey("photos/result", ".png")
	if err := s.store.Put(ctx, resultKey, "image/png", result); err != nil {
		return nil, s.fail(ctx, job, err)
	}

	now := timeNow().UTC()
	if err := jobs.Complete(ctx, job.ID, resultKey, now); err != nil {
		return nil, err
	}
	job.Status = models.PhotoCompleted
	job.ResultKey = resultKey
	job.CompletedAt = &now

	return s.view(ctx, job)
}

func (s *PhotoService) Get(ctx context.Context, userID, id string) (*PhotoView, error) {
	job, err := s.repomanager.PhotoJobs(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return s.view(ctx, job)
}

func (s *PhotoService) List(ctx context.Context, userID string, limit, offset int) ([]*models.PhotoJob, error) {
	limit, offset = pageBounds(limit, offset, 20, 100)
	jobs, err := s.repomanager.PhotoJobs(s.db).ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []*models.PhotoJob{}
	}
	return jobs, nil
}

func (s *PhotoService) view(ctx context.Context, job *models.PhotoJob) (*PhotoView, error) {
	v := &PhotoView{PhotoJob: job}
	var err error
	if job.SourceKey != "" {
		if v.SourceURL, err = s.store.PresignGet(ctx, job.SourceKey); err != nil {
			return nil, err
		}
	}
	if job.ResultKey != "" {
		if v.ResultURL, err = s.store.PresignGet(ctx, job.ResultKey); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func mediaType(v string) string {
	if mt, _, err := mime.ParseMediaType(v); err == nil {
		return mt
	}
	return v
}

// fail records cause on the job and returns the error to hand to the caller.
func (s *PhotoService) fail(ctx context.Context, job *models.PhotoJob, cause error) error {
	reason := cause.Error()
	var apiErr *removebg.Error
	if errors.As(cause, &apiErr) {
		reason = apiErr.Message
	}

	s.log.Warn(ctx, "photo job failed", "job_id", job.ID, "err", cause)
	if err := s.repomanager.PhotoJobs(s.db).Fail(ctx, job.ID, reason, timeNow().UTC()); err != nil {
		s.log.Error(ctx, "marking photo job failed", "job_id", job.ID, "err", err)
	}
	return fmt.Errorf("%w: %s", common.ErrUpstream, reason)
}
