package record

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/medvault/medvault/internal/platform/blobstore"
)

// cacheSize bounds the number of owner collections held in memory.
const cacheSize = 512

const defaultRecentLimit = 5

// upcomingWindowDays is the dashboard's look-ahead for consultations.
const upcomingWindowDays = 7

type Service struct {
	repo  Repository
	files blobstore.Store
	cache *lru.Cache[uuid.UUID, []*Record]
	log   zerolog.Logger
	now   func() time.Time
}

func NewService(repo Repository, files blobstore.Store, log zerolog.Logger) *Service {
	cache, _ := lru.New[uuid.UUID, []*Record](cacheSize)
	return &Service{
		repo:  repo,
		files: files,
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) Create(ctx context.Context, rec *Record) error {
	if rec.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner_id is required", ErrValidation)
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return err
	}
	s.cache.Remove(rec.OwnerID)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces the client-controlled fields of an existing record. The
// file key and owner are never taken from client input; attachments change
// only through AttachFile.
func (s *Service) Update(ctx context.Context, rec *Record) (*Record, error) {
	existing, err := s.repo.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	existing.Title = rec.Title
	existing.Type = rec.Type
	existing.Description = rec.Description
	existing.HospitalName = rec.HospitalName
	existing.DoctorName = rec.DoctorName
	existing.ConsultationDate = rec.ConsultationDate
	existing.IsEmergency = rec.IsEmergency

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.cache.Remove(existing.OwnerID)
	return existing, nil
}

// Delete removes the record row, then its stored file as a best-effort
// secondary step. A file-store failure is logged, never surfaced, and the
// row deletion is not rolled back. Deleting a missing record surfaces the
// store's error.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Remove(rec.OwnerID)

	if rec.FileKey != nil {
		if err := s.files.Remove(ctx, *rec.FileKey); err != nil {
			s.log.Warn().Err(err).
				Str("record_id", id.String()).
				Str("file_key", *rec.FileKey).
				Msg("failed to remove file for deleted record")
		}
	}
	return nil
}

// ListByOwner returns the owner's records ordered created_at descending,
// served from the LRU when the collection has not changed since last read.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Record, error) {
	if cached, ok := s.cache.Get(ownerID); ok {
		return cached, nil
	}
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(ownerID, items)
	return items, nil
}

// DashboardStats summarizes the owner's collection. A consultation counts
// as upcoming when its date falls within [today, today+7d], both ends
// inclusive.
func (s *Service) DashboardStats(ctx context.Context, ownerID uuid.UUID) (*DashboardStats, error) {
	records, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := startOfDay(s.now())
	horizon := today.AddDate(0, 0, upcomingWindowDays)

	stats := &DashboardStats{TotalRecords: len(records)}
	for _, rec := range records {
		if rec.IsEmergency {
			stats.EmergencyRecords++
		}
		if rec.ConsultationDate != nil {
			d := startOfDay(*rec.ConsultationDate)
			if !d.Before(today) && !d.After(horizon) {
				stats.UpcomingConsultations++
			}
		}
		if stats.LastUpdated == nil || rec.UpdatedAt.After(*stats.LastUpdated) {
			t := rec.UpdatedAt
			stats.LastUpdated = &t
		}
	}
	return stats, nil
}

// RecentActivity returns the owner's most recent records by created_at.
func (s *Service) RecentActivity(ctx context.Context, ownerID uuid.UUID, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	records, err := s.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// AttachFile stores a new file object for the record and swaps the record's
// file key to it. The previous object is removed only after the new key is
// durably referenced; that removal is best-effort.
func (s *Service) AttachFile(ctx context.Context, recordID uuid.UUID, fileName, contentType string, size int64, content io.Reader) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if err := blobstore.ValidateUpload(contentType, size); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	key := blobstore.NewKey(rec.OwnerID, fileName)
	if _, err := s.files.Put(ctx, key, contentType, content); err != nil {
		return nil, fmt.Errorf("storing file: %w", err)
	}

	oldKey := rec.FileKey
	rec.FileKey = &key
	if err := s.repo.Update(ctx, rec); err != nil {
		// The new object is orphaned; clean it up and keep the old reference.
		if rmErr := s.files.Remove(ctx, key); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("file_key", key).Msg("failed to remove orphaned upload")
		}
		return nil, err
	}
	s.cache.Remove(rec.OwnerID)

	if oldKey != nil {
		if err := s.files.Remove(ctx, *oldKey); err != nil {
			s.log.Warn().Err(err).
				Str("record_id", recordID.String()).
				Str("file_key", *oldKey).
				Msg("failed to remove replaced file")
		}
	}
	return rec, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
