package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository"
)

// Column allow-lists for generic field-level updates. Payload keys outside
// these sets are dropped rather than rejected.
var (
	trackUpdatableColumns = map[string]bool{
		"name":     true,
		"kind":     true,
		"position": true,
		"locked":   true,
	}
	sequenceUpdatableColumns = map[string]bool{
		"name":       true,
		"frame_rate": true,
		"duration":   true,
	}
)

// GormTimelineRepository is the TimelineRepository implementation on GORM.
type GormTimelineRepository struct {
	db *gorm.DB
}

// NewGormTimelineRepository creates a GormTimelineRepository instance.
func NewGormTimelineRepository(db *gorm.DB) *GormTimelineRepository {
	if db == nil {
		panic("database connection cannot be nil for GormTimelineRepository")
	}
	return &GormTimelineRepository{db: db}
}

func (r *GormTimelineRepository) GetClip(ctx context.Context, id string) (*domain.Clip, error) {
	var clip domain.Clip
	err := r.db.WithContext(ctx).First(&clip, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrClipNotFound
		}
		return nil, fmt.Errorf("gorm: get clip %s: %w", id, err)
	}
	return &clip, nil
}

func (r *GormTimelineRepository) CreateClip(ctx context.Context, clip *domain.Clip) error {
	if err := r.db.WithContext(ctx).Create(clip).Error; err != nil {
		return fmt.Errorf("gorm: create clip %s: %w", clip.ID, err)
	}
	return nil
}

func (r *GormTimelineRepository) UpdateClipWindow(ctx context.Context, id string, start, end float64) error {
	result := r.db.WithContext(ctx).Model(&domain.Clip{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"start": start, "end": end})
	if result.Error != nil {
		return fmt.Errorf("gorm: update clip window %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrClipNotFound
	}
	return nil
}

func (r *GormTimelineRepository) MoveClip(ctx context.Context, id, trackID string, start, end float64) error {
	result := r.db.WithContext(ctx).Model(&domain.Clip{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"track_id": trackID, "start": start, "end": end})
	if result.Error != nil {
		return fmt.Errorf("gorm: move clip %s to track %s: %w", id, trackID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrClipNotFound
	}
	return nil
}

func (r *GormTimelineRepository) DeleteClip(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&domain.Clip{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("gorm: delete clip %s: %w", id, err)
	}
	return nil
}

func (r *GormTimelineRepository) UpdateTrackFields(ctx context.Context, id string, fields map[string]interface{}) error {
	updates := filterColumns(fields, trackUpdatableColumns)
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&domain.Track{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gorm: update track %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrTrackNotFound
	}
	return nil
}

func (r *GormTimelineRepository) UpdateSequenceFields(ctx context.Context, id string, fields map[string]interface{}) error {
	updates := filterColumns(fields, sequenceUpdatableColumns)
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&domain.Sequence{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("gorm: update sequence %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrSequenceNotFound
	}
	return nil
}

func filterColumns(fields map[string]interface{}, allowed map[string]bool) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if allowed[k] {
			out[k] = v
		}
	}
	return out
}
