// Package gormpersistence provides the GORM-backed implementations of the
// repository interfaces.
package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository"
)

// GormCursorRepository is the CursorRepository implementation on GORM.
type GormCursorRepository struct {
	db *gorm.DB
}

// NewGormCursorRepository creates a GormCursorRepository instance.
func NewGormCursorRepository(db *gorm.DB) *GormCursorRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCursorRepository")
	}
	return &GormCursorRepository{db: db}
}

// Upsert inserts or replaces the (user, sequence) cursor row.
func (r *GormCursorRepository) Upsert(ctx context.Context, cursor *domain.Cursor) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "sequence_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"project_id", "position", "color", "activity", "active", "updated_at",
		}),
	}).Create(cursor).Error
	if err != nil {
		return fmt.Errorf("gorm: upsert cursor (user %s, sequence %s): %w", cursor.UserID, cursor.SequenceID, err)
	}
	return nil
}

func (r *GormCursorRepository) FindByUserSequence(ctx context.Context, userID, sequenceID string) (*domain.Cursor, error) {
	var cursor domain.Cursor
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND sequence_id = ?", userID, sequenceID).
		First(&cursor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCursorNotFound
		}
		return nil, fmt.Errorf("gorm: find cursor (user %s, sequence %s): %w", userID, sequenceID, err)
	}
	return &cursor, nil
}

func (r *GormCursorRepository) FindActiveBySequence(ctx context.Context, sequenceID string) ([]domain.Cursor, error) {
	var cursors []domain.Cursor
	err := r.db.WithContext(ctx).
		Where("sequence_id = ? AND active = ?", sequenceID, true).
		Find(&cursors).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find active cursors for sequence %s: %w", sequenceID, err)
	}
	return cursors, nil
}

func (r *GormCursorRepository) FindActiveByProject(ctx context.Context, projectID string) ([]domain.Cursor, error) {
	var cursors []domain.Cursor
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND active = ?", projectID, true).
		Find(&cursors).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find active cursors for project %s: %w", projectID, err)
	}
	return cursors, nil
}

// Deactivate clears the active flag. An empty sequenceID covers all of the
// user's cursors; deactivating an already-inactive cursor is a no-op.
func (r *GormCursorRepository) Deactivate(ctx context.Context, userID, sequenceID string) error {
	query := r.db.WithContext(ctx).Model(&domain.Cursor{}).Where("user_id = ?", userID)
	if sequenceID != "" {
		query = query.Where("sequence_id = ?", sequenceID)
	}
	if err := query.Update("active", false).Error; err != nil {
		return fmt.Errorf("gorm: deactivate cursors (user %s, sequence %q): %w", userID, sequenceID, err)
	}
	return nil
}
