package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository"
)

// GormCommentRepository is the CommentRepository implementation on GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a GormCommentRepository instance.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCommentRepository")
	}
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	err := r.db.WithContext(ctx).Create(comment).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create comment %s: %w", comment.ID, err)
	}
	return nil
}

// withAuthor selects comments joined with the author's display name.
func (r *GormCommentRepository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Select("comments.*, users.display_name AS author_name").
		Joins("LEFT JOIN users ON users.id = comments.author_id")
}

func (r *GormCommentRepository) FindWithAuthor(ctx context.Context, id string) (*domain.CommentWithAuthor, error) {
	var out domain.CommentWithAuthor
	err := r.withAuthor(ctx).Where("comments.id = ?", id).Take(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCommentNotFound
		}
		return nil, fmt.Errorf("gorm: find comment %s with author: %w", id, err)
	}
	return &out, nil
}

func (r *GormCommentRepository) FindByClip(ctx context.Context, clipID string) ([]domain.CommentWithAuthor, error) {
	var out []domain.CommentWithAuthor
	err := r.withAuthor(ctx).
		Where("comments.clip_id = ?", clipID).
		Order("comments.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find comments for clip %s: %w", clipID, err)
	}
	return out, nil
}

func (r *GormCommentRepository) FindBySequence(ctx context.Context, sequenceID string) ([]domain.CommentWithAuthor, error) {
	var out []domain.CommentWithAuthor
	err := r.withAuthor(ctx).
		Where("comments.sequence_id = ?", sequenceID).
		Order("comments.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find comments for sequence %s: %w", sequenceID, err)
	}
	return out, nil
}

// FindByProject returns project-wide comments, replies included.
func (r *GormCommentRepository) FindByProject(ctx context.Context, projectID string) ([]domain.CommentWithAuthor, error) {
	var out []domain.CommentWithAuthor
	err := r.withAuthor(ctx).
		Where("comments.project_id = ?", projectID).
		Order("comments.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find comments for project %s: %w", projectID, err)
	}
	return out, nil
}

// FindThread returns the parent comment first, then its replies oldest
// first.
func (r *GormCommentRepository) FindThread(ctx context.Context, parentID string) ([]domain.CommentWithAuthor, error) {
	var out []domain.CommentWithAuthor
	err := r.withAuthor(ctx).
		Where("comments.id = ? OR comments.parent_id = ?", parentID, parentID).
		Order("comments.parent_id IS NOT NULL, comments.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: find comment thread %s: %w", parentID, err)
	}
	if len(out) == 0 {
		return nil, repository.ErrCommentNotFound
	}
	return out, nil
}
