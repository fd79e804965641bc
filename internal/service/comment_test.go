package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chong-myung/collabcut-sub001/internal/domain"
	"github.com/chong-myung/collabcut-sub001/internal/repository/mocks"
)

func strPtr(s string) *string { return &s }

func TestAddCommentPersistsAndHydrates(t *testing.T) {
	comments := new(mocks.CommentRepository)
	comments.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Comment) bool {
		return c.ID != "" && c.Status == domain.CommentStatusOpen
	})).Return(nil).Once()
	comments.On("FindWithAuthor", mock.Anything, mock.AnythingOfType("string")).Return(&domain.CommentWithAuthor{
		Comment:    domain.Comment{ProjectID: "proj-1", AuthorID: "alice", Content: "trim this"},
		AuthorName: "Alice Kim",
	}, nil).Once()

	svc := NewCommentService(comments)
	created, err := svc.AddComment(context.Background(), &domain.Comment{
		ProjectID: "proj-1",
		AuthorID:  "alice",
		Content:   "trim this",
		ClipID:    strPtr("clip-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Kim", created.AuthorName)

	comments.AssertExpectations(t)
}

func TestAddCommentRejectsDualTarget(t *testing.T) {
	svc := NewCommentService(new(mocks.CommentRepository))

	_, err := svc.AddComment(context.Background(), &domain.Comment{
		ProjectID:  "proj-1",
		AuthorID:   "alice",
		Content:    "where does this belong",
		ClipID:     strPtr("clip-1"),
		SequenceID: strPtr("seq-1"),
	})
	assert.ErrorIs(t, err, ErrInvalidComment)
}

func TestAddCommentValidation(t *testing.T) {
	svc := NewCommentService(new(mocks.CommentRepository))

	cases := []struct {
		name    string
		comment *domain.Comment
	}{
		{"nil comment", nil},
		{"no author", &domain.Comment{ProjectID: "proj-1", Content: "x"}},
		{"no project", &domain.Comment{AuthorID: "alice", Content: "x"}},
		{"no content", &domain.Comment{ProjectID: "proj-1", AuthorID: "alice"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddComment(context.Background(), tc.comment)
			assert.ErrorIs(t, err, ErrInvalidComment)
		})
	}
}

func TestAddCommentCreateFailureLeavesNoPartialState(t *testing.T) {
	comments := new(mocks.CommentRepository)
	comments.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	svc := NewCommentService(comments)
	created, err := svc.AddComment(context.Background(), &domain.Comment{
		ProjectID: "proj-1",
		AuthorID:  "alice",
		Content:   "does not land",
	})
	require.Error(t, err)
	assert.Nil(t, created)
	comments.AssertNotCalled(t, "FindWithAuthor", mock.Anything, mock.Anything)
}

func TestGetCommentsScopePriority(t *testing.T) {
	comments := new(mocks.CommentRepository)
	comments.On("FindByClip", mock.Anything, "clip-1").Return([]domain.CommentWithAuthor{}, nil).Once()

	svc := NewCommentService(comments)
	// All three scopes set: the clip, being narrowest, wins.
	_, err := svc.GetComments(context.Background(), CommentQuery{
		ClipID:     "clip-1",
		SequenceID: "seq-1",
		ProjectID:  "proj-1",
	})
	require.NoError(t, err)

	comments.AssertNotCalled(t, "FindBySequence", mock.Anything, mock.Anything)
	comments.AssertNotCalled(t, "FindByProject", mock.Anything, mock.Anything)
}

func TestGetCommentsEmptyQuery(t *testing.T) {
	svc := NewCommentService(new(mocks.CommentRepository))
	_, err := svc.GetComments(context.Background(), CommentQuery{})
	assert.ErrorIs(t, err, ErrInvalidComment)
}

func TestGetCommentThread(t *testing.T) {
	comments := new(mocks.CommentRepository)
	thread := []domain.CommentWithAuthor{
		{Comment: domain.Comment{ID: "c-1"}, AuthorName: "Alice Kim"},
		{Comment: domain.Comment{ID: "c-2", ParentID: strPtr("c-1")}, AuthorName: "Bob Lee"},
	}
	comments.On("FindThread", mock.Anything, "c-1").Return(thread, nil).Once()

	svc := NewCommentService(comments)
	got, err := svc.GetCommentThread(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c-1", got[0].ID)

	_, err = svc.GetCommentThread(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidComment)
}
