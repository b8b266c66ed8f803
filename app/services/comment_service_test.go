package services

import (
	"context"
	"testing"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCommentService(db *gorm.DB) *CommentService {
	return NewCommentService(
		repositories.NewCommentRepository(db),
		repositories.NewProductRepository(db),
	)
}

func TestCommentCreateAndList(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentService(db)
	user := createTestUser(t, db, "commenter")
	product := createTestProduct(t, db, "Товар", "1.00")
	ctx := context.Background()

	_, err := svc.CreateComment(ctx, user.ID, product.ID, "Перший відгук")
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, user.ID, product.ID, "Другий відгук")
	require.NoError(t, err)

	comments, meta, err := svc.GetComments(ctx, product.ID, pagination.Query{})
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.EqualValues(t, 2, meta.TotalItems)
	// Newest first.
	assert.Equal(t, "Другий відгук", comments[0].Text)

	_, _, err = svc.GetComments(ctx, "00000000-0000-0000-0000-000000000000", pagination.Query{})
	assert.ErrorIs(t, err, apperrors.ErrProductNotFound)
}

func TestCommentDeleteAuthorOrAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := newCommentService(db)
	author := createTestUser(t, db, "author")
	stranger := createTestUser(t, db, "stranger")
	product := createTestProduct(t, db, "Товар", "1.00")
	ctx := context.Background()

	comment, err := svc.CreateComment(ctx, author.ID, product.ID, "Видаліть мене")
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, Identity{UserID: stranger.ID, Role: models.RoleUser}, comment.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = svc.DeleteComment(ctx, Identity{UserID: stranger.ID, Role: models.RoleAdmin}, comment.ID)
	require.NoError(t, err)

	err = svc.DeleteComment(ctx, Identity{UserID: author.ID, Role: models.RoleUser}, comment.ID)
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)
}
