package services

import (
	"context"
	"fmt"

	"github.com/ostapdev/go-shop/app/apperrors"
	"github.com/ostapdev/go-shop/app/models"
	"github.com/ostapdev/go-shop/app/repositories"
	"github.com/ostapdev/go-shop/app/utils/pagination"
)

type CommentService struct {
	commentRepo repositories.CommentRepositoryImpl
	productRepo repositories.ProductRepositoryImpl
}

func NewCommentService(
	commentRepo repositories.CommentRepositoryImpl,
	productRepo repositories.ProductRepositoryImpl,
) *CommentService {
	return &CommentService{commentRepo: commentRepo, productRepo: productRepo}
}

// GetComments returns a product's comments, newest first.
func (s *CommentService) GetComments(ctx context.Context, productID string, q pagination.Query) ([]models.Comment, pagination.Meta, error) {
	q = q.Normalize()

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil {
		return nil, pagination.Meta{}, apperrors.ErrProductNotFound
	}

	comments, total, err := s.commentRepo.GetByProductPaginated(ctx, productID, q.PageSize, q.Offset())
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, pagination.BuildMeta(total, len(comments), q), nil
}

// CreateComment attaches a comment to a product on behalf of the
// authenticated user.
func (s *CommentService) CreateComment(ctx context.Context, userID, productID, text string) (*models.Comment, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve product: %w", err)
	}
	if product == nil || product.IsRemoved {
		return nil, apperrors.ErrProductNotFound
	}

	comment := &models.Comment{
		ProductID: productID,
		UserID:    userID,
		Text:      text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return comment, nil
}

// DeleteComment removes a comment for its author or an admin.
func (s *CommentService) DeleteComment(ctx context.Context, requester Identity, commentID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("failed to get comment: %w", err)
	}
	if comment == nil {
		return apperrors.ErrCommentNotFound
	}
	if comment.UserID != requester.UserID && !requester.IsAdmin() {
		return apperrors.ErrForbidden
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
