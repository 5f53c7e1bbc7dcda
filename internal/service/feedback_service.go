package service

import (
	"context"

	"flight-booking/internal/model"
	"flight-booking/internal/repository"
)

type FeedbackService interface {
	// userID 可為 nil：未登入的訪客也能留回饋
	Create(ctx context.Context, userID *int, req model.CreateFeedbackRequest) (*model.Feedback, error)
	List(ctx context.Context, page, limit int) ([]*model.Feedback, int, error)
	Get(ctx context.Context, feedbackID int) (*model.Feedback, error)
	Delete(ctx context.Context, feedbackID int) error
}

type FeedbackServiceImpl struct {
	repository repository.FeedbackRepository
}

func NewFeedbackService(repository repository.FeedbackRepository) FeedbackService {
	return &FeedbackServiceImpl{
		repository: repository,
	}
}

func (s *FeedbackServiceImpl) Create(ctx context.Context, userID *int, req model.CreateFeedbackRequest) (*model.Feedback, error) {
	return s.repository.Create(ctx, &model.Feedback{
		UserID:   userID,
		FullName: req.FullName,
		Email:    req.Email,
		Content:  req.Content,
		Rating:   req.Rating,
	})
}

func (s *FeedbackServiceImpl) List(ctx context.Context, page, limit int) ([]*model.Feedback, int, error) {
	return s.repository.List(ctx, page, limit)
}

func (s *FeedbackServiceImpl) Get(ctx context.Context, feedbackID int) (*model.Feedback, error) {
	return s.repository.FindByID(ctx, feedbackID)
}

func (s *FeedbackServiceImpl) Delete(ctx context.Context, feedbackID int) error {
	return s.repository.Delete(ctx, feedbackID)
}
