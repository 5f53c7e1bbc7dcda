package service

import (
	"context"

	"flight-booking/internal/database"
	"flight-booking/internal/model"
	"flight-booking/internal/repository"
	apperrors "flight-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type UserService interface {
	Get(ctx context.Context, identity model.Identity, userID int) (*model.User, error)
	List(ctx context.Context, query model.UserListQuery) ([]*model.User, int, error)
	Update(ctx context.Context, identity model.Identity, userID int, params model.UpdateUserParams) (*model.User, error)
	// DeleteAccount 連帳號帶關聯資料整包刪除，單一交易
	DeleteAccount(ctx context.Context, identity model.Identity, userID int) error
}

type UserServiceImpl struct {
	store      database.TxRunner
	repository repository.UserRepository
}

func NewUserService(store database.TxRunner, repository repository.UserRepository) UserService {
	return &UserServiceImpl{
		store:      store,
		repository: repository,
	}
}

func (s *UserServiceImpl) Get(ctx context.Context, identity model.Identity, userID int) (*model.User, error) {
	if !identity.CanAccess(userID) {
		return nil, apperrors.ErrForbidden
	}
	return s.repository.FindByID(ctx, userID)
}

func (s *UserServiceImpl) List(ctx context.Context, query model.UserListQuery) ([]*model.User, int, error) {
	return s.repository.List(ctx, query)
}

func (s *UserServiceImpl) Update(ctx context.Context, identity model.Identity, userID int, params model.UpdateUserParams) (*model.User, error) {
	if !identity.CanAccess(userID) {
		return nil, apperrors.ErrForbidden
	}
	if params.IsEmpty() {
		return nil, apperrors.ErrNoFieldsToUpdate
	}
	return s.repository.Update(ctx, userID, params)
}

func (s *UserServiceImpl) DeleteAccount(ctx context.Context, identity model.Identity, userID int) error {
	if !identity.CanAccess(userID) {
		return apperrors.ErrForbidden
	}
	return s.store.WithinTx(ctx, func(tx pgx.Tx) error {
		return s.repository.DeleteCascade(ctx, tx, userID)
	})
}
