package service

import (
	"context"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/store"
)

// UserService serves profile reads and updates for authenticated users.
type UserService struct {
	Store store.Store
}

func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

func (s *UserService) UpdateNames(ctx context.Context, id int64, firstName, lastName string) (domain.User, error) {
	if err := s.Store.Users().UpdateNames(ctx, id, firstName, lastName); err != nil {
		return domain.User{}, err
	}
	return s.Store.Users().GetUserByID(ctx, id)
}
