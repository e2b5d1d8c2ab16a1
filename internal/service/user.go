package service

import (
	"github.com/usetandem/tandem/internal/model"
	"github.com/usetandem/tandem/internal/repository"
)

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) ByID(id string) (*model.User, error) {
	return s.repo.ByID(id)
}

func (s *UserService) ByEmail(email string) (*model.User, error) {
	return s.repo.ByEmail(email)
}
