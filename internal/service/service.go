// Package service implements the backend's application logic on top of
// the repository.
package service

import (
	"github.com/christianyates/DrupalGeoPicture/internal/repository"
)

type Service struct {
	store *repository.Store
}

func New(store *repository.Store) *Service {
	return &Service{store: store}
}
