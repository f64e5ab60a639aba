package service

import (
	"github.com/deppfellow/catalog-smoke/internal/repository"
	"github.com/rs/zerolog"
)

type Services struct {
	Catalog *CatalogService
}

func NewServices(logger *zerolog.Logger, repos *repository.Repositories) *Services {
	return &Services{
		Catalog: NewCatalogService(logger, repos.Departments, repos.Subjects),
	}
}
