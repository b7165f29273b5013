package services

import (
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"gorm.io/gorm"
)

// Services bundles the application services that share one store
type Services struct {
	Catalog    *CatalogService
	Users      *UserService
	Enrollment *EnrollmentService
	Progress   *ProgressService
	Rating     *RatingService
	Educator   *EducatorService
}

// NewServices wires every service. cache and uploader may be nil when Redis
// or the asset host are not configured.
func NewServices(db *gorm.DB, log *logger.Logger, cache CatalogCache, uploader ImageUploader) *Services {
	catalog := NewCatalogService(db, log)
	if cache != nil {
		catalog.WithCache(cache)
	}
	if uploader != nil {
		catalog.WithUploader(uploader)
	}

	return &Services{
		Catalog:    catalog,
		Users:      NewUserService(db, catalog, log),
		Enrollment: NewEnrollmentService(db, catalog, log),
		Progress:   NewProgressService(db, log),
		Rating:     NewRatingService(db, catalog, log),
		Educator:   NewEducatorService(db, log),
	}
}
