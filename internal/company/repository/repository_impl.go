package repository

import (
	"context"

	"github.com/smallbiznis/faktura/internal/company/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindFirst(ctx context.Context, db *gorm.DB) (*domain.Profile, error)
	Save(ctx context.Context, db *gorm.DB, profile *domain.Profile) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) FindFirst(ctx context.Context, db *gorm.DB) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).
		Order("id asc").
		Limit(1).
		Find(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, nil
	}
	return &profile, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	return db.WithContext(ctx).Save(profile).Error
}
