package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/company/domain"
	"github.com/smallbiznis/faktura/internal/company/repository"
	"github.com/smallbiznis/faktura/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     repository.Repository
	Defaults *config.CompanyDefaultsHolder `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     repository.Repository
	defaults *config.CompanyDefaultsHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("company.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		defaults: p.Defaults,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertProfileRequest) (domain.Profile, error) {
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return domain.Profile{}, domain.ErrInvalidCompanyName
	}

	existing, err := s.repo.FindFirst(ctx, s.db)
	if err != nil {
		return domain.Profile{}, err
	}

	profile := domain.Profile{
		CompanyName: name,
		Address:     strings.TrimSpace(req.Address),
		PostalCode:  strings.TrimSpace(req.PostalCode),
		City:        strings.TrimSpace(req.City),
		Phone:       strings.TrimSpace(req.Phone),
		Email:       strings.TrimSpace(req.Email),
		Website:     strings.TrimSpace(req.Website),
		TaxNumber:   strings.TrimSpace(req.TaxNumber),
		BankName:    strings.TrimSpace(req.BankName),
		IBAN:        strings.TrimSpace(req.IBAN),
		BIC:         strings.TrimSpace(req.BIC),
		LogoURL:     strings.TrimSpace(req.LogoURL),
		UpdatedAt:   time.Now().UTC(),
	}
	if existing != nil {
		profile.ID = existing.ID
	} else {
		profile.ID = s.genID.Generate()
	}

	if err := s.repo.Save(ctx, s.db, &profile); err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}

func (s *Service) Get(ctx context.Context) (domain.Profile, error) {
	profile, err := s.repo.FindFirst(ctx, s.db)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return *profile, nil
}

func (s *Service) Resolve(ctx context.Context) domain.Profile {
	profile, err := s.repo.FindFirst(ctx, s.db)
	if err != nil {
		s.log.Warn("falling back to company defaults", zap.Error(err))
	}
	if profile != nil {
		return *profile
	}

	defaults := config.DefaultCompanyDefaults()
	if s.defaults != nil {
		defaults = s.defaults.Current()
	}
	return domain.Profile{
		CompanyName: defaults.CompanyName,
		Address:     defaults.Address,
		PostalCode:  defaults.PostalCode,
		City:        defaults.City,
		Phone:       defaults.Phone,
		Email:       defaults.Email,
		Website:     defaults.Website,
		TaxNumber:   defaults.TaxNumber,
		BankName:    defaults.BankName,
		IBAN:        defaults.IBAN,
		BIC:         defaults.BIC,
	}
}
