package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Profile is the single company identity printed on documents and used as the
// email sender. At most one row exists.
type Profile struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyName string       `gorm:"not null" json:"company_name"`
	Address     string       `gorm:"type:text" json:"address"`
	PostalCode  string       `gorm:"type:text" json:"postal_code"`
	City        string       `gorm:"type:text" json:"city"`
	Phone       string       `gorm:"type:text" json:"phone"`
	Email       string       `gorm:"type:text" json:"email"`
	Website     string       `gorm:"type:text" json:"website,omitempty"`
	TaxNumber   string       `gorm:"type:text" json:"tax_number"`
	BankName    string       `gorm:"type:text" json:"bank_name"`
	IBAN        string       `gorm:"type:text" json:"iban"`
	BIC         string       `gorm:"type:text" json:"bic"`
	LogoURL     string       `gorm:"type:text" json:"logo_url,omitempty"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "company_profiles" }

type UpsertProfileRequest struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	PostalCode  string `json:"postal_code"`
	City        string `json:"city"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	TaxNumber   string `json:"tax_number"`
	BankName    string `json:"bank_name"`
	IBAN        string `json:"iban"`
	BIC         string `json:"bic"`
	LogoURL     string `json:"logo_url"`
}

type Service interface {
	Upsert(context.Context, UpsertProfileRequest) (Profile, error)
	Get(context.Context) (Profile, error)
	// Resolve returns the saved profile, or the YAML/config defaults when no
	// profile has been saved yet. Dispatch never fails for lack of a profile.
	Resolve(context.Context) Profile
}

var (
	ErrInvalidCompanyName = errors.New("invalid_company_name")
	ErrNotFound           = errors.New("company_profile_not_found")
)
