package config

import (
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CompanyDefaults is the fallback sender identity used on rendered documents
// and emails until a company profile has been saved through the API.
type CompanyDefaults struct {
	CompanyName string `mapstructure:"companyName"`
	Address     string `mapstructure:"address"`
	PostalCode  string `mapstructure:"postalCode"`
	City        string `mapstructure:"city"`
	Phone       string `mapstructure:"phone"`
	Email       string `mapstructure:"email"`
	Website     string `mapstructure:"website"`
	TaxNumber   string `mapstructure:"taxNumber"`
	BankName    string `mapstructure:"bankName"`
	IBAN        string `mapstructure:"iban"`
	BIC         string `mapstructure:"bic"`
}

func DefaultCompanyDefaults() CompanyDefaults {
	return CompanyDefaults{
		CompanyName: "Faktura",
		Email:       "office@faktura.local",
	}
}

// CompanyDefaultsHolder exposes the current YAML-backed company defaults and
// hot-reloads them when the config file changes on disk.
type CompanyDefaultsHolder struct {
	current atomic.Value // holds CompanyDefaults
}

func NewCompanyDefaultsHolder() (*CompanyDefaultsHolder, error) {
	v := viper.New()

	v.SetConfigName("company")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/faktura/config")
	v.AddConfigPath("/etc/faktura")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FAKTURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &CompanyDefaultsHolder{}

	load := func() error {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return err
			}
			holder.current.Store(DefaultCompanyDefaults())
			return nil
		}
		var defaults CompanyDefaults
		if err := v.UnmarshalKey("company", &defaults); err != nil {
			return err
		}
		if defaults.CompanyName == "" {
			defaults = DefaultCompanyDefaults()
		}
		holder.current.Store(defaults)
		return nil
	}

	if err := load(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		_ = load()
	})
	v.WatchConfig()

	return holder, nil
}

func (h *CompanyDefaultsHolder) Current() CompanyDefaults {
	if v, ok := h.current.Load().(CompanyDefaults); ok {
		return v
	}
	return DefaultCompanyDefaults()
}
