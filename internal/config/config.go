package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath      = "config.toml"
	DefaultHTTPAddr        = ":8080"
	DefaultGraphAPIBaseURL = "https://graph.facebook.com"
	DefaultGraphAPIVersion = "v21.0"
	DefaultStorageRoot     = "data/media"
	DefaultMetadataTimeout = 10
	DefaultDownloadTimeout = 30
	DefaultMaxDownloadMB   = 100
	DefaultSweepSchedule   = "@hourly"
	DefaultSweepMaxAge     = "1h"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	WhatsApp WhatsAppConfig `toml:"whatsapp"`
	Storage  StorageConfig  `toml:"storage"`
	Admin    AdminConfig    `toml:"admin"`
	Samples  SamplesConfig  `toml:"samples"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// WhatsAppConfig carries the Graph API credentials and per-hop timeouts.
type WhatsAppConfig struct {
	AccessToken     string `toml:"access_token" validate:"required"`
	PhoneNumberID   string `toml:"phone_number_id" validate:"required"`
	VerifyToken     string `toml:"verify_token" validate:"required"`
	APIVersion      string `toml:"api_version"`
	BaseURL         string `toml:"base_url"`
	MetadataTimeout int    `toml:"metadata_timeout_seconds" validate:"gt=0"`
	DownloadTimeout int    `toml:"download_timeout_seconds" validate:"gt=0"`
}

type StorageConfig struct {
	Root string `toml:"root" validate:"required"`
	// MaxDownloadMB caps the accepted size of a single downloaded attachment.
	MaxDownloadMB int `toml:"max_download_mb" validate:"gt=0"`
	// SweepSchedule is a cron expression for the stale temp-file sweep.
	SweepSchedule string `toml:"sweep_schedule"`
	// SweepMaxAge is how old a temp file must be before the sweep removes it.
	SweepMaxAge string `toml:"sweep_max_age"`
}

// AdminConfig configures the JWT-protected media listing API. The API is
// disabled when the secret is empty.
type AdminConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// SamplesConfig maps media kinds to local sample files served back on the
// "send image" / "send audio" / "send video" / "send document" commands.
type SamplesConfig struct {
	Image    SampleFile `toml:"image"`
	Audio    SampleFile `toml:"audio"`
	Video    SampleFile `toml:"video"`
	Document SampleFile `toml:"document"`
}

type SampleFile struct {
	Path     string `toml:"path"`
	Mime     string `toml:"mime"`
	Caption  string `toml:"caption"`
	Filename string `toml:"filename"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		WhatsApp: WhatsAppConfig{
			APIVersion:      DefaultGraphAPIVersion,
			BaseURL:         DefaultGraphAPIBaseURL,
			MetadataTimeout: DefaultMetadataTimeout,
			DownloadTimeout: DefaultDownloadTimeout,
		},
		Storage: StorageConfig{
			Root:          DefaultStorageRoot,
			MaxDownloadMB: DefaultMaxDownloadMB,
			SweepSchedule: DefaultSweepSchedule,
			SweepMaxAge:   DefaultSweepMaxAge,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the fields serve needs before the process commits to
// listening. Credentials can be absent in a freshly generated config file,
// so Load does not enforce them.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.WhatsApp); err != nil {
		return fmt.Errorf("whatsapp config: %w", err)
	}
	if err := v.Struct(c.Storage); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	return nil
}
