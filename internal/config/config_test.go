package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, DefaultHTTPAddr)
	}
	if cfg.WhatsApp.APIVersion != DefaultGraphAPIVersion {
		t.Errorf("api version = %q, want %q", cfg.WhatsApp.APIVersion, DefaultGraphAPIVersion)
	}
	if cfg.WhatsApp.MetadataTimeout != DefaultMetadataTimeout || cfg.WhatsApp.DownloadTimeout != DefaultDownloadTimeout {
		t.Errorf("timeouts = %d/%d, want %d/%d", cfg.WhatsApp.MetadataTimeout, cfg.WhatsApp.DownloadTimeout, DefaultMetadataTimeout, DefaultDownloadTimeout)
	}
	if cfg.Storage.Root != DefaultStorageRoot {
		t.Errorf("storage root = %q, want %q", cfg.Storage.Root, DefaultStorageRoot)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[log]
level = "debug"
format = "json"

[server]
addr = ":9090"

[whatsapp]
access_token = "tok"
phone_number_id = "12345"
verify_token = "verify"
api_version = "v22.0"
download_timeout_seconds = 60

[storage]
root = "/var/lib/mediahook"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.WhatsApp.APIVersion != "v22.0" {
		t.Errorf("api version = %q", cfg.WhatsApp.APIVersion)
	}
	if cfg.WhatsApp.DownloadTimeout != 60 {
		t.Errorf("download timeout = %d", cfg.WhatsApp.DownloadTimeout)
	}
	// Unset fields keep their defaults.
	if cfg.WhatsApp.MetadataTimeout != DefaultMetadataTimeout {
		t.Errorf("metadata timeout = %d, want default", cfg.WhatsApp.MetadataTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestValidateMissingCredentials(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty credentials")
	}
}
