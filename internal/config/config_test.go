package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func TestDecodeDefaults(t *testing.T) {
	cfg, err := Decode(newTestViper())
	if err != nil {
		t.Fatalf("decode defaults failed: %v", err)
	}
	if cfg.JWT.ExpireHours != 24 {
		t.Fatalf("jwt expire hours want 24 got %d", cfg.JWT.ExpireHours)
	}
	if cfg.Security.PasswordPolicy.MinLength != 6 {
		t.Fatalf("password min length want 6 got %d", cfg.Security.PasswordPolicy.MinLength)
	}
	if cfg.Upload.MaxSize != 5*1024*1024 {
		t.Fatalf("upload max size want 5MB got %d", cfg.Upload.MaxSize)
	}
	if cfg.Storage.Driver != "local" {
		t.Fatalf("storage driver want local got %s", cfg.Storage.Driver)
	}
	if cfg.Bootstrap.AdminPassword != "" {
		t.Fatalf("bootstrap admin password must not have a default")
	}
	if cfg.Queue.Queues["critical"] != 5 {
		t.Fatalf("critical queue weight want 5 got %d", cfg.Queue.Queues["critical"])
	}
}

func TestDecodeEnvOverride(t *testing.T) {
	t.Setenv("JWT_EXPIRE_HOURS", "48")
	t.Setenv("STORAGE_DRIVER", "s3")
	cfg, err := Decode(newTestViper())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cfg.JWT.ExpireHours != 48 {
		t.Fatalf("env override jwt expire hours want 48 got %d", cfg.JWT.ExpireHours)
	}
	if cfg.Storage.Driver != "s3" {
		t.Fatalf("env override storage driver want s3 got %s", cfg.Storage.Driver)
	}
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDotEnvKeepsExistingEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("STOREDESK_TEST_A=from_file\nSTOREDESK_TEST_B=from_file\n"), 0o600); err != nil {
		t.Fatalf("write env file failed: %v", err)
	}
	t.Setenv("STOREDESK_TEST_A", "from_env")
	t.Cleanup(func() { _ = os.Unsetenv("STOREDESK_TEST_B") })

	loadDotEnv(path)

	if got := os.Getenv("STOREDESK_TEST_A"); got != "from_env" {
		t.Fatalf("existing env must win, got %s", got)
	}
	if got := os.Getenv("STOREDESK_TEST_B"); got != "from_file" {
		t.Fatalf("missing env should be loaded from file, got %s", got)
	}
}
