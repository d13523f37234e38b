package provision

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRenderAllAbortsBeforeAnyWrite(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.LicenseToken = ""

	_, err := RenderAll(cfg)
	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cerr.Field != "licenseToken" {
		t.Errorf("field = %q", cerr.Field)
	}

	entries, err := os.ReadDir(cfg.Home)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("validation failure left %d files in %s", len(entries), cfg.Home)
	}
}

func TestRenderAllAbortsOnMissingCertificate(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.TLSMode = TLSUserProvided
	cfg.CertPath = filepath.Join(cfg.Home, "nope.pem")
	cfg.KeyPath = filepath.Join(cfg.Home, "nope.key")

	_, err := RenderAll(cfg)
	var merr *MissingCertificateError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MissingCertificateError, got %v", err)
	}
	entries, err := os.ReadDir(cfg.Home)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("missing certificate left %d files in %s", len(entries), cfg.Home)
	}
}

func TestInitDeploymentLayoutAndConfig(t *testing.T) {
	cfg := testConfig(t.TempDir())
	if err := InitDeployment(cfg); err != nil {
		t.Fatalf("InitDeployment: %v", err)
	}

	for _, dir := range []string{cfg.EnvDir(), cfg.NginxDir(), cfg.CertsDir(), filepath.Join(cfg.Home, "uploads"), filepath.Join(cfg.Home, "ssh")} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("missing directory %s: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}

	info, err := os.Stat(cfg.ConfigPath())
	if err != nil {
		t.Fatalf("config not persisted: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %o, want 600", info.Mode().Perm())
	}
}

func TestInitDeploymentIdempotent(t *testing.T) {
	cfg := testConfig(t.TempDir())
	if err := InitDeployment(cfg); err != nil {
		t.Fatalf("first InitDeployment: %v", err)
	}

	read := func(name string) []byte {
		t.Helper()
		b, err := os.ReadFile(filepath.Join(cfg.EnvDir(), name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return b
	}
	names := []string{"taskbot-api.env", "taskbot-gw.env", "taskbot-portal.env", "taskbot-installer.env"}
	first := map[string][]byte{}
	for _, n := range names {
		first[n] = read(n)
	}
	cert1, err := os.ReadFile(filepath.Join(cfg.CertsDir(), certFileName))
	if err != nil {
		t.Fatalf("read cert: %v", err)
	}

	if err := InitDeployment(cfg); err != nil {
		t.Fatalf("second InitDeployment: %v", err)
	}
	for _, n := range names {
		if string(read(n)) != string(first[n]) {
			t.Errorf("%s changed across identical re-runs", n)
		}
	}
	cert2, err := os.ReadFile(filepath.Join(cfg.CertsDir(), certFileName))
	if err != nil {
		t.Fatalf("read cert after re-run: %v", err)
	}
	if string(cert1) != string(cert2) {
		t.Error("self-signed certificate was regenerated on re-run")
	}
}
