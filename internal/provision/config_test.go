package provision

import (
	"errors"
	"testing"
)

func TestResolveFirstRunDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := Resolve(Answers{
		Host:         "taskbot.example.com",
		LicenseToken: "tok-123",
		Home:         home,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.TLSMode != TLSNone {
		t.Errorf("default tls mode = %s, want none", cfg.TLSMode)
	}
	if cfg.DeploymentID == "" {
		t.Error("deployment id not minted")
	}
	if cfg.Ports["gateway"] != 3000 {
		t.Errorf("default gateway port = %d", cfg.Ports["gateway"])
	}
	for _, key := range secretKeys {
		if cfg.Secrets[key] == "" {
			t.Errorf("secret %s missing after resolve", key)
		}
	}
}

func TestResolvePreservesSecretsAcrossRuns(t *testing.T) {
	home := t.TempDir()
	first, err := Resolve(Answers{Host: "taskbot.example.com", LicenseToken: "tok-123", Home: home})
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	if err := SaveConfig(first); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	second, err := Resolve(Answers{Home: home})
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	for _, key := range secretKeys {
		if second.Secrets[key] != first.Secrets[key] {
			t.Errorf("secret %s rotated on re-run", key)
		}
	}
	if second.DeploymentID != first.DeploymentID {
		t.Error("deployment id changed on re-run")
	}
	if second.PublicHost != "taskbot.example.com" {
		t.Errorf("persisted host lost: %q", second.PublicHost)
	}
}

func TestResolveExplicitInputWinsOverPersisted(t *testing.T) {
	home := t.TempDir()
	first, err := Resolve(Answers{Host: "old.example.com", LicenseToken: "tok-123", Home: home})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := SaveConfig(first); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	second, err := Resolve(Answers{Host: "new.example.com", Home: home})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if second.PublicHost != "new.example.com" {
		t.Errorf("explicit host did not win: %q", second.PublicHost)
	}
	if second.LicenseToken != "tok-123" {
		t.Errorf("persisted token lost: %q", second.LicenseToken)
	}
}

func TestValidateRejectsMissingLicense(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"placeholder", placeholderToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DeploymentConfig{
				PublicHost:   "taskbot.example.com",
				LicenseToken: tc.token,
				TLSMode:      TLSNone,
			}
			err := Validate(cfg)
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cerr.Field != "licenseToken" {
				t.Errorf("error names field %q, want licenseToken", cerr.Field)
			}
		})
	}
}

func TestValidateRejectsBadHost(t *testing.T) {
	cfg := DeploymentConfig{
		PublicHost:   "not a host!",
		LicenseToken: "tok-123",
		TLSMode:      TLSNone,
	}
	var cerr *ConfigurationError
	if err := Validate(cfg); !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestValidateAcceptsIPHost(t *testing.T) {
	cfg := DeploymentConfig{
		PublicHost:   "192.168.10.50",
		LicenseToken: "tok-123",
		TLSMode:      TLSSelfSigned,
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateProvidedModeNeedsPaths(t *testing.T) {
	cfg := DeploymentConfig{
		PublicHost:   "taskbot.example.com",
		LicenseToken: "tok-123",
		TLSMode:      TLSUserProvided,
	}
	var cerr *ConfigurationError
	if err := Validate(cfg); !errors.As(err, &cerr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cerr.Field != "certPath" {
		t.Errorf("error names field %q, want certPath", cerr.Field)
	}
}

func TestSchemeDerivation(t *testing.T) {
	tests := []struct {
		mode TLSMode
		want string
	}{
		{TLSNone, "http"},
		{TLSSelfSigned, "https"},
		{TLSUserProvided, "https"},
		{TLSHostDelegated, "https"},
	}
	for _, tc := range tests {
		cfg := DeploymentConfig{TLSMode: tc.mode}
		if got := cfg.Scheme(); got != tc.want {
			t.Errorf("Scheme(%s) = %s, want %s", tc.mode, got, tc.want)
		}
	}
}
