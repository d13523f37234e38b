package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	defaultHome = "/srv/taskbot"

	// ProjectName is the compose project name; all managed containers carry
	// the com.docker.compose.project label with this value.
	ProjectName = "taskbot"

	configFileName = "config.yml"

	// placeholderToken is the value shipped in the bundled example config.
	// A deployment configured with it has not been licensed.
	placeholderToken = "REPLACE_WITH_LICENSE_TOKEN"
)

// TLSMode selects how (and whether) TLS is terminated for the deployment.
type TLSMode string

const (
	TLSNone          TLSMode = "none"
	TLSSelfSigned    TLSMode = "self-signed"
	TLSUserProvided  TLSMode = "provided"
	TLSHostDelegated TLSMode = "external"
)

// Secret keys, one independent credential per stateful dependency.
const (
	SecretJWT         = "jwtSecret"
	SecretMariaDB     = "mariadbPassword"
	SecretMariaDBRoot = "mariadbRootPassword"
	SecretMongo       = "mongoPassword"
	SecretRedis       = "redisPassword"
	SecretRabbitMQ    = "rabbitmqPassword"
)

var secretKeys = []string{
	SecretJWT,
	SecretMariaDB,
	SecretMariaDBRoot,
	SecretMongo,
	SecretRedis,
	SecretRabbitMQ,
}

// DeploymentConfig is the single source of truth for one deployment. It is
// assembled once per invocation and passed between phases; no phase mutates
// it after Resolve.
type DeploymentConfig struct {
	DeploymentID string            `yaml:"deployment_id"`
	PublicHost   string            `yaml:"public_host" validate:"required,hostname|ip"`
	LicenseToken string            `yaml:"license_token" validate:"required"`
	TLSMode      TLSMode           `yaml:"tls_mode" validate:"oneof=none self-signed provided external"`
	CertPath     string            `yaml:"cert_path,omitempty"`
	KeyPath      string            `yaml:"key_path,omitempty"`
	Secrets      map[string]string `yaml:"secrets"`
	Ports        map[string]int    `yaml:"ports"`

	Home string `yaml:"-"`
}

// Answers carries the user-supplied inputs, from flags or from the wizard.
// Zero values mean "not provided" and fall through to persisted config or
// built-in defaults.
type Answers struct {
	Host         string
	LicenseToken string
	TLSMode      TLSMode
	CertPath     string
	KeyPath      string
	Home         string
}

// Scheme is derived from the TLS mode: every mode that terminates TLS
// somewhere (including on an external host-managed proxy) serves https.
func (c DeploymentConfig) Scheme() string {
	if c.TLSMode == TLSNone {
		return "http"
	}
	return "https"
}

func (c DeploymentConfig) PublicURL() string {
	return c.Scheme() + "://" + c.PublicHost
}

func (c DeploymentConfig) ConfigPath() string {
	return filepath.Join(c.Home, configFileName)
}

func (c DeploymentConfig) EnvDir() string   { return filepath.Join(c.Home, "env") }
func (c DeploymentConfig) NginxDir() string { return filepath.Join(c.Home, "nginx", "conf.d") }
func (c DeploymentConfig) CertsDir() string { return filepath.Join(c.Home, "certs") }

func defaultPorts() map[string]int {
	return map[string]int{
		"portal":    8080,
		"gateway":   3000,
		"api":       5000,
		"installer": 9000,
	}
}

// DeployHome resolves the deployment directory: explicit answer, then the
// TASKBOT_HOME environment variable, then the built-in default.
func DeployHome(explicit string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("TASKBOT_HOME")); v != "" {
		return v
	}
	return defaultHome
}

// LoadConfig reads a persisted config from home. The second return is false
// when no deployment has been configured there yet.
func LoadConfig(home string) (DeploymentConfig, bool, error) {
	path := filepath.Join(home, configFileName)
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DeploymentConfig{}, false, nil
	}
	if err != nil {
		return DeploymentConfig{}, false, err
	}
	var cfg DeploymentConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return DeploymentConfig{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Home = home
	return cfg, true, nil
}

// Resolve merges answers, persisted state and defaults into a complete
// config. Precedence: explicit answer > persisted value > default. Secrets
// already persisted are preserved verbatim; only absent keys are minted,
// so a routine re-run never rotates credentials out from under initialized
// datastore volumes.
func Resolve(answers Answers) (DeploymentConfig, error) {
	home := DeployHome(answers.Home)
	cfg, found, err := LoadConfig(home)
	if err != nil {
		return DeploymentConfig{}, err
	}
	if !found {
		cfg = DeploymentConfig{TLSMode: TLSNone}
	}
	cfg.Home = home

	if answers.Host != "" {
		cfg.PublicHost = answers.Host
	}
	if answers.LicenseToken != "" {
		cfg.LicenseToken = answers.LicenseToken
	}
	if answers.TLSMode != "" {
		cfg.TLSMode = answers.TLSMode
	}
	if answers.CertPath != "" {
		cfg.CertPath = answers.CertPath
	}
	if answers.KeyPath != "" {
		cfg.KeyPath = answers.KeyPath
	}

	if cfg.DeploymentID == "" {
		cfg.DeploymentID = uuid.NewString()
	}
	if cfg.Ports == nil {
		cfg.Ports = defaultPorts()
	} else {
		for name, port := range defaultPorts() {
			if _, ok := cfg.Ports[name]; !ok {
				cfg.Ports[name] = port
			}
		}
	}
	if err := EnsureSecrets(&cfg); err != nil {
		return DeploymentConfig{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the resolved config before anything is written. The
// license token must be present and must not be the shipped placeholder.
func Validate(cfg DeploymentConfig) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return &ConfigurationError{
				Field:  strings.ToLower(f.Field()[:1]) + f.Field()[1:],
				Reason: "failed " + f.Tag() + " check",
			}
		}
		return err
	}
	if strings.TrimSpace(cfg.LicenseToken) == "" || cfg.LicenseToken == placeholderToken {
		return &ConfigurationError{Field: "licenseToken", Reason: "must be set to the license token issued for this installation"}
	}
	if cfg.TLSMode == TLSUserProvided {
		if cfg.CertPath == "" {
			return &ConfigurationError{Field: "certPath", Reason: "required when tls mode is provided"}
		}
		if cfg.KeyPath == "" {
			return &ConfigurationError{Field: "keyPath", Reason: "required when tls mode is provided"}
		}
	}
	return nil
}

// SaveConfig persists the config (secrets included) with owner-only access.
func SaveConfig(cfg DeploymentConfig) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteArtifact(RenderedArtifact{Path: cfg.ConfigPath(), Content: out, Mode: 0o600})
}
