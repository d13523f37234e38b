package provision

import (
	"fmt"
	"path/filepath"
	"strings"
)

type envPair struct {
	K string
	V string
}

// renderDotEnv keeps pairs in declaration order so output bytes are stable
// across runs and diffable during audits.
func renderDotEnv(pairs []envPair) []byte {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.K)
		b.WriteString("=")
		b.WriteString(p.V)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

// RenderEnvFiles produces one env file per application container plus the
// compose interpolation .env. Each container receives only the variables it
// needs; in particular the gateway and portal never see datastore
// credentials.
func RenderEnvFiles(cfg DeploymentConfig) []RenderedArtifact {
	s := cfg.Secrets

	apiEnv := []envPair{
		{"PUBLIC_URL", cfg.PublicURL()},
		{"LISTEN_PORT", fmt.Sprintf("%d", cfg.Ports["api"])},
		{"JWT_SECRET", s[SecretJWT]},
		{"MARIADB_HOST", "mariadb"},
		{"MARIADB_PORT", "3306"},
		{"MARIADB_DATABASE", "taskbot"},
		{"MARIADB_USER", "taskbot"},
		{"MARIADB_PASSWORD", s[SecretMariaDB]},
		{"MONGO_URL", fmt.Sprintf("mongodb://taskbot:%s@mongo:27017/taskbot?authSource=admin", s[SecretMongo])},
		{"REDIS_HOST", "redis"},
		{"REDIS_PORT", "6379"},
		{"REDIS_PASSWORD", s[SecretRedis]},
		{"RABBITMQ_URL", fmt.Sprintf("amqp://taskbot:%s@rabbitmq:5672/", s[SecretRabbitMQ])},
	}

	gwEnv := []envPair{
		{"PUBLIC_URL", cfg.PublicURL()},
		{"LISTEN_PORT", fmt.Sprintf("%d", cfg.Ports["gateway"])},
		{"CORE_API_URL", fmt.Sprintf("http://taskbot-api:%d", cfg.Ports["api"])},
		{"JWT_SECRET", s[SecretJWT]},
	}

	portalEnv := []envPair{
		{"PUBLIC_URL", cfg.PublicURL()},
		{"LISTEN_PORT", fmt.Sprintf("%d", cfg.Ports["portal"])},
		{"API_BASE_PATH", "/core"},
	}

	installerEnv := []envPair{
		{"LICENSE_TOKEN", cfg.LicenseToken},
		{"LISTEN_PORT", fmt.Sprintf("%d", cfg.Ports["installer"])},
		{"CORE_API_URL", fmt.Sprintf("http://taskbot-api:%d", cfg.Ports["api"])},
	}

	// Variables interpolated by compose itself; the datastore images read
	// their credentials from these.
	composeEnv := []envPair{
		{"PUBLIC_HOST", cfg.PublicHost},
		{"MARIADB_ROOT_PASSWORD", s[SecretMariaDBRoot]},
		{"MARIADB_PASSWORD", s[SecretMariaDB]},
		{"MONGO_PASSWORD", s[SecretMongo]},
		{"REDIS_PASSWORD", s[SecretRedis]},
		{"RABBITMQ_PASSWORD", s[SecretRabbitMQ]},
	}

	envDir := cfg.EnvDir()
	return []RenderedArtifact{
		{Path: filepath.Join(envDir, "taskbot-api.env"), Content: renderDotEnv(apiEnv), Mode: 0o600},
		{Path: filepath.Join(envDir, "taskbot-gw.env"), Content: renderDotEnv(gwEnv), Mode: 0o600},
		{Path: filepath.Join(envDir, "taskbot-portal.env"), Content: renderDotEnv(portalEnv), Mode: 0o640},
		{Path: filepath.Join(envDir, "taskbot-installer.env"), Content: renderDotEnv(installerEnv), Mode: 0o600},
		{Path: filepath.Join(cfg.Home, ".env"), Content: renderDotEnv(composeEnv), Mode: 0o600},
	}
}
