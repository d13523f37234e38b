package provision

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/docker/go-connections/nat"
	"gopkg.in/yaml.v3"
)

// Container images. The installer only runs during licensing and activation,
// so its image is the one pull that may fall back to a cached copy.
const (
	imagePortal    = "nucleusenterpriseai/taskbot-portal:latest"
	imageGateway   = "nucleusenterpriseai/taskbot-gw:latest"
	imageAPI       = "nucleusenterpriseai/taskbot-api:latest"
	imageInstaller = "nucleusenterpriseai/taskbot-installer:latest"
	imageMariaDB   = "mariadb:10.11"
	imageMongo     = "mongo:6"
	imageRedis     = "redis:7-alpine"
	imageRabbitMQ  = "rabbitmq:3-management-alpine"
	imageProxy     = "nginx:1.25-alpine"
)

type composeService struct {
	Image         string            `yaml:"image"`
	ContainerName string            `yaml:"container_name,omitempty"`
	Restart       string            `yaml:"restart,omitempty"`
	EnvFile       []string          `yaml:"env_file,omitempty"`
	Environment   map[string]string `yaml:"environment,omitempty"`
	Command       []string          `yaml:"command,omitempty"`
	DependsOn     []string          `yaml:"depends_on,omitempty"`
	Ports         []string          `yaml:"ports,omitempty"`
	Volumes       []string          `yaml:"volumes,omitempty"`
	Labels        map[string]string `yaml:"labels,omitempty"`
}

type composeFile struct {
	Name     string                    `yaml:"name"`
	Services map[string]composeService `yaml:"services"`
	Volumes  map[string]any            `yaml:"volumes,omitempty"`
}

// ServiceSpec classifies one stack service for the lifecycle manager.
type ServiceSpec struct {
	Name     string
	Image    string
	Required bool
}

// StackServices lists every service of the deployment in dependency order:
// datastores first, then the API that uses them, then the gateway and the
// surfaces behind it. The proxy is absent for host-delegated TLS.
func StackServices(cfg DeploymentConfig) []ServiceSpec {
	specs := []ServiceSpec{
		{Name: "mariadb", Image: imageMariaDB, Required: true},
		{Name: "mongo", Image: imageMongo, Required: true},
		{Name: "redis", Image: imageRedis, Required: true},
		{Name: "rabbitmq", Image: imageRabbitMQ, Required: true},
		{Name: "taskbot-api", Image: imageAPI, Required: true},
		{Name: "taskbot-gw", Image: imageGateway, Required: true},
		{Name: "taskbot-portal", Image: imagePortal, Required: true},
		{Name: "taskbot-installer", Image: imageInstaller, Required: false},
	}
	if cfg.TLSMode != TLSHostDelegated {
		specs = append(specs, ServiceSpec{Name: "proxy", Image: imageProxy, Required: true})
	}
	return specs
}

// buildCompose assembles the compose document as a typed structure, so the
// generator cannot emit syntactically invalid YAML.
func buildCompose(cfg DeploymentConfig) (composeFile, error) {
	labels := map[string]string{
		"com.taskbot.deployment-id": cfg.DeploymentID,
	}
	envDir := cfg.EnvDir()
	datastores := []string{"mariadb", "mongo", "redis", "rabbitmq"}

	services := map[string]composeService{
		"mariadb": {
			Image:   imageMariaDB,
			Restart: "unless-stopped",
			Environment: map[string]string{
				"MYSQL_ROOT_PASSWORD": "${MARIADB_ROOT_PASSWORD}",
				"MYSQL_DATABASE":      "taskbot",
				"MYSQL_USER":          "taskbot",
				"MYSQL_PASSWORD":      "${MARIADB_PASSWORD}",
			},
			Volumes: []string{"mariadb-data:/var/lib/mysql"},
			Labels:  labels,
		},
		"mongo": {
			Image:   imageMongo,
			Restart: "unless-stopped",
			Environment: map[string]string{
				"MONGO_INITDB_ROOT_USERNAME": "taskbot",
				"MONGO_INITDB_ROOT_PASSWORD": "${MONGO_PASSWORD}",
			},
			Volumes: []string{"mongo-data:/data/db"},
			Labels:  labels,
		},
		"redis": {
			Image:   imageRedis,
			Restart: "unless-stopped",
			Command: []string{"redis-server", "--requirepass", "${REDIS_PASSWORD}"},
			Volumes: []string{"redis-data:/data"},
			Labels:  labels,
		},
		"rabbitmq": {
			Image:   imageRabbitMQ,
			Restart: "unless-stopped",
			Environment: map[string]string{
				"RABBITMQ_DEFAULT_USER": "taskbot",
				"RABBITMQ_DEFAULT_PASS": "${RABBITMQ_PASSWORD}",
			},
			Volumes: []string{"rabbitmq-data:/var/lib/rabbitmq"},
			Labels:  labels,
		},
		"taskbot-api": {
			Image:     imageAPI,
			Restart:   "unless-stopped",
			EnvFile:   []string{filepath.Join(envDir, "taskbot-api.env")},
			DependsOn: datastores,
			Volumes:   []string{filepath.Join(cfg.Home, "uploads") + ":/app/uploads"},
			Labels:    labels,
		},
		"taskbot-gw": {
			Image:     imageGateway,
			Restart:   "unless-stopped",
			EnvFile:   []string{filepath.Join(envDir, "taskbot-gw.env")},
			DependsOn: []string{"taskbot-api"},
			Labels:    labels,
		},
		"taskbot-portal": {
			Image:     imagePortal,
			Restart:   "unless-stopped",
			EnvFile:   []string{filepath.Join(envDir, "taskbot-portal.env")},
			DependsOn: []string{"taskbot-gw"},
			Labels:    labels,
		},
		"taskbot-installer": {
			Image:     imageInstaller,
			Restart:   "unless-stopped",
			EnvFile:   []string{filepath.Join(envDir, "taskbot-installer.env")},
			DependsOn: []string{"taskbot-api"},
			Labels:    labels,
		},
	}

	if cfg.TLSMode == TLSHostDelegated {
		// No proxy container: the host-managed proxy reaches the portal and
		// gateway on loopback instead.
		portal := services["taskbot-portal"]
		portal.Ports = loopbackPorts(cfg.Ports["portal"])
		services["taskbot-portal"] = portal

		gw := services["taskbot-gw"]
		gw.Ports = loopbackPorts(cfg.Ports["gateway"])
		services["taskbot-gw"] = gw
	} else {
		ports := []string{"80:80"}
		if cfg.TLSMode != TLSNone {
			ports = append(ports, "443:443")
		}
		services["proxy"] = composeService{
			Image:     imageProxy,
			Restart:   "unless-stopped",
			Ports:     ports,
			DependsOn: []string{"taskbot-portal", "taskbot-gw"},
			Volumes: []string{
				cfg.NginxDir() + ":/etc/nginx/conf.d:ro",
				cfg.CertsDir() + ":/etc/nginx/certs:ro",
				filepath.Join(cfg.Home, "uploads") + ":/var/www/uploads:ro",
			},
			Labels: labels,
		}
	}

	doc := composeFile{
		Name:     ProjectName,
		Services: services,
		Volumes: map[string]any{
			"mariadb-data":  nil,
			"mongo-data":    nil,
			"redis-data":    nil,
			"rabbitmq-data": nil,
		},
	}
	if err := validatePortSpecs(doc); err != nil {
		return composeFile{}, err
	}
	return doc, nil
}

func loopbackPorts(port int) []string {
	return []string{fmt.Sprintf("127.0.0.1:%d:%d", port, port)}
}

// validatePortSpecs runs every published port through the docker port-spec
// parser before the file is written, rather than letting compose fail later.
func validatePortSpecs(doc composeFile) error {
	names := make([]string, 0, len(doc.Services))
	for name := range doc.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, spec := range doc.Services[name].Ports {
			if _, err := nat.ParsePortSpec(spec); err != nil {
				return fmt.Errorf("service %s: invalid port spec %q: %w", name, spec, err)
			}
		}
	}
	return nil
}

// RenderCompose marshals the compose document into its artifact.
func RenderCompose(cfg DeploymentConfig) (RenderedArtifact, error) {
	doc, err := buildCompose(cfg)
	if err != nil {
		return RenderedArtifact{}, err
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return RenderedArtifact{}, err
	}
	return RenderedArtifact{
		Path: filepath.Join(cfg.Home, "compose.yml"),
		// Interpolated secrets stay in .env; the compose file itself is safe
		// to read for the operator group.
		Content: out,
		Mode:    0o640,
	}, nil
}
