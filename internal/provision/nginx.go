package provision

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"gopkg.in/yaml.v3"
)

const nginxTemplate = `{{ define "routes" -}}
{{ range .Routes }}    location {{ .Prefix }} {
{{- if .Static }}
        alias /var/www/uploads/;
        autoindex off;
{{- else }}
        proxy_pass http://{{ .Upstream }}:{{ .Port }};
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto {{ $.Scheme }};
{{- if .WebSocket }}
        proxy_http_version 1.1;
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection "upgrade";
{{- end }}
        proxy_read_timeout {{ .TimeoutSecs }}s;
        proxy_send_timeout {{ .TimeoutSecs }}s;
{{- end }}
    }

{{ end }}{{- end -}}
{{ if .TLS -}}
server {
    listen 80;
    server_name {{ .Host }};
    return 301 https://{{ .Host }}$request_uri;
}

server {
    listen 443 ssl;
    server_name {{ .Host }};

    ssl_certificate /etc/nginx/certs/fullchain.pem;
    ssl_certificate_key /etc/nginx/certs/privkey.pem;
    ssl_protocols TLSv1.2 TLSv1.3;

    client_max_body_size 200m;

{{ template "routes" . }}}
{{ else -}}
server {
    listen 80;
    server_name {{ .Host }};

    client_max_body_size 200m;

{{ template "routes" . }}}
{{ end -}}
`

type nginxRoute struct {
	Prefix      string
	Upstream    string
	Port        int
	WebSocket   bool
	Static      bool
	TimeoutSecs int
}

type nginxData struct {
	Host   string
	Scheme string
	TLS    bool
	Routes []nginxRoute
}

func renderTemplate(text string, data any) ([]byte, error) {
	tmpl, err := template.New("").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// delegatedProxyDoc is the machine-readable hand-off written instead of an
// nginx config when an externally managed proxy terminates TLS.
type delegatedProxyDoc struct {
	Host   string              `yaml:"host"`
	Note   string              `yaml:"note"`
	Routes []delegatedRouteDoc `yaml:"routes"`
}

type delegatedRouteDoc struct {
	PathPrefix string `yaml:"path_prefix"`
	Upstream   string `yaml:"upstream,omitempty"`
	WebSocket  bool   `yaml:"websocket,omitempty"`
	Static     string `yaml:"static_dir,omitempty"`
}

// RenderProxyConfig derives the reverse-proxy artifacts from the config.
//
// For host-delegated TLS it emits proxy-instructions.yml for the operator
// to merge into their own proxy; the compose generator separately omits the
// proxy container so no privileged port is bound. For user-provided TLS the
// certificate paths are checked before anything is rendered.
func RenderProxyConfig(cfg DeploymentConfig) ([]RenderedArtifact, error) {
	routes := RouteTable(cfg)

	if cfg.TLSMode == TLSHostDelegated {
		doc := delegatedProxyDoc{
			Host: cfg.PublicHost,
			Note: "merge these routes into the host-managed reverse proxy; the stack does not bind ports 80/443",
		}
		for _, r := range routes {
			d := delegatedRouteDoc{PathPrefix: r.PathPrefix, WebSocket: r.WebSocket}
			if r.Static {
				d.Static = filepath.Join(cfg.Home, "uploads")
			} else {
				d.Upstream = fmt.Sprintf("http://127.0.0.1:%d", r.UpstreamPort)
			}
			doc.Routes = append(doc.Routes, d)
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return []RenderedArtifact{
			{Path: filepath.Join(cfg.Home, "proxy-instructions.yml"), Content: out, Mode: 0o640},
		}, nil
	}

	if cfg.TLSMode == TLSUserProvided {
		for _, p := range []string{cfg.CertPath, cfg.KeyPath} {
			if _, err := os.Stat(p); err != nil {
				return nil, &MissingCertificateError{Path: p}
			}
		}
	}

	data := nginxData{
		Host:   cfg.PublicHost,
		Scheme: cfg.Scheme(),
		TLS:    cfg.TLSMode != TLSNone,
	}
	for _, r := range routes {
		data.Routes = append(data.Routes, nginxRoute{
			Prefix:      r.PathPrefix,
			Upstream:    r.Upstream,
			Port:        r.UpstreamPort,
			WebSocket:   r.WebSocket,
			Static:      r.Static,
			TimeoutSecs: int(r.Timeout.Seconds()),
		})
	}

	out, err := renderTemplate(nginxTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("render proxy config: %w", err)
	}
	return []RenderedArtifact{
		{Path: filepath.Join(cfg.NginxDir(), "taskbot.conf"), Content: out, Mode: 0o640},
	}, nil
}
