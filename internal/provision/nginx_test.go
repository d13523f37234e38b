package provision

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func renderConf(t *testing.T, cfg DeploymentConfig) string {
	t.Helper()
	artifacts, err := RenderProxyConfig(cfg)
	if err != nil {
		t.Fatalf("RenderProxyConfig: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected one artifact, got %d", len(artifacts))
	}
	return string(artifacts[0].Content)
}

func TestProxyConfigPlainHTTP(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.TLSMode = TLSNone

	conf := renderConf(t, cfg)
	if strings.Contains(conf, "443") {
		t.Error("plain http config contains a 443 block")
	}
	if strings.Contains(conf, "301") || strings.Contains(conf, "ssl_certificate") {
		t.Error("plain http config contains redirect or tls directives")
	}
	if !strings.Contains(conf, "listen 80;") {
		t.Error("missing port 80 server")
	}
}

func TestProxyConfigSelfSigned(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.TLSMode = TLSSelfSigned

	conf := renderConf(t, cfg)
	if !strings.Contains(conf, "return 301 https://taskbot.example.com$request_uri;") {
		t.Errorf("missing http to https redirect:\n%s", conf)
	}
	if !strings.Contains(conf, "listen 443 ssl;") {
		t.Error("missing 443 server block")
	}
	if !strings.Contains(conf, "fullchain.pem") || !strings.Contains(conf, "privkey.pem") {
		t.Error("missing certificate references")
	}
}

func TestProxyConfigWebSocketRoutes(t *testing.T) {
	cfg := testConfig(t.TempDir())
	conf := renderConf(t, cfg)

	// /agentws/ must carry upgrade headers and a >= 24h idle timeout.
	wsBlock := locationBlock(t, conf, "/agentws/")
	if !strings.Contains(wsBlock, "proxy_set_header Upgrade $http_upgrade;") {
		t.Error("/agentws/ missing Upgrade header")
	}
	if !strings.Contains(wsBlock, `proxy_set_header Connection "upgrade";`) {
		t.Error("/agentws/ missing Connection header")
	}
	if !strings.Contains(wsBlock, "proxy_read_timeout 86400s;") {
		t.Errorf("/agentws/ timeout wrong:\n%s", wsBlock)
	}

	coreBlock := locationBlock(t, conf, "/core/")
	if !strings.Contains(coreBlock, "proxy_read_timeout 300s;") {
		t.Errorf("/core/ timeout wrong:\n%s", coreBlock)
	}
	if strings.Contains(coreBlock, "Upgrade") {
		t.Error("/core/ should not carry websocket headers")
	}
}

func locationBlock(t *testing.T, conf, prefix string) string {
	t.Helper()
	start := strings.Index(conf, "location "+prefix+" {")
	if start < 0 {
		t.Fatalf("location %s not found in:\n%s", prefix, conf)
	}
	end := strings.Index(conf[start:], "\n\n")
	if end < 0 {
		end = len(conf) - start
	}
	return conf[start : start+end]
}

func TestProxyConfigUserProvidedMissingCert(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.TLSMode = TLSUserProvided
	cfg.CertPath = filepath.Join(cfg.Home, "nope.pem")
	cfg.KeyPath = filepath.Join(cfg.Home, "nope.key")

	artifacts, err := RenderProxyConfig(cfg)
	var merr *MissingCertificateError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MissingCertificateError, got %v", err)
	}
	if len(artifacts) != 0 {
		t.Error("artifacts rendered despite missing certificate")
	}
}

func TestProxyConfigUserProvidedWithExistingCerts(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.TLSMode = TLSUserProvided
	cfg.CertPath = filepath.Join(cfg.Home, "cert.pem")
	cfg.KeyPath = filepath.Join(cfg.Home, "key.pem")
	for _, p := range []string{cfg.CertPath, cfg.KeyPath} {
		if err := os.WriteFile(p, []byte("pem"), 0o600); err != nil {
			t.Fatalf("seed cert file: %v", err)
		}
	}

	conf := renderConf(t, cfg)
	if !strings.Contains(conf, "listen 443 ssl;") {
		t.Error("missing 443 server block")
	}
}

func TestProxyConfigHostDelegated(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.TLSMode = TLSHostDelegated

	artifacts, err := RenderProxyConfig(cfg)
	if err != nil {
		t.Fatalf("RenderProxyConfig: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("expected one artifact, got %d", len(artifacts))
	}
	if filepath.Base(artifacts[0].Path) != "proxy-instructions.yml" {
		t.Fatalf("unexpected artifact %s", artifacts[0].Path)
	}

	var doc struct {
		Host   string `yaml:"host"`
		Routes []struct {
			PathPrefix string `yaml:"path_prefix"`
			Upstream   string `yaml:"upstream"`
			WebSocket  bool   `yaml:"websocket"`
		} `yaml:"routes"`
	}
	if err := yaml.Unmarshal(artifacts[0].Content, &doc); err != nil {
		t.Fatalf("instructions are not valid yaml: %v", err)
	}
	if doc.Host != "taskbot.example.com" {
		t.Errorf("host = %q", doc.Host)
	}

	foundWS := false
	for _, r := range doc.Routes {
		if r.PathPrefix == "/agentws/" {
			foundWS = true
			if !r.WebSocket {
				t.Error("/agentws/ instruction not flagged websocket")
			}
			if !strings.HasPrefix(r.Upstream, "http://127.0.0.1:") {
				t.Errorf("upstream should target loopback, got %q", r.Upstream)
			}
		}
	}
	if !foundWS {
		t.Error("no /agentws/ route in instructions")
	}
}

func TestRouteTableOrderAndTimeouts(t *testing.T) {
	cfg := testConfig("/srv/taskbot")
	routes := RouteTable(cfg)

	if routes[len(routes)-1].PathPrefix != "/" {
		t.Error("catch-all route must come last")
	}
	for _, r := range routes {
		switch r.PathPrefix {
		case "/agentws/", "/agentrtc/":
			if !r.WebSocket {
				t.Errorf("%s not flagged websocket", r.PathPrefix)
			}
			if r.Timeout.Hours() < 24 {
				t.Errorf("%s timeout %v < 24h", r.PathPrefix, r.Timeout)
			}
		case "/core/":
			if r.Timeout.Seconds() != 300 {
				t.Errorf("/core/ timeout = %v", r.Timeout)
			}
		}
	}
}
