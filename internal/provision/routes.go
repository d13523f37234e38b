package provision

import "time"

// ProxyRoute is one entry in the fixed route table. The table is ordered;
// the first prefix match wins.
type ProxyRoute struct {
	PathPrefix   string
	Upstream     string
	UpstreamPort int
	WebSocket    bool
	Timeout      time.Duration
	Static       bool
}

// agent connections stay idle for long stretches; anything under a day gets
// them disconnected mid-session.
const agentIdleTimeout = 24 * time.Hour

// RouteTable returns the route table for the deployment. Gateway-backed
// paths come before the portal catch-all.
func RouteTable(cfg DeploymentConfig) []ProxyRoute {
	gw := cfg.Ports["gateway"]
	return []ProxyRoute{
		{PathPrefix: "/core/", Upstream: "taskbot-gw", UpstreamPort: gw, Timeout: 300 * time.Second},
		{PathPrefix: "/agentrtc/", Upstream: "taskbot-gw", UpstreamPort: gw, WebSocket: true, Timeout: agentIdleTimeout},
		{PathPrefix: "/agentws/", Upstream: "taskbot-gw", UpstreamPort: gw, WebSocket: true, Timeout: agentIdleTimeout},
		{PathPrefix: "/uploads/", Static: true},
		{PathPrefix: "/", Upstream: "taskbot-portal", UpstreamPort: cfg.Ports["portal"], Timeout: 60 * time.Second},
	}
}
