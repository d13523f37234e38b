package tui

import (
	"testing"

	"github.com/nucleusenterpriseai/nucleus-taskbot-agent/internal/provision"
)

func TestResolveTLSMode(t *testing.T) {
	tests := []struct {
		name             string
		useExistingProxy bool
		wantHTTPS        bool
		ownCerts         bool
		want             provision.TLSMode
	}{
		{"existing proxy wins", true, false, false, provision.TLSHostDelegated},
		{"existing proxy wins over https", true, true, true, provision.TLSHostDelegated},
		{"plain http", false, false, false, provision.TLSNone},
		{"https with own certs", false, true, true, provision.TLSUserProvided},
		{"https without certs", false, true, false, provision.TLSSelfSigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveTLSMode(tt.useExistingProxy, tt.wantHTTPS, tt.ownCerts)
			if got != tt.want {
				t.Errorf("resolveTLSMode(%v, %v, %v) = %s, want %s",
					tt.useExistingProxy, tt.wantHTTPS, tt.ownCerts, got, tt.want)
			}
		})
	}
}
