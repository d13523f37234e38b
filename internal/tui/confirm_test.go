package tui

import "testing"

func TestConfirmBackScreen(t *testing.T) {
	tests := []struct {
		name  string
		state wizardState
		want  screen
	}{
		{"from existing-proxy question", wizardState{useExistingProxy: true}, screenProxyConfirm},
		{"from https question", wizardState{wantHTTPS: false}, screenHTTPSConfirm},
		{"from cert source", wizardState{wantHTTPS: true, ownCerts: false}, screenTLSSelect},
		{"from cert paths", wizardState{wantHTTPS: true, ownCerts: true}, screenCertInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := confirmBackScreen(&tt.state); got != tt.want {
				t.Errorf("confirmBackScreen = %d, want %d", got, tt.want)
			}
		})
	}
}
