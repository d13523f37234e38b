package tui

import "github.com/nucleusenterpriseai/nucleus-taskbot-agent/internal/provision"

// resolveTLSMode implements the TLS selection flow: an existing host proxy
// wins over everything, then the HTTPS choice, then whether the operator
// brings their own certificate.
func resolveTLSMode(useExistingProxy, wantHTTPS, ownCerts bool) provision.TLSMode {
	if useExistingProxy {
		return provision.TLSHostDelegated
	}
	if !wantHTTPS {
		return provision.TLSNone
	}
	if ownCerts {
		return provision.TLSUserProvided
	}
	return provision.TLSSelfSigned
}
