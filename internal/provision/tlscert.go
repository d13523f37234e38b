package provision

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	certFileName = "fullchain.pem"
	keyFileName  = "privkey.pem"
)

// RenderTLSMaterials returns the certificate artifacts for the configured
// TLS mode. Plain HTTP and host-delegated deployments need none.
//
// Self-signed certificates are kept across re-runs: a cert already present
// in the deployment's certs directory is left alone so browser exceptions
// survive routine updates.
func RenderTLSMaterials(cfg DeploymentConfig) ([]RenderedArtifact, error) {
	switch cfg.TLSMode {
	case TLSNone, TLSHostDelegated:
		return nil, nil

	case TLSUserProvided:
		cert, err := os.ReadFile(cfg.CertPath)
		if err != nil {
			return nil, &MissingCertificateError{Path: cfg.CertPath}
		}
		key, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, &MissingCertificateError{Path: cfg.KeyPath}
		}
		return []RenderedArtifact{
			{Path: filepath.Join(cfg.CertsDir(), certFileName), Content: cert, Mode: 0o644},
			{Path: filepath.Join(cfg.CertsDir(), keyFileName), Content: key, Mode: 0o600},
		}, nil

	case TLSSelfSigned:
		certPath := filepath.Join(cfg.CertsDir(), certFileName)
		keyPath := filepath.Join(cfg.CertsDir(), keyFileName)
		if fileExists(certPath) && fileExists(keyPath) {
			return nil, nil
		}
		certPEM, keyPEM, err := selfSignedCert(cfg.PublicHost)
		if err != nil {
			return nil, fmt.Errorf("generate self-signed certificate: %w", err)
		}
		return []RenderedArtifact{
			{Path: certPath, Content: certPEM, Mode: 0o644},
			{Path: keyPath, Content: keyPEM, Mode: 0o600},
		}, nil
	}
	return nil, fmt.Errorf("unknown tls mode %q", cfg.TLSMode)
}

func selfSignedCert(host string) (certPEM, keyPEM []byte, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, err
	}

	tmpl := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: host},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().AddDate(0, 0, 825),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	if ip := net.ParseIP(host); ip != nil {
		tmpl.IPAddresses = []net.IP{ip}
	} else {
		tmpl.DNSNames = []string{host}
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, nil, err
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, err
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, nil
}
