package sshserver

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"

	"github.com/marmos91/glasshouse/internal/logger"
)

// hostKeyFiles names each key file expected under the configured key folder.
var hostKeyFiles = map[string]func() (any, string, error){
	"ed25519": generateEd25519,
	"rsa":     generateRSA,
	"ecdsa":   generateECDSA,
}

// LoadHostKeys returns one ssh.Signer per supported algorithm, loading each
// from <keyFolder>/<name> when present and parseable, generating and
// persisting a fresh key otherwise. A folder that cannot be written to still
// yields working, ephemeral keys; persistence failures only downgrade to
// in-memory keys, logged as a warning.
func LoadHostKeys(keyFolder string) ([]ssh.Signer, error) {
	var signers []ssh.Signer
	for name, generate := range hostKeyFiles {
		path := filepath.Join(keyFolder, name)
		if signer, ok := loadHostKey(path); ok {
			signers = append(signers, signer)
			continue
		}

		key, pemType, err := generate()
		if err != nil {
			return nil, fmt.Errorf("generate %s host key: %w", name, err)
		}
		keyData, err := encodePrivateKey(key, pemType)
		if err != nil {
			return nil, fmt.Errorf("encode %s host key: %w", name, err)
		}
		if err := os.MkdirAll(keyFolder, 0700); err != nil {
			logger.Warn("could not create key folder, using ephemeral host key", logger.Err(err))
		} else if err := os.WriteFile(path, keyData, 0600); err != nil {
			logger.Warn("could not persist host key, using ephemeral host key", logger.Err(err))
		}

		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, fmt.Errorf("parse generated %s host key: %w", name, err)
		}
		logger.Info("generated host key", "algorithm", name, "path", path)
		signers = append(signers, signer)
	}
	return signers, nil
}

func loadHostKey(path string) (ssh.Signer, bool) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		logger.Warn("unreadable host key file, regenerating", logger.Path(path), logger.Err(err))
		return nil, false
	}
	return signer, true
}

func generateEd25519() (any, string, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", err
	}
	return priv, "", nil
}

func generateRSA() (any, string, error) {
	key, err := rsa.GenerateKey(rand.Reader, 4096)
	if err != nil {
		return nil, "", err
	}
	return key, "RSA PRIVATE KEY", nil
}

func generateECDSA() (any, string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
	if err != nil {
		return nil, "", err
	}
	return key, "EC PRIVATE KEY", nil
}

func encodePrivateKey(key any, pemType string) ([]byte, error) {
	switch k := key.(type) {
	case ed25519.PrivateKey:
		der, err := x509.MarshalPKCS8PrivateKey(k)
		if err != nil {
			return nil, err
		}
		return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
	case *rsa.PrivateKey:
		return pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: x509.MarshalPKCS1PrivateKey(k)}), nil
	case *ecdsa.PrivateKey:
		der, err := x509.MarshalECPrivateKey(k)
		if err != nil {
			return nil, err
		}
		return pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: der}), nil
	default:
		return nil, fmt.Errorf("unsupported key type %T", key)
	}
}
