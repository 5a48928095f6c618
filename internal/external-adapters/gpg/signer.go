package gpg

import (
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// Signer produces armored detached signatures with a single private key
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads the first private key of a keyring file and
// decrypts it with passphrase when it is protected.
func NewSignerFromFile(keyPath string, passphrase []byte) (*Signer, error) {
	entities, err := readKeyRingFile(keyPath)
	if err != nil {
		return nil, err
	}

	entity := entities[0]
	if entity.PrivateKey == nil {
		return nil, fmt.Errorf("key file %s does not contain a private key", keyPath)
	}

	if entity.PrivateKey.Encrypted {
		if len(passphrase) == 0 {
			return nil, fmt.Errorf("private key is encrypted and no passphrase was given")
		}
		if err := entity.PrivateKey.Decrypt(passphrase); err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
		for _, sub := range entity.Subkeys {
			if sub.PrivateKey != nil && sub.PrivateKey.Encrypted {
				if err := sub.PrivateKey.Decrypt(passphrase); err != nil {
					return nil, fmt.Errorf("failed to decrypt subkey: %w", err)
				}
			}
		}
	}

	return &Signer{entity: entity}, nil
}

// NewSigner wraps an already decrypted entity
func NewSigner(entity *openpgp.Entity) *Signer {
	return &Signer{entity: entity}
}

// KeyID returns the signing key fingerprint in hex
func (s *Signer) KeyID() string {
	return fmt.Sprintf("%X", s.entity.PrimaryKey.Fingerprint)
}

// SignFile writes an armored detached signature of filePath to sigPath
func (s *Signer) SignFile(filePath, sigPath string) error {
	//nolint:gosec // G304: filePath is the package archive being published
	data, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file to sign: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer data.Close()

	//nolint:gosec // G304: sigPath is derived from the archive path
	out, err := os.Create(sigPath)
	if err != nil {
		return fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(out, s.entity, data, nil); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to sign %s: %w", filePath, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to write signature file: %w", err)
	}

	return nil
}
