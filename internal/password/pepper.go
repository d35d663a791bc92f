package password

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	vaultapi "github.com/hashicorp/vault/api"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
)

const pepperSize = 32

// PepperStore loads the process-wide pepper mixed into every password
// hash before salt/PBKDF2 (spec.md §4.5).
type PepperStore interface {
	Pepper() ([]byte, error)
}

// FilePepperStore loads a pepper from a local file, creating one with
// fresh random bytes on first use.
type FilePepperStore struct {
	path string
}

// NewFilePepperStore returns a store backed by path.
func NewFilePepperStore(path string) *FilePepperStore {
	return &FilePepperStore{path: path}
}

// Pepper returns the stored pepper, creating the file with a fresh
// 32-byte value if it does not exist yet.
func (s *FilePepperStore) Pepper() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err == nil {
		if len(data) != pepperSize {
			return nil, fmt.Errorf("%w: pepper file %q has %d bytes, want %d", ErrPepperUnavailable, s.path, len(data), pepperSize)
		}
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %v", ErrPepperUnavailable, err)
	}

	pepper, err := crypto.RandomBytes(pepperSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPepperUnavailable, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPepperUnavailable, err)
	}
	if err := os.WriteFile(s.path, pepper, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPepperUnavailable, err)
	}
	return pepper, nil
}

// VaultPepperStore loads the pepper from a HashiCorp Vault KV secret,
// mirroring the teacher's VaultClient wiring in internal/config.
type VaultPepperStore struct {
	client     *vaultapi.Client
	mountPath  string
	secretPath string
	secretKey  string
}

// NewVaultPepperStore connects to Vault at addr using token, reading the
// pepper from secretPath under mountPath's KV-v2 mount, field secretKey.
func NewVaultPepperStore(addr, token, mountPath, secretPath, secretKey string) (*VaultPepperStore, error) {
	cfg := &vaultapi.Config{Address: addr}
	client, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: create vault client: %v", ErrPepperUnavailable, err)
	}
	client.SetToken(token)

	return &VaultPepperStore{
		client:     client,
		mountPath:  mountPath,
		secretPath: secretPath,
		secretKey:  secretKey,
	}, nil
}

// Pepper fetches the pepper from Vault: the secret field is expected to
// hold the 32 pepper bytes encoded as standard, padded base64.
func (s *VaultPepperStore) Pepper() ([]byte, error) {
	secret, err := s.client.KVv2(s.mountPath).Get(context.Background(), s.secretPath)
	if err != nil {
		return nil, fmt.Errorf("%w: vault read: %v", ErrPepperUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("%w: no secret at %s/%s", ErrPepperUnavailable, s.mountPath, s.secretPath)
	}

	raw, ok := secret.Data[s.secretKey].(string)
	if !ok {
		return nil, fmt.Errorf("%w: field %q not found or not a string", ErrPepperUnavailable, s.secretKey)
	}

	pepper := decodePepperField(raw)
	if len(pepper) != pepperSize {
		return nil, fmt.Errorf("%w: vault pepper has %d bytes, want %d", ErrPepperUnavailable, len(pepper), pepperSize)
	}
	return pepper, nil
}
