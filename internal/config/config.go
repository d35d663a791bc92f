// Package config loads the crypto toolbox's runtime knobs from
// environment files and variables, the same layered loading idiom the
// teacher's server config uses (godotenv base/overlay/local files),
// adapted from server connection strings to toolbox parameters: default
// AEAD algorithm, PBKDF2 iteration count, session-store path, and
// pepper-file path, with an optional HashiCorp Vault-backed pepper.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
	"github.com/jaydenbeard/silentrelay-crypto/internal/password"
)

var logger = log.New(os.Stdout, "[CONFIG] ", log.Ldate|log.Ltime|log.LUTC)

// Config holds the knobs the crypto toolbox needs at startup
// (spec.md §4.6/§4.7 demo entrypoint).
type Config struct {
	// DefaultAlgo is the AEAD cipher the file codec uses when the
	// caller does not pick one explicitly.
	DefaultAlgo crypto.Algorithm

	// PasswordIterations is the PBKDF2-HMAC-SHA-512 round count used by
	// the password codec (spec.md §4.5).
	PasswordIterations int

	// SessionStorePath is the file the session store persists to.
	SessionStorePath string

	// PepperFilePath is the local pepper file used when no Vault
	// settings are present.
	PepperFilePath string

	VaultAddr       string
	VaultToken      string
	VaultMountPath  string
	VaultSecretPath string
	VaultSecretKey  string
}

// loadEnvFiles loads environment files in the same order the teacher
// server does: base .env, then an environment-specific overlay, then
// local overrides. Missing files are not errors.
func loadEnvFiles() {
	_ = godotenv.Load()

	if env := os.Getenv("APP_ENV"); env != "" {
		_ = godotenv.Load(".env." + env)
	}

	_ = godotenv.Load(".env.local")
}

// Load reads Config from the environment, applying the same defaults a
// fresh checkout needs to run the demo immediately.
func Load() *Config {
	loadEnvFiles()

	algo, err := parseAlgo(getEnv("SILENTRELAY_DEFAULT_ALGO", "AES_256_GCM"))
	if err != nil {
		logger.Printf("Warning: %v, falling back to AES_256_GCM", err)
		algo = crypto.AlgoAES256GCM
	}

	cfg := &Config{
		DefaultAlgo:        algo,
		PasswordIterations: int(getEnvInt64("SILENTRELAY_PASSWORD_ITERATIONS", password.DefaultIterations)),
		SessionStorePath:   getEnv("SILENTRELAY_SESSION_STORE", "./silentrelay-sessions.db"),
		PepperFilePath:     getEnv("SILENTRELAY_PEPPER_FILE", "./silentrelay-pepper.bin"),
		VaultAddr:          os.Getenv("VAULT_ADDR"),
		VaultToken:         os.Getenv("VAULT_TOKEN"),
		VaultMountPath:     getEnv("VAULT_MOUNT_PATH", "secret"),
		VaultSecretPath:    getEnv("VAULT_SECRET_PATH", "silentrelay/pepper"),
		VaultSecretKey:     getEnv("VAULT_SECRET_KEY", "pepper"),
	}

	logger.Printf("Loaded config: algo=%s password_iterations=%d session_store=%s",
		cfg.DefaultAlgo, cfg.PasswordIterations, cfg.SessionStorePath)

	return cfg
}

// PepperStore builds the password.PepperStore this config describes:
// Vault-backed when VaultAddr and VaultToken are both set, a local file
// otherwise.
func (c *Config) PepperStore() (password.PepperStore, error) {
	if c.VaultAddr != "" && c.VaultToken != "" {
		logger.Printf("Using Vault pepper store at %s", c.VaultAddr)
		store, err := password.NewVaultPepperStore(c.VaultAddr, c.VaultToken, c.VaultMountPath, c.VaultSecretPath, c.VaultSecretKey)
		if err != nil {
			return nil, fmt.Errorf("config: vault pepper store: %w", err)
		}
		return store, nil
	}

	logger.Printf("Using file pepper store at %s", c.PepperFilePath)
	return password.NewFilePepperStore(c.PepperFilePath), nil
}

func parseAlgo(name string) (crypto.Algorithm, error) {
	switch name {
	case "AES_256_GCM":
		return crypto.AlgoAES256GCM, nil
	case "CHACHA20_POLY1305":
		return crypto.AlgoChaCha20Poly1305, nil
	case "XCHACHA20_POLY1305":
		return crypto.AlgoXChaCha20Poly1305, nil
	default:
		return 0, fmt.Errorf("config: unknown algorithm name %q", name)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
