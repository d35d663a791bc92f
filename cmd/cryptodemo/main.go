// Command cryptodemo is a non-networked walkthrough of the crypto
// toolbox: it runs an X3DH handshake between two local participants,
// exchanges a handful of in-order and out-of-order ratcheted messages,
// round-trips a file through the file codec, and hashes/verifies a
// password, printing a short report as it goes. It is the in-repo
// analogue of the teacher's cmd/* server entrypoints, adapted from a
// listening service to a one-shot demonstration binary.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/jaydenbeard/silentrelay-crypto/internal/config"
	"github.com/jaydenbeard/silentrelay-crypto/internal/crypto"
	"github.com/jaydenbeard/silentrelay-crypto/internal/filecodec"
	"github.com/jaydenbeard/silentrelay-crypto/internal/identity"
	"github.com/jaydenbeard/silentrelay-crypto/internal/password"
	"github.com/jaydenbeard/silentrelay-crypto/internal/session"
	"github.com/jaydenbeard/silentrelay-crypto/internal/store"
)

var logger = log.New(os.Stdout, "[CRYPTODEMO] ", log.Ldate|log.Ltime|log.LUTC)

func main() {
	cfg := config.Load()

	if err := runSessionDemo(cfg); err != nil {
		logger.Fatalf("session demo failed: %v", err)
	}
	if err := runFileCodecDemo(cfg); err != nil {
		logger.Fatalf("file codec demo failed: %v", err)
	}
	if err := runPasswordDemo(cfg); err != nil {
		logger.Fatalf("password demo failed: %v", err)
	}
}

// runSessionDemo establishes a session between two participants, Alice
// and Bob, then sends a few messages out of order to exercise the skip
// cache, and persists the result to cfg.SessionStorePath.
func runSessionDemo(cfg *config.Config) error {
	aliceKeys, err := identity.GenerateIdentity()
	if err != nil {
		return err
	}
	bobKeys, err := identity.GenerateIdentity()
	if err != nil {
		return err
	}

	bobStore := identity.NewPreKeyStore(bobKeys, 1, identity.NewDeviceID())
	if err := bobStore.RotateSignedPreKey(); err != nil {
		return err
	}
	if _, err := bobStore.GenerateOneTimePreKeys(5); err != nil {
		return err
	}

	bobBundle, err := bobStore.Bundle(true)
	if err != nil {
		return err
	}

	var usedOneTime *identity.OneTimePreKey
	if bobBundle.HasOneTimePreKey() {
		usedOneTime, _ = bobStore.TakeReservedPreKey(bobBundle.PreKeyID)
	}

	alice := session.NewManager(store.NewFileStore(cfg.SessionStorePath))
	bob := session.NewManager(store.NewFileStore(cfg.SessionStorePath + ".bob"))

	ephemeralPub, err := alice.InitSession(aliceKeys, "bob", bobBundle)
	if err != nil {
		return fmt.Errorf("alice initSession: %w", err)
	}
	if err := bob.CompleteHandshake(bobKeys, bobStore.Signed, usedOneTime, "alice", aliceKeys.Public(), ephemeralPub); err != nil {
		return fmt.Errorf("bob completeHandshake: %w", err)
	}
	logger.Printf("handshake complete, sessions active")

	var envelopes [][]byte
	for _, msg := range []string{"hello", "how are you", "this arrives out of order"} {
		env, err := alice.EncryptMessage("bob", []byte(msg))
		if err != nil {
			return fmt.Errorf("alice encrypt %q: %w", msg, err)
		}
		envelopes = append(envelopes, env)
	}

	// Deliver out of order: 2nd, 1st, 3rd.
	order := []int{1, 0, 2}
	for _, i := range order {
		plaintext, err := bob.DecryptMessage("alice", envelopes[i])
		if err != nil {
			return fmt.Errorf("bob decrypt message %d: %w", i, err)
		}
		logger.Printf("bob decrypted message %d: %q", i, plaintext)
	}

	return nil
}

// runFileCodecDemo writes a small plaintext file, encrypts it, decrypts
// it back, and verifies the round trip.
func runFileCodecDemo(cfg *config.Config) error {
	dir, err := os.MkdirTemp("", "cryptodemo-filecodec")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	plainPath := dir + "/plain.txt"
	cipherPath := dir + "/cipher.bin"
	roundTripPath := dir + "/roundtrip.txt"

	plaintext := []byte("the quick brown fox jumps over the lazy dog")
	if err := os.WriteFile(plainPath, plaintext, 0o600); err != nil {
		return err
	}

	key, err := crypto.RandomBytes(crypto.KeySize)
	if err != nil {
		return err
	}
	ctx, err := filecodec.NewContext(cfg.DefaultAlgo, key)
	if err != nil {
		return err
	}
	defer ctx.Close()

	if err := filecodec.EncryptFile(plainPath, cipherPath, ctx); err != nil {
		return err
	}
	if err := filecodec.DecryptFile(cipherPath, roundTripPath, ctx); err != nil {
		return err
	}

	got, err := os.ReadFile(roundTripPath)
	if err != nil {
		return err
	}
	if string(got) != string(plaintext) {
		return fmt.Errorf("file codec round trip mismatch")
	}
	logger.Printf("file codec round trip ok (%s, %d bytes)", cfg.DefaultAlgo, len(plaintext))
	return nil
}

// runPasswordDemo encodes and verifies a password using cfg's pepper
// store and iteration count.
func runPasswordDemo(cfg *config.Config) error {
	peppers, err := cfg.PepperStore()
	if err != nil {
		return err
	}

	enc := password.NewEncoder(peppers, cfg.PasswordIterations)

	encoded, err := enc.Encode("correct horse battery staple")
	if err != nil {
		return err
	}

	ok, err := enc.Matches("correct horse battery staple", encoded)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("password did not match its own encoding")
	}

	ok, err = enc.Matches("wrong password", encoded)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("unrelated password incorrectly matched")
	}

	logger.Printf("password codec ok: %s", encoded)
	return nil
}
