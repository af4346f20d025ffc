package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// EncryptionMagicHeader marks a file as an encrypted scorebook backup.
const EncryptionMagicHeader = "SCORENC1"

const (
	// Argon2id parameters per RFC 9106.
	defaultArgon2Time    = 1
	defaultArgon2Memory  = 64 * 1024 // KiB
	defaultArgon2Threads = 4
	argon2KeyLen         = 32 // AES-256

	saltLength = 32
)

// EncryptionConfig holds the password and key-derivation cost for
// encrypted backups.
type EncryptionConfig struct {
	Password string

	// Argon2 cost knobs. Zero values fall back to the defaults.
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultEncryptionConfig returns an encryption config with the
// standard cost parameters.
func DefaultEncryptionConfig(password string) *EncryptionConfig {
	return &EncryptionConfig{
		Password: password,
		Time:     defaultArgon2Time,
		Memory:   defaultArgon2Memory,
		Threads:  defaultArgon2Threads,
	}
}

func (c *EncryptionConfig) costs() (uint32, uint32, uint8) {
	t, m, p := c.Time, c.Memory, c.Threads
	if t == 0 {
		t = defaultArgon2Time
	}
	if m == 0 {
		m = defaultArgon2Memory
	}
	if p == 0 {
		p = defaultArgon2Threads
	}
	return t, m, p
}

// deriveKey stretches the password into an AES-256 key with argon2id.
func deriveKey(config *EncryptionConfig, salt []byte) []byte {
	t, m, p := config.costs()
	return argon2.IDKey([]byte(config.Password), salt, t, m, p, argon2KeyLen)
}

func aeadFor(config *EncryptionConfig, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(config, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

// EncryptData seals plaintext with AES-256-GCM under a key derived from
// the config password. Output layout: salt || nonce || ciphertext.
func EncryptData(plaintext []byte, config *EncryptionConfig) ([]byte, error) {
	if config == nil || config.Password == "" {
		return nil, fmt.Errorf("encryption password required")
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := aeadFor(config, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// DecryptData opens data produced by EncryptData. A wrong password and
// corrupted data are indistinguishable; both fail authentication.
func DecryptData(encrypted []byte, config *EncryptionConfig) ([]byte, error) {
	if config == nil || config.Password == "" {
		return nil, fmt.Errorf("encryption password required")
	}
	if len(encrypted) < saltLength {
		return nil, fmt.Errorf("encrypted data too short")
	}

	salt, rest := encrypted[:saltLength], encrypted[saltLength:]
	gcm, err := aeadFor(config, salt)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(rest) < nonceSize+gcm.Overhead() {
		return nil, fmt.Errorf("encrypted data too short")
	}
	nonce, sealed := rest[:nonceSize], rest[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong password or corrupted data): %w", err)
	}
	return plaintext, nil
}

// EncryptFile writes an encrypted copy of sourcePath to destPath,
// prefixed with the magic header.
func EncryptFile(sourcePath, destPath string, config *EncryptionConfig) error {
	plaintext, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	encrypted, err := EncryptData(plaintext, config)
	if err != nil {
		return err
	}

	out := make([]byte, 0, len(EncryptionMagicHeader)+len(encrypted))
	out = append(out, EncryptionMagicHeader...)
	out = append(out, encrypted...)

	if err := os.WriteFile(destPath, out, 0o600); err != nil {
		return fmt.Errorf("failed to write encrypted file: %w", err)
	}
	return nil
}

// DecryptFile writes the decrypted contents of sourcePath to destPath.
func DecryptFile(sourcePath, destPath string, config *EncryptionConfig) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read encrypted file: %w", err)
	}

	if len(data) < len(EncryptionMagicHeader) || string(data[:len(EncryptionMagicHeader)]) != EncryptionMagicHeader {
		return fmt.Errorf("file is not an encrypted scorebook backup")
	}

	plaintext, err := DecryptData(data[len(EncryptionMagicHeader):], config)
	if err != nil {
		return err
	}

	if err := os.WriteFile(destPath, plaintext, 0o600); err != nil {
		return fmt.Errorf("failed to write decrypted file: %w", err)
	}
	return nil
}

// IsEncrypted reports whether the file starts with the encrypted
// backup magic header.
func IsEncrypted(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() {
		//nolint:errcheck // read side
		_ = file.Close()
	}()

	header := make([]byte, len(EncryptionMagicHeader))
	n, err := io.ReadFull(file, header)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n == len(EncryptionMagicHeader) && string(header) == EncryptionMagicHeader, nil
}
