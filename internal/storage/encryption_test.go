package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptData(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
		password  string
	}{
		{name: "simple text", plaintext: "final score 62-50", password: "courtside"},
		{name: "empty", plaintext: "", password: "courtside"},
		{name: "binary-ish", plaintext: string(make([]byte, 4096)), password: "s3ason-2026"},
		{name: "unicode", plaintext: "Sharks vs Wildcats — 加时赛 🏀", password: "pässwörd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultEncryptionConfig(tt.password)

			encrypted, err := EncryptData([]byte(tt.plaintext), config)
			if err != nil {
				t.Fatalf("failed to encrypt: %v", err)
			}
			if bytes.Contains(encrypted, []byte("score")) && tt.plaintext != "" {
				t.Error("ciphertext leaks plaintext")
			}

			decrypted, err := DecryptData(encrypted, config)
			if err != nil {
				t.Fatalf("failed to decrypt: %v", err)
			}
			if string(decrypted) != tt.plaintext {
				t.Errorf("round trip mismatch: got %q, want %q", decrypted, tt.plaintext)
			}
		})
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	encrypted, err := EncryptData([]byte("league secrets"), DefaultEncryptionConfig("right"))
	if err != nil {
		t.Fatalf("failed to encrypt: %v", err)
	}

	if _, err := DecryptData(encrypted, DefaultEncryptionConfig("wrong")); err == nil {
		t.Error("expected decryption with the wrong password to fail")
	}
}

func TestEncryptRequiresPassword(t *testing.T) {
	if _, err := EncryptData([]byte("data"), nil); err == nil {
		t.Error("expected nil config to be rejected")
	}
	if _, err := EncryptData([]byte("data"), &EncryptionConfig{}); err == nil {
		t.Error("expected empty password to be rejected")
	}
}

func TestDecryptCorrupted(t *testing.T) {
	config := DefaultEncryptionConfig("courtside")
	encrypted, err := EncryptData([]byte("final score 62-50"), config)
	if err != nil {
		t.Fatalf("failed to encrypt: %v", err)
	}

	encrypted[len(encrypted)-1] ^= 0xFF
	if _, err := DecryptData(encrypted, config); err == nil {
		t.Error("expected corrupted ciphertext to fail authentication")
	}

	if _, err := DecryptData([]byte("short"), config); err == nil {
		t.Error("expected truncated input to be rejected")
	}
}

func TestEncryptDecryptFile(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "scorebook.db")
	encryptedPath := filepath.Join(dir, "scorebook.db.enc")
	decryptedPath := filepath.Join(dir, "restored.db")

	content := []byte("pretend this is a database file")
	if err := os.WriteFile(sourcePath, content, 0o600); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	config := DefaultEncryptionConfig("courtside")
	if err := EncryptFile(sourcePath, encryptedPath, config); err != nil {
		t.Fatalf("failed to encrypt file: %v", err)
	}

	isEnc, err := IsEncrypted(encryptedPath)
	if err != nil {
		t.Fatalf("failed to probe encrypted file: %v", err)
	}
	if !isEnc {
		t.Error("expected encrypted file to carry the magic header")
	}

	isEnc, err = IsEncrypted(sourcePath)
	if err != nil {
		t.Fatalf("failed to probe plain file: %v", err)
	}
	if isEnc {
		t.Error("expected plain file to not look encrypted")
	}

	if err := DecryptFile(sourcePath, decryptedPath, config); err == nil {
		t.Error("expected decrypting a plain file to fail")
	}

	if err := DecryptFile(encryptedPath, decryptedPath, config); err != nil {
		t.Fatalf("failed to decrypt file: %v", err)
	}
	restored, err := os.ReadFile(decryptedPath)
	if err != nil {
		t.Fatalf("failed to read decrypted file: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Errorf("round trip mismatch: got %q, want %q", restored, content)
	}
}
