// Package seal obscures stored text at rest with AES-256-GCM. The service
// fails open: a seal failure falls back to plaintext plus a best-effort
// local backup write, and an open failure surfaces the sealed input
// unchanged so history stays visible even when unreadable.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"curatord/pkg/logger"
)

// Sealer holds the master key and the backup directory for seal-failure
// fallbacks. A nil or short key leaves sealing disabled (plaintext
// pass-through).
type Sealer struct {
	key       []byte
	backupDir string
}

// New returns a sealer for a 32-byte AES-256 key. Keys of any other
// length disable sealing.
func New(key []byte, backupDir string) *Sealer {
	s := &Sealer{backupDir: backupDir}
	if len(key) == 32 {
		s.key = key
	} else if len(key) != 0 {
		logger.Warn("seal_key_invalid_length", "len", len(key))
	}
	return s
}

// Enabled reports whether a usable master key is configured.
func (s *Sealer) Enabled() bool { return len(s.key) == 32 }

// Seal encrypts text and returns base64(nonce|ciphertext). On any failure
// it writes a timestamped backup of the plaintext and returns the
// plaintext itself; callers never lose a message to a seal error.
func (s *Sealer) Seal(text string) (sealed string, ok bool) {
	out, err := s.seal([]byte(text))
	if err != nil {
		logger.Error("seal_failed", "error", err)
		s.saveBackup(text)
		return text, false
	}
	return base64.StdEncoding.EncodeToString(out), true
}

func (s *Sealer) seal(plaintext []byte) ([]byte, error) {
	if !s.Enabled() {
		return nil, errors.New("no master key configured")
	}
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := gcm.Seal(nil, nonce, plaintext, nil)
	// Prepend nonce for storage.
	return append(nonce, out...), nil
}

// Open decrypts base64(nonce|ciphertext). On any failure the input is
// returned unchanged.
func (s *Sealer) Open(sealed string) string {
	if !s.Enabled() {
		return sealed
	}
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return sealed
	}
	pt, err := s.open(data)
	if err != nil {
		logger.Debug("open_failed", "error", err)
		return sealed
	}
	return string(pt)
}

func (s *Sealer) open(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	ns := gcm.NonceSize()
	if len(data) < ns {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, data[:ns], data[ns:], nil)
}

// saveBackup writes the plaintext to a timestamped file so a failed seal
// never drops content. Best effort.
func (s *Sealer) saveBackup(text string) {
	if s.backupDir == "" {
		return
	}
	if err := os.MkdirAll(s.backupDir, 0o700); err != nil {
		logger.Error("seal_backup_dir_failed", "error", err)
		return
	}
	name := fmt.Sprintf("backup_%s.txt", time.Now().UTC().Format("20060102_150405.000000000"))
	path := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		logger.Error("seal_backup_write_failed", "path", path, "error", err)
		return
	}
	logger.Info("seal_backup_saved", "path", path)
}
