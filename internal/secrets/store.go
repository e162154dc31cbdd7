// Package secrets keeps small per-install secrets in a 0600 file, sealed
// with AES-GCM under a key derived from the host user. It is obfuscation
// against casual reads, not a keychain.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const fileName = "secrets.json"

var ErrNotFound = errors.New("secret not found")

type secretFile struct {
	Secrets map[string]string `json:"secrets"` // name -> base64(nonce|ciphertext)
}

// Store is a secrets file in dir.
type Store struct {
	mu   sync.Mutex
	path string
	key  []byte
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir secrets dir: %w", err)
	}
	return &Store{path: filepath.Join(dir, fileName), key: masterKey()}, nil
}

func (s *Store) Get(name string) (string, error) {
	if name = norm(name); name == "" {
		return "", errors.New("get secret: name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := load(s.path)
	if err != nil {
		return "", err
	}
	enc, ok := sf.Secrets[name]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decode secret %s: %w", name, err)
	}
	pt, err := decrypt(s.key, raw)
	if err != nil {
		return "", fmt.Errorf("open secret %s: %w", name, err)
	}
	return string(pt), nil
}

func (s *Store) Set(name, value string) error {
	if name = norm(name); name == "" {
		return errors.New("set secret: name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := load(s.path)
	if err != nil {
		return err
	}
	ct, err := encrypt(s.key, []byte(value))
	if err != nil {
		return fmt.Errorf("seal secret %s: %w", name, err)
	}
	sf.Secrets[name] = base64.StdEncoding.EncodeToString(ct)
	return save(s.path, sf)
}

func (s *Store) Delete(name string) error {
	name = norm(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := load(s.path)
	if err != nil {
		return err
	}
	if _, ok := sf.Secrets[name]; !ok {
		return nil
	}
	delete(sf.Secrets, name)
	return save(s.path, sf)
}

// GetOrCreate returns the named secret, storing generate() first if absent.
func (s *Store) GetOrCreate(name string, generate func() string) (string, error) {
	v, err := s.Get(name)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	v = generate()
	if err := s.Set(name, v); err != nil {
		return "", err
	}
	return v, nil
}

func load(path string) (secretFile, error) {
	sf := secretFile{Secrets: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sf, nil
		}
		return sf, fmt.Errorf("read secrets: %w", err)
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("parse secrets: %w", err)
	}
	if sf.Secrets == nil {
		sf.Secrets = map[string]string{}
	}
	return sf, nil
}

func save(path string, sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("encode secrets: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	base := fmt.Sprintf("tenantshell-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func encrypt(key, plain []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(key, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
