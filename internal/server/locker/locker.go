// Package locker implements the encrypted file vault: locking files in with a
// password-derived key, retrieving and decrypting them, and the two-stage
// delete through a recycle bin. Ownership is tracked in a JSON metadata file
// keyed by the vaulted file name.
package locker

import (
	"context"
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
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"cosmiclocker/internal/logging"
)

const (
	vaultDirName   = "cosmic_vault"
	recycleDirName = "recycle_bin"
	metadataName   = "metadata.json"

	saltSize   = 16
	keySize    = 32
	kdfRounds  = 100000
	encSuffix  = ".enc"
	filePerm   = 0o600
	dirPerm    = 0o700
)

var (
	ErrNotFound      = errors.New("file not found")
	ErrDecryptFailed = errors.New("decryption failed")
)

// entry is one vaulted file's metadata record.
type entry struct {
	UserID       string `json:"user_id"`
	OriginalName string `json:"original_name"`
	Salt         string `json:"salt"`
}

// Locker owns the vault and recycle-bin directories under one data root. All
// metadata mutation happens under a single lock; file moves between the two
// directories are plain renames.
type Locker struct {
	mu         sync.Mutex
	vaultDir   string
	recycleDir string
	metaPath   string
	log        logging.Logger
}

func New(dataDir string, log logging.Logger) (*Locker, error) {
	l := &Locker{
		vaultDir:   filepath.Join(dataDir, vaultDirName),
		recycleDir: filepath.Join(dataDir, recycleDirName),
		metaPath:   filepath.Join(dataDir, metadataName),
		log:        log,
	}
	for _, dir := range []string{l.vaultDir, l.recycleDir} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return l, nil
}

// deriveKey stretches the password with PBKDF2-SHA256.
func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, kdfRounds, keySize, sha256.New)
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Lock encrypts the stream into the vault and records ownership. The stored
// layout is salt || nonce || ciphertext; the salt is also kept in metadata so
// retrieval can re-derive the key without touching the blob first.
func (l *Locker) Lock(userID, password, originalName string, r io.Reader) (string, error) {
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	base := filepath.Base(originalName)
	fileName := fmt.Sprintf("%s_%s%s", userID, base, encSuffix)

	blob := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.WriteFile(filepath.Join(l.vaultDir, fileName), blob, filePerm); err != nil {
		return "", fmt.Errorf("writing vault file: %w", err)
	}
	meta := l.loadMetadata()
	meta[fileName] = entry{
		UserID:       userID,
		OriginalName: base,
		Salt:         base64.StdEncoding.EncodeToString(salt),
	}
	if err := l.saveMetadata(meta); err != nil {
		return "", err
	}
	return fileName, nil
}

// Retrieve decrypts one vaulted file for its owner. A wrong password surfaces
// as ErrDecryptFailed; a file the user does not own looks exactly like a file
// that does not exist.
func (l *Locker) Retrieve(fileName, userID, password string) ([]byte, error) {
	l.mu.Lock()
	meta := l.loadMetadata()
	l.mu.Unlock()

	info, ok := meta[fileName]
	if !ok || info.UserID != userID {
		return nil, ErrNotFound
	}
	blob, err := os.ReadFile(filepath.Join(l.vaultDir, fileName))
	if err != nil {
		return nil, ErrNotFound
	}

	salt, err := base64.StdEncoding.DecodeString(info.Salt)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	if len(blob) < saltSize+gcm.NonceSize() {
		return nil, ErrDecryptFailed
	}
	nonce := blob[saltSize : saltSize+gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, blob[saltSize+gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// List returns the user's vaulted files, excluding anything sitting in the
// recycle bin.
func (l *Locker) List(userID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	recycled := l.recycledSet()
	meta := l.loadMetadata()
	var files []string
	for name, info := range meta {
		if info.UserID != userID {
			continue
		}
		if _, gone := recycled[name]; gone {
			continue
		}
		files = append(files, name)
	}
	return files
}

// ListRecycleBin returns the user's files currently in the recycle bin.
func (l *Locker) ListRecycleBin(userID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	meta := l.loadMetadata()
	var files []string
	for name := range l.recycledSet() {
		if info, ok := meta[name]; ok && info.UserID == userID {
			files = append(files, name)
		}
	}
	return files
}

// Delete moves the file from the vault into the recycle bin.
func (l *Locker) Delete(fileName, userID string) error {
	return l.move(fileName, userID, l.vaultDir, l.recycleDir)
}

// Restore moves the file from the recycle bin back into the vault.
func (l *Locker) Restore(fileName, userID string) error {
	return l.move(fileName, userID, l.recycleDir, l.vaultDir)
}

func (l *Locker) move(fileName, userID, from, to string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	meta := l.loadMetadata()
	info, ok := meta[fileName]
	if !ok || info.UserID != userID {
		return ErrNotFound
	}
	src := filepath.Join(from, fileName)
	if _, err := os.Stat(src); err != nil {
		return ErrNotFound
	}
	return os.Rename(src, filepath.Join(to, fileName))
}

func (l *Locker) recycledSet() map[string]struct{} {
	set := make(map[string]struct{})
	dirEntries, err := os.ReadDir(l.recycleDir)
	if err != nil {
		return set
	}
	for _, e := range dirEntries {
		set[e.Name()] = struct{}{}
	}
	return set
}

// loadMetadata tolerates a missing or corrupt file by starting over empty,
// matching the forgiving behavior the vault always had.
func (l *Locker) loadMetadata() map[string]entry {
	data, err := os.ReadFile(l.metaPath)
	if err != nil {
		return map[string]entry{}
	}
	meta := map[string]entry{}
	if err := json.Unmarshal(data, &meta); err != nil {
		l.log.Error(context.Background(), "decoding vault metadata", "error", err)
		return map[string]entry{}
	}
	return meta
}

func (l *Locker) saveMetadata(meta map[string]entry) error {
	data, err := json.MarshalIndent(meta, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.metaPath, data, filePerm)
}
