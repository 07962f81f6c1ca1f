package cryptox

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/filex"
)

// Key is the symmetric vault key. It redacts itself when formatted or
// marshaled so it cannot leak through logs.
type Key []byte

func (k Key) String() string { return "[KEY]" }

func (k Key) GoString() string { return "[KEY]" }

func (k Key) MarshalJSON() ([]byte, error) { return json.Marshal("[KEY]") }

// Wipe zeroes the key material in place.
func (k Key) Wipe() { common.WipeByteArray(k) }

// GenerateKey returns a fresh random key of common.KeySize bytes.
func GenerateKey() Key {
	return Key(common.GenerateRandByteArray(common.KeySize))
}

// ParseKey accepts either the base64 text written by LoadOrCreateKey or
// common.KeySize raw bytes.
func ParseKey(data []byte) (Key, error) {
	trimmed := bytes.TrimSpace(data)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding} {
		raw, err := enc.DecodeString(string(trimmed))
		if err == nil && len(raw) == common.KeySize {
			return Key(raw), nil
		}
	}
	if len(data) == common.KeySize {
		return Key(bytes.Clone(data)), nil
	}
	return nil, fmt.Errorf("%w: expected %d bytes", common.ErrInvalidKey, common.KeySize)
}

// LoadOrCreateKey reads the key stored at path. When no file exists a new key
// is generated and written with owner-only permissions before it is returned.
// Once a key exists repeated calls return the same key.
func LoadOrCreateKey(path string) (Key, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		return ParseKey(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read key file %s: %w", path, err)
	}

	if _, err := filex.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}

	key := GenerateKey()
	encoded := base64.StdEncoding.EncodeToString(key) + "\n"
	if err := filex.WriteFileAtomic(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("write key file %s: %w", path, err)
	}
	return key, nil
}
