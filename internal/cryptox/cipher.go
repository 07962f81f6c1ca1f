// Package cryptox holds the cryptographic primitives of SecureDrop: password
// hashing, the vault key file and authenticated encryption of field values.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/securedrop/internal/common"
)

func newAEAD(key Key) (cipher.AEAD, error) {
	if len(key) != common.KeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", common.ErrInvalidKey, common.KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-256-GCM. A fresh random nonce is generated
// for every call and prepended to the result. aad is authenticated but not
// encrypted; the same aad must be passed to Decrypt.
func Encrypt(key Key, plaintext, aad []byte) ([]byte, error) {
	aesgcm, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize(), aesgcm.NonceSize()+len(plaintext)+aesgcm.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, aad), nil
}

// Decrypt opens data produced by Encrypt. Any failure (wrong key, tampering,
// truncation, different aad) is reported as common.ErrDecryptionFailed and
// no plaintext is returned.
func Decrypt(key Key, data, aad []byte) ([]byte, error) {
	aesgcm, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(data) < ns+aesgcm.Overhead() {
		return nil, common.ErrDecryptionFailed
	}

	plaintext, err := aesgcm.Open(nil, data[:ns], data[ns:], aad)
	if err != nil {
		return nil, common.ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptString encrypts s and returns the sealed bytes as standard base64.
func EncryptString(key Key, s string, aad []byte) (string, error) {
	sealed, err := Encrypt(key, []byte(s), aad)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString. Invalid base64 counts as a failed decryption.
func DecryptString(key Key, encoded string, aad []byte) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", common.ErrDecryptionFailed
	}
	plaintext, err := Decrypt(key, sealed, aad)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
