package models

import (
	"errors"
	"strings"
)

var ErrIncorrectField = errors.New("contact field must be name=value")

// ContactRecord is the persisted form of a contact. Field values are
// base64-encoded ciphertexts.
type ContactRecord struct {
	OwnerEmail string            `json:"owner_email"`
	Fields     map[string]string `json:"fields"`
}

// ContactStorageKey is the record key of an owner's contact in the contacts
// namespace. Keys are scoped per owner, so owners may reuse the same contact
// key without seeing each other's records.
func ContactStorageKey(owner, key string) string {
	return owner + "\x00" + key
}

// Contact is a decrypted contact ready for display.
type Contact struct {
	Key    string
	Fields map[string]string
}

// FieldsFromLines parses "name=value" lines into a field map. Names are
// trimmed; values are kept as typed and may themselves contain '='.
func FieldsFromLines(lines []string) (map[string]string, error) {
	fields := make(map[string]string, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, ErrIncorrectField
		}
		fields[name] = value
	}
	return fields, nil
}
