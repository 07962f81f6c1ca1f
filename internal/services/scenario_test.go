package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/cryptox"
	"github.com/dmitrijs2005/securedrop/internal/models"
	"github.com/dmitrijs2005/securedrop/internal/repositories/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEndToEnd_RegisterLoginAddList walks through a full session against the
// JSON files a real client would use.
func TestEndToEnd_RegisterLoginAddList(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	key, err := cryptox.LoadOrCreateKey(filepath.Join(dir, "encryption.key"))
	require.NoError(t, err)

	usersPath := filepath.Join(dir, "c1_users.json")
	contactsPath := filepath.Join(dir, "c1_contacts.json")

	users := NewUserDirectory(records.NewJSONRepository[models.UserRecord](usersPath, true, testLog), fastHasher(), 3, testLog)
	sessions := NewSessionManager(0)
	vault := NewContactVault(records.NewJSONRepository[models.ContactRecord](contactsPath, true, testLog), key, sessions, testLog)

	const email = "alice@example.com"

	err = users.Register(ctx, reg(email, "Alice", "hunter22", "hunter2"))
	require.ErrorIs(t, err, common.ErrPasswordMismatch)
	_, err = os.Stat(usersPath)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, users.Register(ctx, reg(email, "Alice", "hunter22", "hunter22")))

	calls := 0
	_, err = users.Authenticate(ctx, email, passwords(&calls, "a", "b", "c"))
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	calls = 0
	id, err := users.Authenticate(ctx, email, passwords(&calls, "hunter22"))
	require.NoError(t, err)

	token, err := sessions.Start(id.Email)
	require.NoError(t, err)

	_, err = vault.Add(ctx, "bob", id.Email, token, map[string]string{"phone": "555-1234"})
	require.NoError(t, err)

	got, err := vault.List(ctx, id.Email, token)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]string{"phone": "555-1234"}, got[0].Fields)

	// on disk: {contact_key: {owner_email, fields: {name: ciphertext_b64}}}
	raw, err := os.ReadFile(contactsPath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "555-1234")

	var onDisk map[string]models.ContactRecord
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	_, err = cryptox.DecryptString(cryptox.GenerateKey(), onDisk[models.ContactStorageKey(email, "bob")].Fields["phone"], fieldAAD(email, "bob", "phone"))
	require.ErrorIs(t, err, common.ErrDecryptionFailed)

	sessions.End(token)
	_, err = vault.Add(ctx, "carol", id.Email, token, map[string]string{"phone": "1"})
	require.ErrorIs(t, err, common.ErrUnauthorized)
}
