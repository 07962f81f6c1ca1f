package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/cryptox"
	"github.com/dmitrijs2005/securedrop/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vaultFixture struct {
	repo     *memRepo[models.ContactRecord]
	sessions SessionManager
	vault    ContactVault
	key      cryptox.Key
}

func newVaultFixture(t *testing.T) *vaultFixture {
	t.Helper()
	f := &vaultFixture{
		repo:     newMemRepo[models.ContactRecord](),
		sessions: NewSessionManager(0),
		key:      cryptox.GenerateKey(),
	}
	f.vault = NewContactVault(f.repo, f.key, f.sessions, testLog)
	return f
}

func (f *vaultFixture) login(t *testing.T, owner string) string {
	t.Helper()
	token, err := f.sessions.Start(owner)
	require.NoError(t, err)
	return token
}

func TestContactVault_AddAndList(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	token := f.login(t, "alice@example.com")

	key, err := f.vault.Add(ctx, "bob", "alice@example.com", token, map[string]string{"phone": "555-1234", "name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", key)

	// stored values are ciphertext
	stored := f.repo.data[models.ContactStorageKey("alice@example.com", "bob")]
	assert.Equal(t, "alice@example.com", stored.OwnerEmail)
	assert.NotEqual(t, "555-1234", stored.Fields["phone"])
	assert.NotContains(t, stored.Fields["phone"], "555")

	got, err := f.vault.List(ctx, "alice@example.com", token)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Contact{Key: "bob", Fields: map[string]string{"phone": "555-1234", "name": "Bob"}}, got[0])
}

func TestContactVault_GeneratedKey(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	token := f.login(t, "alice@example.com")

	key, err := f.vault.Add(ctx, "", "alice@example.com", token, map[string]string{"phone": "1"})
	require.NoError(t, err)
	_, err = uuid.Parse(key)
	require.NoError(t, err)
	assert.Contains(t, f.repo.data, models.ContactStorageKey("alice@example.com", key))
}

func TestContactVault_Unauthorized(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	token := f.login(t, "alice@example.com")

	t.Run("ended session", func(t *testing.T) {
		ended := f.login(t, "alice@example.com")
		f.sessions.End(ended)

		_, err := f.vault.Add(ctx, "k", "alice@example.com", ended, map[string]string{"phone": "1"})
		require.ErrorIs(t, err, common.ErrUnauthorized)
		_, err = f.vault.List(ctx, "alice@example.com", ended)
		require.ErrorIs(t, err, common.ErrUnauthorized)
		require.ErrorIs(t, f.vault.Delete(ctx, "k", "alice@example.com", ended), common.ErrUnauthorized)
	})

	t.Run("other owner", func(t *testing.T) {
		_, err := f.vault.Add(ctx, "k", "bob@example.com", token, map[string]string{"phone": "1"})
		require.ErrorIs(t, err, common.ErrUnauthorized)
		_, err = f.vault.List(ctx, "bob@example.com", token)
		require.ErrorIs(t, err, common.ErrUnauthorized)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.vault.List(ctx, "alice@example.com", "deadbeef")
		require.ErrorIs(t, err, common.ErrUnauthorized)
	})

	assert.Zero(t, f.repo.loads, "unauthorized calls must not read the store")
}

func TestContactVault_ListOnlyOwnRecords(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	alice := f.login(t, "alice@example.com")
	bob := f.login(t, "bob@example.com")

	_, err := f.vault.Add(ctx, "a1", "alice@example.com", alice, map[string]string{"phone": "1"})
	require.NoError(t, err)
	_, err = f.vault.Add(ctx, "b1", "bob@example.com", bob, map[string]string{"phone": "2"})
	require.NoError(t, err)
	_, err = f.vault.Add(ctx, "a0", "alice@example.com", alice, map[string]string{"phone": "0"})
	require.NoError(t, err)

	got, err := f.vault.List(ctx, "alice@example.com", alice)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a0", got[0].Key)
	assert.Equal(t, "a1", got[1].Key)
}

func TestContactVault_KeysAreScopedPerOwner(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	alice := f.login(t, "alice@example.com")
	bob := f.login(t, "bob@example.com")

	_, err := f.vault.Add(ctx, "shared", "alice@example.com", alice, map[string]string{"phone": "1"})
	require.NoError(t, err)

	// same key for another owner neither fails nor touches alice's record
	_, err = f.vault.Add(ctx, "shared", "bob@example.com", bob, map[string]string{"phone": "2"})
	require.NoError(t, err)
	assert.Len(t, f.repo.data, 2)

	// the owner can overwrite
	_, err = f.vault.Add(ctx, "shared", "alice@example.com", alice, map[string]string{"phone": "3"})
	require.NoError(t, err)

	got, err := f.vault.List(ctx, "alice@example.com", alice)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Contact{Key: "shared", Fields: map[string]string{"phone": "3"}}, got[0])

	got, err = f.vault.List(ctx, "bob@example.com", bob)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Fields["phone"])

	// deleting bob's contact leaves alice's in place
	require.NoError(t, f.vault.Delete(ctx, "shared", "bob@example.com", bob))
	got, err = f.vault.List(ctx, "alice@example.com", alice)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestContactVault_Validation(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	token := f.login(t, "alice@example.com")

	_, err := f.vault.Add(ctx, "k", "alice@example.com", token, nil)
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = f.vault.Add(ctx, "k", "alice@example.com", token, map[string]string{"": "x"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Zero(t, f.repo.saves)
}

func TestContactVault_CorruptRecordsAreSkippedIndividually(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	token := f.login(t, "alice@example.com")

	for _, k := range []string{"a", "b", "c"} {
		_, err := f.vault.Add(ctx, k, "alice@example.com", token, map[string]string{"phone": k})
		require.NoError(t, err)
	}

	// tamper with "b" and move a ciphertext of "a" onto "c"
	sk := func(k string) string { return models.ContactStorageKey("alice@example.com", k) }
	b := f.repo.data[sk("b")]
	b.Fields["phone"] = "AAAA" + b.Fields["phone"][4:]
	c := f.repo.data[sk("c")]
	c.Fields["phone"] = f.repo.data[sk("a")].Fields["phone"]

	got, err := f.vault.List(ctx, "alice@example.com", token)
	require.ErrorIs(t, err, common.ErrDecryptionFailed)
	assert.Contains(t, err.Error(), `contact "b"`)
	assert.Contains(t, err.Error(), `contact "c"`)

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Key)
	assert.Equal(t, "a", got[0].Fields["phone"])
}

func TestContactVault_WrongKeyFailsClosed(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	token := f.login(t, "alice@example.com")

	_, err := f.vault.Add(ctx, "k", "alice@example.com", token, map[string]string{"phone": "555-1234"})
	require.NoError(t, err)

	other := NewContactVault(f.repo, cryptox.GenerateKey(), f.sessions, testLog)
	got, err := other.List(ctx, "alice@example.com", token)
	require.ErrorIs(t, err, common.ErrDecryptionFailed)
	assert.Empty(t, got)
}

func TestContactVault_Delete(t *testing.T) {
	ctx := context.Background()
	f := newVaultFixture(t)
	alice := f.login(t, "alice@example.com")
	bob := f.login(t, "bob@example.com")

	_, err := f.vault.Add(ctx, "k", "alice@example.com", alice, map[string]string{"phone": "1"})
	require.NoError(t, err)

	require.ErrorIs(t, f.vault.Delete(ctx, "k", "bob@example.com", bob), common.ErrNotFound)
	require.ErrorIs(t, f.vault.Delete(ctx, "missing", "alice@example.com", alice), common.ErrNotFound)

	require.NoError(t, f.vault.Delete(ctx, "k", "alice@example.com", alice))
	assert.Empty(t, f.repo.data)
}
