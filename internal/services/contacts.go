package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/cryptox"
	"github.com/dmitrijs2005/securedrop/internal/logging"
	"github.com/dmitrijs2005/securedrop/internal/models"
	"github.com/dmitrijs2005/securedrop/internal/repositories/records"
	"github.com/google/uuid"
)

// Authorizer checks that token is an active session of owner.
type Authorizer interface {
	Authorize(token, owner string) error
}

// ContactVault stores per-owner contacts whose field values are encrypted at
// rest. Every operation requires an active session of the owner.
//
// Keys are scoped per owner: re-adding a key the owner already uses replaces
// that contact, and another owner's identical key is a separate record.
//
// List returns every readable contact of the owner sorted by key. Records
// that fail to decrypt are skipped and reported together in the returned
// error, which matches common.ErrDecryptionFailed.
type ContactVault interface {
	Add(ctx context.Context, key, owner, token string, fields map[string]string) (string, error)
	List(ctx context.Context, owner, token string) ([]models.Contact, error)
	Delete(ctx context.Context, key, owner, token string) error
}

type contactVault struct {
	repo records.Repository[models.ContactRecord]
	key  cryptox.Key
	auth Authorizer
	log  logging.Logger
}

// NewContactVault constructs a ContactVault. The key is borrowed; the caller
// keeps ownership and wipes it on shutdown.
func NewContactVault(repo records.Repository[models.ContactRecord], key cryptox.Key, auth Authorizer, log logging.Logger) ContactVault {
	return &contactVault{repo: repo, key: key, auth: auth, log: log}
}

// fieldAAD binds a ciphertext to its owner, record and field, so a value
// copied anywhere else in the store no longer decrypts.
func fieldAAD(owner, key, field string) []byte {
	return []byte(owner + "\x00" + key + "\x00" + field)
}

func (v *contactVault) Add(ctx context.Context, key, owner, token string, fields map[string]string) (string, error) {
	if err := v.auth.Authorize(token, owner); err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: contact has no fields", common.ErrValidation)
	}
	if key == "" {
		key = uuid.NewString()
	}

	contacts, err := v.repo.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load contacts: %w", err)
	}

	encrypted := make(map[string]string, len(fields))
	for name, value := range fields {
		if name == "" {
			return "", fmt.Errorf("%w: empty field name", common.ErrValidation)
		}
		ct, err := cryptox.EncryptString(v.key, value, fieldAAD(owner, key, name))
		if err != nil {
			return "", fmt.Errorf("encrypt field %q: %w", name, err)
		}
		encrypted[name] = ct
	}

	contacts[models.ContactStorageKey(owner, key)] = models.ContactRecord{OwnerEmail: owner, Fields: encrypted}
	if err := v.repo.Save(ctx, contacts); err != nil {
		return "", fmt.Errorf("save contacts: %w", err)
	}

	v.log.Info(ctx, "contact saved", "fields", len(encrypted))
	return key, nil
}

func (v *contactVault) List(ctx context.Context, owner, token string) ([]models.Contact, error) {
	if err := v.auth.Authorize(token, owner); err != nil {
		return nil, err
	}

	contacts, err := v.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	prefix := models.ContactStorageKey(owner, "")
	keys := make([]string, 0, len(contacts))
	for k, rec := range contacts {
		if key, ok := strings.CutPrefix(k, prefix); ok && rec.OwnerEmail == owner {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := make([]models.Contact, 0, len(keys))
	var failures []error

	for _, k := range keys {
		c, err := v.decrypt(owner, k, contacts[prefix+k])
		if err != nil {
			v.log.Warn(ctx, "contact could not be decrypted", "key", k)
			failures = append(failures, fmt.Errorf("contact %q: %w", k, err))
			continue
		}
		out = append(out, c)
	}

	return out, errors.Join(failures...)
}

func (v *contactVault) decrypt(owner, key string, rec models.ContactRecord) (models.Contact, error) {
	fields := make(map[string]string, len(rec.Fields))
	for name, ct := range rec.Fields {
		pt, err := cryptox.DecryptString(v.key, ct, fieldAAD(owner, key, name))
		if err != nil {
			return models.Contact{}, fmt.Errorf("field %q: %w", name, err)
		}
		fields[name] = pt
	}
	return models.Contact{Key: key, Fields: fields}, nil
}

func (v *contactVault) Delete(ctx context.Context, key, owner, token string) error {
	if err := v.auth.Authorize(token, owner); err != nil {
		return err
	}

	contacts, err := v.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	sk := models.ContactStorageKey(owner, key)
	rec, ok := contacts[sk]
	if !ok || rec.OwnerEmail != owner {
		return common.ErrNotFound
	}

	delete(contacts, sk)
	if err := v.repo.Save(ctx, contacts); err != nil {
		return fmt.Errorf("save contacts: %w", err)
	}

	v.log.Info(ctx, "contact deleted")
	return nil
}
