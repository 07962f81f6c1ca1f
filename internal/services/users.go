package services

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/cryptox"
	"github.com/dmitrijs2005/securedrop/internal/logging"
	"github.com/dmitrijs2005/securedrop/internal/models"
	"github.com/dmitrijs2005/securedrop/internal/repositories/records"
)

// PasswordPrompt supplies the password for the given zero-based attempt.
// The directory wipes the returned slice after checking it.
type PasswordPrompt func(attempt int) ([]byte, error)

// UserDirectory registers identities and checks their credentials.
//
// Contract:
//   - Register: store a new identity; fails with ErrPasswordMismatch before
//     any hashing or store access, or ErrDuplicateEmail if the email exists.
//   - Authenticate: ErrUserNotFound for an unknown email (no prompt is made);
//     otherwise up to MaxAttempts prompts, then ErrInvalidCredentials.
//   - Lookup: return a stored identity or ErrUserNotFound.
type UserDirectory interface {
	Register(ctx context.Context, reg models.Registration) error
	Authenticate(ctx context.Context, email string, prompt PasswordPrompt) (models.Identity, error)
	Lookup(ctx context.Context, email string) (models.Identity, error)
	MaxAttempts() int
}

type userDirectory struct {
	repo        records.Repository[models.UserRecord]
	hasher      cryptox.Hasher
	maxAttempts int
	log         logging.Logger
}

// NewUserDirectory constructs a UserDirectory over the users namespace.
func NewUserDirectory(repo records.Repository[models.UserRecord], hasher cryptox.Hasher, maxAttempts int, log logging.Logger) UserDirectory {
	if maxAttempts < 1 {
		maxAttempts = common.DefaultMaxLoginAttempts
	}
	return &userDirectory{repo: repo, hasher: hasher, maxAttempts: maxAttempts, log: log}
}

func (d *userDirectory) MaxAttempts() int {
	return d.maxAttempts
}

func (d *userDirectory) Register(ctx context.Context, reg models.Registration) error {
	if reg.Email == "" {
		return fmt.Errorf("%w: email is required", common.ErrValidation)
	}
	if subtle.ConstantTimeCompare(reg.Password, reg.Confirm) != 1 {
		return common.ErrPasswordMismatch
	}
	if len(reg.Password) == 0 {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	users, err := d.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if _, ok := users[reg.Email]; ok {
		return common.ErrDuplicateEmail
	}

	hash, err := d.hasher.Hash(reg.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	users[reg.Email] = models.UserRecord{FullName: reg.FullName, PasswordHash: hash}
	if err := d.repo.Save(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	d.log.Info(ctx, "user registered")
	return nil
}

func (d *userDirectory) Lookup(ctx context.Context, email string) (models.Identity, error) {
	users, err := d.repo.Load(ctx)
	if err != nil {
		return models.Identity{}, fmt.Errorf("load users: %w", err)
	}
	rec, ok := users[email]
	if !ok {
		return models.Identity{}, common.ErrUserNotFound
	}
	return models.Identity{Email: email, FullName: rec.FullName, PasswordHash: rec.PasswordHash}, nil
}

func (d *userDirectory) Authenticate(ctx context.Context, email string, prompt PasswordPrompt) (models.Identity, error) {
	identity, err := d.Lookup(ctx, email)
	if err != nil {
		return models.Identity{}, err
	}

	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.Identity{}, err
		}

		password, err := prompt(attempt)
		if err != nil {
			return models.Identity{}, fmt.Errorf("read password: %w", err)
		}

		// every attempt pays for the full hash check
		ok := cryptox.VerifyPassword(identity.PasswordHash, password)
		common.WipeByteArray(password)

		if ok {
			d.log.Info(ctx, "login succeeded", "attempt", attempt+1)
			return identity, nil
		}
		d.log.Warn(ctx, "incorrect password", "attempt", attempt+1)
	}

	return models.Identity{}, common.ErrInvalidCredentials
}
