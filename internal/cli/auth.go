package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a new identity. A password confirmation that does
// not match is re-prompted up to the configured number of attempts; the
// name and email are asked once.
//
// Duplicate emails and exhausted confirmations are reported to the user and
// do not abort the session: the caller proceeds to login either way. I/O and
// store errors are returned.
func (a *App) Register(ctx context.Context) error {
	fullName, err := getSimpleText(a.reader, "Enter Full Name: ", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter Email Address: ", a.out)
	if err != nil {
		return err
	}

	for attempt := 0; attempt < a.users.MaxAttempts(); attempt++ {
		err = a.registerOnce(ctx, fullName, email)
		if !errors.Is(err, common.ErrPasswordMismatch) {
			break
		}
		a.println("Passwords do not match.")
	}

	switch {
	case err == nil:
		a.println("User Registered.")
	case errors.Is(err, common.ErrPasswordMismatch):
		a.println("Registration failed.")
	case errors.Is(err, common.ErrDuplicateEmail):
		a.println("A user with this email is already registered.")
	case errors.Is(err, common.ErrValidation):
		a.println("Registration failed:", err)
	default:
		a.log.Error(ctx, "registration failed", "error", err)
		a.println("Registration failed.")
		return err
	}
	return nil
}

func (a *App) registerOnce(ctx context.Context, fullName, email string) error {
	password, err := getPassword(a.reader, "Enter Password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Re-enter Password: ", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	return a.users.Register(ctx, models.Registration{
		Email:    email,
		FullName: fullName,
		Password: password,
		Confirm:  confirm,
	})
}

// Login prompts for an email and then for the password, up to the
// configured number of attempts. On success a session is started and its
// token is kept for the vault commands.
//
// The same message is printed for an unknown email and for exhausted
// attempts, and the matching sentinel error is returned.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter Email Address: ", a.out)
	if err != nil {
		return err
	}

	attempts := a.users.MaxAttempts()
	askPassword := func(attempt int) ([]byte, error) {
		if attempt > 0 {
			a.println(fmt.Sprintf("Incorrect password. %d tries left.", attempts-attempt))
		}
		return getPassword(a.reader, "Enter Password: ", a.out)
	}

	id, err := a.users.Authenticate(ctx, email, askPassword)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) || errors.Is(err, common.ErrInvalidCredentials) {
			a.log.Warn(ctx, "login failed")
			a.println("User not found or incorrect credentials.")
		}
		return err
	}

	token, err := a.sessions.Start(id.Email)
	if err != nil {
		return err
	}

	a.email = id.Email
	a.token = token
	a.log.Info(ctx, "session started")
	a.println("Welcome to SecureDrop.")
	return nil
}

// Logout ends the active session, if any. The token is unusable afterwards.
func (a *App) Logout() {
	if a.token == "" {
		return
	}
	a.sessions.End(a.token)
	a.email, a.token = "", ""
}
