package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/models"
)

var getLines = GetLines

// Contact field names filled from the dedicated prompts of "add".
const (
	fieldName  = "name"
	fieldEmail = "email"
)

// Add prompts for a contact and stores it in the vault. An empty key lets
// the vault generate one. Extra fields are entered as name=value lines.
func (a *App) Add(ctx context.Context) error {
	key, err := getSimpleText(a.reader, "Enter Contact Key (empty to generate): ", a.out)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter Full Name: ", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter Email Address: ", a.out)
	if err != nil {
		return err
	}

	lines, err := getLines(a.reader, "Extra fields as name=value", a.out)
	if err != nil {
		return err
	}

	fields, err := models.FieldsFromLines(lines)
	if err != nil {
		a.println(err.Error())
		return err
	}
	if name != "" {
		fields[fieldName] = name
	}
	if email != "" {
		fields[fieldEmail] = email
	}

	key, err = a.vault.Add(ctx, key, a.email, a.token, fields)
	if err != nil {
		a.reportVaultError(ctx, "add", err)
		return err
	}

	a.println("Contact Added:", key)
	return nil
}

// List prints every contact of the session owner. Contacts that cannot be
// decrypted are reported one by one after the readable ones.
func (a *App) List(ctx context.Context) error {
	contacts, err := a.vault.List(ctx, a.email, a.token)
	if err != nil && !errors.Is(err, common.ErrDecryptionFailed) {
		a.reportVaultError(ctx, "list", err)
		return err
	}

	if len(contacts) == 0 && err == nil {
		a.println("No contacts.")
	}
	for _, c := range contacts {
		a.println(formatContact(c))
	}

	if err != nil {
		for _, e := range unjoin(err) {
			a.println("Could not decrypt", e.Error())
		}
	}
	return err
}

// Delete removes one contact of the session owner by key.
func (a *App) Delete(ctx context.Context) error {
	key, err := getSimpleText(a.reader, "Enter Contact Key: ", a.out)
	if err != nil {
		return err
	}

	if err := a.vault.Delete(ctx, key, a.email, a.token); err != nil {
		a.reportVaultError(ctx, "delete", err)
		return err
	}

	a.println("Contact Deleted.")
	return nil
}

func (a *App) reportVaultError(ctx context.Context, op string, err error) {
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		a.println("Not logged in.")
	case errors.Is(err, common.ErrNotFound):
		a.println("Contact not found.")
	case errors.Is(err, common.ErrValidation):
		a.println(err.Error())
	default:
		a.log.Error(ctx, op+" failed", "error", err)
		a.println("Operation failed.")
	}
}

func formatContact(c models.Contact) string {
	names := make([]string, 0, len(c.Fields))
	for n := range c.Fields {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", c.Key)
	for _, n := range names {
		fmt.Fprintf(&b, " %s=%s", n, c.Fields[n])
	}
	return b.String()
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
