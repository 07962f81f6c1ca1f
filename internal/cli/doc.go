// Package cli implements the interactive SecureDrop session: optional
// registration, login with limited password attempts and the
// secure_drop> command loop over the contact vault.
//
// Input helpers and prompts are exposed through package-level variables so
// tests can drive the session without a terminal.
package cli
