// Package services contains the application services of SecureDrop: the user
// directory (registration and password checks), the in-memory session
// manager, and the contact vault that keeps contact fields encrypted at rest.
//
// Services return the sentinel errors of package common and leave
// presentation to the caller.
package services
