package common

const (
	// UsersNamespace and ContactsNamespace name the two record kinds kept per client.
	UsersNamespace    = "users"
	ContactsNamespace = "contacts"

	// KeySize is the length of the symmetric vault key in bytes.
	KeySize = 32

	// DefaultMaxLoginAttempts is the number of password prompts allowed per login.
	DefaultMaxLoginAttempts = 3
)
