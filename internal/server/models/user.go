package models

// User is an account created on first sign-in with a federated identity
// token. Subject is the identity provider's stable user identifier.
type User struct {
	ID      string
	Subject string
	Email   string
}
