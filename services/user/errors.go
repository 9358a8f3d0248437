package user

import "autocare/models"

// CredentialsError is returned for any failed sign-in, whatever the cause.
type CredentialsError struct{}

func (CredentialsError) Error() string {
	return "invalid email or password"
}

func (CredentialsError) Describe(string) (string, string) {
	return "Sign-in failed", "The email or password is incorrect."
}

var (
	ErrInvalidCredentials error = CredentialsError{}
	ErrEmailTaken         error = &models.ConflictError{Entity: "user", Reason: "that email is already registered"}
)
