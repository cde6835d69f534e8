package service

import (
	"net/mail"
	"strings"

	"github.com/dtroode/gymkeeper-server/internal/apierror"
)

// normalize trims and lower-cases usernames and email addresses.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// isEmail accepts a bare address only; display names are rejected.
func isEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validateRegistration(username, email, password string) []apierror.FieldError {
	var fields []apierror.FieldError

	switch {
	case username == "":
		fields = append(fields, apierror.FieldError{Field: "username", Reason: "required"})
	case strings.ContainsAny(username, "@ \t\n"):
		fields = append(fields, apierror.FieldError{Field: "username", Reason: "must not contain @ or spaces"})
	}

	switch {
	case email == "":
		fields = append(fields, apierror.FieldError{Field: "email", Reason: "required"})
	case !isEmail(email):
		fields = append(fields, apierror.FieldError{Field: "email", Reason: "invalid email address"})
	}

	if password == "" {
		fields = append(fields, apierror.FieldError{Field: "password", Reason: "required"})
	}

	return fields
}
