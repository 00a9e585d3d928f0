package service

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/vitpintodas/comem-travel-log-api/internal/domain"
)

// checkPassword records why a plain-text password is unacceptable, if it is.
func checkPassword(verr *domain.ValidationError, password *string) {
	switch {
	case password == nil || *password == "":
		verr.Add("password", "required", "Path `password` is required.", nil)
	case utf8.RuneCountInString(*password) < domain.MinPasswordLength:
		verr.Add("password", "minlength",
			fmt.Sprintf("Path `password` is shorter than the minimum allowed length (%d).", domain.MinPasswordLength), nil)
	case len(*password) > domain.MaxPasswordBytes:
		verr.Add("password", "maxlength",
			fmt.Sprintf("Path `password` is longer than the maximum allowed length (%d bytes).", domain.MaxPasswordBytes), nil)
	}
}

// hashPassword hashes a plain-text password with bcrypt at the given cost.
func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// passwordMatches reports whether password is the one hashed into hash.
func passwordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
