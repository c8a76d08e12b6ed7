package util

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// StrongPassword reports whether password has at least MinPasswordLength
// characters, including a digit and a letter, and fits in MaxPasswordBytes.
func StrongPassword(password string) bool {
	if len(password) > MaxPasswordBytes {
		return false
	}
	var length int
	var hasDigit, hasLetter bool
	for _, r := range password {
		length++
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}
	return length >= MinPasswordLength && hasDigit && hasLetter
}
