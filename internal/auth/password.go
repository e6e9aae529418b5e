package auth

import (
	"github.com/veritum/veritum-pro/pkg/crypto"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateRandomPassword returns an unguessable placeholder password for
// accounts provisioned through OAuth.
func GenerateRandomPassword() (string, error) {
	return crypto.GenerateRandomString(32)
}
