package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 12

// HashPassword returns a salted bcrypt hash of plaintext.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("habithome-no-such-user")
	if err != nil {
		panic(err)
	}
	return hash
})

// DummyHash is a valid hash at the normal cost that matches no real
// password. Verifying against it when a user does not exist keeps the
// failure as slow as a wrong password.
func DummyHash() string {
	return dummyHash()
}
