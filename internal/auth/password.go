package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(p string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(p), cost)
	return string(b), err
}

// VerifyPassword returns nil only when plain matches hash.
func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// DummyHash returns a hash of a throwaway password at cost. Logins for
// unknown emails compare against it so they do the same bcrypt work as
// logins with a wrong password.
func DummyHash(cost int) (string, error) {
	return HashPassword("storefront-dummy-password", cost)
}

// BurnCompare spends one comparison against dummy and always fails.
func BurnCompare(plain, dummy string) error {
	_ = bcrypt.CompareHashAndPassword([]byte(dummy), []byte(plain))
	return errors.New("no such user")
}
