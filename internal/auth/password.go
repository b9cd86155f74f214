package auth

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and checks account passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Check(hash, password string) bool
}

// BcryptHasher implements Hasher with bcrypt. A zero Cost means
// bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

func (b BcryptHasher) Check(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
