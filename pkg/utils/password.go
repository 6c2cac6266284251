package utils

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher bcrypt 哈希，Cost 为 0 或越界时使用 DefaultCost
type PasswordHasher struct {
	Cost int
}

func (h PasswordHasher) cost() int {
	if h.Cost < bcrypt.MinCost || h.Cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return h.Cost
}

func (h PasswordHasher) Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.cost())
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h PasswordHasher) Check(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

func NewID() string { return uuid.NewString() }
