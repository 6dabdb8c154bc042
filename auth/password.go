package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrWrongPassword = errors.New("wrong password")

const minPasswordLen = 8

// HashPassword 拒绝太短的密码，其余强度策略交给前端提示
func HashPassword(plain string) ([]byte, error) {
	if len(plain) < minPasswordLen {
		return nil, errors.New("password must be at least 8 characters")
	}
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

func VerifyPassword(hash []byte, plain string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(plain)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
