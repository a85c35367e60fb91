package domain

import (
	"encoding/json"

	"github.com/gatherly/gatherly/internal/modules/core"

	"golang.org/x/crypto/bcrypt"
)

const (
	Collection = "users"

	// UsernameCollection enforces username uniqueness and maps a username
	// to its user id.
	UsernameCollection = "usernames"

	// SessionCollection maps a session token to a user id.
	SessionCollection = "sessions"

	MinPasswordLength = 8
)

type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

func Register(username, password string) (User, error) {
	if username == "" {
		return User{}, core.Malformed("username must not be empty")
	}

	if len(password) < MinPasswordLength {
		return User{}, core.Malformed("password must be at least 8 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	return User{Username: username, PasswordHash: string(hash)}, nil
}

func (u User) Authenticate(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return core.NotAllowed("invalid credentials")
	}

	return nil
}

func Encode(user User) ([]byte, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, core.NewSerializationError("user", err)
	}

	return raw, nil
}

func Decode(raw []byte) (User, error) {
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, core.NewSerializationError("user", err)
	}

	return user, nil
}
