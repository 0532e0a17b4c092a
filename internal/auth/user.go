package auth

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var InvalidCredentials = errors.New("Invalid auth")

// User is the single account allowed to query the server.
type User struct {
	Id       string
	Name     string
	Password []byte
}

func NewUser(name, password string) (*User, error) {
	// password max size is 72 bytes because of bcrypt limit
	hashed_password, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrapf(err, "hashing password for %s", name)
	}
	return &User{uuid.New().String(), name, hashed_password}, nil
}

func (u *User) ValidateUser(password string) bool {
	return bcrypt.CompareHashAndPassword(u.Password, []byte(password)) == nil
}

// Authenticate checks name and password against u. A nil user means the
// server runs without credentials and everyone is let in.
func Authenticate(u *User, name, password string) error {
	if u == nil {
		return nil
	}
	if name != u.Name || !u.ValidateUser(password) {
		return InvalidCredentials
	}
	return nil
}
