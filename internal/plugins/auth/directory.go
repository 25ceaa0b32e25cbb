package auth

import (
	"fmt"
	"slices"

	"golang.org/x/crypto/bcrypt"
)

// Directory is the authoritative list of users that may log in. Lookups
// return copies; callers may mutate what they get back.
type Directory interface {
	// FindByEmail returns the user whose email matches exactly.
	FindByEmail(email string) (*User, bool)

	// FindByID returns the user with the given id.
	FindByID(id string) (*User, bool)

	// CheckPassword reports whether password is the accepted sentinel.
	CheckPassword(password string) bool
}

// staticDirectory is a fixed, read-only Directory built from seed data.
type staticDirectory struct {
	users        []User
	passwordHash []byte
}

// NewStaticDirectory builds a directory over users. Every user shares the
// same sentinel password, held only as a bcrypt hash.
func NewStaticDirectory(users []User, sentinel string) (Directory, error) {
	return newStaticDirectory(users, sentinel, bcrypt.DefaultCost)
}

func newStaticDirectory(users []User, sentinel string, cost int) (Directory, error) {
	if sentinel == "" {
		return nil, fmt.Errorf("sentinel password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(sentinel), cost)
	if err != nil {
		return nil, fmt.Errorf("hashing sentinel password: %w", err)
	}

	seen := make(map[string]bool, len(users))
	list := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID == "" || u.Email == "" {
			return nil, fmt.Errorf("directory user needs id and email: %+v", u)
		}
		if seen["id:"+u.ID] || seen["email:"+u.Email] {
			return nil, fmt.Errorf("duplicate directory user %s <%s>", u.ID, u.Email)
		}
		seen["id:"+u.ID] = true
		seen["email:"+u.Email] = true
		list = append(list, *u.clone())
	}

	return &staticDirectory{users: list, passwordHash: hash}, nil
}

// FindByEmail matches the email exactly: no trimming, no case folding.
func (d *staticDirectory) FindByEmail(email string) (*User, bool) {
	idx := slices.IndexFunc(d.users, func(u User) bool { return u.Email == email })
	if idx < 0 {
		return nil, false
	}
	return d.users[idx].clone(), true
}

// FindByID returns the user with the given id.
func (d *staticDirectory) FindByID(id string) (*User, bool) {
	idx := slices.IndexFunc(d.users, func(u User) bool { return u.ID == id })
	if idx < 0 {
		return nil, false
	}
	return d.users[idx].clone(), true
}

// CheckPassword compares against the sentinel hash in constant time.
func (d *staticDirectory) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(d.passwordHash, []byte(password)) == nil
}
