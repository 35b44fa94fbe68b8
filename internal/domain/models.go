// Package domain defines the core data structures for the credential vault:
// accounts, the website-keyed account map and bulk-import bookkeeping.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

var (
	// ErrInvalidText is returned for a website, username or password that is
	// not valid UTF-8 and so cannot survive the stored encoding unchanged
	ErrInvalidText = errors.New("invalid UTF-8")
	// ErrEmptyWebsite is returned when an account has no website
	ErrEmptyWebsite = errors.New("website must not be empty")
)

// Account is one set of credentials stored under a website
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AccountMap maps a website name (exact key) to its ordered accounts.
//
// Invariants kept by every mutating method:
//   - usernames are unique (case-sensitive) within one website;
//   - a website key never maps to an empty list.
type AccountMap map[string][]Account

// NewAccountMap returns an empty map
func NewAccountMap() AccountMap {
	return make(AccountMap)
}

// ValidateAccount checks that an account can be stored and read back
// unchanged. Field values are never included in the error.
func ValidateAccount(website, username, password string) error {
	if website == "" {
		return ErrEmptyWebsite
	}
	if err := validateText("website", website); err != nil {
		return err
	}
	if err := validateText("username", username); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// ValidatePassword checks that password is valid UTF-8
func ValidatePassword(password string) error {
	return validateText("password", password)
}

func validateText(field, value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w in %s", ErrInvalidText, field)
	}
	return nil
}

func (m AccountMap) find(website, username string) int {
	for i, account := range m[website] {
		if account.Username == username {
			return i
		}
	}
	return -1
}

// Add appends an account unless the website already has that username.
// It reports whether the map changed.
func (m AccountMap) Add(website, username, password string) bool {
	if m.find(website, username) >= 0 {
		return false
	}
	m[website] = append(m[website], Account{Username: username, Password: password})
	return true
}

// Remove deletes the account with username from website, dropping the website
// key once its last account is gone. It reports whether the map changed.
func (m AccountMap) Remove(website, username string) bool {
	i := m.find(website, username)
	if i < 0 {
		return false
	}

	accounts := m[website]
	if len(accounts) == 1 {
		delete(m, website)
		return true
	}

	remaining := make([]Account, 0, len(accounts)-1)
	remaining = append(remaining, accounts[:i]...)
	remaining = append(remaining, accounts[i+1:]...)
	m[website] = remaining
	return true
}

// SetPassword replaces the password of an existing account in place.
// It reports whether the account was found.
func (m AccountMap) SetPassword(website, username, password string) bool {
	i := m.find(website, username)
	if i < 0 {
		return false
	}
	m[website][i].Password = password
	return true
}

// Accounts returns a copy of the accounts stored under website; the result is
// empty, never nil, when the website is absent.
func (m AccountMap) Accounts(website string) []Account {
	accounts := m[website]
	out := make([]Account, len(accounts))
	copy(out, accounts)
	return out
}

// Password looks up the password for username under website
func (m AccountMap) Password(website, username string) (string, bool) {
	i := m.find(website, username)
	if i < 0 {
		return "", false
	}
	return m[website][i].Password, true
}

// Websites returns the website keys in sorted order
func (m AccountMap) Websites() []string {
	websites := make([]string, 0, len(m))
	for website := range m {
		websites = append(websites, website)
	}
	sort.Strings(websites)
	return websites
}

// Count returns the total number of accounts across all websites
func (m AccountMap) Count() int {
	n := 0
	for _, accounts := range m {
		n += len(accounts)
	}
	return n
}

// Clone returns a deep copy of the map
func (m AccountMap) Clone() AccountMap {
	out := make(AccountMap, len(m))
	for website, accounts := range m {
		out[website] = append([]Account(nil), accounts...)
	}
	return out
}
