package session

import (
	"github.com/vault-cli/credvault/internal/domain"
)

// AddAccount stores a new account under website. Website and username are
// trimmed and NFC-normalized, as they are on import. It returns false without
// saving when the website already has an account with that username, and an
// error wrapping domain.ErrInvalidText or domain.ErrEmptyWebsite for values
// that cannot be stored unchanged.
func (s *Session) AddAccount(website, username, password string) (bool, error) {
	if err := domain.ValidateAccount(website, username, password); err != nil {
		return false, err
	}
	website, username = domain.NormalizeName(website), domain.NormalizeName(username)
	if website == "" {
		return false, domain.ErrEmptyWebsite
	}

	added, err := s.mutate(func(m domain.AccountMap) bool {
		return m.Add(website, username, password)
	})
	if err == nil && !added {
		s.logger.Debug("account already exists", "website", website, "username", username)
	}
	return added, err
}

// RemoveAccount deletes the account and drops the website once it has no
// accounts left. Absent websites or usernames are a no-op.
func (s *Session) RemoveAccount(website, username string) (bool, error) {
	website, username = s.accountKey(website, username)
	return s.mutate(func(m domain.AccountMap) bool {
		return m.Remove(website, username)
	})
}

// ModifyPassword replaces the password of an existing account. It returns
// false when the account does not exist.
func (s *Session) ModifyPassword(website, username, newPassword string) (bool, error) {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return false, err
	}

	website, username = s.accountKey(website, username)
	return s.mutate(func(m domain.AccountMap) bool {
		return m.SetPassword(website, username, newPassword)
	})
}

// accountKey returns the stored spelling of an account: the names as given
// when they match exactly, their normalized form otherwise.
func (s *Session) accountKey(website, username string) (string, string) {
	if _, ok := s.accounts.Password(website, username); ok {
		return website, username
	}
	return domain.NormalizeName(website), domain.NormalizeName(username)
}

// websiteKey is accountKey for a website alone
func (s *Session) websiteKey(website string) string {
	if len(s.accounts[website]) > 0 {
		return website
	}
	return domain.NormalizeName(website)
}

// ResetAll deletes every account and saves the empty map. Confirmation is
// the caller's job.
func (s *Session) ResetAll() error {
	_, err := s.mutate(func(m domain.AccountMap) bool {
		for website := range m {
			delete(m, website)
		}
		return true
	})
	if err == nil {
		s.logger.Info("all accounts erased", "location", s.backend.Location())
	}
	return err
}

// ImportRecords adds one account per delimited record, reading the fields at
// the given column indices. Malformed records are skipped and reported, never
// fatal; the map is saved once if anything was added.
func (s *Session) ImportRecords(records [][]string, cols domain.ImportColumns) (domain.ImportReport, error) {
	if err := cols.Validate(); err != nil {
		return domain.ImportReport{}, err
	}

	var report domain.ImportReport
	_, err := s.mutate(func(m domain.AccountMap) bool {
		report = m.Import(records, cols)
		return report.Imported > 0
	})
	if err != nil {
		return domain.ImportReport{}, err
	}

	for _, skipped := range report.Skipped {
		s.logger.Warn("skipped import record", "record", skipped.Index, "reason", skipped.Reason)
	}
	s.logger.Info("import finished",
		"imported", report.Imported, "duplicates", report.Duplicates, "skipped", len(report.Skipped))

	return report, nil
}

// GetAccounts returns the accounts stored under website, matched exactly or
// after normalization; the result is empty when the website is unknown.
func (s *Session) GetAccounts(website string) []domain.Account {
	return s.accounts.Accounts(s.websiteKey(website))
}

// GetPasswordByUsername returns the password of one account
func (s *Session) GetPasswordByUsername(website, username string) (string, bool) {
	website, username = s.accountKey(website, username)
	return s.accounts.Password(website, username)
}

// Websites returns every stored website in sorted order
func (s *Session) Websites() []string {
	return s.accounts.Websites()
}

// Count returns the number of stored accounts
func (s *Session) Count() int {
	return s.accounts.Count()
}

// BestMatch resolves a possibly misspelled website to a stored one, or
// returns the query unchanged when nothing is close enough.
func (s *Session) BestMatch(query string) string {
	return s.matcher.BestMatch(query, s.Websites())
}

// TopMatches lists the closest stored websites for disambiguation
func (s *Session) TopMatches(query string) []string {
	return s.matcher.TopMatches(query, s.Websites())
}
