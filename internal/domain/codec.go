package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedData is returned when a decrypted payload is not a valid account map
var ErrMalformedData = errors.New("malformed account data")

type wireAccount struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// EncodeAccountMap serializes the map as indented JSON. Website keys are
// emitted in sorted order, so equal maps always produce equal bytes.
func EncodeAccountMap(m AccountMap) ([]byte, error) {
	if m == nil {
		m = NewAccountMap()
	}
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal accounts: %w", err)
	}
	return data, nil
}

// DecodeAccountMap parses a payload produced by EncodeAccountMap. Only an
// object of website names to lists of {username, password} records is
// accepted; unknown fields, missing fields, trailing data and any other
// shape fail with ErrMalformedData.
//
// Stored data that breaks the map invariants is repaired on the way in:
// empty website lists are dropped and repeated usernames keep their first
// occurrence.
func DecodeAccountMap(data []byte) (AccountMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var wire map[string][]wireAccount
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if wire == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedData)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after account map", ErrMalformedData)
	}

	m := make(AccountMap, len(wire))
	for website, accounts := range wire {
		for i, account := range accounts {
			if account.Username == nil || account.Password == nil {
				return nil, fmt.Errorf("%w: account %d of %q is missing a field", ErrMalformedData, i, website)
			}
			m.Add(website, *account.Username, *account.Password)
		}
	}

	return m, nil
}
