// Package domain contains core concepts of the study-session system.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// CodeLength is the fixed length of a public session code.
const CodeLength = 12

// codeAlphabet is the 52-letter alphabet session codes are drawn from.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// groupPrefix scopes membership and message storage for one session.
const groupPrefix = "study_session_"

// SessionCode is the 12-character public identifier of a study session.
type SessionCode string

// GroupID is the internal key derived from a session code.
type GroupID string

// NewSessionCode samples CodeLength characters uniformly from the alphabet.
// Uniqueness among active sessions is the registry's concern, not ours.
func NewSessionCode() (SessionCode, error) {
	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return SessionCode(code), nil
}

// ValidSessionCode reports whether a raw code has the right length and
// consists solely of ASCII letters. Checked before any registry lookup.
func ValidSessionCode(raw string) bool {
	if len(raw) != CodeLength {
		return false
	}
	for _, r := range raw {
		if !strings.ContainsRune(codeAlphabet, r) {
			return false
		}
	}
	return true
}

// Group derives the storage/broadcast group identifier for this code.
func (c SessionCode) Group() GroupID {
	return GroupID(groupPrefix + string(c))
}
