// Package identity issues and verifies the opaque owner tokens held by clients.
//
// A token is "<owner id>.<mac>" where mac is a keyed BLAKE2b-256 of the owner
// id. The server keeps no session table; the owner's data lives in storage.
package identity

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/ev-1233/Blackjac-chip-counter/internal/dependencies/ids"
	"github.com/ev-1233/Blackjac-chip-counter/internal/model"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid owner token")
	ErrInvalidKey   = errors.New("signing key must be 1 to 64 bytes")
)

// Service mints owner ids and signs them
type Service struct {
	key []byte
	ids ids.Generator
}

// New creates an identity Service using key for token MACs
func New(key []byte, ids ids.Generator) (*Service, error) {
	if len(key) == 0 || len(key) > blake2b.Size {
		return nil, ErrInvalidKey
	}
	return &Service{
		key: key,
		ids: ids,
	}, nil
}

// Issue creates a new owner and returns it with its token
func (s *Service) Issue() (model.OwnerID, string) {
	owner := s.ids.NewOwnerID()
	return owner, s.Sign(owner)
}

// Sign returns the token for an owner id
func (s *Service) Sign(owner model.OwnerID) string {
	return string(owner) + "." + hex.EncodeToString(s.mac(owner))
}

// Verify checks a token and returns the owner id it carries
func (s *Service) Verify(token string) (model.OwnerID, error) {
	id, sig, ok := strings.Cut(token, ".")
	if !ok || id == "" {
		return "", ErrInvalidToken
	}

	got, err := hex.DecodeString(sig)
	if err != nil {
		return "", ErrInvalidToken
	}

	owner := model.OwnerID(id)
	if subtle.ConstantTimeCompare(got, s.mac(owner)) != 1 {
		return "", ErrInvalidToken
	}
	return owner, nil
}

func (s *Service) mac(owner model.OwnerID) []byte {
	// New256 only fails for oversized keys, which New rejects
	h, _ := blake2b.New256(s.key)
	h.Write([]byte(owner))
	return h.Sum(nil)
}
