package service

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/pkg/uniqueid"
)

// LinkToken is a freshly generated invite code and its keyed hash.
type LinkToken struct {
	Code       string
	Hashed     string
	Permission model.Permission
}

// LinkTokenGenerator produces invite codes and the hashes that bind them to a
// board and a permission level.
type LinkTokenGenerator struct {
	secret     []byte
	codeLength int
}

// NewLinkTokenGenerator validates the secret (1..64 bytes, the BLAKE2b key
// limit) and returns a generator.
func NewLinkTokenGenerator(secret string, codeLength int) (*LinkTokenGenerator, error) {
	if len(secret) == 0 || len(secret) > blake2b.Size {
		return nil, fmt.Errorf("link secret must be between 1 and %d bytes", blake2b.Size)
	}
	if codeLength <= 0 {
		return nil, fmt.Errorf("invalid link code length: %d", codeLength)
	}
	return &LinkTokenGenerator{secret: []byte(secret), codeLength: codeLength}, nil
}

// Generate draws a random code and hashes it together with boardID and permission.
func (g *LinkTokenGenerator) Generate(boardID string, permission model.Permission) (LinkToken, error) {
	code, err := uniqueid.Code(g.codeLength)
	if err != nil {
		return LinkToken{}, err
	}
	return LinkToken{
		Code:       code,
		Hashed:     g.Hash(boardID, code, permission),
		Permission: permission,
	}, nil
}

// Hash returns the hex encoded keyed BLAKE2b-256 of boardID+code+permission.
func (g *LinkTokenGenerator) Hash(boardID, code string, permission model.Permission) string {
	h, err := blake2b.New256(g.secret)
	if err != nil {
		// unreachable: key length is checked in NewLinkTokenGenerator
		panic(err)
	}
	h.Write([]byte(boardID + code + string(permission)))
	return hex.EncodeToString(h.Sum(nil))
}

// Validate recomputes the hash and compares it to hashed in constant time.
func (g *LinkTokenGenerator) Validate(boardID, code string, permission model.Permission, hashed string) bool {
	expected := g.Hash(boardID, code, permission)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(hashed)) == 1
}
