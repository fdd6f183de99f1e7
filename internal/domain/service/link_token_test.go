package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/pkg/uniqueid"
)

func newTestGenerator(t *testing.T) *LinkTokenGenerator {
	t.Helper()
	g, err := NewLinkTokenGenerator("0123456789abcdef0123456789abcdef", 10)
	require.NoError(t, err)
	return g
}

func TestNewLinkTokenGenerator(t *testing.T) {
	_, err := NewLinkTokenGenerator("", 10)
	assert.Error(t, err)

	_, err = NewLinkTokenGenerator(string(make([]byte, 65)), 10)
	assert.Error(t, err)

	_, err = NewLinkTokenGenerator("secret", 0)
	assert.Error(t, err)
}

func TestLinkTokenGenerator_Generate(t *testing.T) {
	g := newTestGenerator(t)

	token, err := g.Generate("B12ABCDEFGHI", model.PermissionView)
	require.NoError(t, err)

	assert.Len(t, token.Code, 10)
	for _, r := range token.Code {
		assert.Contains(t, uniqueid.URLSafeAlphabet, string(r))
	}
	assert.Len(t, token.Hashed, 64)
	assert.Equal(t, model.PermissionView, token.Permission)
	assert.True(t, g.Validate("B12ABCDEFGHI", token.Code, model.PermissionView, token.Hashed))
}

func TestLinkTokenGenerator_ValidateRejectsMutation(t *testing.T) {
	g := newTestGenerator(t)
	boardID := "B12ABCDEFGHI"

	token, err := g.Generate(boardID, model.PermissionEdit)
	require.NoError(t, err)

	tests := []struct {
		name       string
		boardID    string
		code       string
		permission model.Permission
		hashed     string
	}{
		{"board changed", "B98ZYXWVUTSR", token.Code, model.PermissionEdit, token.Hashed},
		{"code changed", boardID, token.Code + "x", model.PermissionEdit, token.Hashed},
		{"permission changed", boardID, token.Code, model.PermissionView, token.Hashed},
		{"hash truncated", boardID, token.Code, model.PermissionEdit, token.Hashed[:63]},
		{"empty hash", boardID, token.Code, model.PermissionEdit, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, g.Validate(tt.boardID, tt.code, tt.permission, tt.hashed))
		})
	}
}

func TestLinkTokenGenerator_HashIsKeyed(t *testing.T) {
	a := newTestGenerator(t)
	b, err := NewLinkTokenGenerator("another-secret-of-some-length!!", 10)
	require.NoError(t, err)

	assert.Equal(t,
		a.Hash("B12ABCDEFGHI", "code", model.PermissionView),
		a.Hash("B12ABCDEFGHI", "code", model.PermissionView))
	assert.NotEqual(t,
		a.Hash("B12ABCDEFGHI", "code", model.PermissionView),
		b.Hash("B12ABCDEFGHI", "code", model.PermissionView))
}
