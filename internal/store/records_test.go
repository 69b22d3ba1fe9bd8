// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCount(s ScriptSources) int {
	n := 0
	for _, item := range s {
		if item.IsDefault {
			n++
		}
	}
	return n
}

func TestNewAccountValidation(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		key     string
		wantErr error
	}{
		{"valid", " ops@example.com ", " key123 ", nil},
		{"empty email", "", "key", ErrInvalidEmail},
		{"no at sign", "ops.example.com", "key", ErrInvalidEmail},
		{"empty key", "ops@example.com", "   ", ErrEmptyAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAccount(tt.email, tt.key)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ops@example.com", a.Email)
			assert.Equal(t, "key123", a.APIKey)
		})
	}
}

func TestMaskedKey(t *testing.T) {
	assert.Equal(t, "abcdefgh...wxyz", Account{APIKey: "abcdefghijklmnopqrstuvwxyz"}.MaskedKey())
	assert.Equal(t, "abcde...bcde", Account{APIKey: "abcde"}.MaskedKey())
	assert.Equal(t, "...", Account{}.MaskedKey())
}

func TestAccountJSON(t *testing.T) {
	data, err := json.Marshal(Account{Email: "a@b.c", APIKey: "k1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.c","global_api_key":"k1"}`, string(data))

	var legacy Account
	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@b.c","global_api_key":"k1"}`), &legacy))
	assert.Equal(t, Account{Email: "a@b.c", APIKey: "k1"}, legacy)

	var alias Account
	require.NoError(t, json.Unmarshal([]byte(`{"email":"a@b.c","api_key":"k2","extra":true}`), &alias))
	assert.Equal(t, Account{Email: "a@b.c", APIKey: "k2"}, alias)
}

func TestAccountsRemove(t *testing.T) {
	accounts := Accounts{{Email: "a@x"}, {Email: "b@x"}, {Email: "c@x"}}

	out, removed, err := accounts.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "b@x", removed.Email)
	assert.Equal(t, Accounts{{Email: "a@x"}, {Email: "c@x"}}, out)
	assert.Len(t, accounts, 3, "original collection is left untouched")

	_, _, err = accounts.Remove(3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, _, err = accounts.Remove(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestScriptAddFirstBecomesDefault(t *testing.T) {
	var s ScriptSources
	s, err := s.Add("One", "https://one", false)
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.True(t, s[0].IsDefault)

	s, err = s.Add("Two", "https://two", false)
	require.NoError(t, err)
	assert.True(t, s[0].IsDefault)
	assert.False(t, s[1].IsDefault)

	s, err = s.Add("Three", "https://three", true)
	require.NoError(t, err)
	assert.Equal(t, 2, s.DefaultIndex())
	assert.Equal(t, 1, defaultCount(s))
}

func TestScriptAddRejectsDuplicateName(t *testing.T) {
	s := ScriptSources{{Name: "Custom Worker", URL: "https://a", IsDefault: true}}

	out, err := s.Add("custom WORKER", "https://b", true)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, s, out)
	assert.Equal(t, ScriptSources{{Name: "Custom Worker", URL: "https://a", IsDefault: true}}, s)
}

func TestScriptAddRequiresFields(t *testing.T) {
	var s ScriptSources
	_, err := s.Add("  ", "https://a", false)
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = s.Add("name", "", false)
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestScriptSetDefaultExactlyOne(t *testing.T) {
	s := ScriptSources{
		{Name: "a", URL: "https://same"},
		{Name: "b", URL: "https://same", IsDefault: true},
		{Name: "c", URL: "https://c"},
	}

	for i := range s {
		out, err := s.SetDefault(i)
		require.NoError(t, err)
		assert.Equal(t, 1, defaultCount(out))
		assert.Equal(t, i, out.DefaultIndex())
	}

	_, err := s.SetDefault(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestScriptRemoveDefaultPromotesFirst(t *testing.T) {
	s := ScriptSources{
		{Name: "a", URL: "https://a"},
		{Name: "b", URL: "https://b", IsDefault: true},
		{Name: "c", URL: "https://c"},
	}

	out, removed, promoted, err := s.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "b", removed.Name)
	assert.True(t, promoted)
	assert.Equal(t, 0, out.DefaultIndex())
	assert.Equal(t, 1, defaultCount(out))
}

func TestScriptRemoveNonDefaultKeepsDefault(t *testing.T) {
	s := ScriptSources{
		{Name: "a", URL: "https://a", IsDefault: true},
		{Name: "b", URL: "https://b"},
	}

	out, _, promoted, err := s.Remove(1)
	require.NoError(t, err)
	assert.False(t, promoted)
	assert.Equal(t, 0, out.DefaultIndex())
}

func TestScriptRemoveLastLeavesEmpty(t *testing.T) {
	s := ScriptSources{{Name: "a", URL: "https://a", IsDefault: true}}

	out, _, promoted, err := s.Remove(0)
	require.NoError(t, err)
	assert.False(t, promoted)
	assert.Empty(t, out)
	assert.Equal(t, -1, out.DefaultIndex())
	assert.Equal(t, "https://fallback", out.DefaultURL("https://fallback"))
}

func TestDefaultURLFallsBackToFirst(t *testing.T) {
	s := ScriptSources{{Name: "a", URL: "https://a"}, {Name: "b", URL: "https://b"}}
	assert.Equal(t, "https://a", s.DefaultURL("https://fallback"))
}

func TestNormalizeKeepsFirstDefault(t *testing.T) {
	s := ScriptSources{
		{Name: "a", URL: "https://a"},
		{Name: "b", URL: "https://b", IsDefault: true},
		{Name: "c", URL: "https://c", IsDefault: true},
	}
	s.normalize()
	assert.Equal(t, 1, s.DefaultIndex())
	assert.Equal(t, 1, defaultCount(s))
}
