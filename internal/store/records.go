// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package store holds the locally persisted records: Cloudflare accounts and
// Worker script sources, together with the invariants the collections keep.
package store

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
)

// Validation errors returned by the collection mutators. Nothing is changed
// when one of these is returned.
var (
	ErrInvalidEmail    = errors.New("please enter a valid email")
	ErrEmptyAPIKey     = errors.New("API key is required")
	ErrEmptyName       = errors.New("script name is required")
	ErrEmptyURL        = errors.New("GitHub URL is required")
	ErrDuplicateName   = errors.New("script name already exists")
	ErrIndexOutOfRange = errors.New("invalid choice")
	ErrNotFound        = errors.New("not found")
)

// Account is a set of Cloudflare credentials.
type Account struct {
	Email  string
	APIKey string
}

// accountJSON is the on-disk shape. Older files use global_api_key, which is
// also what gets written back.
type accountJSON struct {
	Email        string `json:"email"`
	GlobalAPIKey string `json:"global_api_key,omitempty"`
	APIKey       string `json:"api_key,omitempty"`
}

func (a Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(accountJSON{Email: a.Email, GlobalAPIKey: a.APIKey})
}

func (a *Account) UnmarshalJSON(data []byte) error {
	var aux accountJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Email = aux.Email
	a.APIKey = aux.GlobalAPIKey
	if a.APIKey == "" {
		a.APIKey = aux.APIKey
	}
	return nil
}

// ValidateEmail applies the only check made on account emails: non-empty
// and containing '@'.
func ValidateEmail(email string) error {
	if email = strings.TrimSpace(email); email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// NewAccount trims and validates operator input.
func NewAccount(email, apiKey string) (Account, error) {
	email = strings.TrimSpace(email)
	apiKey = strings.TrimSpace(apiKey)
	if err := ValidateEmail(email); err != nil {
		return Account{}, err
	}
	if apiKey == "" {
		return Account{}, ErrEmptyAPIKey
	}
	return Account{Email: email, APIKey: apiKey}, nil
}

// MaskedKey returns the first eight and last four characters of the key.
func (a Account) MaskedKey() string {
	k := []rune(a.APIKey)
	head := k[:min(8, len(k))]
	tail := k[max(0, len(k)-4):]
	return string(head) + "..." + string(tail)
}

// Accounts is an ordered account collection. Order is significant: bulk
// deployments walk it as stored.
type Accounts []Account

// Remove returns a copy of the collection without the entry at index.
func (a Accounts) Remove(index int) (Accounts, Account, error) {
	if index < 0 || index >= len(a) {
		return a, Account{}, ErrIndexOutOfRange
	}
	removed := a[index]
	out := slices.Delete(slices.Clone(a), index, index+1)
	return out, removed, nil
}

// ScriptSource is a named URL pointing at Worker source code.
type ScriptSource struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	IsDefault bool   `json:"is_default"`
}

// ScriptSources is an ordered collection holding at most one default entry.
type ScriptSources []ScriptSource

// Find looks up an entry by name, ignoring case.
func (s ScriptSources) Find(name string) (int, bool) {
	for i, item := range s {
		if strings.EqualFold(item.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// Add returns a copy with a new entry appended. The first entry of an empty
// collection always becomes the default; otherwise makeDefault decides.
func (s ScriptSources) Add(name, url string, makeDefault bool) (ScriptSources, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" {
		return s, ErrEmptyName
	}
	if url == "" {
		return s, ErrEmptyURL
	}
	if _, exists := s.Find(name); exists {
		return s, ErrDuplicateName
	}

	out := append(slices.Clone(s), ScriptSource{Name: name, URL: url})
	if len(out) == 1 || makeDefault {
		out.setDefault(len(out) - 1)
	}
	return out, nil
}

// Remove returns a copy without the entry at index. When the removed entry
// was the default and others remain, the first remaining entry is promoted
// and promoted reports true.
func (s ScriptSources) Remove(index int) (out ScriptSources, removed ScriptSource, promoted bool, err error) {
	if index < 0 || index >= len(s) {
		return s, ScriptSource{}, false, ErrIndexOutOfRange
	}
	removed = s[index]
	out = slices.Delete(slices.Clone(s), index, index+1)
	if removed.IsDefault && len(out) > 0 {
		out.setDefault(0)
		promoted = true
	}
	return out, removed, promoted, nil
}

// SetDefault returns a copy where exactly the entry at index is default.
func (s ScriptSources) SetDefault(index int) (ScriptSources, error) {
	if index < 0 || index >= len(s) {
		return s, ErrIndexOutOfRange
	}
	out := slices.Clone(s)
	out.setDefault(index)
	return out, nil
}

func (s ScriptSources) setDefault(index int) {
	for i := range s {
		s[i].IsDefault = i == index
	}
}

// DefaultIndex returns the index of the flagged default entry, or -1.
func (s ScriptSources) DefaultIndex() int {
	return slices.IndexFunc(s, func(item ScriptSource) bool { return item.IsDefault })
}

// DefaultURL returns the default entry's URL, falling back to the first
// entry and then to fallback.
func (s ScriptSources) DefaultURL(fallback string) string {
	if i := s.DefaultIndex(); i >= 0 {
		return s[i].URL
	}
	if len(s) > 0 {
		return s[0].URL
	}
	return fallback
}

// normalize clears the default flag on every entry after the first flagged one.
func (s ScriptSources) normalize() {
	seen := false
	for i := range s {
		if s[i].IsDefault {
			if seen {
				s[i].IsDefault = false
			}
			seen = true
		}
	}
}

// SeedScripts is the collection created on first run.
func SeedScripts(defaultURL string) ScriptSources {
	return ScriptSources{{Name: "Default Worker", URL: defaultURL, IsDefault: true}}
}
