package model

import (
	"sort"
	"strings"
)

// Secret holds a named sensitive value such as an API key or password.
// Name is the unique, case-sensitive identifier; Value is plaintext once
// decrypted and must never be logged.
type Secret struct {
	Name  string
	Value string
}

// SecretSet maps secret names to values. Names are unique by construction;
// iteration helpers always return names in sorted order.
type SecretSet map[string]string

// NewSecretSet builds a SecretSet from a slice of secrets. A later entry with
// the same name replaces an earlier one.
func NewSecretSet(secrets []Secret) SecretSet {
	set := make(SecretSet, len(secrets))
	for _, s := range secrets {
		set[s.Name] = s.Value
	}
	return set
}

// Names returns all secret names in ascending order.
func (s SecretSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Secrets returns all entries ordered by name.
func (s SecretSet) Secrets() []Secret {
	out := make([]Secret, 0, len(s))
	for _, name := range s.Names() {
		out = append(out, Secret{Name: name, Value: s[name]})
	}
	return out
}

// Has reports whether a secret with the given name exists.
func (s SecretSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Clone returns an independent copy of the set.
func (s SecretSet) Clone() SecretSet {
	out := make(SecretSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Filter returns the sorted names containing substr (case-sensitive).
// An empty substr matches every name.
func (s SecretSet) Filter(substr string) []string {
	var out []string
	for _, name := range s.Names() {
		if strings.Contains(name, substr) {
			out = append(out, name)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
