package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/ericfisherdev/secm/internal/domain/model"
	"github.com/ericfisherdev/secm/internal/domain/port/driven"
)

// SecretService is the CRUD contract consumed by the CLI. It keeps an
// in-memory SecretSet mirroring the backend and always persists before it
// mutates that set, so a storage failure never leaves the two out of sync.
//
// A SecretService is meant for one interactive session owning exclusive
// access to its backend; it is not safe for concurrent use.
type SecretService struct {
	storage driven.SecretStorage
	secrets model.SecretSet
	logger  *slog.Logger
}

// NewSecretService creates a service and loads the current secrets from
// storage. If loading fails the service is still returned, starts empty, and
// the load error is returned alongside it for the caller to surface.
func NewSecretService(ctx context.Context, storage driven.SecretStorage, logger *slog.Logger) (*SecretService, error) {
	s := &SecretService{
		storage: storage,
		secrets: model.SecretSet{},
		logger:  logger,
	}
	return s, s.Load(ctx)
}

// Load rebuilds the in-memory set from storage. On failure the set is empty.
func (s *SecretService) Load(ctx context.Context) error {
	secrets, err := s.storage.GetAll(ctx)
	if err != nil {
		s.secrets = model.SecretSet{}
		return fmt.Errorf("load secrets: %w", err)
	}
	s.secrets = model.NewSecretSet(secrets)
	s.logger.Debug("secrets loaded", "count", len(s.secrets))
	return nil
}

// Add stores a new secret. Name and value are trimmed first.
func (s *SecretService) Add(ctx context.Context, name, value string) error {
	name, value, err := validateFields("add", name, value)
	if err != nil {
		return err
	}
	if s.secrets.Has(name) {
		return model.NewError(model.KindSecret, "add", fmt.Errorf("%w: %q", model.ErrAlreadyExists, name))
	}

	if err := s.storage.Write(ctx, name, value); err != nil {
		return fmt.Errorf("add %q: %w", name, err)
	}
	s.secrets[name] = value
	s.logger.Debug("secret added", "name", name)
	return nil
}

// Update replaces oldName with newName and newValue. It persists as
// Delete(oldName) followed by Write(newName). If the delete succeeds and the
// write fails, the old secret is gone from both storage and memory and the
// returned error wraps model.ErrUpdateIncomplete.
func (s *SecretService) Update(ctx context.Context, oldName, newName, newValue string) error {
	oldName = strings.TrimSpace(oldName)
	if oldName == "" {
		return model.NewError(model.KindSecret, "update", model.ErrNotSelected)
	}
	newName, newValue, err := validateFields("update", newName, newValue)
	if err != nil {
		return err
	}
	if !s.secrets.Has(oldName) {
		return model.NewError(model.KindSecret, "update", fmt.Errorf("%w: %q", model.ErrNotFound, oldName))
	}
	if newName != oldName && s.secrets.Has(newName) {
		return model.NewError(model.KindSecret, "update", fmt.Errorf("%w: %q", model.ErrAlreadyExists, newName))
	}

	if err := s.storage.Delete(ctx, oldName); err != nil {
		return fmt.Errorf("update %q: %w", oldName, err)
	}
	if err := s.storage.Write(ctx, newName, newValue); err != nil {
		delete(s.secrets, oldName)
		s.logger.Error("secret removed but replacement not written",
			"old_name", oldName,
			"new_name", newName,
			"error", err,
		)
		return model.NewError(model.KindSecret, "update",
			fmt.Errorf("%w: %q -> %q: %w", model.ErrUpdateIncomplete, oldName, newName, err))
	}

	delete(s.secrets, oldName)
	s.secrets[newName] = newValue
	s.logger.Debug("secret updated", "old_name", oldName, "new_name", newName)
	return nil
}

// Delete removes the named secret from storage, then from memory.
func (s *SecretService) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.NewError(model.KindSecret, "delete", model.ErrNotSelected)
	}
	if !s.secrets.Has(name) {
		return model.NewError(model.KindSecret, "delete", fmt.Errorf("%w: %q", model.ErrNotFound, name))
	}

	if err := s.storage.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	delete(s.secrets, name)
	s.logger.Debug("secret deleted", "name", name)
	return nil
}

// Get returns the value of the named secret from the in-memory set.
func (s *SecretService) Get(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.NewError(model.KindSecret, "get", model.ErrNotSelected)
	}
	value, ok := s.secrets[name]
	if !ok {
		return "", model.NewError(model.KindSecret, "get", fmt.Errorf("%w: %q", model.ErrNotFound, name))
	}
	return value, nil
}

// Names returns every secret name in sorted order.
func (s *SecretService) Names() []string {
	return s.secrets.Names()
}

// Filter returns the sorted names containing substr. Matching is
// case-sensitive and never touches storage.
func (s *SecretService) Filter(substr string) []string {
	return s.secrets.Filter(substr)
}

// Generate creates a human-usable random password of the given length and
// stores it under name with the same checks as Add. The generated value is
// returned so the caller can display or copy it.
func (s *SecretService) Generate(ctx context.Context, name string, length int, useSymbols bool) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.NewError(model.KindSecret, "generate", model.ErrEmptyField)
	}
	if s.secrets.Has(name) {
		return "", model.NewError(model.KindSecret, "generate", fmt.Errorf("%w: %q", model.ErrAlreadyExists, name))
	}

	value, err := GeneratePassword(length, useSymbols)
	if err != nil {
		return "", err
	}
	if err := s.Add(ctx, name, value); err != nil {
		return "", err
	}
	return value, nil
}

// validateFields trims name and value and enforces the codec's constraints:
// both non-empty and free of whitespace.
func validateFields(op, name, value string) (string, string, error) {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return "", "", model.NewError(model.KindSecret, op, model.ErrEmptyField)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) || strings.ContainsFunc(value, unicode.IsSpace) {
		return "", "", model.NewError(model.KindSecret, op, model.ErrInvalidCharacter)
	}
	return name, value, nil
}
