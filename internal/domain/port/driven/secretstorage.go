// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/ericfisherdev/secm/internal/domain/model"
)

// SecretStorage defines the driven port for secret persistence. Every backend
// implements the same contract:
//
//   - Write inserts or overwrites (upsert).
//   - Read reports found=false, not an error, when the name is absent.
//   - Update and Delete return model.ErrNotFound when the name is absent.
//   - GetAll returns a full snapshot ordered by name.
//
// Values cross this boundary as plaintext; any encryption is the adapter's concern.
type SecretStorage interface {
	Write(ctx context.Context, name, value string) error
	Read(ctx context.Context, name string) (value string, found bool, err error)
	Update(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
	GetAll(ctx context.Context) ([]model.Secret, error)
	Close() error
}
