package driven

// MasterKeySize is the length in bytes of the AES-256 master key.
const MasterKeySize = 32

// KeyProvider obtains the master key from an OS-backed credential vault.
type KeyProvider interface {
	// EnsureKey creates and stores a new random key only if none exists yet.
	EnsureKey() error

	// GetKey returns a fresh copy of the master key. The caller owns the slice
	// and should wipe it when done. Returns model.ErrKeyUnavailable if the vault
	// has no entry or cannot be opened.
	GetKey() ([]byte, error)
}
