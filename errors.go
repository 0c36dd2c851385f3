package md5vault

import (
	"errors"
	"fmt"

	"github.com/vaultsandbox/md5vault/internal/crypto"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrEmptyUsername is returned when an account is created without a username.
	ErrEmptyUsername = errors.New("username is required")

	// ErrUsernameTooLong is returned when a username exceeds the configured limit.
	ErrUsernameTooLong = errors.New("username is too long")

	// ErrUsernameTaken is returned when creating or importing an account whose
	// username already exists.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrUnknownUser is returned when no account exists for a username.
	ErrUnknownUser = errors.New("no account with such username")

	// ErrStoreClosed is returned when operations are attempted on a closed store.
	ErrStoreClosed = errors.New("store has been closed")

	// ErrRateLimited is returned when the login rate limit is exceeded.
	ErrRateLimited = errors.New("login rate limit exceeded")

	// ErrInvalidImportData is returned when imported store data is invalid.
	ErrInvalidImportData = errors.New("invalid import data")

	// ErrInvalidDigest is returned when text is not a 32-character lowercase
	// hex digest.
	ErrInvalidDigest = errors.New("invalid digest")

	// ErrSignatureInvalid is returned when a sealed export's signature does
	// not verify.
	ErrSignatureInvalid = errors.New("signature verification failed")

	// ErrSignerMismatch is returned when a sealed export was signed by a key
	// other than the trusted one.
	ErrSignerMismatch = errors.New("export signed by an untrusted key")

	// ErrDecryptionFailed is returned when a sealed export cannot be decrypted.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// VaultError is implemented by all structured errors of this package.
type VaultError interface {
	error
	VaultError() // marker method
}

// AccountError records a failed operation on one account.
type AccountError struct {
	Op       string // "create", "validate", "lookup", "import"
	Username string
	Err      error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("%s account %q: %v", e.Op, e.Username, e.Err)
}

// Unwrap returns the underlying error.
func (e *AccountError) Unwrap() error {
	return e.Err
}

// VaultError implements the VaultError interface.
func (e *AccountError) VaultError() {}

// DecryptionError represents a failure to open a sealed export.
type DecryptionError struct {
	Stage string // "kem", "aes", "decode"
	Err   error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecryptionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *DecryptionError) Is(target error) bool {
	return target == ErrDecryptionFailed
}

// VaultError implements the VaultError interface.
func (e *DecryptionError) VaultError() {}

// SignatureVerificationError indicates potential tampering.
type SignatureVerificationError struct {
	Message string
}

func (e *SignatureVerificationError) Error() string {
	return fmt.Sprintf("signature verification failed: %s", e.Message)
}

// Is implements errors.Is for sentinel error matching.
func (e *SignatureVerificationError) Is(target error) bool {
	return target == ErrSignatureInvalid
}

// VaultError implements the VaultError interface.
func (e *SignatureVerificationError) VaultError() {}

// wrapCryptoError converts internal crypto errors to public errors so
// errors.Is() checks work with this package's sentinels.
func wrapCryptoError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, crypto.ErrSignatureVerificationFailed):
		return &SignatureVerificationError{Message: err.Error()}
	case errors.Is(err, crypto.ErrInvalidAlgorithm),
		errors.Is(err, crypto.ErrInvalidEnvelope):
		return fmt.Errorf("%w: %v", ErrInvalidImportData, err)
	case errors.Is(err, crypto.ErrDecryptionFailed):
		return &DecryptionError{Stage: "aes", Err: err}
	case errors.Is(err, crypto.ErrInvalidCiphertextSize),
		errors.Is(err, crypto.ErrInvalidSecretKeySize):
		return &DecryptionError{Stage: "kem", Err: err}
	}
	return err
}
