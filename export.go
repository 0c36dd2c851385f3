package md5vault

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/tidwall/buntdb"
	"go.uber.org/zap"
)

// ExportVersion is the current export format version.
const ExportVersion = 1

// ExportedStore contains every account of a store.
// It holds digests only, but MD5 digests of weak passwords are easy to
// reverse. Handle exports as secrets.
type ExportedStore struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// ExportedAt is the export timestamp (ISO 8601). Informational only.
	ExportedAt time.Time `json:"exportedAt"`
	// Accounts are ordered by username.
	Accounts []ExportedAccount `json:"accounts"`
}

// ExportedAccount is one exported account.
type ExportedAccount struct {
	// Username is non-empty and unique within the export.
	Username string `json:"username"`
	// Digest is the password digest as 32 lowercase hex characters.
	Digest string `json:"digest"`
}

// Validate checks that the exported data is well formed. maxUsernameLength
// applies the same limit as [WithMaxUsernameLength]; zero disables it.
func (e *ExportedStore) Validate(maxUsernameLength int) error {
	if e.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, e.Version, ExportVersion)
	}

	seen := make(map[string]struct{}, len(e.Accounts))
	for i, a := range e.Accounts {
		if a.Username == "" {
			return fmt.Errorf("%w: account %d: username is required", ErrInvalidImportData, i)
		}
		if maxUsernameLength > 0 && utf8.RuneCountInString(a.Username) > maxUsernameLength {
			return fmt.Errorf("%w: account %q: username longer than %d characters", ErrInvalidImportData, a.Username, maxUsernameLength)
		}
		if _, dup := seen[a.Username]; dup {
			return fmt.Errorf("%w: account %q appears more than once", ErrInvalidImportData, a.Username)
		}
		seen[a.Username] = struct{}{}

		if _, err := ParseDigest(a.Digest); err != nil {
			return fmt.Errorf("%w: account %q: %v", ErrInvalidImportData, a.Username, err)
		}
	}

	return nil
}

// Export returns every account of the store.
func (s *Store) Export() (*ExportedStore, error) {
	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}

	exported := &ExportedStore{
		Version:    ExportVersion,
		ExportedAt: s.cfg.clock().UTC(),
		Accounts:   make([]ExportedAccount, 0, len(accounts)),
	}
	for _, a := range accounts {
		exported.Accounts = append(exported.Accounts, ExportedAccount{
			Username: a.Username,
			Digest:   a.Digest.String(),
		})
	}

	s.logger.Info("store exported", zap.Int("accounts", len(exported.Accounts)))
	return exported, nil
}

// Import adds every account of data to the store. Either all accounts are
// added or none are: an account whose username already exists aborts the
// import with ErrUsernameTaken.
func (s *Store) Import(data *ExportedStore) error {
	if data == nil {
		return fmt.Errorf("%w: no data", ErrInvalidImportData)
	}
	if err := data.Validate(s.cfg.maxUsernameLength); err != nil {
		return err
	}

	err := s.withDB(func(db *buntdb.DB) error {
		return db.Update(func(tx *buntdb.Tx) error {
			for _, a := range data.Accounts {
				// Validate already checked the digest.
				d, _ := ParseDigest(a.Digest)
				if err := insertAccount(tx, a.Username, d); err != nil {
					return &AccountError{Op: "import", Username: a.Username, Err: err}
				}
			}
			return nil
		})
	})
	if err != nil {
		s.logger.Warn("import rejected", zap.Error(err))
		return err
	}

	s.metrics.accountsCreated.Add(float64(len(data.Accounts)))
	s.logger.Info("store imported", zap.Int("accounts", len(data.Accounts)))
	return nil
}
