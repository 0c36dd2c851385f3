package md5vault

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tidwall/buntdb"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// accountPrefix namespaces account keys in the database.
const accountPrefix = "account:"

func accountKey(username string) string {
	return accountPrefix + username
}

// Account is a username and the digest of its password.
type Account struct {
	Username string
	Digest   Digest
}

// Store is a username/password store that keeps only password digests.
// It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	closed bool

	db      *buntdb.DB
	cfg     *storeConfig
	logger  *zap.Logger
	limiter *rate.Limiter
	metrics *metrics
}

// Open opens a store. By default the store is in memory; use [WithPath]
// to persist it to a file.
func Open(opts ...Option) (*Store, error) {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	db, err := buntdb.Open(cfg.path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	m := newMetrics()
	if cfg.registerer != nil {
		if err := m.register(cfg.registerer); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	s := &Store{
		db:      db,
		cfg:     cfg,
		logger:  cfg.logger,
		limiter: rate.NewLimiter(cfg.loginLimit, cfg.loginBurst),
		metrics: m,
	}
	s.logger.Info("store opened", zap.String("path", cfg.path))
	return s, nil
}

// Close closes the store. Calling Close more than once is a no-op; every
// other operation on a closed store returns ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.cfg.registerer != nil {
		s.metrics.unregister(s.cfg.registerer)
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	s.logger.Debug("store closed", zap.String("path", s.cfg.path))
	return nil
}

// withDB runs fn under the read lock if the store is open. The lock only
// guards against Close; buntdb serializes transactions itself.
func (s *Store) withDB(fn func(db *buntdb.DB) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return fn(s.db)
}

// checkUsername applies the creation rules to a username.
func (s *Store) checkUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if limit := s.cfg.maxUsernameLength; limit > 0 && utf8.RuneCountInString(username) > limit {
		return fmt.Errorf("%w (max %d characters)", ErrUsernameTooLong, limit)
	}
	return nil
}

// digest hashes a password and records how long it took.
func (s *Store) digest(password string) Digest {
	start := time.Now()
	d := SumString(password)
	s.metrics.digestDurations.Observe(time.Since(start).Seconds())
	return d
}

// CreateAccount stores the digest of password under username. The
// password itself is not kept. Existing accounts are never overwritten.
func (s *Store) CreateAccount(username, password string) error {
	if err := s.checkUsername(username); err != nil {
		return &AccountError{Op: "create", Username: username, Err: err}
	}

	d := s.digest(password)
	err := s.withDB(func(db *buntdb.DB) error {
		return db.Update(func(tx *buntdb.Tx) error {
			return insertAccount(tx, username, d)
		})
	})
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			s.logger.Warn("account already exists", zap.String("username", username))
			return &AccountError{Op: "create", Username: username, Err: err}
		}
		return err
	}

	s.metrics.accountsCreated.Inc()
	s.logger.Info("account created", zap.String("username", username))
	return nil
}

// insertAccount sets the account key unless it already exists.
func insertAccount(tx *buntdb.Tx, username string, d Digest) error {
	key := accountKey(username)
	if _, err := tx.Get(key); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, buntdb.ErrNotFound) {
		return err
	}
	_, _, err := tx.Set(key, d.String(), nil)
	return err
}

// Exists reports whether an account exists for username.
func (s *Store) Exists(username string) (bool, error) {
	_, err := s.get(username)
	if errors.Is(err, ErrUnknownUser) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// get returns the stored digest text for username.
func (s *Store) get(username string) (string, error) {
	var value string
	err := s.withDB(func(db *buntdb.DB) error {
		return db.View(func(tx *buntdb.Tx) error {
			v, err := tx.Get(accountKey(username))
			if err != nil {
				return err
			}
			value = v
			return nil
		})
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return "", ErrUnknownUser
	}
	return value, err
}

// Validate reports whether password hashes to the digest stored for
// username. An unknown username is an error rather than a mismatch.
func (s *Store) Validate(username, password string) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	if !s.limiter.AllowN(s.cfg.clock(), 1) {
		s.metrics.validations.WithLabelValues(resultLimited).Inc()
		s.logger.Warn("login rate limited", zap.String("username", username))
		return false, ErrRateLimited
	}

	stored, err := s.get(username)
	if errors.Is(err, ErrUnknownUser) {
		s.metrics.validations.WithLabelValues(resultUnknown).Inc()
		s.logger.Warn("login for unknown user", zap.String("username", username))
		return false, &AccountError{Op: "validate", Username: username, Err: err}
	}
	if err != nil {
		return false, err
	}

	if s.digest(password).String() != stored {
		s.metrics.validations.WithLabelValues(resultMismatch).Inc()
		s.logger.Warn("password mismatch", zap.String("username", username))
		return false, nil
	}

	s.metrics.validations.WithLabelValues(resultMatch).Inc()
	s.logger.Debug("password validated", zap.String("username", username), zap.String("result", resultMatch))
	return true, nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return nil
}

// Lookup returns the account stored for username.
func (s *Store) Lookup(username string) (Account, error) {
	stored, err := s.get(username)
	if errors.Is(err, ErrUnknownUser) {
		return Account{}, &AccountError{Op: "lookup", Username: username, Err: err}
	}
	if err != nil {
		return Account{}, err
	}

	d, err := ParseDigest(stored)
	if err != nil {
		return Account{}, fmt.Errorf("stored digest for %q: %w", username, err)
	}
	return Account{Username: username, Digest: d}, nil
}

// Accounts returns every account ordered by username.
func (s *Store) Accounts() ([]Account, error) {
	var accounts []Account
	err := s.scan(func(username, value string) error {
		d, err := ParseDigest(value)
		if err != nil {
			return fmt.Errorf("stored digest for %q: %w", username, err)
		}
		accounts = append(accounts, Account{Username: username, Digest: d})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// scan calls fn for each account in key order, stopping at the first error.
func (s *Store) scan(fn func(username, value string) error) error {
	return s.withDB(func(db *buntdb.DB) error {
		return db.View(func(tx *buntdb.Tx) error {
			var fnErr error
			err := tx.AscendKeys(accountPrefix+"*", func(key, value string) bool {
				fnErr = fn(strings.TrimPrefix(key, accountPrefix), value)
				return fnErr == nil
			})
			if err != nil {
				return err
			}
			return fnErr
		})
	})
}

// Len returns the number of accounts.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.scan(func(string, string) error {
		n++
		return nil
	})
	return n, err
}

// IsEmpty reports whether the store holds no accounts.
func (s *Store) IsEmpty() (bool, error) {
	n, err := s.Len()
	return n == 0, err
}
