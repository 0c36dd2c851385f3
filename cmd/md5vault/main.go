// Command md5vault hashes text with MD5 and runs the interactive
// username/password store.
//
// Usage:
//
//	md5vault sum [text...]
//	md5vault shell
//	md5vault export [file]
//	md5vault import <file>
//
// Configuration comes from the environment, optionally seeded from a .env
// file: MD5VAULT_DB, MD5VAULT_LOG_LEVEL, MD5VAULT_LOGIN_RATE and
// MD5VAULT_LOGIN_BURST.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/vaultsandbox/md5vault"
)

const usage = "usage: md5vault <sum|shell|export|import> [args]"

// Config holds the process environment of the command.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Getenv looks up environment variables. Nil means os.Getenv.
	Getenv func(string) string
	// EnvFile is read for variables the environment does not set. A
	// missing file is not an error.
	EnvFile string
}

// DefaultConfig returns a Config wired to the real process.
func DefaultConfig() *Config {
	return &Config{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		EnvFile: ".env",
	}
}

// exitFunc is swapped out in tests.
var exitFunc = os.Exit

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitFunc(1)
}

func run(args []string, cfg *Config) error {
	if len(args) < 2 {
		return errors.New(usage)
	}

	switch args[1] {
	case "sum":
		return runSum(args[2:], cfg)
	case "shell":
		return withStore(cfg, func(store *md5vault.Store) error {
			return runShell(store, cfg.Stdin, cfg.Stdout)
		})
	case "export":
		return withStore(cfg, func(store *md5vault.Store) error {
			return runExport(store, args[2:], cfg.Stdout)
		})
	case "import":
		if len(args) < 3 {
			return errors.New("usage: md5vault import <file>")
		}
		return withStore(cfg, func(store *md5vault.Store) error {
			return runImport(store, args[2], cfg.Stdin, cfg.Stdout)
		})
	default:
		return fmt.Errorf("unknown command: %s\n%s", args[1], usage)
	}
}

// settings is the configuration read from the environment.
type settings struct {
	dbPath     string
	logLevel   string
	loginRate  rate.Limit
	loginBurst int
}

func loadSettings(cfg *Config) (*settings, error) {
	getenv := cfg.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	fileEnv := map[string]string{}
	if cfg.EnvFile != "" {
		m, err := godotenv.Read(cfg.EnvFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", cfg.EnvFile, err)
		}
		if m != nil {
			fileEnv = m
		}
	}
	lookup := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fileEnv[key]
	}

	s := &settings{
		dbPath:    lookup("MD5VAULT_DB"),
		logLevel:  lookup("MD5VAULT_LOG_LEVEL"),
		loginRate: rate.Inf,
	}
	if s.dbPath == "" {
		s.dbPath = md5vault.MemoryPath
	}

	if v := lookup("MD5VAULT_LOGIN_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || r <= 0 {
			return nil, fmt.Errorf("invalid MD5VAULT_LOGIN_RATE %q", v)
		}
		s.loginRate = rate.Limit(r)
		s.loginBurst = 1
	}
	if v := lookup("MD5VAULT_LOGIN_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil || b < 1 {
			return nil, fmt.Errorf("invalid MD5VAULT_LOGIN_BURST %q", v)
		}
		s.loginBurst = b
	}

	return s, nil
}

// newLogger builds a logger writing to w. An empty level disables logging;
// debug uses the development encoder, other levels the production one.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid MD5VAULT_LOG_LEVEL: %w", err)
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if lvl == zapcore.DebugLevel {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

// withStore opens the configured store, runs fn and closes the store.
func withStore(cfg *Config, fn func(*md5vault.Store) error) (err error) {
	s, err := loadSettings(cfg)
	if err != nil {
		return err
	}

	logger, err := newLogger(s.logLevel, cfg.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := md5vault.Open(
		md5vault.WithPath(s.dbPath),
		md5vault.WithLogger(logger),
		md5vault.WithLoginRateLimit(s.loginRate, s.loginBurst),
	)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(store)
}

// runSum prints "<digest>  <text>" for each argument, or "<digest>  -"
// for standard input when there are none.
func runSum(args []string, cfg *Config) error {
	if len(args) == 0 {
		data, err := io.ReadAll(cfg.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		_, err = fmt.Fprintf(cfg.Stdout, "%s  -\n", md5vault.Sum(data))
		return err
	}

	for _, text := range args {
		if _, err := fmt.Fprintf(cfg.Stdout, "%s  %s\n", md5vault.SumString(text), text); err != nil {
			return err
		}
	}
	return nil
}

// createFile opens export files for writing; swapped out in tests.
var createFile = func(name string) (io.WriteCloser, error) { return os.Create(name) }

func runExport(store *md5vault.Store, args []string, stdout io.Writer) (err error) {
	exported, err := store.Export()
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if len(args) == 0 || args[0] == "-" {
		return writeExport(stdout, exported)
	}

	f, err := createFile(args[0])
	if err != nil {
		return fmt.Errorf("create %s: %w", args[0], err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", args[0], cerr)
		}
	}()
	return writeExport(f, exported)
}

func writeExport(w io.Writer, exported *md5vault.ExportedStore) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exported); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

func runImport(store *md5vault.Store, path string, stdin io.Reader, stdout io.Writer) error {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	var exported md5vault.ExportedStore
	if err := json.Unmarshal(data, &exported); err != nil {
		return fmt.Errorf("parse export: %w", err)
	}

	if err := store.Import(&exported); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	_, err = fmt.Fprintf(stdout, "imported %d accounts\n", len(exported.Accounts))
	return err
}
