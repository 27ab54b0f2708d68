package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/alexjbarnes/coaclient/internal/errors"
	"github.com/alexjbarnes/coaclient/internal/models"
)

// CreateClientError reports a failed registration. Err is either
// ErrClientExists, ErrInvalidName, or the underlying I/O failure.
type CreateClientError struct {
	Name string
	Err  error
}

func (e *CreateClientError) Error() string {
	if errors.Is(e.Err, apperrors.ErrClientExists) {
		return fmt.Sprintf("a client with name %q already exists", e.Name)
	}

	return fmt.Sprintf("writing client config %q: %v", e.Name, e.Err)
}

func (e *CreateClientError) Unwrap() error {
	return e.Err
}

// ConfigStore manages the shared file of registered client applications.
type ConfigStore struct {
	opts   Options
	tokens *TokenStore
	logger *slog.Logger
}

// NewConfigStore creates a ConfigStore. Deleting a client also removes its
// tokens through the given TokenStore; when tokens is nil one is created
// over the same layout.
func NewConfigStore(opts Options, tokens *TokenStore, logger *slog.Logger) *ConfigStore {
	if logger == nil {
		logger = slog.Default()
	}

	opts = opts.withDefaults()
	if tokens == nil {
		tokens = NewTokenStore(opts, logger)
	}

	return &ConfigStore{opts: opts, tokens: tokens, logger: logger}
}

// Register appends a new client record. The duplicate check looks at names
// only; nothing is written when the name is taken.
func (s *ConfigStore) Register(name, clientID, secret string, scopes []string) error {
	clean, err := cleanName(name)
	if err != nil {
		return &CreateClientError{Name: name, Err: err}
	}

	name = clean

	c := models.ClientConfig{
		Name:         name,
		ClientID:     clientID,
		ClientSecret: secret,
		Scopes:       models.JoinScopes(scopes),
	}

	if err := checkValues(c.ClientID, c.ClientSecret, c.Scopes); err != nil {
		return &CreateClientError{Name: name, Err: err}
	}

	taken, err := s.nameTaken(name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &CreateClientError{Name: name, Err: err}
	}

	if taken {
		return &CreateClientError{Name: name, Err: apperrors.ErrClientExists}
	}

	if err := s.appendRecord(c); err != nil {
		return &CreateClientError{Name: name, Err: err}
	}

	s.logger.Info("client registered", slog.String("client", name), slog.String("client_id", clientID))

	return nil
}

// nameTaken reports whether any data line carries name in its first field.
// Lines too short to parse still count, so a damaged record keeps its name.
func (s *ConfigStore) nameTaken(name string) (bool, error) {
	records, err := readRecords(s.opts.ConfigPath())
	if err != nil {
		return false, err
	}

	for _, rec := range records {
		if !isHeader(rec, configHeader) && rec.fields[0] == name {
			return true, nil
		}
	}

	return false, nil
}

func (s *ConfigStore) appendRecord(c models.ClientConfig) error {
	if err := os.MkdirAll(s.opts.Root, dirPerm); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	path := s.opts.ConfigPath()

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}

	records := [][]string{configRecord(c)}
	if isNew {
		records = append([][]string{configHeader}, records...)
	}

	if err := writeRecords(f, records...); err != nil {
		f.Close()
		return fmt.Errorf("writing config file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing config file: %w", err)
	}

	return nil
}

// Find returns the first record whose name or client id equals identifier.
// Names compare in normalized form; client ids compare exactly as stored.
func (s *ConfigStore) Find(identifier string) (*models.ClientConfig, error) {
	name := normalizeName(identifier)

	c, found, err := s.scan(func(c models.ClientConfig) bool {
		return c.Name == name || c.ClientID == identifier
	})
	if err != nil {
		s.logReadError(err)

		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrClientNotFound, identifier)
		}

		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrClientNotFound, identifier)
	}

	return &c, nil
}

// List returns every registered client in file order. A missing config file
// yields an empty list.
func (s *ConfigStore) List() ([]models.ClientConfig, error) {
	clients := []models.ClientConfig{}

	_, _, err := s.scan(func(c models.ClientConfig) bool {
		clients = append(clients, c)
		return false
	})
	if err != nil {
		s.logReadError(err)

		if errors.Is(err, fs.ErrNotExist) {
			return clients, nil
		}

		return nil, err
	}

	return clients, nil
}

// scan walks data records until match returns true. Malformed lines are
// logged and skipped.
func (s *ConfigStore) scan(match func(models.ClientConfig) bool) (models.ClientConfig, bool, error) {
	path := s.opts.ConfigPath()

	records, err := readRecords(path)
	if err != nil {
		return models.ClientConfig{}, false, err
	}

	for i, rec := range records {
		if isHeader(rec, configHeader) {
			continue
		}

		c, err := parseConfigRecord(rec.fields)
		if err != nil {
			s.logger.Warn("skipping config line",
				slog.String("path", path),
				slog.Int("record", i+1),
				slog.String("error", err.Error()),
			)

			continue
		}

		if match(c) {
			return c, true, nil
		}
	}

	return models.ClientConfig{}, false, nil
}

func (s *ConfigStore) logReadError(err error) {
	path := s.opts.ConfigPath()

	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("config file not found, add an application before generating tokens",
			slog.String("path", path),
		)

		return
	}

	s.logger.Error("reading config file", slog.String("path", path), slog.String("error", err.Error()))
}

// Delete removes the record for name and its token file. Unknown names and
// a missing config file are no-ops. Failures are logged and returned.
func (s *ConfigStore) Delete(name string) error {
	name, err := cleanName(name)
	if err != nil {
		s.logger.Error("deleting client", slog.String("error", err.Error()))
		return err
	}

	removed, err := s.removeRecords(name)
	if err != nil {
		s.logger.Error("deleting client config",
			slog.String("client", name),
			slog.String("error", err.Error()),
		)

		return err
	}

	if err := s.tokens.Delete(name); err != nil {
		return err
	}

	s.logger.Info("client deleted", slog.String("client", name), slog.Int("records_removed", removed))

	return nil
}

// removeRecords rewrites the config file without the lines for name and
// reports how many were dropped. The file is left untouched when nothing
// matches.
func (s *ConfigStore) removeRecords(name string) (int, error) {
	path := s.opts.ConfigPath()

	if s.opts.LegacySubstringDelete {
		return s.removeLinesContaining(path, name)
	}

	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}

		return 0, fmt.Errorf("reading config file: %w", err)
	}

	// Unmatched lines are written back verbatim.
	kept := make([]string, 0, len(records))
	for _, rec := range records {
		if !isHeader(rec, configHeader) && rec.fields[0] == name {
			continue
		}

		kept = append(kept, rec.raw)
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	err = replaceFile(path, func(w io.Writer) error {
		return writeLines(w, kept)
	})
	if err != nil {
		return 0, fmt.Errorf("rewriting config file: %w", err)
	}

	return removed, nil
}

// removeLinesContaining drops every raw line containing name, header
// included. A short name can therefore remove unrelated records.
func (s *ConfigStore) removeLinesContaining(path, name string) (int, error) {
	lines, err := readLines(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}

		return 0, fmt.Errorf("reading config file: %w", err)
	}

	var kept []string

	for _, line := range lines {
		if !strings.Contains(line, name) {
			kept = append(kept, line)
		}
	}

	removed := len(lines) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	err = replaceFile(path, func(w io.Writer) error {
		return writeLines(w, kept)
	})
	if err != nil {
		return 0, fmt.Errorf("rewriting config file: %w", err)
	}

	return removed, nil
}
