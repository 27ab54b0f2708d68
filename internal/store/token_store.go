package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	apperrors "github.com/alexjbarnes/coaclient/internal/errors"
	"github.com/alexjbarnes/coaclient/internal/models"
)

// TokenStore keeps one token file per client name.
type TokenStore struct {
	opts   Options
	logger *slog.Logger
}

// NewTokenStore creates a TokenStore over the given layout. A nil logger
// uses slog.Default().
func NewTokenStore(opts Options, logger *slog.Logger) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenStore{opts: opts.withDefaults(), logger: logger}
}

// Save replaces the token file for name with a fresh header and one data
// line. Prior content is never merged. Failures are logged and returned.
func (s *TokenStore) Save(name string, tokens models.AuthTokens) error {
	name, err := cleanName(name)
	if err != nil {
		s.logger.Error("saving tokens", slog.String("error", err.Error()))
		return err
	}

	path := s.opts.TokenPath(name)

	if err := checkValues(tokens.ExpiresIn); err != nil {
		s.logger.Error("saving tokens", slog.String("client", name), slog.String("error", err.Error()))
		return err
	}

	if err := s.save(path, tokens); err != nil {
		s.logger.Error("saving tokens",
			slog.String("client", name),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		return err
	}

	s.logger.Debug("tokens saved", slog.String("client", name))

	return nil
}

func (s *TokenStore) save(path string, tokens models.AuthTokens) error {
	if err := os.MkdirAll(s.opts.Root, dirPerm); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	return replaceFile(path, func(w io.Writer) error {
		if err := writeRecords(w, tokenHeader, tokenRecord(tokens)); err != nil {
			return fmt.Errorf("writing token file: %w", err)
		}

		return nil
	})
}

// Load returns the tokens cached for name. Only the first data line is
// read. A missing file or a file without data yields ErrTokensNotFound.
func (s *TokenStore) Load(name string) (*models.AuthTokens, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	path := s.opts.TokenPath(name)

	records, err := readRecords(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("token file not found, generate auth tokens for this client",
				slog.String("client", name),
				slog.String("path", path),
			)

			return nil, fmt.Errorf("%w for client %q", apperrors.ErrTokensNotFound, name)
		}

		s.logger.Error("reading token file", slog.String("path", path), slog.String("error", err.Error()))

		return nil, fmt.Errorf("reading token file: %w", err)
	}

	for _, rec := range records {
		if isHeader(rec, tokenHeader) {
			continue
		}

		tokens, err := parseTokenRecord(rec.fields)
		if err != nil {
			s.logger.Error("decoding token file", slog.String("path", path), slog.String("error", err.Error()))
			return nil, err
		}

		return &tokens, nil
	}

	s.logger.Error("token file has no data line", slog.String("client", name), slog.String("path", path))

	return nil, fmt.Errorf("%w for client %q", apperrors.ErrTokensNotFound, name)
}

// SavedAt returns when the tokens for name were last written, taken from
// the token file's modification time.
func (s *TokenStore) SavedAt(name string) (time.Time, error) {
	name, err := cleanName(name)
	if err != nil {
		return time.Time{}, err
	}

	info, err := os.Stat(s.opts.TokenPath(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%w for client %q", apperrors.ErrTokensNotFound, name)
		}

		return time.Time{}, fmt.Errorf("reading token file: %w", err)
	}

	return info.ModTime(), nil
}

// Delete removes the token file for name. A missing file is not an error.
func (s *TokenStore) Delete(name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}

	path := s.opts.TokenPath(name)

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		s.logger.Error("deleting token file", slog.String("path", path), slog.String("error", err.Error()))

		return fmt.Errorf("deleting token file: %w", err)
	}

	s.logger.Debug("token file deleted", slog.String("client", name))

	return nil
}

