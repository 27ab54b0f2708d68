package store

import (
	"bufio"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/alexjbarnes/coaclient/internal/errors"
	"github.com/alexjbarnes/coaclient/internal/models"
)

// Header rows. A line is recognized as the header by its first field alone.
var (
	configHeader = []string{"clientAppName", "clientId", "clientSecret", "scope"}
	tokenHeader  = []string{"refreshToken", "accessToken", "expiresIn"}
)

const maxLineSize = 1 << 20

// record is one non-blank line of a delimited file together with its fields.
type record struct {
	raw    string
	fields []string
}

func isHeader(rec record, header []string) bool {
	return len(rec.fields) > 0 && rec.fields[0] == header[0]
}

// readRecords parses a delimited file one line at a time. Blank lines are
// skipped. The returned error wraps the os error, so fs.ErrNotExist is
// detectable with errors.Is.
func readRecords(path string) ([]record, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	records := make([]record, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		records = append(records, record{raw: line, fields: splitLine(line)})
	}

	return records, nil
}

// splitLine parses a single line. Properly quoted fields are unquoted; a
// line that is not valid quoted CSV, as written by older tools that never
// quoted values, falls back to a plain split on the separator. A broken
// quote therefore never spills into the following lines.
func splitLine(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1

	fields, err := r.Read()
	if err != nil {
		return strings.Split(line, ",")
	}

	return fields
}

// readLines returns the raw lines of a file without parsing fields.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", filepath.Base(path), err)
	}

	return lines, nil
}

// writeLines writes raw lines, each terminated by a newline.
func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// checkValues rejects values that cannot live on a single line.
func checkValues(values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("%w: value contains a line break", apperrors.ErrMalformedRecord)
		}
	}

	return nil
}

// writeRecords serializes records one per line. Fields containing the
// separator or quotes are quoted so they cannot shift columns.
func writeRecords(w io.Writer, records ...[]string) error {
	cw := csv.NewWriter(w)
	return cw.WriteAll(records)
}

// replaceFile writes content to a temp file next to path and renames it
// into place, so readers never observe a half-written file.
func replaceFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}

	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("setting temp file mode: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		if removeErr := os.Remove(tmpName); removeErr != nil {
			return fmt.Errorf("renaming temp file: %v; also failed to remove temp file: %w", err, removeErr)
		}

		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func configRecord(c models.ClientConfig) []string {
	return []string{c.Name, c.ClientID, c.ClientSecret, c.Scopes}
}

// parseConfigRecord maps a config line to a ClientConfig. Name and client
// id are required; a missing secret or scope column reads as empty, since
// older files drop trailing empty fields.
func parseConfigRecord(record []string) (models.ClientConfig, error) {
	if len(record) < 2 {
		return models.ClientConfig{}, fmt.Errorf("%w: config line has %d fields", apperrors.ErrMalformedRecord, len(record))
	}

	c := models.ClientConfig{
		Name:     record[0],
		ClientID: record[1],
	}

	if len(record) > 2 {
		c.ClientSecret = record[2]
	}

	if len(record) > 3 {
		c.Scopes = record[3]
	}

	return c, nil
}

func tokenRecord(t models.AuthTokens) []string {
	return []string{encodeToken(t.RefreshToken), encodeToken(t.AccessToken), t.ExpiresIn}
}

func parseTokenRecord(record []string) (models.AuthTokens, error) {
	if len(record) < 2 {
		return models.AuthTokens{}, fmt.Errorf("%w: token line has %d fields", apperrors.ErrMalformedRecord, len(record))
	}

	refresh, err := decodeToken(record[0])
	if err != nil {
		return models.AuthTokens{}, fmt.Errorf("%w: refresh token: %v", apperrors.ErrMalformedRecord, err)
	}

	access, err := decodeToken(record[1])
	if err != nil {
		return models.AuthTokens{}, fmt.Errorf("%w: access token: %v", apperrors.ErrMalformedRecord, err)
	}

	t := models.AuthTokens{RefreshToken: refresh, AccessToken: access}
	if len(record) > 2 {
		t.ExpiresIn = record[2]
	}

	return t, nil
}

// encodeToken makes a token safe for the delimited format. This is an
// encoding, not encryption.
func encodeToken(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func decodeToken(s string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}

	return string(b), nil
}
