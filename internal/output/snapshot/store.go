// Package snapshot reads and writes the published dataset consumed by the
// static web page.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/aggro-radar/internal/core/domain"
	"github.com/lueurxax/aggro-radar/internal/core/errors"
)

const (
	dataVar   = "keywordData"
	statusVar = "scraperStatus"

	filePerm = 0o644
	dirPerm  = 0o755

	logKeyPath    = "path"
	logKeyRecords = "records"
)

var (
	dataDecl   = regexp.MustCompile(`const\s+` + dataVar + `\s*=\s*`)
	statusDecl = regexp.MustCompile(`const\s+` + statusVar + `\s*=\s*`)
)

// Store persists records to a JavaScript file declaring keywordData and
// scraperStatus.
type Store struct {
	path   string
	limit  int
	logger *zerolog.Logger
}

// NewStore returns a store writing to path. A positive limit caps the number
// of rows written.
func NewStore(path string, limit int, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Store{path: path, limit: limit, logger: logger}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the previously published records. A missing or empty file
// yields no records; unparsable content yields ErrSnapshotCorrupt.
func (s *Store) Load() ([]domain.EnrichedRecord, error) {
	rows, err := s.LoadRows()
	if err != nil {
		return nil, err
	}

	out := make([]domain.EnrichedRecord, len(rows))
	for i, row := range rows {
		out[i] = row.Record()
	}

	return out, nil
}

// LoadRows returns the persisted rows as written.
func (s *Store) LoadRows() ([]Row, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var rows []Row
	if err := decodeDecl(data, dataDecl, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// LoadStatus returns the collection status persisted next to the records.
func (s *Store) LoadStatus() (domain.StatusMap, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	status := domain.StatusMap{}
	if err := decodeDecl(data, statusDecl, &status); err != nil {
		return nil, err
	}

	return status, nil
}

func decodeDecl(data []byte, decl *regexp.Regexp, v any) error {
	loc := decl.FindIndex(data)
	if loc == nil {
		return fmt.Errorf("%w: declaration not found", errors.ErrSnapshotCorrupt)
	}

	if err := json.NewDecoder(bytes.NewReader(data[loc[1]:])).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrSnapshotCorrupt, err)
	}

	return nil
}

// Save replaces the snapshot with records and status. The file is written to
// a temporary sibling and renamed, so readers never see a partial write.
// File system failures wrap ErrSnapshotWrite.
func (s *Store) Save(records []domain.EnrichedRecord, status domain.StatusMap) error {
	rows := Rows(records, s.limit)

	body, err := Render(rows, status)
	if err != nil {
		return err
	}

	if err := s.write(body); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrSnapshotWrite, err)
	}

	s.logger.Info().Str(logKeyPath, s.path).Int(logKeyRecords, len(rows)).Msg("snapshot saved")

	return nil
}

func (s *Store) write(body []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Chmod(tmpName, filePerm); err != nil {
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	return nil
}

// Check reports whether the snapshot is readable. It is used as a readiness probe.
func (s *Store) Check(_ context.Context) error {
	_, err := s.LoadRows()
	return err
}

// Render produces the file body for rows and status.
func Render(rows []Row, status domain.StatusMap) ([]byte, error) {
	if rows == nil {
		rows = []Row{}
	}

	if status == nil {
		status = domain.StatusMap{}
	}

	data, err := marshal(rows, "  ")
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}

	st, err := marshal(status, "  ")
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}

	var b strings.Builder

	b.WriteString("const " + dataVar + " = ")
	b.Write(data)
	b.WriteString(";\nconst " + statusVar + " = ")
	b.Write(st)
	b.WriteString(";\n")

	return []byte(b.String()), nil
}

func marshal(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if indent != "" {
		enc.SetIndent("", indent)
	}

	if err := enc.Encode(v); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
