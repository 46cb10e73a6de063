package uploader

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	stagingPrefix = "casebridge"
)

// staging is a segregated per-run directory for outbound file bytes. Every
// staged file is removed after its upload, the whole directory at run end.
type staging struct {
	fs  afero.Fs
	dir string
	log *slog.Logger
}

func newStaging(fs afero.Fs, baseDir string, log *slog.Logger) (*staging, error) {
	dir, err := afero.TempDir(fs, baseDir, stagingPrefix)
	if err != nil {
		return nil, fmt.Errorf("cannot create staging dir: %w", err)
	}

	return &staging{
		fs:  fs,
		dir: dir,
		log: log.With(slog.String("item", "staging")),
	}, nil
}

// stage writes data to a uniquely named file and returns it open for reading.
// The release func closes and removes the file; callers must invoke it on all
// paths.
func (s *staging) stage(data []byte) (afero.File, func(), error) {
	name := filepath.Join(s.dir, uuid.NewString())

	if err := afero.WriteFile(s.fs, name, data, 0o600); err != nil {
		return nil, nil, fmt.Errorf("cannot write staging file: %w", err)
	}

	file, err := s.fs.Open(name)
	if err != nil {
		s.remove(name)

		return nil, nil, fmt.Errorf("cannot open staging file: %w", err)
	}

	release := func() {
		file.Close()
		s.remove(name)
	}

	return file, release, nil
}

func (s *staging) remove(name string) {
	if err := s.fs.Remove(name); err != nil {
		s.log.Error("Cannot remove staging file", slog.String("path", name), slog.Any("error", err))
	}
}

func (s *staging) cleanup() {
	if err := s.fs.RemoveAll(s.dir); err != nil {
		s.log.Error("Cannot remove staging dir", slog.String("path", s.dir), slog.Any("error", err))
	}
}
