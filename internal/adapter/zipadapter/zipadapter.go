package zipadapter

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/jgivc/casebridge/internal/common"
	"github.com/jgivc/casebridge/internal/entity"
	"github.com/spf13/afero"
)

const (
	ManifestPath = "case_data/case_attachments.json"

	dirSuffix = "/"
)

// acceptedExts maps each recognized prefix to its extension set. A nil set
// accepts any file under the prefix.
var acceptedExts = map[entity.FolderPrefix][]string{
	entity.PrefixPages:       {".mhtml"},
	entity.PrefixPhotos:      {".jpg", ".jpeg", ".gif", ".png"},
	entity.PrefixAttachments: nil,
}

type Adapter struct {
	fs  afero.Fs
	log *slog.Logger
}

func New(log *slog.Logger) *Adapter {
	return NewWithFS(afero.NewOsFs(), log)
}

func NewWithFS(fs afero.Fs, log *slog.Logger) *Adapter {
	return &Adapter{
		fs:  fs,
		log: log.With(slog.String("item", "ZipAdapter")),
	}
}

// Open opens a case archive for reading. The caller must Close it.
func (a *Adapter) Open(archivePath string) (*Archive, error) {
	file, err := a.fs.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("cannot open archive: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()

		return nil, fmt.Errorf("cannot stat archive: %w", err)
	}

	zr, err := zip.NewReader(file, stat.Size())
	if err != nil {
		file.Close()

		return nil, fmt.Errorf("cannot read archive: %w", err)
	}

	a.log.Info("Open archive", slog.String("path", archivePath), slog.Int("entries", len(zr.File)))

	return &Archive{zr: zr, file: file, log: a.log}, nil
}

type Archive struct {
	zr   *zip.Reader
	file afero.File
	log  *slog.Logger
}

// List classifies the archive members against the supplied prefixes and
// returns the matches as one concatenated pass per prefix, prefixes in the
// order given, entries within a prefix in archive listing order. Members that
// match no prefix or carry an unaccepted extension are excluded silently.
func (ar *Archive) List(prefixes []entity.FolderPrefix) []entity.ArchiveEntry {
	var entries []entity.ArchiveEntry
	for _, prefix := range prefixes {
		exts, supported := acceptedExts[prefix]
		if !supported {
			ar.log.Warn("Unknown folder prefix", slog.String("prefix", string(prefix)))

			continue
		}

		for _, f := range ar.zr.File {
			name := f.Name
			if !strings.HasPrefix(name, prefix.Dir()) || strings.HasSuffix(name, dirSuffix) {
				continue
			}

			entry := entity.ArchiveEntry{Path: name, Prefix: prefix}
			entry.Ext = strings.ToLower(path.Ext(entry.CleanPath()))

			if !extAccepted(exts, entry.Ext) {
				continue
			}

			entries = append(entries, entry)
		}
	}

	return entries
}

// Read returns the full contents of one archive member.
func (ar *Archive) Read(name string) ([]byte, error) {
	for _, f := range ar.zr.File {
		if f.Name != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("cannot open entry %s: %w", name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("cannot read entry %s: %w", name, err)
		}

		return data, nil
	}

	return nil, fmt.Errorf("%w: %s", common.ErrEntryNotFound, name)
}

// Manifest parses the attachments side-file listing original filenames and
// their source URLs.
func (ar *Archive) Manifest() ([]entity.AttachmentRecord, error) {
	data, err := ar.Read(ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrManifestNotFound, ManifestPath)
	}

	var records []entity.AttachmentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("cannot unmarshal attachments manifest: %w", err)
	}

	return records, nil
}

func (ar *Archive) Close() error {
	return ar.file.Close()
}

func extAccepted(exts []string, ext string) bool {
	if exts == nil {
		return true
	}

	for _, e := range exts {
		if e == ext {
			return true
		}
	}

	return false
}
