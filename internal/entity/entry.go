package entity

import (
	"path"
	"strings"
)

// FolderPrefix is a logical top-level folder inside a case archive.
type FolderPrefix string

const (
	PrefixPages       FolderPrefix = "pages"
	PrefixPhotos      FolderPrefix = "photos"
	PrefixAttachments FolderPrefix = "attachments"
)

// Label is the folder title used on the remote side, without the path separator.
func (p FolderPrefix) Label() string {
	return string(p)
}

// Dir is the archive path prefix, with the trailing separator.
func (p FolderPrefix) Dir() string {
	return string(p) + "/"
}

// ArchiveEntry is a read-only view over one classified archive member.
type ArchiveEntry struct {
	Path   string       // Full name inside the archive, may carry a query suffix
	Prefix FolderPrefix // The folder the entry was classified under
	Ext    string       // Lowercased extension of CleanPath, including the dot
}

// CleanPath is the entry name with any query suffix stripped.
func (e ArchiveEntry) CleanPath() string {
	if idx := strings.Index(e.Path, "?"); idx >= 0 {
		return e.Path[:idx]
	}

	return e.Path
}

// BaseName is the last path segment of CleanPath.
func (e ArchiveEntry) BaseName() string {
	return path.Base(e.CleanPath())
}

// AttachmentRecord is one row of the case_data/case_attachments.json manifest.
type AttachmentRecord struct {
	Filename string `json:"Filename"`
	Source   string `json:"Source"`
}
