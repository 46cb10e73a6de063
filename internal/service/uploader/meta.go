package uploader

import (
	"github.com/jgivc/casebridge/internal/entity"
	"github.com/jgivc/casebridge/internal/util"
)

// PageMeta derives the upload metadata of a reconstructed page. The file name
// is the archive entry name with any query suffix stripped.
func PageMeta(entry entity.ArchiveEntry, doc *entity.ReconstructedDocument, folderID string) *entity.UploadMetadata {
	return &entity.UploadMetadata{
		FileName:  entry.CleanPath(),
		Title:     doc.Title,
		Generator: entity.Generator,
		SourceURL: doc.SourceURL,
		ParentID:  folderID,
		ForeignID: util.IDFromString(entry.Path),
	}
}

// ImageMeta derives the upload metadata of one embedded image. The parent must
// already exist on the remote side.
func ImageMeta(entry entity.ArchiveEntry, doc *entity.ReconstructedDocument, img entity.EmbeddedImage, parentID string) *entity.UploadMetadata {
	return &entity.UploadMetadata{
		FileName:  img.FileName,
		Title:     doc.Title,
		Generator: entity.Generator,
		SourceURL: img.SourceLocation,
		ParentID:  parentID,
		ForeignID: util.IDFromString(entry.Path + "/" + img.FileName),
	}
}

// AttachmentMeta derives the upload metadata of an attachment, recovering the
// source URL from the manifest when the base file name matches a record
// exactly. First match wins.
func AttachmentMeta(entry entity.ArchiveEntry, manifest []entity.AttachmentRecord, folderID string) *entity.UploadMetadata {
	meta := &entity.UploadMetadata{
		FileName:  entry.Path,
		Title:     entry.BaseName(),
		Generator: entity.Generator,
		ParentID:  folderID,
		ForeignID: util.IDFromString(entry.Path),
	}

	base := entry.BaseName()
	for _, record := range manifest {
		if record.Filename == base {
			meta.SourceURL = record.Source

			break
		}
	}

	return meta
}
