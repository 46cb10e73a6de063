package uploader

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jgivc/casebridge/internal/config"
	"github.com/jgivc/casebridge/internal/entity"
	"github.com/spf13/afero"
)

const (
	serviceName = "uploader"
)

type Archive interface {
	List(prefixes []entity.FolderPrefix) []entity.ArchiveEntry
	Read(name string) ([]byte, error)
	Manifest() ([]entity.AttachmentRecord, error)
}

type Reconstructor interface {
	Reconstruct(data []byte, extractImages bool) (*entity.ReconstructedDocument, error)
}

type Ingestor interface {
	IngestUpload(ctx context.Context, collectionID string, file io.Reader, meta *entity.UploadMetadata) (*entity.UploadResult, error)
}

type FolderResolver interface {
	Resolve(ctx context.Context, collectionID string, labels []string) (map[string]string, error)
}

type Collector interface {
	Uploaded(name, remoteID string)
	Skipped(name string)
	Failed(name string, err error)
	Report() *entity.RunReport
}

// Service drives one archive through the pipeline: classify, reconstruct,
// derive metadata, upload, link children. Entries are processed strictly one
// after another. A failure on one entry never aborts the batch.
type Service struct {
	cfg          *config.UploaderConfig
	collectionID string
	recon        Reconstructor
	gw           Ingestor
	resolver     FolderResolver
	collector    Collector
	fs           afero.Fs
	log          *slog.Logger
}

func NewService(cfg *config.UploaderConfig, collectionID string, recon Reconstructor, gw Ingestor,
	resolver FolderResolver, collector Collector, fs afero.Fs, log *slog.Logger) *Service {
	return &Service{
		cfg:          cfg,
		collectionID: collectionID,
		recon:        recon,
		gw:           gw,
		resolver:     resolver,
		collector:    collector,
		fs:           fs,
		log:          log.With(slog.String("service", serviceName)),
	}
}

// Run processes every selected entry of the archive and returns the run
// report. Only resource-acquisition failures (folder resolution, manifest
// parse, staging setup) are fatal; per-entry failures are recorded and the
// batch continues. On context cancellation the partial report is returned
// together with the context error.
func (s *Service) Run(ctx context.Context, archive Archive) (*entity.RunReport, error) {
	prefixes := make([]entity.FolderPrefix, 0, len(s.cfg.Labels))
	needManifest := false
	for _, label := range s.cfg.Labels {
		prefix := entity.FolderPrefix(label)
		prefixes = append(prefixes, prefix)
		if prefix == entity.PrefixAttachments {
			needManifest = true
		}
	}

	folderIDs, err := s.resolver.Resolve(ctx, s.collectionID, s.cfg.Labels)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve folders: %w", err)
	}

	var manifest []entity.AttachmentRecord
	if needManifest {
		if manifest, err = archive.Manifest(); err != nil {
			return nil, fmt.Errorf("cannot load attachments manifest: %w", err)
		}
	}

	st, err := newStaging(s.fs, s.cfg.StagingDir, s.log)
	if err != nil {
		return nil, fmt.Errorf("cannot create staging area: %w", err)
	}
	defer st.cleanup()

	entries := archive.List(prefixes)
	s.log.Info("Start run", slog.Int("entries", len(entries)), slog.String("collection_id", s.collectionID))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			s.log.Warn("Run interrupted", slog.Any("error", err))

			return s.collector.Report(), err
		}

		var (
			remoteID string
			procErr  error
		)

		switch entry.Prefix {
		case entity.PrefixPages:
			remoteID, procErr = s.processDocument(ctx, archive, st, entry, folderIDs, s.cfg.ExtractImages)
		case entity.PrefixPhotos:
			remoteID, procErr = s.processDocument(ctx, archive, st, entry, folderIDs, true)
		case entity.PrefixAttachments:
			remoteID, procErr = s.processAttachment(ctx, archive, st, entry, folderIDs, manifest)
		default:
			s.collector.Skipped(entry.Path)

			continue
		}

		if procErr != nil {
			s.collector.Failed(entry.Path, procErr)

			continue
		}

		s.collector.Uploaded(entry.Path, remoteID)
	}

	return s.collector.Report(), nil
}

// processDocument reconstructs one captured page and uploads it, then uploads
// its embedded images with the freshly created page as their parent.
func (s *Service) processDocument(ctx context.Context, archive Archive, st *staging,
	entry entity.ArchiveEntry, folderIDs map[string]string, extractImages bool) (string, error) {
	data, err := archive.Read(entry.Path)
	if err != nil {
		return "", err
	}

	doc, err := s.recon.Reconstruct(data, extractImages)
	if err != nil {
		return "", fmt.Errorf("cannot reconstruct document: %w", err)
	}

	meta := PageMeta(entry, doc, folderIDs[entry.Prefix.Label()])

	result, err := s.upload(ctx, st, meta, doc.HTMLBody)
	if err != nil {
		return "", err
	}

	if !extractImages || result.ID == "" {
		return result.ID, nil
	}

	for _, img := range doc.Images {
		imgMeta := ImageMeta(entry, doc, img, result.ID)
		if _, err := s.upload(ctx, st, imgMeta, img.Bytes); err != nil {
			return "", fmt.Errorf("cannot upload embedded image %s: %w", img.FileName, err)
		}
	}

	return result.ID, nil
}

func (s *Service) processAttachment(ctx context.Context, archive Archive, st *staging,
	entry entity.ArchiveEntry, folderIDs map[string]string, manifest []entity.AttachmentRecord) (string, error) {
	data, err := archive.Read(entry.Path)
	if err != nil {
		return "", err
	}

	meta := AttachmentMeta(entry, manifest, folderIDs[entry.Prefix.Label()])

	result, err := s.upload(ctx, st, meta, data)
	if err != nil {
		return "", err
	}

	return result.ID, nil
}

// upload stages the outbound bytes in the run's staging area, submits them and
// removes the staged file on every path.
func (s *Service) upload(ctx context.Context, st *staging, meta *entity.UploadMetadata, data []byte) (*entity.UploadResult, error) {
	file, release, err := st.stage(data)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.gw.IngestUpload(ctx, s.collectionID, file, meta)
	if err != nil {
		return nil, fmt.Errorf("cannot upload %s: %w", meta.FileName, err)
	}

	return result, nil
}
