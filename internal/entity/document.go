package entity

// ReconstructedDocument is one captured web page rebuilt from its multi-part
// serialization. Owned by the reconstruction step, discarded after upload.
type ReconstructedDocument struct {
	HTMLBody  []byte
	SourceURL string // Content-Location of the first part that carried one
	Title     string // Top-level Subject header, verbatim
	Images    []EmbeddedImage
}

// EmbeddedImage is an inline resource of exactly one document. It is uploaded
// only after the parent document's remote id is known.
type EmbeddedImage struct {
	Bytes          []byte
	SourceLocation string
	FileName       string // Last path segment of SourceLocation
}
