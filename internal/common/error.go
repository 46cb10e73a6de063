package common

import "fmt"

var (
	ErrManifestNotFound   = fmt.Errorf("attachments manifest not found")
	ErrEntryNotFound      = fmt.Errorf("archive entry not found")
	ErrUploadWithoutID    = fmt.Errorf("upload response carries no id")
	ErrCollectionRequired = fmt.Errorf("collection id is required")
)
