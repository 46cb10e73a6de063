package mhtmladapter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"net/url"
	"path"
	"strings"

	"github.com/jgivc/casebridge/internal/entity"
)

const (
	hdrContentType     = "Content-Type"
	hdrContentLocation = "Content-Location"
	hdrTransferEnc     = "Content-Transfer-Encoding"
	hdrSubject         = "Subject"

	mediaTypeDefault = "text/plain"
	mediaTypeHTML    = "text/html"

	multipartPrefix = "multipart/"
	imagePrefix     = "image/"
)

type Adapter struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Adapter {
	return &Adapter{
		log: log.With(slog.String("item", "MHTMLAdapter")),
	}
}

// Reconstruct parses one captured-page serialization into a document. Text
// leaf parts are concatenated into the HTML body in document order. Image leaf
// parts are collected only when extractImages is set. Multipart containers
// contribute no body but are descended into. The source URL is the
// Content-Location of the first part that carries one, the title is the
// top-level Subject header verbatim.
func (a *Adapter) Reconstruct(data []byte, extractImages bool) (*entity.ReconstructedDocument, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot parse message: %w", err)
	}

	doc := &entity.ReconstructedDocument{
		Title: msg.Header.Get(hdrSubject),
	}

	if err := a.walk(textproto.MIMEHeader(msg.Header), msg.Body, doc, extractImages); err != nil {
		return nil, fmt.Errorf("cannot walk message parts: %w", err)
	}

	return doc, nil
}

func (a *Adapter) walk(hdr textproto.MIMEHeader, body io.Reader, doc *entity.ReconstructedDocument, extractImages bool) error {
	if loc := hdr.Get(hdrContentLocation); loc != "" && doc.SourceURL == "" {
		doc.SourceURL = loc
	}

	mediaType := mediaTypeDefault
	var params map[string]string

	if ctype := hdr.Get(hdrContentType); ctype != "" {
		var err error
		mediaType, params, err = mime.ParseMediaType(ctype)
		if err != nil {
			return fmt.Errorf("cannot parse content type %q: %w", ctype, err)
		}
	}

	if strings.HasPrefix(mediaType, multipartPrefix) {
		boundary := params["boundary"]
		if boundary == "" {
			return fmt.Errorf("multipart part without boundary")
		}

		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextRawPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("cannot read next part: %w", err)
			}

			if err := a.walk(part.Header, part, doc, extractImages); err != nil {
				return err
			}
		}

		return nil
	}

	switch {
	case mediaType == mediaTypeDefault || mediaType == mediaTypeHTML:
		payload, err := decodeBody(hdr, body)
		if err != nil {
			return fmt.Errorf("cannot decode text part: %w", err)
		}

		doc.HTMLBody = append(doc.HTMLBody, payload...)
	case extractImages && strings.HasPrefix(mediaType, imagePrefix):
		payload, err := decodeBody(hdr, body)
		if err != nil {
			return fmt.Errorf("cannot decode image part: %w", err)
		}

		loc := hdr.Get(hdrContentLocation)
		doc.Images = append(doc.Images, entity.EmbeddedImage{
			Bytes:          payload,
			SourceLocation: loc,
			FileName:       fileNameFromLocation(loc),
		})
	}

	return nil
}

func decodeBody(hdr textproto.MIMEHeader, body io.Reader) ([]byte, error) {
	switch strings.ToLower(hdr.Get(hdrTransferEnc)) {
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	}

	return io.ReadAll(body)
}

func fileNameFromLocation(loc string) string {
	if u, err := url.Parse(loc); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}

	return path.Base(loc)
}
