// Package datauri converts binary payloads to and from RFC 2397 data URIs,
// the transferable form used for attachments and audio.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	scheme       = "data:"
	base64Suffix = ";base64"
)

var ErrMalformed = errors.New("malformed data uri")

// Encode sniffs the MIME type of data and returns it as a base64 data URI.
func Encode(data []byte) string {
	return EncodeWithType(mimetype.Detect(data).String(), data)
}

// EncodeWithType returns data as a base64 data URI with the given MIME type.
func EncodeWithType(mediaType string, data []byte) string {
	var b strings.Builder
	b.Grow(len(scheme) + len(mediaType) + len(base64Suffix) + 1 + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(scheme)
	b.WriteString(mediaType)
	b.WriteString(base64Suffix)
	b.WriteByte(',')
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// Decode returns the MIME type and payload of a base64 data URI.
func Decode(uri string) (string, []byte, error) {
	if !strings.HasPrefix(uri, scheme) {
		return "", nil, fmt.Errorf("%w: missing %q prefix", ErrMalformed, scheme)
	}

	header, payload, found := strings.Cut(strings.TrimPrefix(uri, scheme), ",")
	if !found {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrMalformed)
	}

	if !strings.HasSuffix(header, base64Suffix) {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformed)
	}
	mediaType := strings.TrimSuffix(header, base64Suffix)

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return mediaType, data, nil
}

// MediaType returns the MIME type of a data URI without decoding its payload.
func MediaType(uri string) string {
	header, _, found := strings.Cut(strings.TrimPrefix(uri, scheme), ",")
	if !found || !strings.HasPrefix(uri, scheme) {
		return ""
	}
	mediaType, _, _ := strings.Cut(header, ";")
	return mediaType
}
