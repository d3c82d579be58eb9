package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrInvalidPayload = errors.New("invalid image payload")
	ErrNotImage       = errors.New("payload is not an image")
	ErrTooLarge       = errors.New("image too large")
	ErrDisabled       = errors.New("media uploads are not configured")
)

// Relay 外部图片托管：上传返回稳定 URL，按 URL 删除
type Relay interface {
	Upload(ctx context.Context, folder, payload string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Image is a decoded upload.
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeImage accepts a data URI ("data:image/png;base64,...") or bare base64
// and verifies that the bytes sniff as an image.
func DecodeImage(payload string, maxBytes int64) (*Image, error) {
	raw := payload
	if strings.HasPrefix(raw, "data:") {
		idx := strings.Index(raw, ",")
		if idx < 0 || !strings.Contains(raw[:idx], ";base64") {
			return nil, ErrInvalidPayload
		}
		raw = raw[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, ErrNotImage
	}
	return &Image{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}

// ObjectKey builds folder/yyyy/m/d/uuid.ext
func ObjectKey(folder, ext string) string {
	d := time.Now()
	return fmt.Sprintf("%s/%d/%d/%d/%s%s", folder, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

type disabledRelay struct{}

// Disabled returns a relay that rejects uploads and ignores deletes.
func Disabled() Relay { return disabledRelay{} }

func (disabledRelay) Upload(context.Context, string, string) (string, error) { return "", ErrDisabled }
func (disabledRelay) Delete(context.Context, string) error                   { return nil }
