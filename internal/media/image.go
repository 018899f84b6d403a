package media

import (
	"errors"
	"fmt"
	"os"

	"github.com/h2non/filetype"
)

// DefaultMIME используется, когда тип изображения не удалось определить.
const DefaultMIME = "image/jpeg"

// ErrNotImage возвращается, если данные не похожи на изображение.
var ErrNotImage = errors.New("media: данные не являются изображением")

// allowedMimeTypes типы изображений, которые принимает API.
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/heif": true,
}

// Image байты изображения и их MIME тип.
type Image struct {
	Data []byte
	MIME string
}

// NewImage создаёт изображение. Пустой mime определяется по магическим байтам.
func NewImage(data []byte, mime string) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("media: изображение пустое")
	}
	if mime == "" {
		detected, err := DetectImageMIME(data)
		if err != nil {
			return nil, err
		}
		mime = detected
	}
	return &Image{Data: data, MIME: mime}, nil
}

// LoadImage читает изображение с диска.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("media: не удалось прочитать %s: %w", path, err)
	}
	return NewImage(data, "")
}

// DetectImageMIME определяет MIME по первым байтам и проверяет, что это изображение.
func DetectImageMIME(head []byte) (string, error) {
	if len(head) > 512 {
		head = head[:512]
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "", ErrNotImage
	}
	if !allowedMimeTypes[kind.MIME.Value] {
		return "", fmt.Errorf("%w: %s", ErrNotImage, kind.MIME.Value)
	}
	return kind.MIME.Value, nil
}
