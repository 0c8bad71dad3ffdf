package filestorage

import (
	"errors"
	"mime/multipart"
)

// Upload errors
var (
	ErrNoFile          = errors.New("no file uploaded")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// ImageStorage stores uploaded images and returns the URL they are served from
type ImageStorage interface {
	// SaveImage validates and stores an image under subPath
	SaveImage(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously stored file by its URL
	DeleteFile(fileURL string) error
}
