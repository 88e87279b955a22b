package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/kozaktomas/adproof/internal/canvas"
	"github.com/kozaktomas/adproof/internal/compositor"
	"github.com/kozaktomas/adproof/internal/constants"
)

var errNoFile = errors.New("no file provided")

// uploadedImage is a decoded multipart image ready to be stored.
type uploadedImage struct {
	Data     []byte
	Filename string
	Ext      string
	Size     canvas.Size
}

// readUploadedImage reads the multipart file field and checks that it decodes
// as an image.
func readUploadedImage(r *http.Request, field string) (*uploadedImage, error) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, errNoFile
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, constants.MaxUploadSize))
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	size, err := compositor.DecodeSize(data)
	if err != nil {
		return nil, errors.New("file is not a supported image")
	}

	name := filepath.Base(header.Filename)
	return &uploadedImage{
		Data:     data,
		Filename: name,
		Ext:      strings.ToLower(filepath.Ext(name)),
		Size:     size,
	}, nil
}

// storageKey builds a unique object key under prefix keeping the upload's extension.
func storageKey(prefix, adID, ext string) string {
	return fmt.Sprintf("%s/%s/%s%s", prefix, adID, uuid.New().String(), ext)
}
