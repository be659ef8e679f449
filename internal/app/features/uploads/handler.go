// internal/app/features/uploads/handler.go
package uploads

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dalemusser/gatherhub/internal/app/system/httpjson"
)

// MaxUploadBytes caps image uploads at 8 MB.
const MaxUploadBytes = 8 << 20

// Handler stores user and group images on disk under BaseDir. Files are
// served back under URLPrefix by the file server mounted in routes.
type Handler struct {
	BaseDir   string
	URLPrefix string
	Log       *zap.Logger
}

func NewHandler(baseDir, urlPrefix string, logger *zap.Logger) *Handler {
	return &Handler{
		BaseDir:   baseDir,
		URLPrefix: urlPrefix,
		Log:       logger,
	}
}

// HandleImage accepts a multipart "image" field and stores it under a
// collision-free name. Returns the public path for the stored file.
// POST /upload/image
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "invalidInput")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httpjson.Fail(w, http.StatusBadRequest, "imageRequired")
		return
	}
	defer file.Close()

	if !allowedImageType(header.Header.Get("Content-Type")) {
		httpjson.Fail(w, http.StatusBadRequest, "imageTypeInvalid")
		return
	}

	relPath, err := h.store(file, header.Filename)
	if err != nil {
		h.Log.Error("image upload failed", zap.Error(err))
		httpjson.Fail(w, http.StatusInternalServerError, "serverError")
		return
	}

	httpjson.Created(w, "imageUploaded", map[string]string{
		"path": h.URLPrefix + "/" + relPath,
	})
}

// store writes the file under uploads/YYYY/MM/uuid-filename and returns
// the path relative to BaseDir.
func (h *Handler) store(src io.Reader, filename string) (string, error) {
	now := time.Now().UTC()
	dateDir := fmt.Sprintf("%04d/%02d", now.Year(), now.Month())
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename))
	relPath := dateDir + "/" + uniqueName

	dir := filepath.Join(h.BaseDir, filepath.FromSlash(dateDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(dir, uniqueName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return relPath, nil
}

func allowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// sanitizeFilename removes or replaces characters that could be problematic in filenames.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}

	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
