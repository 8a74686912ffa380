package media

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pmetrics "chambers/internal/platform/metrics"
	"chambers/internal/platform/tracer"
	dErrors "chambers/pkg/domain-errors"
	"chambers/pkg/platform/httputil"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Handler accepts multipart image uploads and stores them.
type Handler struct {
	store       Store
	maxBytes    int64
	logger      *slog.Logger
	metrics     *pmetrics.Metrics
	tracer      tracer.Tracer
	newObjectID func() string
}

// NewHandler constructs the upload handler. metrics and trc may be nil.
func NewHandler(store Store, maxUploadMB int64, logger *slog.Logger, m *pmetrics.Metrics, trc tracer.Tracer) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	if trc == nil {
		trc = tracer.NewNoop()
	}
	return &Handler{
		store:       store,
		maxBytes:    maxUploadMB << 20,
		logger:      logger,
		metrics:     m,
		tracer:      trc,
		newObjectID: func() string { return uuid.NewString() },
	}
}

// Register mounts the routes. Must sit behind the admin guard.
func (h *Handler) Register(r chi.Router) {
	r.Post("/", h.upload)
}

// UploadResponse is the wire shape of a finished upload.
type UploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), tracer.SpanMediaUpload)
	var err error
	defer func() { span.End(err) }()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err = r.ParseMultipartForm(h.maxBytes); err != nil {
		err = dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("upload must be multipart and at most %d MB", h.maxBytes>>20))
		httputil.WriteError(w, err)
		return
	}

	file, header, formErr := r.FormFile("file")
	if formErr != nil {
		err = dErrors.New(dErrors.CodeBadRequest, `multipart field "file" is required`)
		httputil.WriteError(w, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		err = dErrors.New(dErrors.CodeValidation, "only jpeg, png, gif, and webp images are accepted")
		httputil.WriteError(w, err)
		return
	}

	key := objectKey(h.newObjectID(), ext)
	url, putErr := h.store.Put(ctx, key, contentType, file)
	if putErr != nil {
		err = dErrors.Wrap(putErr, dErrors.CodeInternal, "failed to store upload")
		h.logger.ErrorContext(ctx, "media upload failed", "key", key, "error", putErr)
		httputil.WriteError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.MediaUploads.Inc()
		h.metrics.MediaUploadBytes.Add(float64(header.Size))
	}
	h.logger.InfoContext(ctx, "media uploaded",
		"key", key,
		"size_bytes", header.Size,
		"content_type", contentType,
	)
	httputil.WriteJSON(w, http.StatusCreated, UploadResponse{URL: url, Key: key})
}

// objectKey namespaces uploads by month so buckets stay listable.
func objectKey(objectID, ext string) string {
	return path.Join("uploads", time.Now().UTC().Format("2006/01"), objectID+strings.ToLower(ext))
}
