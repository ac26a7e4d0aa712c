package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Gustavo-Marin05/media-service/internal/config"
	domain "github.com/Gustavo-Marin05/media-service/internal/domain/media"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/auth"
	"github.com/Gustavo-Marin05/media-service/internal/infrastructure/metrics"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver/requests"
	"github.com/Gustavo-Marin05/media-service/internal/interfaces/httpserver/responses"
	"github.com/Gustavo-Marin05/media-service/internal/utils/platformerrors"
)

const (
	// multipartOverhead leaves room for form boundaries and the post_id field.
	multipartOverhead = 1 << 20
	// multipartMemory is how much of the form is buffered in memory before spilling to disk.
	multipartMemory = 8 << 20
)

// MediaHandler exposes media endpoints.
type MediaHandler struct {
	cfg      *config.Config
	service  *domain.Service
	validate *validator.Validate
	log      zerolog.Logger
}

func NewMediaHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		cfg:      cfg,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log.With().Str("component", "media-handler").Logger(),
	}
}

// Upload godoc
// @Summary      Upload media for a post
// @Description  Stores the file in the object store and links it to the post. A post may own a single media file unless the service runs in one_to_many mode.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        file     formData  file    true  "File to upload"
// @Param        post_id  formData  string  true  "Post identifier"
// @Success      201      {object}  domain.MediaRecord
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      409      {object}  platformerrors.HTTPErrorResponse
// @Failure      500      {object}  platformerrors.HTTPErrorResponse
// @Failure      502      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/media/upload [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	if !h.parseUploadForm(c) {
		return
	}
	postID := strings.TrimSpace(c.PostForm("post_id"))
	if postID == "" {
		platformerrors.WriteValidationError(c, "post_id is required")
		return
	}
	h.upload(c, func(req domain.UploadRequest) (*domain.MediaRecord, error) {
		req.CorrelationKey = postID
		return h.service.Upload(c.Request.Context(), req)
	})
}

// UploadLegacy godoc
// @Summary      Upload media without a post
// @Description  Assigns a generated post_id before storing the file.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      201   {object}  domain.MediaRecord
// @Failure      400   {object}  platformerrors.HTTPErrorResponse
// @Failure      502   {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/media [post]
func (h *MediaHandler) UploadLegacy(c *gin.Context) {
	if !h.parseUploadForm(c) {
		return
	}
	h.upload(c, func(req domain.UploadRequest) (*domain.MediaRecord, error) {
		return h.service.UploadWithGeneratedKey(c.Request.Context(), req)
	})
}

// parseUploadForm caps the request body and parses the multipart form once, before any
// field is read.
func (h *MediaHandler) parseUploadForm(c *gin.Context) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxMediaBytes+multipartOverhead)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			platformerrors.WriteValidationError(c, "file exceeds max size")
			return false
		}
		platformerrors.WriteValidationError(c, "No file part")
		return false
	}
	return true
}

func (h *MediaHandler) upload(c *gin.Context, run func(domain.UploadRequest) (*domain.MediaRecord, error)) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		platformerrors.WriteValidationError(c, "No file part")
		return
	}
	if fileHeader.Filename == "" {
		platformerrors.WriteValidationError(c, "No selected file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		platformerrors.WriteValidationError(c, "failed to read uploaded file")
		return
	}
	defer file.Close()

	record, err := run(domain.UploadRequest{
		Body:         file,
		FileNameHint: fileHeader.Filename,
		Owner:        auth.OwnerFromContext(c),
	})
	if err != nil {
		metrics.RecordUpload("unknown", "error", 0)
		platformerrors.WriteError(c, err, h.log)
		return
	}

	metrics.RecordUpload(record.ContentType, "success", record.SizeBytes)
	c.JSON(http.StatusCreated, record)
}

// bindPostIDs decodes and validates a JSON body carrying a post_ids array.
func (h *MediaHandler) bindPostIDs(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "post_ids" {
			platformerrors.WriteValidationError(c, "post_ids must be an array")
			return false
		}
		platformerrors.WriteValidationError(c, "post_ids array is required")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Field() == "ExpiresInHours" {
			platformerrors.WriteValidationError(c, "expires_in_hours must not be negative")
			return false
		}
		platformerrors.WriteValidationError(c, "post_ids array is required")
		return false
	}
	return true
}

// GetByPostID godoc
// @Summary      Get media by post
// @Tags         media
// @Produce      json
// @Param        post_id  path      string  true  "Post identifier"
// @Success      200      {object}  domain.MediaRecord
// @Failure      404      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/media/post/{post_id} [get]
func (h *MediaHandler) GetByPostID(c *gin.Context) {
	record, err := h.service.GetByCorrelationKey(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Batch godoc
// @Summary      Get media for many posts
// @Description  Resolves all post ids with one query and reports which were not found.
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request  body      requests.BatchRequest  true  "Post ids"
// @Success      200      {object}  domain.BatchResult
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/media/batch [post]
func (h *MediaHandler) Batch(c *gin.Context) {
	var req requests.BatchRequest
	if !h.bindPostIDs(c, &req) {
		return
	}

	result, err := h.service.GetBatch(c.Request.Context(), req.PostIDs)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Presign godoc
// @Summary      Generate presigned URLs
// @Description  Issues time-limited download URLs for the media of the given posts. Only available with MEDIA_URL_POLICY=presigned.
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request  body      requests.PresignRequest  true  "Post ids and lifetime"
// @Success      200      {object}  domain.PresignResult
// @Failure      400      {object}  platformerrors.HTTPErrorResponse
// @Failure      501      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/media/presign [post]
func (h *MediaHandler) Presign(c *gin.Context) {
	var req requests.PresignRequest
	if !h.bindPostIDs(c, &req) {
		return
	}

	result, err := h.service.PresignURLs(c.Request.Context(), req.PostIDs, req.ExpiresInHours)
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListMine godoc
// @Summary      List the caller's media
// @Tags         media
// @Produce      json
// @Success      200  {object}  responses.MediaListResponse
// @Failure      401  {object}  platformerrors.HTTPErrorResponse
// @Security     BearerAuth
// @Router       /v1/media/mine [get]
func (h *MediaHandler) ListMine(c *gin.Context) {
	records, err := h.service.ListByOwner(c.Request.Context(), auth.OwnerFromContext(c))
	if err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.BuildMediaListResponse(records))
}

// DeleteByPostID godoc
// @Summary      Delete media by post
// @Tags         media
// @Produce      json
// @Param        post_id  path      string  true  "Post identifier"
// @Success      200      {object}  responses.MessageResponse
// @Failure      404      {object}  platformerrors.HTTPErrorResponse
// @Failure      500      {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/media/post/{post_id} [delete]
func (h *MediaHandler) DeleteByPostID(c *gin.Context) {
	if err := h.service.DeleteByCorrelationKey(c.Request.Context(), c.Param("post_id")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.MessageResponse{Message: "File deleted successfully"})
}

// DeleteByID godoc
// @Summary      Delete media by id
// @Tags         media
// @Produce      json
// @Param        id   path      string  true  "Media id"
// @Success      200  {object}  responses.MessageResponse
// @Failure      404  {object}  platformerrors.HTTPErrorResponse
// @Failure      500  {object}  platformerrors.HTTPErrorResponse
// @Router       /v1/media/{id} [delete]
func (h *MediaHandler) DeleteByID(c *gin.Context) {
	if err := h.service.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		platformerrors.WriteError(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, responses.MessageResponse{Message: "File deleted successfully"})
}
