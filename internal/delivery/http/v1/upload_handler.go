package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"go-placement-backend/internal/delivery/http/middleware"
	"go-placement-backend/internal/delivery/http/response"
	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/apperror"
	"go-placement-backend/pkg/storage"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadUC domain.UploadUsecase
}

// NewUploadHandler registers upload routes behind the upload limiter.
// Resumes are candidate-only; images are open to every signed-in role.
func NewUploadHandler(protected *gin.RouterGroup, uploadUC domain.UploadUsecase, limiter gin.HandlerFunc) {
	handler := &UploadHandler{uploadUC: uploadUC}

	uploads := protected.Group("/uploads", limiter)
	{
		uploads.POST("/resume", middleware.RequireRole(domain.RoleCandidate), handler.UploadResume)
		uploads.POST("/image", handler.UploadImage)
	}
}

// UploadResume godoc
// @Summary      Upload a resume
// @Description  PDF, DOC or DOCX up to 5 MB
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Resume file"
// @Success      201   {object}  response.Response{data=domain.UploadResult}
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Router       /uploads/resume [post]
// @Security     BearerAuth
func (h *UploadHandler) UploadResume(c *gin.Context) {
	filename, data, ok := readUpload(c, storage.ResumeKind)
	if !ok {
		return
	}
	result, err := h.uploadUC.UploadResume(c.Request.Context(), middleware.CurrentPrincipal(c).ID, filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Resume uploaded", result)
}

// UploadImage godoc
// @Summary      Upload an avatar or company logo
// @Description  JPEG, PNG or GIF up to 8 MB; stored re-encoded as JPEG
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind  query     string  true  "avatar or logo"
// @Param        file  formData  file    true  "Image file"
// @Success      201   {object}  response.Response{data=domain.UploadResult}
// @Failure      400   {object}  response.Response
// @Failure      413   {object}  response.Response
// @Router       /uploads/image [post]
// @Security     BearerAuth
func (h *UploadHandler) UploadImage(c *gin.Context) {
	filename, data, ok := readUpload(c, storage.ImageKind)
	if !ok {
		return
	}
	result, err := h.uploadUC.UploadImage(c.Request.Context(), middleware.CurrentPrincipal(c), c.Query("kind"), filename, data)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Image uploaded", result)
}

// readUpload reads the multipart "file" field, refusing anything larger
// than the kind allows before buffering it.
func readUpload(c *gin.Context, kind storage.Kind) (string, []byte, bool) {
	// Multipart framing needs some room beyond the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(kind.MaxBytes)+64<<10)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(tooLargeError(kind))
			return "", nil, false
		}
		c.Error(apperror.BadRequest("No file uploaded"))
		return "", nil, false
	}
	if file.Size > int64(kind.MaxBytes) {
		c.Error(tooLargeError(kind))
		return "", nil, false
	}

	src, err := file.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return "", nil, false
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, int64(kind.MaxBytes)+1))
	if err != nil {
		c.Error(apperror.Internal(err))
		return "", nil, false
	}
	if len(data) > kind.MaxBytes {
		c.Error(tooLargeError(kind))
		return "", nil, false
	}
	return file.Filename, data, true
}

func tooLargeError(kind storage.Kind) error {
	return apperror.New(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("File exceeds the %d MB %s limit", kind.MaxBytes>>20, kind.Name), nil)
}
