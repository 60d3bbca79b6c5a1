package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cloud-drive/internal/schemas"
	"cloud-drive/internal/services"
	"cloud-drive/internal/utils"
)

var errMissingAccount = errors.New("account id missing in context")

// uploadForm holds the text fields sent next to an uploaded file.
type uploadForm struct {
	Description *string `form:"description" validate:"omitempty,max=500"`
}

// openUpload reads the multipart file under field. On failure the error response is
// written and ok is false; the caller must close the returned file otherwise.
func openUpload(c *gin.Context, field string) (upload *services.Upload, file multipart.File, ok bool) {
	header, err := c.FormFile(field)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			utils.WriteAndLogError(c, schemas.FileTooLarge, err)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			utils.WriteAndLogError(c, schemas.FileMissing, err)
		default:
			utils.WriteAndLogError(c, schemas.BadRequest, err)
		}
		return nil, nil, false
	}

	file, err = header.Open()
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, err)
		return nil, nil, false
	}

	return &services.Upload{
		Name:     header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  file,
	}, file, true
}

// bindUploadForm reads, sanitizes and validates the text fields of an upload.
func bindUploadForm(c *gin.Context) (*uploadForm, bool) {
	form := &uploadForm{}
	if err := c.ShouldBind(form); err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, err)
		return nil, false
	}

	validator := utils.GetValidator()
	if err := validator.SanitizeData(form); err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, err)
		return nil, false
	}
	if err := validator.Validate.Struct(form); err != nil {
		utils.WriteAndLogError(c, schemas.BadRequest, err)
		return nil, false
	}

	return form, true
}

// accountId returns the id set by the JWT middleware.
func accountId(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.AccountId(c)
	if !ok {
		utils.WriteAndLogError(c, schemas.Unauthorized, errMissingAccount)
		return uuid.Nil, false
	}
	return id, true
}
