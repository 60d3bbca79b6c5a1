package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cloud-drive/internal/schemas"
	"cloud-drive/internal/services"
	"cloud-drive/internal/utils"
)

type FileHdl interface {
	ListFiles(c *gin.Context)
	UploadFile(c *gin.Context)
	GetStats(c *gin.Context)
	GetDownloadLocation(c *gin.Context)
	DeleteFile(c *gin.Context)
}

type FileHandler struct {
	FileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) FileHdl {
	return &FileHandler{FileService: fileService}
}

// ListFiles returns the caller's files, optionally narrowed by ?search= and ?type=.
func (handler *FileHandler) ListFiles(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}

	files, err := handler.FileService.List(c, id, c.Query(utils.SearchParamKey), c.Query(utils.TypeParamKey))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, files, http.StatusOK)
}

func (handler *FileHandler) UploadFile(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}

	upload, file, ok := openUpload(c, utils.FileFormKey)
	if !ok {
		return
	}
	defer file.Close()

	form, ok := bindUploadForm(c)
	if !ok {
		return
	}
	upload.Description = form.Description

	fileDto, err := handler.FileService.Create(c, id, upload)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, fileDto, http.StatusCreated)
}

func (handler *FileHandler) GetStats(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}

	stats, err := handler.FileService.Stats(c, id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, stats, http.StatusOK)
}

func (handler *FileHandler) GetDownloadLocation(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}
	fileId, ok := fileIdParam(c)
	if !ok {
		return
	}

	download, err := handler.FileService.ResolveDownloadLocation(c, id, fileId)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, download, http.StatusOK)
}

func (handler *FileHandler) DeleteFile(c *gin.Context) {
	id, ok := accountId(c)
	if !ok {
		return
	}
	fileId, ok := fileIdParam(c)
	if !ok {
		return
	}

	deleted, err := handler.FileService.Delete(c, id, fileId)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.WriteAndLogResponse(c, deleted, http.StatusOK)
}

// fileIdParam parses the file id of the path. An id that is not a UUID cannot exist,
// so it is reported as not found.
func fileIdParam(c *gin.Context) (uuid.UUID, bool) {
	fileId, err := uuid.Parse(c.Param(utils.FileIdParamKey))
	if err != nil {
		utils.WriteAndLogError(c, schemas.FileNotFound, err)
		return uuid.Nil, false
	}
	return fileId, true
}
