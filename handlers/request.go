package handlers

import (
	"mime/multipart"
	"strconv"

	"capstone-tracker/helper"
	"capstone-tracker/middleware"
	"capstone-tracker/models"
	"capstone-tracker/storage"

	"github.com/gin-gonic/gin"
)

const (
	fileField = "file"
	pdfMIME   = "application/pdf"
	docxMIME  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// paramID parses a positive id path parameter and answers 400 otherwise.
func paramID(c *gin.Context, h *helper.HTTPHelper, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		h.SendBadRequest(c, "Invalid "+name, h.EmptyJsonMap())
		return 0, false
	}
	return uint(id), true
}

// formUpload opens a multipart file. The caller closes it.
func formUpload(c *gin.Context, field string) (storage.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return storage.Upload{}, nil, models.NewValidationError("file is required", map[string]string{field: "a PDF file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return storage.Upload{}, nil, models.NewStorageError("open upload", err)
	}
	return storage.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

func userID(c *gin.Context) uint {
	return middleware.UserID(c)
}
