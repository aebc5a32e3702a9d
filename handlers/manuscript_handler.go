package handlers

import (
	"capstone-tracker/helper"
	"capstone-tracker/models"
	"capstone-tracker/services"
	"capstone-tracker/storage"

	"github.com/gin-gonic/gin"
)

const reviewedField = "reviewed_document"

type ManuscriptHandler struct {
	manuscriptService services.ManuscriptService
	Helper            *helper.HTTPHelper
}

func NewManuscriptHandler(manuscriptService services.ManuscriptService, h *helper.HTTPHelper) *ManuscriptHandler {
	return &ManuscriptHandler{manuscriptService: manuscriptService, Helper: h}
}

func (h *ManuscriptHandler) GetManuscript(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	review, err := h.manuscriptService.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Manuscript review loaded", review)
}

func (h *ManuscriptHandler) UploadManuscript(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	upload, f, err := formUpload(c, fileField)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}
	defer f.Close()

	review, err := h.manuscriptService.Upload(c.Request.Context(), id, userID(c), upload)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Manuscript submitted", review)
}

func (h *ManuscriptHandler) EditManuscript(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	upload, f, err := formUpload(c, fileField)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}
	defer f.Close()

	review, err := h.manuscriptService.Edit(c.Request.Context(), id, userID(c), upload)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Manuscript replaced", review)
}

func (h *ManuscriptHandler) CancelManuscript(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	if err := h.manuscriptService.Cancel(c.Request.Context(), id, userID(c)); err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Manuscript review cancelled", h.Helper.EmptyJsonMap())
}

// ReviewManuscript accepts a form with action, notes and an optional
// reviewed_document file.
func (h *ManuscriptHandler) ReviewManuscript(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.ManuscriptReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	var reviewed *storage.Upload
	if _, err := c.FormFile(reviewedField); err == nil {
		upload, f, err := formUpload(c, reviewedField)
		if err != nil {
			h.Helper.SendDomainError(c, err)
			return
		}
		defer f.Close()
		reviewed = &upload
	}

	review, err := h.manuscriptService.Review(c.Request.Context(), id, userID(c), req.Action, req.Notes, reviewed)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Manuscript review updated", review)
}

func (h *ManuscriptHandler) GetQueue(c *gin.Context) {
	reviews, err := h.manuscriptService.Queue(c.Request.Context(), userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Review queue loaded", reviews)
}
