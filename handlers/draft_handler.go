package handlers

import (
	"capstone-tracker/helper"
	"capstone-tracker/models"
	"capstone-tracker/services"

	"github.com/gin-gonic/gin"
)

type DraftHandler struct {
	draftService services.DraftService
	Helper       *helper.HTTPHelper
}

func NewDraftHandler(draftService services.DraftService, h *helper.HTTPHelper) *DraftHandler {
	return &DraftHandler{draftService: draftService, Helper: h}
}

func (h *DraftHandler) GetDraft(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	draft, err := h.draftService.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Draft loaded", draft)
}

func (h *DraftHandler) UpdateDraft(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.DraftUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	draft, err := h.draftService.Update(c.Request.Context(), id, userID(c), req)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Draft saved", draft)
}

func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	if err := h.draftService.Discard(c.Request.Context(), id, userID(c)); err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Draft discarded", h.Helper.EmptyJsonMap())
}

func (h *DraftHandler) ExportDraft(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.DraftExportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Helper.SendBadRequest(c, "Error ", err.Error())
			return
		}
	}

	doc, err := h.draftService.Export(c.Request.Context(), id, userID(c), req.Format)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	contentType, name := pdfMIME, "research-documentation.pdf"
	if req.Format == models.DraftFormatDOCX {
		contentType, name = docxMIME, "research-documentation.docx"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(200, contentType, doc)
}

func (h *DraftHandler) GetDrafts(c *gin.Context) {
	drafts, err := h.draftService.List(c.Request.Context(), userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Drafts loaded", drafts)
}
