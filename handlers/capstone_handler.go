package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"capstone-tracker/helper"
	"capstone-tracker/models"
	"capstone-tracker/services"

	"github.com/gin-gonic/gin"
)

type CapstoneHandler struct {
	capstoneService services.CapstoneService
	bookmarkService services.BookmarkService
	Helper          *helper.HTTPHelper
}

func NewCapstoneHandler(capstoneService services.CapstoneService, bookmarkService services.BookmarkService, h *helper.HTTPHelper) *CapstoneHandler {
	return &CapstoneHandler{capstoneService: capstoneService, bookmarkService: bookmarkService, Helper: h}
}

// parseAuthors reads the "authors" form field: a JSON array of authors, or a
// legacy author string.
func parseAuthors(raw string) []models.Author {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var authors []models.Author
		if err := json.Unmarshal([]byte(raw), &authors); err == nil {
			return authors
		}
		return nil
	}
	return models.ParseLegacyAuthors(raw)
}

func capstoneInput(c *gin.Context) (models.CapstoneInput, error) {
	fields := map[string]string{}
	projectID, err := strconv.ParseUint(c.PostForm("project_id"), 10, 32)
	if err != nil {
		fields["project_id"] = "project_id must be a number"
	}
	year, err := strconv.Atoi(strings.TrimSpace(c.PostForm("year")))
	if err != nil {
		fields["year"] = "year must be a number"
	}
	if len(fields) > 0 {
		return models.CapstoneInput{}, models.NewValidationError("invalid form fields", fields)
	}
	return models.CapstoneInput{
		ProjectID: uint(projectID),
		Title:     c.PostForm("title"),
		Authors:   parseAuthors(c.PostForm("authors")),
		Year:      year,
		Abstract:  c.PostForm("abstract"),
		Keywords:  c.PostForm("keywords"),
	}, nil
}

func (h *CapstoneHandler) SubmitCapstone(c *gin.Context) {
	input, err := capstoneInput(c)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	upload, f, err := formUpload(c, fileField)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}
	defer f.Close()

	capstone, err := h.capstoneService.Submit(c.Request.Context(), userID(c), input, upload)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Final manuscript submitted", capstone)
}

func (h *CapstoneHandler) GetCapstones(c *gin.Context) {
	var params models.CapstoneListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}
	params.Normalize()

	views, total, err := h.capstoneService.List(c.Request.Context(), userID(c), params)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Research loaded", map[string]interface{}{
		"items":      views,
		"pagination": h.Helper.GeneratePaging(c, params.Limit, params.Page, int(total)),
	})
}

func (h *CapstoneHandler) GetCapstone(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	view, err := h.capstoneService.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Research loaded", view)
}

func (h *CapstoneHandler) VerifyCapstone(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	capstone, err := h.capstoneService.Verify(c.Request.Context(), id, userID(c), req.Status)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Verification recorded", capstone)
}

func (h *CapstoneHandler) AddBookmark(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	bookmark, err := h.bookmarkService.Add(c.Request.Context(), id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Bookmark added", bookmark)
}

func (h *CapstoneHandler) RemoveBookmark(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	if err := h.bookmarkService.Remove(c.Request.Context(), id, userID(c)); err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Bookmark removed", h.Helper.EmptyJsonMap())
}

func (h *CapstoneHandler) GetBookmarks(c *gin.Context) {
	bookmarks, err := h.bookmarkService.List(c.Request.Context(), userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Bookmarks loaded", bookmarks)
}
