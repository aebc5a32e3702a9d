package handlers

import (
	"capstone-tracker/helper"
	"capstone-tracker/models"
	"capstone-tracker/services"

	"github.com/gin-gonic/gin"
)

// DefenseHandler serves title and final defenses; the kind comes from the path.
type DefenseHandler struct {
	defenseService services.DefenseService
	Helper         *helper.HTTPHelper
}

func NewDefenseHandler(defenseService services.DefenseService, h *helper.HTTPHelper) *DefenseHandler {
	return &DefenseHandler{defenseService: defenseService, Helper: h}
}

func (h *DefenseHandler) target(c *gin.Context) (models.DefenseKind, uint, bool) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return "", 0, false
	}
	kind := models.DefenseKind(c.Param("kind"))
	if !kind.Valid() {
		h.Helper.SendNotFoundError(c, "Unknown defense "+string(kind), h.Helper.EmptyJsonMap())
		return "", 0, false
	}
	return kind, id, true
}

func (h *DefenseHandler) GetDefense(c *gin.Context) {
	kind, id, ok := h.target(c)
	if !ok {
		return
	}

	defense, err := h.defenseService.Get(c.Request.Context(), kind, id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Defense loaded", defense)
}

func (h *DefenseHandler) SubmitDefense(c *gin.Context) {
	kind, id, ok := h.target(c)
	if !ok {
		return
	}

	upload, f, err := formUpload(c, fileField)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}
	defer f.Close()

	defense, err := h.defenseService.Submit(c.Request.Context(), kind, id, userID(c), upload)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Defense document submitted", defense)
}

func (h *DefenseHandler) EditDefense(c *gin.Context) {
	kind, id, ok := h.target(c)
	if !ok {
		return
	}

	upload, f, err := formUpload(c, fileField)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}
	defer f.Close()

	defense, err := h.defenseService.Edit(c.Request.Context(), kind, id, userID(c), upload)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Defense document replaced", defense)
}

func (h *DefenseHandler) UnsubmitDefense(c *gin.Context) {
	kind, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.defenseService.Unsubmit(c.Request.Context(), kind, id, userID(c)); err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Defense document withdrawn", h.Helper.EmptyJsonMap())
}

func (h *DefenseHandler) ScheduleDefense(c *gin.Context) {
	kind, id, ok := h.target(c)
	if !ok {
		return
	}

	var req models.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	defense, err := h.defenseService.Schedule(c.Request.Context(), kind, id, userID(c), req.ScheduledDate)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Defense scheduled", defense)
}

func (h *DefenseHandler) DecideDefense(c *gin.Context) {
	kind, id, ok := h.target(c)
	if !ok {
		return
	}

	var req models.DefenseDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	defense, err := h.defenseService.Decide(c.Request.Context(), kind, id, userID(c), req.Decision, req.Remarks)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Defense decision recorded", defense)
}
