package handlers

import (
	"capstone-tracker/helper"
	"capstone-tracker/models"
	"capstone-tracker/services"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService  services.ProjectService
	approvalService services.ApprovalService
	gateService     services.GateService
	Helper          *helper.HTTPHelper
}

func NewProjectHandler(projectService services.ProjectService, approvalService services.ApprovalService, gateService services.GateService, h *helper.HTTPHelper) *ProjectHandler {
	return &ProjectHandler{
		projectService:  projectService,
		approvalService: approvalService,
		gateService:     gateService,
		Helper:          h,
	}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req models.ProjectFields
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	project, err := h.projectService.Submit(c.Request.Context(), userID(c), req)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Research submitted", project)
}

func (h *ProjectHandler) GetProjects(c *gin.Context) {
	projects, err := h.projectService.ListActive(c.Request.Context(), userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Projects loaded", projects)
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	project, err := h.projectService.Get(c.Request.Context(), id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Project loaded", project)
}

// UpdateProject creates the next version of the lineage.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.ProjectFields
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	project, err := h.projectService.CreateNewVersion(c.Request.Context(), id, userID(c), req)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendCreated(c, "New version created", project)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id, userID(c)); err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Project deleted", h.Helper.EmptyJsonMap())
}

func (h *ProjectHandler) GetProjectVersions(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	versions, err := h.projectService.ListLineage(c.Request.Context(), id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Versions loaded", versions)
}

func (h *ProjectHandler) GetLineageByTitle(c *gin.Context) {
	versions, err := h.projectService.ListLineageByTitle(c.Request.Context(), userID(c), c.Query("title"))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Versions loaded", versions)
}

func (h *ProjectHandler) AssignAdviser(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.AssignAdviserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	project, err := h.projectService.AssignAdviser(c.Request.Context(), id, userID(c), req.AdviserID)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Adviser assigned", project)
}

func (h *ProjectHandler) RecordDecision(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	var req models.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Error ", err.Error())
		return
	}

	stage := models.ApprovalStage(c.Param("stage"))
	approval, err := h.approvalService.RecordDecision(c.Request.Context(), id, userID(c), stage, req.Decision, req.Comment)
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Decision recorded", approval)
}

func (h *ProjectHandler) GetProgress(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	progress, err := h.gateService.Progress(c.Request.Context(), id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Progress loaded", progress)
}

func (h *ProjectHandler) GetLetter(c *gin.Context) {
	id, ok := paramID(c, h.Helper, "id")
	if !ok {
		return
	}

	doc, err := h.projectService.RenderLetter(c.Request.Context(), id, userID(c))
	if err != nil {
		h.Helper.SendDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="project-letter.pdf"`)
	c.Data(200, pdfMIME, doc)
}
