package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	MaxProjectVersions     = 5
	MaxActiveLineages      = 3
	MaxProponents          = 4
	ProjectRelatedType     = "project"
	AssignmentRelatedType  = "project_assignment"
	TitleDefenseRelated    = "title_defense"
	FinalDefenseRelated    = "final_defense"
	ManuscriptRelatedType  = "manuscript_submission"
	CapstoneRelatedType    = "capstone"
	NewResearchRelatedType = "new_research"
	BookmarkRelatedType    = "bookmark"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Project is one version row of a working-title submission. Every version of
// a lineage shares LineageID, the ID of version 1.
type Project struct {
	ID          uint                        `json:"id" gorm:"primarykey"`
	LineageID   uint                        `json:"lineage_id" gorm:"index;not null;default:0"`
	Version     int                         `json:"version" gorm:"not null;default:1"`
	Title       string                      `json:"title" gorm:"not null"`
	Beneficiary string                      `json:"beneficiary"`
	FocalPerson string                      `json:"focal_person"`
	FocalGender Gender                      `json:"focal_gender" gorm:"size:8"`
	Position    string                      `json:"position"`
	Address     string                      `json:"address"`
	Proponents  datatypes.JSONSlice[string] `json:"proponents" gorm:"type:json"`
	SubmittedBy uint                        `json:"submitted_by" gorm:"index;not null"`
	Archived    bool                        `json:"archived" gorm:"index;not null;default:false"`
	AdviserID   *uint                       `json:"adviser_id"`
	Approval    *Approval                   `json:"approval,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (p Project) HasAdviser() bool {
	return p.AdviserID != nil && *p.AdviserID != 0
}

func (p Project) IsFullyApproved() bool {
	return p.Approval != nil && p.Approval.IsFullyApproved()
}

// Apply copies submitted fields onto the row.
func (p *Project) Apply(f ProjectFields) {
	p.Title = strings.TrimSpace(f.Title)
	p.Beneficiary = strings.TrimSpace(f.Beneficiary)
	p.FocalPerson = strings.TrimSpace(f.FocalPerson)
	p.FocalGender = Gender(strings.ToLower(strings.TrimSpace(f.FocalGender)))
	p.Position = strings.TrimSpace(f.Position)
	p.Address = strings.TrimSpace(f.Address)
	proponents := make([]string, 0, len(f.Proponents))
	for _, name := range f.Proponents {
		if name = strings.TrimSpace(name); name != "" {
			proponents = append(proponents, name)
		}
	}
	p.Proponents = proponents
}

// LetterFields flattens the version for the document renderer.
func (p Project) LetterFields() map[string]string {
	fields := map[string]string{
		"project_id":   strconv.FormatUint(uint64(p.ID), 10),
		"version":      strconv.Itoa(p.Version),
		"title":        p.Title,
		"beneficiary":  p.Beneficiary,
		"focal_person": p.FocalPerson,
		"gender":       string(p.FocalGender),
		"position":     p.Position,
		"address":      p.Address,
	}
	for i, name := range p.Proponents {
		fields["proponent_"+strconv.Itoa(i+1)] = name
	}
	return fields
}
