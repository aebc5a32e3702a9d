package models

import (
	"strconv"
	"time"
)

const (
	DraftFirstStep = 1
	DraftLastStep  = 4
)

type DraftFormat string

const (
	DraftFormatPDF  DraftFormat = "pdf"
	DraftFormatDOCX DraftFormat = "docx"
)

// DraftDocument is the research-documentation wizard state of one user for
// one lineage. Fields is the flat map handed to the renderer.
type DraftDocument struct {
	UserID      uint              `json:"user_id"`
	LineageID   uint              `json:"lineage_id"`
	CurrentStep int               `json:"current_step"`
	Fields      map[string]string `json:"fields"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func NewDraftDocument(userID, lineageID uint) *DraftDocument {
	return &DraftDocument{
		UserID:      userID,
		LineageID:   lineageID,
		CurrentStep: DraftFirstStep,
		Fields:      map[string]string{},
	}
}

// Key is the store key "userID:lineageID".
func (d DraftDocument) Key() string {
	return DraftKey(d.UserID, d.LineageID)
}

func DraftKey(userID, lineageID uint) string {
	return strconv.FormatUint(uint64(userID), 10) + ":" + strconv.FormatUint(uint64(lineageID), 10)
}

// Merge overlays values onto the draft. Empty values remove the field.
func (d *DraftDocument) Merge(values map[string]string) {
	if d.Fields == nil {
		d.Fields = map[string]string{}
	}
	for k, v := range values {
		if v == "" {
			delete(d.Fields, k)
			continue
		}
		d.Fields[k] = v
	}
}
