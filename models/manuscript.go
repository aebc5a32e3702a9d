package models

import "time"

type ManuscriptStatus string

const (
	ManuscriptPending     ManuscriptStatus = "pending"
	ManuscriptUnderReview ManuscriptStatus = "under_review"
	ManuscriptApproved    ManuscriptStatus = "approved"
	ManuscriptRejected    ManuscriptStatus = "rejected"
)

func (s ManuscriptStatus) GateStatus() GateStatus {
	switch s {
	case ManuscriptUnderReview:
		return GateUnderReview
	case ManuscriptApproved:
		return GateApproved
	case ManuscriptRejected:
		return GateRejected
	}
	return GatePending
}

// ManuscriptReview is the grammar review record of a lineage.
type ManuscriptReview struct {
	ID                  uint             `json:"id" gorm:"primarykey"`
	LineageID           uint             `json:"lineage_id" gorm:"uniqueIndex;not null"`
	SubmittedBy         uint             `json:"submitted_by" gorm:"not null"`
	DocumentRef         string           `json:"document_ref" gorm:"not null"`
	FileName            string           `json:"file_name"`
	Status              ManuscriptStatus `json:"status" gorm:"size:16;default:'pending'"`
	ReviewerNotes       *string          `json:"reviewer_notes" gorm:"type:text"`
	ReviewedDocumentRef *string          `json:"reviewed_document_ref"`
	ReviewedBy          *uint            `json:"reviewed_by"`
	ReviewedAt          *time.Time       `json:"reviewed_at"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// Reset replaces the document and clears every review field.
func (m *ManuscriptReview) Reset(ref, fileName string) {
	m.DocumentRef = ref
	m.FileName = fileName
	m.Status = ManuscriptPending
	m.ReviewerNotes = nil
	m.ReviewedDocumentRef = nil
	m.ReviewedBy = nil
	m.ReviewedAt = nil
}

func (m *ManuscriptReview) StartReview(reviewerID uint) {
	m.Status = ManuscriptUnderReview
	m.ReviewedBy = &reviewerID
}

func (m *ManuscriptReview) Conclude(reviewerID uint, verdict ManuscriptStatus, notes string, reviewedRef string, at time.Time) {
	m.Status = verdict
	m.ReviewedBy = &reviewerID
	m.ReviewedAt = &at
	if notes != "" {
		m.ReviewerNotes = &notes
	}
	if reviewedRef != "" {
		m.ReviewedDocumentRef = &reviewedRef
	}
}
