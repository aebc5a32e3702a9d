package models

import "time"

type ApprovalStage string

const (
	StageFaculty ApprovalStage = "faculty"
	StageAdviser ApprovalStage = "adviser"
	StageDean    ApprovalStage = "dean"
)

// ApprovalStages lists the ladder in the order decisions must be made.
var ApprovalStages = []ApprovalStage{StageFaculty, StageAdviser, StageDean}

func (s ApprovalStage) Valid() bool {
	return s == StageFaculty || s == StageAdviser || s == StageDean
}

func (s ApprovalStage) Label() string {
	switch s {
	case StageFaculty:
		return "Capstone adviser"
	case StageAdviser:
		return "Professor"
	case StageDean:
		return "Dean"
	}
	return string(s)
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Approval is the three-stage ladder of one project version. The *DecidedAt
// markers record decisions made on this version; they are cleared when the
// statuses are carried into a new version.
type Approval struct {
	ID               uint           `json:"id" gorm:"primarykey"`
	ProjectID        uint           `json:"project_id" gorm:"uniqueIndex;not null"`
	FacultyApproval  ApprovalStatus `json:"faculty_approval" gorm:"size:16;default:'pending'"`
	FacultyComments  string         `json:"faculty_comments" gorm:"type:text"`
	FacultyDecidedAt *time.Time     `json:"faculty_decided_at"`
	AdviserApproval  ApprovalStatus `json:"adviser_approval" gorm:"size:16;default:'pending'"`
	AdviserComments  string         `json:"adviser_comments" gorm:"type:text"`
	AdviserDecidedAt *time.Time     `json:"adviser_decided_at"`
	DeanApproval     ApprovalStatus `json:"dean_approval" gorm:"size:16;default:'pending'"`
	DeanComments     string         `json:"dean_comments" gorm:"type:text"`
	DeanDecidedAt    *time.Time     `json:"dean_decided_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func NewApproval() *Approval {
	return &Approval{
		FacultyApproval: ApprovalPending,
		AdviserApproval: ApprovalPending,
		DeanApproval:    ApprovalPending,
	}
}

func (a Approval) Status(stage ApprovalStage) ApprovalStatus {
	var s ApprovalStatus
	switch stage {
	case StageFaculty:
		s = a.FacultyApproval
	case StageAdviser:
		s = a.AdviserApproval
	case StageDean:
		s = a.DeanApproval
	}
	if s == "" {
		return ApprovalPending
	}
	return s
}

func (a Approval) DecidedAt(stage ApprovalStage) *time.Time {
	switch stage {
	case StageFaculty:
		return a.FacultyDecidedAt
	case StageAdviser:
		return a.AdviserDecidedAt
	case StageDean:
		return a.DeanDecidedAt
	}
	return nil
}

func (a *Approval) Record(stage ApprovalStage, decision ApprovalStatus, comment string, at time.Time) {
	switch stage {
	case StageFaculty:
		a.FacultyApproval, a.FacultyComments, a.FacultyDecidedAt = decision, comment, &at
	case StageAdviser:
		a.AdviserApproval, a.AdviserComments, a.AdviserDecidedAt = decision, comment, &at
	case StageDean:
		a.DeanApproval, a.DeanComments, a.DeanDecidedAt = decision, comment, &at
	}
}

// Unapproved returns the first stage before stage that is not approved, or "".
func (a Approval) Unapproved(stage ApprovalStage) ApprovalStage {
	for _, prev := range ApprovalStages {
		if prev == stage {
			break
		}
		if a.Status(prev) != ApprovalApproved {
			return prev
		}
	}
	return ""
}

// ResetAfter returns every stage after stage to pending and drops its comments.
func (a *Approval) ResetAfter(stage ApprovalStage) {
	after := false
	for _, next := range ApprovalStages {
		if after {
			switch next {
			case StageAdviser:
				a.AdviserApproval, a.AdviserComments, a.AdviserDecidedAt = ApprovalPending, "", nil
			case StageDean:
				a.DeanApproval, a.DeanComments, a.DeanDecidedAt = ApprovalPending, "", nil
			}
		}
		if next == stage {
			after = true
		}
	}
}

func (a Approval) IsFullyApproved() bool {
	for _, stage := range ApprovalStages {
		if a.Status(stage) != ApprovalApproved {
			return false
		}
	}
	return true
}

func (a Approval) IsRejected() bool {
	for _, stage := range ApprovalStages {
		if a.Status(stage) == ApprovalRejected {
			return true
		}
	}
	return false
}

// CarryForward copies statuses and comments verbatim for a new version row.
func (a Approval) CarryForward(projectID uint) *Approval {
	return &Approval{
		ProjectID:       projectID,
		FacultyApproval: a.Status(StageFaculty),
		FacultyComments: a.FacultyComments,
		AdviserApproval: a.Status(StageAdviser),
		AdviserComments: a.AdviserComments,
		DeanApproval:    a.Status(StageDean),
		DeanComments:    a.DeanComments,
	}
}
