package models

import "time"

type DefenseKind string

const (
	DefenseTitle DefenseKind = "title"
	DefenseFinal DefenseKind = "final"
)

func (k DefenseKind) Valid() bool {
	return k == DefenseTitle || k == DefenseFinal
}

func (k DefenseKind) Gate() Gate {
	if k == DefenseFinal {
		return GateFinalDefense
	}
	return GateTitleDefense
}

func (k DefenseKind) RelatedType() string {
	if k == DefenseFinal {
		return FinalDefenseRelated
	}
	return TitleDefenseRelated
}

// Defense is the stored row of a title or final defense, one per kind and
// lineage. Use State to read it.
type Defense struct {
	ID            uint           `json:"id" gorm:"primarykey"`
	Kind          DefenseKind    `json:"kind" gorm:"size:8;uniqueIndex:idx_defense_kind_lineage;not null"`
	LineageID     uint           `json:"lineage_id" gorm:"uniqueIndex:idx_defense_kind_lineage;not null"`
	SubmittedBy   uint           `json:"submitted_by" gorm:"not null"`
	DocumentRef   string         `json:"document_ref" gorm:"not null"`
	FileName      string         `json:"file_name"`
	Status        ApprovalStatus `json:"status" gorm:"size:16;default:'pending'"`
	ScheduledDate *time.Time     `json:"scheduled_date"`
	Remarks       string         `json:"remarks" gorm:"type:text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// DefenseState is one of DefensePending, DefenseScheduled, DefenseApproved or DefenseRejected.
type DefenseState interface {
	GateStatus() GateStatus
	isDefenseState()
}

type DefensePending struct{}

type DefenseScheduled struct {
	At time.Time
}

type DefenseApproved struct {
	Remarks string
}

type DefenseRejected struct {
	Remarks string
}

func (DefensePending) GateStatus() GateStatus   { return GatePending }
func (DefenseScheduled) GateStatus() GateStatus { return GateScheduled }
func (DefenseApproved) GateStatus() GateStatus  { return GateApproved }
func (DefenseRejected) GateStatus() GateStatus  { return GateRejected }

func (DefensePending) isDefenseState()   {}
func (DefenseScheduled) isDefenseState() {}
func (DefenseApproved) isDefenseState()  {}
func (DefenseRejected) isDefenseState()  {}

func (d Defense) State() DefenseState {
	switch d.Status {
	case ApprovalApproved:
		return DefenseApproved{Remarks: d.Remarks}
	case ApprovalRejected:
		return DefenseRejected{Remarks: d.Remarks}
	}
	if d.ScheduledDate != nil {
		return DefenseScheduled{At: *d.ScheduledDate}
	}
	return DefensePending{}
}

// CanUnsubmit holds while the defense is neither scheduled nor approved.
func (d Defense) CanUnsubmit() bool {
	return d.ScheduledDate == nil && !d.IsApproved()
}

// CanEdit holds while a date is set in the future and the defense is not approved.
func (d Defense) CanEdit(now time.Time) bool {
	return d.ScheduledDate != nil && now.Before(*d.ScheduledDate) && !d.IsApproved()
}

func (d Defense) IsApproved() bool {
	_, ok := d.State().(DefenseApproved)
	return ok
}

func (d *Defense) Schedule(at time.Time) {
	d.ScheduledDate = &at
}

// Replace swaps the document and reopens a rejected defense for a new verdict.
func (d *Defense) Replace(ref, fileName string) {
	d.DocumentRef = ref
	d.FileName = fileName
	if d.Status == ApprovalRejected {
		d.Status = ApprovalPending
		d.Remarks = ""
	}
}

func (d *Defense) Decide(decision ApprovalStatus, remarks string) {
	d.Status = decision
	d.Remarks = remarks
}
