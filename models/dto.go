package models

import "time"

type RegisterRequest struct {
	Username    string   `json:"username" binding:"required,min=3,max=50"`
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=6"`
	Role        UserRole `json:"role,omitempty"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	GroupCode   string   `json:"group_code"`
	YearSection string   `json:"year_section"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ProfileResponse struct {
	User
	FullName    string `json:"full_name"`
	IsFinalYear bool   `json:"is_final_year"`
}

// ProjectFields is the working-title form. Validated in the service layer.
type ProjectFields struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Beneficiary string   `json:"beneficiary" validate:"required"`
	FocalPerson string   `json:"focal_person" validate:"required"`
	FocalGender string   `json:"focal_gender" validate:"required,oneof=male female"`
	Position    string   `json:"position" validate:"required"`
	Address     string   `json:"address" validate:"required"`
	Proponents  []string `json:"proponents" validate:"required,min=1,max=4,dive,required"`
}

type AssignAdviserRequest struct {
	AdviserID uint `json:"adviser_id" binding:"required"`
}

type DecisionRequest struct {
	Decision ApprovalStatus `json:"decision" binding:"required"`
	Comment  string         `json:"comment"`
}

type ScheduleRequest struct {
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
}

type DefenseDecisionRequest struct {
	Decision ApprovalStatus `json:"decision" binding:"required"`
	Remarks  string         `json:"remarks"`
}

type ReviewAction string

const (
	ReviewStart   ReviewAction = "start"
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
)

type ManuscriptReviewRequest struct {
	Action ReviewAction `form:"action" json:"action" binding:"required"`
	Notes  string       `form:"notes" json:"notes"`
}

// CapstoneInput is the final manuscript metadata. Authors arrive as a JSON
// array in the multipart "authors" field.
type CapstoneInput struct {
	ProjectID uint     `json:"project_id" validate:"required"`
	Title     string   `json:"title" validate:"required,max=255"`
	Authors   []Author `json:"authors" validate:"required,min=1,max=10,dive"`
	Year      int      `json:"year" validate:"required"`
	Abstract  string   `json:"abstract" validate:"required"`
	Keywords  string   `json:"keywords"`
}

type VerificationRequest struct {
	Status CapstoneStatus `json:"status" binding:"required"`
}

type CapstoneListParams struct {
	Search string         `form:"search"`
	Status CapstoneStatus `form:"status"`
	Year   int            `form:"year"`
	Page   int            `form:"page,default=1"`
	Limit  int            `form:"limit,default=10"`
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Normalize clamps paging to page >= 1 and 1 <= limit <= MaxPageLimit.
func (p *CapstoneListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

type CapstoneView struct {
	CapstoneSubmission
	Citation   string `json:"citation"`
	Bookmarked bool   `json:"bookmarked"`
}

type DraftUpdateRequest struct {
	Step   int               `json:"step"`
	Fields map[string]string `json:"fields"`
}

type DraftExportRequest struct {
	Format DraftFormat `json:"format"`
}

type NotificationListParams struct {
	Unread bool `form:"unread"`
}
