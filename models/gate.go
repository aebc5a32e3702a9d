package models

// Gate is one phase of a lineage's progression, in order.
type Gate int

const (
	GateWorkingTitle Gate = iota + 1
	GateTitleDefense
	GateFinalDefense
	GateManuscriptReview
	GateFinalSubmission
)

var Gates = []Gate{GateWorkingTitle, GateTitleDefense, GateFinalDefense, GateManuscriptReview, GateFinalSubmission}

func (g Gate) String() string {
	switch g {
	case GateWorkingTitle:
		return "WORKING_TITLE"
	case GateTitleDefense:
		return "TITLE_DEFENSE"
	case GateFinalDefense:
		return "FINAL_DEFENSE"
	case GateManuscriptReview:
		return "MANUSCRIPT_REVIEW"
	case GateFinalSubmission:
		return "FINAL_MANUSCRIPT_SUBMISSION"
	}
	return "UNKNOWN"
}

func (g Gate) Label() string {
	switch g {
	case GateWorkingTitle:
		return "working title approval"
	case GateTitleDefense:
		return "title defense"
	case GateFinalDefense:
		return "final defense"
	case GateManuscriptReview:
		return "manuscript grammar review"
	case GateFinalSubmission:
		return "final manuscript submission"
	}
	return "unknown gate"
}

// Predecessor returns the gate that must be approved first, or 0 for the first gate.
func (g Gate) Predecessor() Gate {
	if g <= GateWorkingTitle || g > GateFinalSubmission {
		return 0
	}
	return g - 1
}

func (g Gate) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

type GateStatus string

const (
	GateNotStarted  GateStatus = "not_started"
	GatePending     GateStatus = "pending"
	GateScheduled   GateStatus = "scheduled"
	GateUnderReview GateStatus = "under_review"
	GateApproved    GateStatus = "approved"
	GateRejected    GateStatus = "rejected"
)

type GateProgress struct {
	Gate   Gate       `json:"gate"`
	Label  string     `json:"label"`
	Status GateStatus `json:"status"`
	Locked bool       `json:"locked"`
}

// Progress is the derived overall progress of one lineage.
type Progress struct {
	LineageID uint           `json:"lineage_id"`
	Gates     []GateProgress `json:"gates"`
	Percent   int            `json:"percent"`
}
