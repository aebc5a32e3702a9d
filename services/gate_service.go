package services

import (
	"context"
	"fmt"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/pkg/errors"
)

const percentPerGate = 20

type GateService interface {
	Progress(ctx context.Context, projectID, actorID uint) (*models.Progress, error)
	RequireGate(ctx context.Context, projectID, actorID uint, gate models.Gate) error
}

type gateService struct {
	store  repositories.Store
	groups *GroupPolicy
}

func NewGateService(store repositories.Store, groups *GroupPolicy) GateService {
	return &gateService{store: store, groups: groups}
}

func (s *gateService) Progress(ctx context.Context, projectID, actorID uint) (*models.Progress, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	active, err := loadActive(store, s.groups, actor, projectID, false)
	if err != nil {
		return nil, err
	}
	student, err := subjectStudent(store, actor, active)
	if err != nil {
		return nil, err
	}

	gates, err := s.evaluate(store, student, active)
	if err != nil {
		return nil, err
	}

	percent := 0
	for _, g := range gates {
		switch {
		case g.Gate == models.GateFinalSubmission && g.Status != models.GateNotStarted:
			percent += percentPerGate
		case g.Gate != models.GateFinalSubmission && g.Status == models.GateApproved:
			percent += percentPerGate
		}
	}

	return &models.Progress{LineageID: active.LineageID, Gates: gates, Percent: percent}, nil
}

func (s *gateService) RequireGate(ctx context.Context, projectID, actorID uint, gate models.Gate) error {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return err
	}
	active, err := loadActive(store, s.groups, actor, projectID, false)
	if err != nil {
		return err
	}
	student, err := subjectStudent(store, actor, active)
	if err != nil {
		return err
	}
	return s.require(store, student, active, gate)
}

// subjectStudent is the student whose eligibility gates are judged by: the
// actor when a student acts, otherwise the submitter of the active version.
func subjectStudent(store repositories.Store, actor *models.User, active *models.Project) (*models.User, error) {
	if actor.Role == models.RoleStudent {
		return actor, nil
	}
	submitter, err := store.Users().GetByID(active.SubmittedBy)
	if err != nil {
		return nil, notFound(err, "submitter")
	}
	return submitter, nil
}

// require fails with GateLockedError naming the first unmet predecessor of gate.
func (s *gateService) require(store repositories.Store, student *models.User, active *models.Project, gate models.Gate) error {
	if gate <= models.GateWorkingTitle {
		return nil
	}
	gates, err := s.evaluate(store, student, active)
	if err != nil {
		return err
	}
	for _, g := range gates {
		if g.Gate >= gate {
			break
		}
		if g.Status != models.GateApproved {
			return models.NewGateLockedError(gate, g.Gate,
				fmt.Sprintf("%s is locked until the %s is approved", gate.Label(), g.Gate.Label()))
		}
	}
	if gate == models.GateFinalDefense && !student.IsFinalYear() {
		return models.NewGateLockedError(gate, models.GateTitleDefense,
			fmt.Sprintf("%s is only open to final-year students", gate.Label()))
	}
	return nil
}

func (s *gateService) evaluate(store repositories.Store, student *models.User, active *models.Project) ([]models.GateProgress, error) {
	statuses := make([]models.GateStatus, 0, len(models.Gates))

	title := models.GatePending
	if active.Approval != nil {
		switch {
		case active.Approval.IsFullyApproved():
			title = models.GateApproved
		case active.Approval.IsRejected():
			title = models.GateRejected
		}
	}
	statuses = append(statuses, title)

	for _, kind := range []models.DefenseKind{models.DefenseTitle, models.DefenseFinal} {
		defense, err := store.Defenses().Get(kind, active.LineageID)
		switch {
		case isNotFound(err):
			statuses = append(statuses, models.GateNotStarted)
		case err != nil:
			return nil, errors.Wrapf(err, "load %s defense", kind)
		default:
			statuses = append(statuses, defense.State().GateStatus())
		}
	}

	review, err := store.Manuscripts().Get(active.LineageID)
	switch {
	case isNotFound(err):
		statuses = append(statuses, models.GateNotStarted)
	case err != nil:
		return nil, errors.Wrap(err, "load manuscript review")
	default:
		statuses = append(statuses, review.Status.GateStatus())
	}

	// The group's single submission belongs to the lineage it was filed from.
	capstone, err := store.Capstones().GetByGroupKey(s.groups.GroupKey(student))
	switch {
	case isNotFound(err), err == nil && capstone.LineageID != active.LineageID:
		statuses = append(statuses, models.GateNotStarted)
	case err != nil:
		return nil, errors.Wrap(err, "load capstone submission")
	default:
		statuses = append(statuses, capstone.GateStatus())
	}

	gates := make([]models.GateProgress, len(models.Gates))
	locked := false
	for i, gate := range models.Gates {
		if gate == models.GateFinalDefense && !student.IsFinalYear() {
			locked = true
		}
		gates[i] = models.GateProgress{Gate: gate, Label: gate.Label(), Status: statuses[i], Locked: locked}
		if statuses[i] != models.GateApproved {
			locked = true
		}
	}
	return gates, nil
}
