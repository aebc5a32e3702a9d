package services

import (
	"context"
	"fmt"
	"strings"

	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/pkg/errors"
)

type ProjectService interface {
	Submit(ctx context.Context, actorID uint, fields models.ProjectFields) (*models.Project, error)
	CreateNewVersion(ctx context.Context, projectID, actorID uint, fields models.ProjectFields) (*models.Project, error)
	Delete(ctx context.Context, projectID, actorID uint) error
	Get(ctx context.Context, projectID, actorID uint) (*models.Project, error)
	ListActive(ctx context.Context, actorID uint) ([]models.Project, error)
	ListLineage(ctx context.Context, projectID, actorID uint) ([]models.Project, error)
	ListLineageByTitle(ctx context.Context, actorID uint, title string) ([]models.Project, error)
	AssignAdviser(ctx context.Context, projectID, deanID, adviserID uint) (*models.Project, error)
	RenderLetter(ctx context.Context, projectID, actorID uint) ([]byte, error)
}

type projectService struct {
	store    repositories.Store
	groups   *GroupPolicy
	emitter  *Emitter
	renderer DocumentRenderer
}

func NewProjectService(store repositories.Store, groups *GroupPolicy, emitter *Emitter, renderer DocumentRenderer) ProjectService {
	return &projectService{
		store:    store,
		groups:   groups,
		emitter:  emitter,
		renderer: renderer,
	}
}

func (s *projectService) Submit(ctx context.Context, actorID uint, fields models.ProjectFields) (*models.Project, error) {
	actor, err := loadActor(s.store.WithContext(ctx), actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "submit projects", models.RoleStudent); err != nil {
		return nil, err
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}

	unlock := workflowLocks.Lock(groupLockKey(s.groups.GroupKey(actor)))
	defer unlock()

	project := &models.Project{Version: 1, SubmittedBy: actor.ID}
	project.Apply(fields)

	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		memberIDs, err := s.groups.With(tx).GroupMemberIDs(actor)
		if err != nil {
			return err
		}

		active, err := tx.Projects().ListActiveBySubmitters(memberIDs)
		if err != nil {
			return errors.Wrap(err, "list active projects")
		}
		for _, p := range active {
			if p.IsFullyApproved() {
				return models.NewPolicyError("your group already has a fully approved project (%q)", p.Title)
			}
		}
		if len(active) >= models.MaxActiveLineages {
			return models.NewPolicyError("your group has reached the limit of %d active submissions", models.MaxActiveLineages)
		}

		if _, err := tx.Projects().FindLineageIDByTitle(project.Title, memberIDs); err == nil {
			return models.NewPolicyError("your group already submitted a project titled %q; edit it instead", project.Title)
		} else if !isNotFound(err) {
			return errors.Wrap(err, "check duplicate title")
		}

		if err := tx.Projects().Create(project); err != nil {
			return errors.Wrap(err, "create project")
		}

		events = append(events, event(actor.ID, "Research Submitted",
			fmt.Sprintf("Your research %q has been submitted and is awaiting adviser assignment.", project.Title),
			models.SeveritySuccess, project.ID, models.ProjectRelatedType))
		deans, err := eventsForRole(tx, models.RoleDean, "New Research Submission",
			fmt.Sprintf("%s submitted %q and needs a capstone adviser.", actor.FullName(), project.Title),
			models.SeverityInfo, project.ID, models.ProjectRelatedType)
		if err != nil {
			return err
		}
		events = append(events, deans...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return project, nil
}

func (s *projectService) CreateNewVersion(ctx context.Context, projectID, actorID uint, fields models.ProjectFields) (*models.Project, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "edit projects", models.RoleStudent); err != nil {
		return nil, err
	}
	if err := validateStruct(fields); err != nil {
		return nil, err
	}
	target, err := loadProject(store, s.groups, actor, projectID)
	if err != nil {
		return nil, err
	}

	unlock := workflowLocks.Lock(lineageKey(target.LineageID))
	defer unlock()

	var next *models.Project
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		current, err := tx.Projects().GetActive(target.LineageID, true)
		if err != nil {
			return notFound(err, "active project version")
		}
		if current.ID != target.ID {
			return models.NewStateError("version %d is archived; edit the active version %d instead", target.Version, current.Version)
		}
		if current.Version >= models.MaxProjectVersions {
			return models.NewLimitError(models.MaxProjectVersions,
				fmt.Sprintf("maximum of %d versions reached for this project", models.MaxProjectVersions))
		}
		if current.IsFullyApproved() {
			return models.NewPolicyError("a fully approved project can no longer be edited")
		}

		if err := tx.Projects().Archive(current.ID); err != nil {
			if errors.Is(err, repositories.ErrStaleVersion) {
				return models.NewStateError("version %d was replaced by a concurrent edit", current.Version)
			}
			return errors.Wrap(err, "archive project version")
		}

		approval := models.NewApproval()
		if current.Approval != nil {
			approval = current.Approval.CarryForward(0)
		}
		next = &models.Project{
			LineageID:   current.LineageID,
			Version:     current.Version + 1,
			SubmittedBy: actor.ID,
			AdviserID:   current.AdviserID,
			Approval:    approval,
		}
		next.Apply(fields)
		if err := tx.Projects().Create(next); err != nil {
			return errors.Wrap(err, "create project version")
		}

		if next.HasAdviser() {
			events = append(events, event(*next.AdviserID, "Research Updated",
				fmt.Sprintf("%s submitted version %d of %q.", actor.FullName(), next.Version, next.Title),
				models.SeverityInfo, next.ID, models.ProjectRelatedType))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return next, nil
}

func (s *projectService) Delete(ctx context.Context, projectID, actorID uint) error {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return err
	}
	if err := requireRole(actor, "delete projects", models.RoleStudent); err != nil {
		return err
	}
	target, err := loadProject(store, s.groups, actor, projectID)
	if err != nil {
		return err
	}

	unlock := workflowLocks.Lock(lineageKey(target.LineageID))
	defer unlock()

	return s.store.Transaction(ctx, func(tx repositories.Store) error {
		current, err := tx.Projects().GetActive(target.LineageID, true)
		if err != nil {
			return notFound(err, "active project version")
		}
		if current.HasAdviser() {
			return models.NewPolicyError("project cannot be deleted once a capstone adviser is assigned")
		}
		return errors.Wrap(tx.Projects().DeleteLineage(target.LineageID), "delete project")
	})
}

func (s *projectService) Get(ctx context.Context, projectID, actorID uint) (*models.Project, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	return loadProject(store, s.groups, actor, projectID)
}

// ListActive lists what the actor works on: the group's projects for a
// student, advisees for faculty, everything for other roles.
func (s *projectService) ListActive(ctx context.Context, actorID uint) ([]models.Project, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	switch actor.Role {
	case models.RoleStudent:
		ids, err := s.groups.With(store).GroupMemberIDs(actor)
		if err != nil {
			return nil, err
		}
		projects, err = store.Projects().ListActiveBySubmitters(ids)
		if err != nil {
			return nil, errors.Wrap(err, "list group projects")
		}
	case models.RoleFaculty:
		projects, err = store.Projects().ListActiveByAdviser(actor.ID)
		if err != nil {
			return nil, errors.Wrap(err, "list advisee projects")
		}
	default:
		projects, err = store.Projects().ListAllActive()
		if err != nil {
			return nil, errors.Wrap(err, "list projects")
		}
	}
	return projects, nil
}

func (s *projectService) ListLineage(ctx context.Context, projectID, actorID uint) ([]models.Project, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	project, err := loadProject(store, s.groups, actor, projectID)
	if err != nil {
		return nil, err
	}
	versions, err := store.Projects().ListLineage(project.LineageID)
	return versions, errors.Wrap(err, "list project versions")
}

// ListLineageByTitle finds the actor's group lineage that used title in any version.
func (s *projectService) ListLineageByTitle(ctx context.Context, actorID uint, title string) ([]models.Project, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.NewValidationError("title is required", map[string]string{"title": "title is a required field"})
	}
	ids, err := s.groups.With(store).GroupMemberIDs(actor)
	if err != nil {
		return nil, err
	}
	lineageID, err := store.Projects().FindLineageIDByTitle(title, ids)
	if err != nil {
		return nil, notFound(err, "project")
	}
	versions, err := store.Projects().ListLineage(lineageID)
	return versions, errors.Wrap(err, "list project versions")
}

func (s *projectService) AssignAdviser(ctx context.Context, projectID, deanID, adviserID uint) (*models.Project, error) {
	store := s.store.WithContext(ctx)
	dean, err := loadActor(store, deanID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(dean, "assign advisers", models.RoleDean); err != nil {
		return nil, err
	}
	adviser, err := store.Users().GetByID(adviserID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewValidationError("adviser not found", map[string]string{"adviser_id": "no such user"})
		}
		return nil, notFound(err, "adviser")
	}
	if adviser.Role != models.RoleFaculty {
		return nil, models.NewValidationError("adviser must be a faculty member", map[string]string{"adviser_id": "user is not faculty"})
	}
	target, err := loadProject(store, s.groups, dean, projectID)
	if err != nil {
		return nil, err
	}

	unlock := workflowLocks.Lock(lineageKey(target.LineageID))
	defer unlock()

	var active *models.Project
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		active, err = tx.Projects().GetActive(target.LineageID, true)
		if err != nil {
			return notFound(err, "active project version")
		}
		active.AdviserID = &adviser.ID
		if err := tx.Projects().Update(active); err != nil {
			return errors.Wrap(err, "assign adviser")
		}

		events = append(events,
			event(active.SubmittedBy, "Adviser Assigned",
				fmt.Sprintf("%s is now the capstone adviser of %q.", adviser.FullName(), active.Title),
				models.SeverityInfo, active.ID, models.AssignmentRelatedType),
			event(adviser.ID, "New Advisee Project",
				fmt.Sprintf("You were assigned as capstone adviser of %q.", active.Title),
				models.SeverityInfo, active.ID, models.AssignmentRelatedType),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return active, nil
}

func (s *projectService) RenderLetter(ctx context.Context, projectID, actorID uint) ([]byte, error) {
	project, err := s.Get(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	doc, err := s.renderer.RenderProjectLetter(ctx, project.LetterFields())
	return doc, errors.Wrap(err, "render project letter")
}
