package services

import (
	"capstone-tracker/models"
	"capstone-tracker/repositories"
)

// loadActor resolves the authenticated identity.
func loadActor(store repositories.Store, actorID uint) (*models.User, error) {
	user, err := store.Users().GetByID(actorID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewUnauthorizedError("unknown user")
		}
		return nil, notFound(err, "user")
	}
	return user, nil
}

func requireRole(actor *models.User, action string, roles ...models.UserRole) error {
	if actor.HasRole(roles...) {
		return nil
	}
	return models.NewPolicyError("your role (%s) may not %s", actor.Role, action)
}

// loadProject returns the version row when actor may see it. Students see
// their group's projects only; outsiders get NotFoundError.
func loadProject(store repositories.Store, groups *GroupPolicy, actor *models.User, projectID uint) (*models.Project, error) {
	project, err := store.Projects().GetByID(projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if actor.Role != models.RoleStudent {
		return project, nil
	}
	ok, err := groups.With(store).AuthorizeGroupAction(actor, project.SubmittedBy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewNotFoundError("project")
	}
	return project, nil
}

// loadActive returns the active version of the lineage projectID belongs to.
func loadActive(store repositories.Store, groups *GroupPolicy, actor *models.User, projectID uint, forUpdate bool) (*models.Project, error) {
	project, err := loadProject(store, groups, actor, projectID)
	if err != nil {
		return nil, err
	}
	active, err := store.Projects().GetActive(project.LineageID, forUpdate)
	if err != nil {
		return nil, notFound(err, "active project version")
	}
	return active, nil
}

// requireAdviser checks that actor is the capstone adviser assigned to project.
func requireAdviser(actor *models.User, project *models.Project) error {
	if actor.Role != models.RoleFaculty {
		return models.NewPolicyError("only the assigned capstone adviser may do this")
	}
	if !project.HasAdviser() {
		return models.NewSequenceError(models.StageFaculty, "", "capstone adviser not assigned")
	}
	if *project.AdviserID != actor.ID {
		return models.NewPolicyError("only the assigned capstone adviser may do this")
	}
	return nil
}
