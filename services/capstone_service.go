package services

import (
	"context"
	"fmt"
	"strings"

	"capstone-tracker/models"
	"capstone-tracker/repositories"
	"capstone-tracker/storage"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type CapstoneService interface {
	Submit(ctx context.Context, actorID uint, input models.CapstoneInput, upload storage.Upload) (*models.CapstoneSubmission, error)
	Verify(ctx context.Context, capstoneID, actorID uint, status models.CapstoneStatus) (*models.CapstoneSubmission, error)
	List(ctx context.Context, actorID uint, params models.CapstoneListParams) ([]models.CapstoneView, int64, error)
	Get(ctx context.Context, capstoneID, actorID uint) (*models.CapstoneView, error)
}

type capstoneService struct {
	store   repositories.Store
	files   storage.FileStore
	groups  *GroupPolicy
	gates   *gateService
	emitter *Emitter
	now     Clock
}

func NewCapstoneService(store repositories.Store, files storage.FileStore, groups *GroupPolicy, emitter *Emitter, clock Clock) CapstoneService {
	if clock == nil {
		clock = systemClock
	}
	return &capstoneService{
		store:   store,
		files:   files,
		groups:  groups,
		gates:   &gateService{store: store, groups: groups},
		emitter: emitter,
		now:     clock,
	}
}

func (s *capstoneService) validate(input *models.CapstoneInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if len(input.Authors) > models.MaxCapstoneAuthors {
		return models.NewValidationError("too many authors",
			map[string]string{"authors": fmt.Sprintf("at most %d authors are allowed", models.MaxCapstoneAuthors)})
	}
	if err := validateStruct(input); err != nil {
		return err
	}
	if year := s.now().Year(); input.Year < models.MinCapstoneYear || input.Year > year {
		return models.NewValidationError("invalid year",
			map[string]string{"year": fmt.Sprintf("year must be between %d and %d", models.MinCapstoneYear, year)})
	}
	return nil
}

// Submit files the final manuscript of the actor's group. Each group gets
// exactly one submission.
func (s *capstoneService) Submit(ctx context.Context, actorID uint, input models.CapstoneInput, upload storage.Upload) (*models.CapstoneSubmission, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "submit final manuscripts", models.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.validate(&input); err != nil {
		return nil, err
	}
	active, err := loadActive(store, s.groups, actor, input.ProjectID, false)
	if err != nil {
		return nil, err
	}
	if err := s.gates.require(store, actor, active, models.GateFinalSubmission); err != nil {
		return nil, err
	}

	upload, err = storage.ValidatePDF(upload, storage.CapstoneMaxUpload)
	if err != nil {
		return nil, err
	}

	groupKey := s.groups.GroupKey(actor)
	unlock := workflowLocks.Lock(groupLockKey(groupKey))
	defer unlock()

	if exists, err := s.groups.With(store).HasGroupSubmission(actor); err != nil {
		return nil, err
	} else if exists {
		return nil, models.NewPolicyError("your group already submitted its final manuscript")
	}

	ref, err := s.files.Save(ctx, upload)
	if err != nil {
		return nil, err
	}

	capstone := &models.CapstoneSubmission{
		GroupKey:    groupKey,
		OwnerID:     actor.ID,
		LineageID:   active.LineageID,
		Title:       input.Title,
		Authors:     input.Authors,
		Year:        input.Year,
		Abstract:    input.Abstract,
		Keywords:    strings.TrimSpace(input.Keywords),
		DocumentRef: ref,
		FileName:    upload.Filename,
		Status:      models.CapstoneNonVerified,
	}
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		exists, err := s.groups.With(tx).HasGroupSubmission(actor)
		if err != nil {
			return err
		}
		if exists {
			return models.NewPolicyError("your group already submitted its final manuscript")
		}
		if err := tx.Capstones().Create(capstone); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.NewPolicyError("your group already submitted its final manuscript")
			}
			return errors.Wrap(err, "create capstone submission")
		}

		events = append(events, event(actor.ID, "Final Manuscript Submitted",
			fmt.Sprintf("%q was submitted and awaits verification.", capstone.Title),
			models.SeveritySuccess, capstone.ID, models.CapstoneRelatedType))
		admins, err := eventsForRole(tx, models.RoleAdmin, "New Research Submission",
			fmt.Sprintf("%s submitted %q for verification.", actor.FullName(), capstone.Title),
			models.SeverityInfo, capstone.ID, models.NewResearchRelatedType)
		if err != nil {
			return err
		}
		events = append(events, admins...)
		return nil
	})
	if err != nil {
		discardFile(ctx, s.files, ref)
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return capstone, nil
}

// Verify records the admin verdict. A verdict is final.
func (s *capstoneService) Verify(ctx context.Context, capstoneID, actorID uint, status models.CapstoneStatus) (*models.CapstoneSubmission, error) {
	if status != models.CapstoneVerified && status != models.CapstoneRejected {
		return nil, models.NewValidationError("invalid verification status", map[string]string{"status": "must be one of verified rejected"})
	}
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(actor, "verify submissions", models.RoleAdmin); err != nil {
		return nil, err
	}

	var capstone *models.CapstoneSubmission
	var events []models.Notification
	err = s.store.Transaction(ctx, func(tx repositories.Store) error {
		capstone, err = tx.Capstones().GetByID(capstoneID)
		if err != nil {
			return notFound(err, "capstone submission")
		}
		if capstone.Status != models.CapstoneNonVerified {
			return models.NewStateError("the submission was already %s", capstone.Status)
		}
		now := s.now()
		capstone.Status = status
		capstone.VerifiedBy = &actor.ID
		capstone.VerifiedAt = &now
		if err := tx.Capstones().Update(capstone); err != nil {
			return errors.Wrap(err, "update capstone submission")
		}

		title, severity := "Research Verified", models.SeveritySuccess
		msg := fmt.Sprintf("%q is now listed in the %s.", capstone.Title, models.RepositoryName)
		if status == models.CapstoneRejected {
			title, severity = "Research Rejected", models.SeverityError
			msg = fmt.Sprintf("%q was not accepted into the %s.", capstone.Title, models.RepositoryName)
		}
		events = append(events, event(capstone.OwnerID, title, msg, severity, capstone.ID, models.CapstoneRelatedType))
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, events...)
	return capstone, nil
}

// List browses the repository. Only admins may list unverified or rejected
// submissions.
func (s *capstoneService) List(ctx context.Context, actorID uint, params models.CapstoneListParams) ([]models.CapstoneView, int64, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, 0, err
	}

	status := models.CapstoneVerified
	if params.Status != "" {
		if actor.Role != models.RoleAdmin && params.Status != models.CapstoneVerified {
			return nil, 0, models.NewPolicyError("only admins may list %s submissions", params.Status)
		}
		status = params.Status
	}
	params.Normalize()

	capstones, total, err := store.Capstones().List(params, status)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list capstone submissions")
	}
	marked, err := bookmarkedIDs(store, actor.ID)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.CapstoneView, 0, len(capstones))
	for _, c := range capstones {
		views = append(views, models.CapstoneView{CapstoneSubmission: c, Citation: c.Citation(), Bookmarked: marked[c.ID]})
	}
	return views, total, nil
}

func (s *capstoneService) Get(ctx context.Context, capstoneID, actorID uint) (*models.CapstoneView, error) {
	store := s.store.WithContext(ctx)
	actor, err := loadActor(store, actorID)
	if err != nil {
		return nil, err
	}
	capstone, err := store.Capstones().GetByID(capstoneID)
	if err != nil {
		return nil, notFound(err, "capstone submission")
	}
	if capstone.Status != models.CapstoneVerified && actor.Role != models.RoleAdmin {
		ok, err := s.groups.With(store).AuthorizeGroupAction(actor, capstone.OwnerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewNotFoundError("capstone submission")
		}
	}
	bookmarked, err := store.Bookmarks().Exists(actor.ID, capstone.ID)
	if err != nil {
		return nil, errors.Wrap(err, "check bookmark")
	}
	return &models.CapstoneView{CapstoneSubmission: *capstone, Citation: capstone.Citation(), Bookmarked: bookmarked}, nil
}

func bookmarkedIDs(store repositories.Store, userID uint) (map[uint]bool, error) {
	bookmarks, err := store.Bookmarks().ListByUser(userID)
	if err != nil {
		return nil, errors.Wrap(err, "list bookmarks")
	}
	ids := make(map[uint]bool, len(bookmarks))
	for _, b := range bookmarks {
		ids[b.CapstoneID] = true
	}
	return ids, nil
}
