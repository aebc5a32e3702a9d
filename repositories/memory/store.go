// Package memory is an in-process Store used by tests and local runs without
// a database. Transactions work on a copy of the data that replaces the
// original only when fn succeeds.
package memory

import (
	"context"
	"sync"
	"time"

	"capstone-tracker/models"
	"capstone-tracker/repositories"
)

type dataset struct {
	nextID        uint
	users         map[uint]models.User
	projects      map[uint]models.Project
	approvals     map[uint]models.Approval
	defenses      map[uint]models.Defense
	manuscripts   map[uint]models.ManuscriptReview
	capstones     map[uint]models.CapstoneSubmission
	bookmarks     map[uint]models.Bookmark
	notifications map[uint]models.Notification
}

func newDataset() *dataset {
	return &dataset{
		users:         map[uint]models.User{},
		projects:      map[uint]models.Project{},
		approvals:     map[uint]models.Approval{},
		defenses:      map[uint]models.Defense{},
		manuscripts:   map[uint]models.ManuscriptReview{},
		capstones:     map[uint]models.CapstoneSubmission{},
		bookmarks:     map[uint]models.Bookmark{},
		notifications: map[uint]models.Notification{},
	}
}

func copyMap[T any](src map[uint]T) map[uint]T {
	dst := make(map[uint]T, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (d *dataset) clone() *dataset {
	return &dataset{
		nextID:        d.nextID,
		users:         copyMap(d.users),
		projects:      copyMap(d.projects),
		approvals:     copyMap(d.approvals),
		defenses:      copyMap(d.defenses),
		manuscripts:   copyMap(d.manuscripts),
		capstones:     copyMap(d.capstones),
		bookmarks:     copyMap(d.bookmarks),
		notifications: copyMap(d.notifications),
	}
}

func (d *dataset) id() uint {
	d.nextID++
	return d.nextID
}

type db struct {
	mu   sync.RWMutex
	data *dataset
}

type Store struct {
	db *db
	tx *dataset
}

var _ repositories.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{db: &db{data: newDataset()}}
}

func (s *Store) read(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return fn(s.db.data)
}

func (s *Store) write(fn func(d *dataset) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.data)
}

func (s *Store) Users() repositories.UserRepository                 { return &userRepository{s} }
func (s *Store) Projects() repositories.ProjectRepository           { return &projectRepository{s} }
func (s *Store) Defenses() repositories.DefenseRepository           { return &defenseRepository{s} }
func (s *Store) Manuscripts() repositories.ManuscriptRepository     { return &manuscriptRepository{s} }
func (s *Store) Capstones() repositories.CapstoneRepository         { return &capstoneRepository{s} }
func (s *Store) Bookmarks() repositories.BookmarkRepository         { return &bookmarkRepository{s} }
func (s *Store) Notifications() repositories.NotificationRepository { return &notificationRepository{s} }

func (s *Store) WithContext(ctx context.Context) repositories.Store {
	return s
}

// Transaction serializes with every other write. Nested calls join the
// outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	work := s.db.data.clone()
	if err := fn(&Store{db: s.db, tx: work}); err != nil {
		return err
	}
	s.db.data = work
	return nil
}

func stamp(created, updated *time.Time) {
	now := time.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	*updated = now
}
