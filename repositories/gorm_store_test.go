package repositories

import (
	"context"
	"os"
	"testing"

	"capstone-tracker/models"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// GormStoreSuite runs against the Postgres database in TEST_DATABASE_DSN,
// e.g. "host=localhost user=postgres password=postgres dbname=capstone_test sslmode=disable".
type GormStoreSuite struct {
	suite.Suite
	db    *gorm.DB
	store Store
}

func TestGormStoreSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_DSN") == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	suite.Run(t, new(GormStoreSuite))
}

func (suite *GormStoreSuite) SetupSuite() {
	db, err := gorm.Open(postgres.Open(os.Getenv("TEST_DATABASE_DSN")), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.Require().NoError(Migrate(db))
	suite.db = db
	suite.store = NewStore(db)
}

func (suite *GormStoreSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE bookmarks, capstone_submissions, manuscript_reviews, defenses, approvals, projects, notifications, users RESTART IDENTITY CASCADE")
}

func (suite *GormStoreSuite) TestUserUniqueEmail() {
	users := suite.store.Users()
	suite.Require().NoError(users.Create(&models.User{Username: "ana", Email: "ana@ccs.test", Password: "x"}))

	err := users.Create(&models.User{Username: "ana2", Email: "ana@ccs.test", Password: "x"})
	suite.ErrorIs(err, gorm.ErrDuplicatedKey)
}

func (suite *GormStoreSuite) TestProjectVersionsAndRollback() {
	ctx := context.Background()
	projects := suite.store.Projects()

	v1 := &models.Project{Title: "AI Tutor", Version: 1, SubmittedBy: 1}
	suite.Require().NoError(projects.Create(v1))
	suite.Equal(v1.ID, v1.LineageID)

	err := suite.store.Transaction(ctx, func(tx Store) error {
		if err := tx.Projects().Archive(v1.ID); err != nil {
			return err
		}
		return tx.Projects().Create(&models.Project{LineageID: v1.LineageID, Title: "AI Tutor", Version: 2, SubmittedBy: 1})
	})
	suite.Require().NoError(err)
	suite.ErrorIs(projects.Archive(v1.ID), ErrStaleVersion)

	active, err := projects.GetActive(v1.LineageID, false)
	suite.Require().NoError(err)
	suite.Equal(2, active.Version)
	suite.NotNil(active.Approval)

	err = suite.store.Transaction(ctx, func(tx Store) error {
		if err := tx.Projects().Archive(active.ID); err != nil {
			return err
		}
		return ErrStaleVersion
	})
	suite.ErrorIs(err, ErrStaleVersion)

	active, err = projects.GetActive(v1.LineageID, false)
	suite.Require().NoError(err)
	suite.Equal(2, active.Version)
}

func (suite *GormStoreSuite) TestCapstoneOnePerGroup() {
	capstones := suite.store.Capstones()
	suite.Require().NoError(capstones.Create(&models.CapstoneSubmission{GroupKey: "group:G-1", OwnerID: 1, Title: "A", DocumentRef: "a.pdf"}))

	err := capstones.Create(&models.CapstoneSubmission{GroupKey: "group:G-1", OwnerID: 2, Title: "B", DocumentRef: "b.pdf"})
	suite.ErrorIs(err, gorm.ErrDuplicatedKey)
}
