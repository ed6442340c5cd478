package dao

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type DAOTestSuite struct {
	suite.Suite

	pool     *dockertest.Pool
	resource *dockertest.Resource
	db       *gorm.DB
}

func TestDAOTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping dockertest suite in short mode")
	}

	suite.Run(t, new(DAOTestSuite))
}

func (s *DAOTestSuite) SetupSuite() {
	pool, err := dockertest.NewPool("")
	s.Require().NoError(err)

	if err = pool.Client.Ping(); err != nil {
		s.T().Skipf("docker is not available: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=test_db",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	s.Require().NoError(err)

	s.Require().NoError(resource.Expire(180))

	dsn := fmt.Sprintf("postgres://test:secret@%v/test_db?sslmode=disable", resource.GetHostPort("5432/tcp"))

	pool.MaxWait = 120 * time.Second
	var db *gorm.DB
	err = pool.Retry(func() error {
		var openErr error
		db, openErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if openErr != nil {
			return openErr
		}

		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return dbErr
		}

		return sqlDB.Ping()
	})
	s.Require().NoError(err)

	s.Require().NoError(InitTables(db))

	s.pool = pool
	s.resource = resource
	s.db = db
}

func (s *DAOTestSuite) TearDownSuite() {
	if s.pool != nil && s.resource != nil {
		s.Require().NoError(s.pool.Purge(s.resource))
	}
}

func (s *DAOTestSuite) SetupTest() {
	s.Require().NoError(
		s.db.Exec("TRUNCATE TABLE complaints, participations, activities, users RESTART IDENTITY CASCADE").Error,
	)
}

func (s *DAOTestSuite) createUser(email, role string) User {
	user, err := NewUserDAO(s.db).Insert(context.Background(), User{
		Email:    email,
		Password: "hashed-password",
		Role:     role,
		Name:     "Test User",
	})
	s.Require().NoError(err)

	return user
}

func (s *DAOTestSuite) createActivity(organizerID uint, capacity *int, status string) Activity {
	activity, err := NewActivityDAO(s.db).Insert(context.Background(), Activity{
		OrganizerID:       organizerID,
		Name:              "Beach cleanup",
		Category:          "volunteer",
		Capacity:          capacity,
		RegistrationStart: time.Now().Add(-time.Hour),
		RegistrationEnd:   time.Now().Add(time.Hour),
		EventStart:        time.Now().Add(2 * time.Hour),
		EventEnd:          time.Now().Add(4 * time.Hour),
		Status:            status,
	})
	s.Require().NoError(err)

	return activity
}

// Ten students race for three seats; exactly three registrations may land.
func (s *DAOTestSuite) TestInsert_CapacityRace() {
	organizer := s.createUser("organizer@campus.edu", "organizer")
	capacity := 3
	activity := s.createActivity(organizer.ID, &capacity, "Published")

	const students = 10
	ids := make([]uint, students)
	for i := 0; i < students; i++ {
		student := s.createUser(fmt.Sprintf("student%v@campus.edu", i), "student")
		ids[i] = student.ID
	}

	d := NewParticipationDAO(s.db)

	var wg sync.WaitGroup
	errs := make([]error, students)
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.Insert(context.Background(), Participation{
				ActivityID: activity.ID,
				StudentID:  ids[i],
				Status:     "Draft",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.Require().ErrorIs(err, ErrCapacityFull)
		}
	}
	s.Equal(3, succeeded)

	var count int64
	s.Require().NoError(s.db.Model(&Participation{}).Where("activity_id = ?", activity.ID).Count(&count).Error)
	s.EqualValues(3, count)
}

func (s *DAOTestSuite) TestInsert_DuplicateRegistration() {
	organizer := s.createUser("organizer@campus.edu", "organizer")
	student := s.createUser("student@campus.edu", "student")
	activity := s.createActivity(organizer.ID, nil, "Published")

	d := NewParticipationDAO(s.db)

	first, err := d.Insert(context.Background(), Participation{
		ActivityID: activity.ID,
		StudentID:  student.ID,
		Status:     "Draft",
	})
	s.Require().NoError(err)

	_, err = d.Insert(context.Background(), Participation{
		ActivityID: activity.ID,
		StudentID:  student.ID,
		Status:     "Draft",
	})
	s.Require().ErrorIs(err, ErrAlreadyRegistered)

	// A cancelled registration frees the slot for a new attempt.
	updated, err := d.UpdateStatus(context.Background(), first.ID, "Draft", "Cancelled")
	s.Require().NoError(err)
	s.Require().True(updated)

	_, err = d.Insert(context.Background(), Participation{
		ActivityID: activity.ID,
		StudentID:  student.ID,
		Status:     "Draft",
	})
	s.Require().NoError(err)
}

func (s *DAOTestSuite) TestInsert_MissingActivity() {
	student := s.createUser("student@campus.edu", "student")

	_, err := NewParticipationDAO(s.db).Insert(context.Background(), Participation{
		ActivityID: 999,
		StudentID:  student.ID,
		Status:     "Draft",
	})
	s.Require().ErrorIs(err, ErrActivityNotFound)
}

func (s *DAOTestSuite) TestBulkUpdateStatus() {
	organizer := s.createUser("organizer@campus.edu", "organizer")
	activity := s.createActivity(organizer.ID, nil, "Published")
	other := s.createActivity(organizer.ID, nil, "Published")

	d := NewParticipationDAO(s.db)

	var ids []uint
	for i := 0; i < 3; i++ {
		student := s.createUser(fmt.Sprintf("student%v@campus.edu", i), "student")
		p, err := d.Insert(context.Background(), Participation{
			ActivityID: activity.ID,
			StudentID:  student.ID,
			Status:     "Pending",
		})
		s.Require().NoError(err)
		ids = append(ids, p.ID)
	}

	outsider := s.createUser("outsider@campus.edu", "student")
	foreign, err := d.Insert(context.Background(), Participation{
		ActivityID: other.ID,
		StudentID:  outsider.ID,
		Status:     "Pending",
	})
	s.Require().NoError(err)

	// The row from the other activity is excluded by the predicate.
	affected, err := d.BulkUpdateStatus(context.Background(), activity.ID, append(ids, foreign.ID), "Pending", "Approved")
	s.Require().NoError(err)
	s.EqualValues(3, affected)

	// Repeating the batch is a no-op, not an error.
	affected, err = d.BulkUpdateStatus(context.Background(), activity.ID, ids, "Pending", "Approved")
	s.Require().NoError(err)
	s.EqualValues(0, affected)

	untouched, err := d.FindByID(context.Background(), foreign.ID)
	s.Require().NoError(err)
	s.Equal("Pending", untouched.Status)
}

func (s *DAOTestSuite) TestBulkConfirmAttendance() {
	organizer := s.createUser("organizer@campus.edu", "organizer")
	activity := s.createActivity(organizer.ID, nil, "Completed")

	d := NewParticipationDAO(s.db)

	approvedStudent := s.createUser("approved@campus.edu", "student")
	approved, err := d.Insert(context.Background(), Participation{
		ActivityID: activity.ID,
		StudentID:  approvedStudent.ID,
		Status:     "Approved",
	})
	s.Require().NoError(err)

	pendingStudent := s.createUser("pending@campus.edu", "student")
	pending, err := d.Insert(context.Background(), Participation{
		ActivityID: activity.ID,
		StudentID:  pendingStudent.ID,
		Status:     "Pending",
	})
	s.Require().NoError(err)

	affected, err := d.BulkConfirmAttendance(context.Background(), activity.ID, []uint{approved.ID, pending.ID}, "Present", 7)
	s.Require().NoError(err)
	s.EqualValues(1, affected)

	present, err := d.FindByID(context.Background(), approved.ID)
	s.Require().NoError(err)
	s.Equal("Present", present.Status)
	s.Equal(7, present.TrainingPoint)

	skipped, err := d.FindByID(context.Background(), pending.ID)
	s.Require().NoError(err)
	s.Equal("Pending", skipped.Status)
	s.Zero(skipped.TrainingPoint)
}

func (s *DAOTestSuite) TestSumPointsByStudent() {
	organizer := s.createUser("organizer@campus.edu", "organizer")
	student := s.createUser("student@campus.edu", "student")

	d := NewParticipationDAO(s.db)

	for i, status := range []string{"Present", "Present", "Absent"} {
		activity := s.createActivity(organizer.ID, nil, "Completed")
		p, err := d.Insert(context.Background(), Participation{
			ActivityID: activity.ID,
			StudentID:  student.ID,
			Status:     "Approved",
		})
		s.Require().NoError(err)

		point := 0
		if status == "Present" {
			point = 5 + i
		}

		_, err = d.BulkConfirmAttendance(context.Background(), activity.ID, []uint{p.ID}, status, point)
		s.Require().NoError(err)
	}

	total, err := d.SumPointsByStudent(context.Background(), student.ID)
	s.Require().NoError(err)
	s.Equal(11, total)
}

func (s *DAOTestSuite) TestComplaintResolve() {
	organizer := s.createUser("organizer@campus.edu", "organizer")
	student := s.createUser("student@campus.edu", "student")
	activity := s.createActivity(organizer.ID, nil, "Completed")

	pd := NewParticipationDAO(s.db)
	participation, err := pd.Insert(context.Background(), Participation{
		ActivityID: activity.ID,
		StudentID:  student.ID,
		Status:     "Approved",
	})
	s.Require().NoError(err)

	_, err = pd.BulkConfirmAttendance(context.Background(), activity.ID, []uint{participation.ID}, "Present", 7)
	s.Require().NoError(err)

	cd := NewComplaintDAO(s.db)
	complaint, err := cd.Insert(context.Background(), Complaint{
		ParticipationID: participation.ID,
		Description:     "point does not match attendance",
		Status:          "Pending",
	})
	s.Require().NoError(err)

	// An identical pending complaint is rejected.
	_, err = cd.Insert(context.Background(), Complaint{
		ParticipationID: participation.ID,
		Description:     "point does not match attendance",
		Status:          "Pending",
	})
	s.Require().ErrorIs(err, ErrDuplicateComplaint)

	newPoint := 10
	resolved, err := cd.Resolve(context.Background(), complaint.ID, "Approved", "attendance log confirms presence", &newPoint)
	s.Require().NoError(err)
	s.Equal("Approved", resolved.Status)
	s.Require().NotNil(resolved.NewPoint)
	s.Equal(10, *resolved.NewPoint)

	// The participation's point was overwritten in the same transaction.
	overridden, err := pd.FindByID(context.Background(), participation.ID)
	s.Require().NoError(err)
	s.Equal(10, overridden.TrainingPoint)

	// A resolved complaint cannot be resolved again.
	_, err = cd.Resolve(context.Background(), complaint.ID, "Rejected", "second attempt", nil)
	s.Require().ErrorIs(err, ErrComplaintResolved)
}

// Identical submissions serialize on the participation row; only one
// complaint may land.
func (s *DAOTestSuite) TestComplaintInsert_DuplicateRace() {
	organizer := s.createUser("organizer@campus.edu", "organizer")
	student := s.createUser("student@campus.edu", "student")
	activity := s.createActivity(organizer.ID, nil, "Completed")

	participation, err := NewParticipationDAO(s.db).Insert(context.Background(), Participation{
		ActivityID: activity.ID,
		StudentID:  student.ID,
		Status:     "Approved",
	})
	s.Require().NoError(err)

	cd := NewComplaintDAO(s.db)

	const submissions = 8
	var wg sync.WaitGroup
	errs := make([]error, submissions)
	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = cd.Insert(context.Background(), Complaint{
				ParticipationID: participation.ID,
				Description:     "point does not match attendance",
				Status:          "Pending",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.Require().ErrorIs(err, ErrDuplicateComplaint)
		}
	}
	s.Equal(1, succeeded)

	var count int64
	s.Require().NoError(s.db.Model(&Complaint{}).Where("participation_id = ?", participation.ID).Count(&count).Error)
	s.EqualValues(1, count)
}

func (s *DAOTestSuite) TestComplaintInsert_MissingParticipation() {
	_, err := NewComplaintDAO(s.db).Insert(context.Background(), Complaint{
		ParticipationID: 999,
		Description:     "point does not match attendance",
		Status:          "Pending",
	})
	s.Require().ErrorIs(err, ErrParticipationNotFound)
}
