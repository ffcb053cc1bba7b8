package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/match"
	"github.com/trezcool/studymatch/core/message"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/points"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/session"
	"github.com/trezcool/studymatch/core/subject"
	"github.com/trezcool/studymatch/core/user"
	emailsvc "github.com/trezcool/studymatch/services/email"
	logsvc "github.com/trezcool/studymatch/services/logger"
	dummydb "github.com/trezcool/studymatch/storage/database/dummy"
)

// Services wires every core service over a fresh in-memory Data Store.
type Services struct {
	Conf     *core.Config
	Logger   core.Logger
	Mail     *emailsvc.ConsoleServiceMock
	Validate *core.Validator

	UserRepo         user.Repository
	SubjectRepo      subject.Repository
	SessionRepo      session.Repository
	ReviewRepo       review.Repository
	MessageRepo      message.Repository
	NotificationRepo notification.Repository

	Subjects      *subject.Service
	Users         *user.Service
	Notifications *notification.Service
	Ledger        *points.Ledger
	Sessions      *session.Service
	Reviews       *review.Service
	Matches       *match.Service
	Messages      *message.Service
}

func NewServices(t *testing.T) *Services {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	s := &Services{
		Conf:             core.NewTestConfig(),
		Logger:           logsvc.NewNopLogger(),
		Validate:         core.NewValidator(),
		UserRepo:         dummydb.NewUserRepository(db),
		SubjectRepo:      dummydb.NewSubjectRepository(db),
		SessionRepo:      dummydb.NewSessionRepository(db),
		ReviewRepo:       dummydb.NewReviewRepository(db),
		MessageRepo:      dummydb.NewMessageRepository(db),
		NotificationRepo: dummydb.NewNotificationRepository(db),
	}
	core.ParseEmailTemplates(s.Conf, s.Logger)
	s.Mail = emailsvc.NewConsoleServiceMock(s.Conf, s.Logger)
	s.wire()
	return s
}

// wire (re)builds the services over the repositories of s.
func (s *Services) wire() {
	s.Subjects = subject.NewService(s.SubjectRepo, s.Validate)
	s.Users = user.NewService(s.UserRepo, s.Subjects, s.Mail, s.Validate, s.Logger)
	s.Notifications = notification.NewService(s.NotificationRepo, s.Users, s.Mail, s.Logger)
	s.Ledger = points.NewLedger(s.Users, s.Notifications, s.Logger)
	s.Sessions = session.NewService(s.SessionRepo, s.Users, s.Subjects, s.Notifications, s.Ledger, s.Validate, s.Logger)
	s.Reviews = review.NewService(s.ReviewRepo, s.Users, s.SessionRepo, s.Notifications, s.Ledger, s.Validate, s.Logger)
	s.Matches = match.NewService(s.Users, s.Notifications, s.Logger)
	s.Messages = message.NewService(s.MessageRepo, s.Users, s.Notifications, s.Validate, s.Logger)
}

// ErrNotificationStore is returned by the notification store of FailNotifications.
var ErrNotificationStore = errors.New("notification store unavailable")

type failingNotificationRepo struct {
	notification.Repository
}

func (failingNotificationRepo) CreateNotification(context.Context, notification.Notification) (notification.Notification, error) {
	return notification.Notification{}, ErrNotificationStore
}

// ErrUserStore is returned by the user store of FailRatings.
var ErrUserStore = errors.New("user store unavailable")

type flakyUserRepo struct {
	user.Repository
	failRatings *bool
}

func (r flakyUserRepo) SetUserRating(ctx context.Context, id string, rating float64, totalReviews int) (user.User, error) {
	if *r.failRatings {
		return user.User{}, ErrUserStore
	}
	return r.Repository.SetUserRating(ctx, id, rating, totalReviews)
}

// FailRatings makes rating updates fail until `restore` is called.
func FailRatings(s *Services) (restore func()) {
	fail := true
	s.UserRepo = flakyUserRepo{Repository: s.UserRepo, failRatings: &fail}
	s.wire()
	return func() { fail = false }
}

// FailNotifications makes every new notification fail to persist, other repositories untouched.
func FailNotifications(s *Services) {
	s.NotificationRepo = failingNotificationRepo{Repository: s.NotificationRepo}
	s.wire()
}

// CreateSubject stores a subject straight into the repository.
func CreateSubject(t *testing.T, repo subject.Repository, id, name, department string) subject.Subject {
	t.Helper()
	subj, err := repo.CreateSubject(context.Background(), subject.Subject{
		ID:         id,
		Name:       name,
		Category:   "Core",
		Department: department,
	})
	if err != nil {
		t.Fatalf("createSubject() failed: %v", err)
	}
	return subj
}

// UserOption customises a fixture user.
type UserOption func(*user.User)

func WithTeach(subjectID string, proficiency int) UserOption {
	return func(u *user.User) {
		u.SubjectsToTeach = append(u.SubjectsToTeach, user.SubjectExpertise{SubjectID: subjectID, Proficiency: proficiency})
	}
}

func WithLearn(subjectID string, urgency int) UserOption {
	return func(u *user.User) {
		u.SubjectsToLearn = append(u.SubjectsToLearn, user.SubjectNeed{SubjectID: subjectID, Urgency: urgency})
	}
}

func WithAvailability(day int, start, end string) UserOption {
	return func(u *user.User) {
		u.Availability = append(u.Availability, user.Availability{DayOfWeek: day, StartTime: start, EndTime: end})
	}
}

func WithDepartment(dept string) UserOption {
	return func(u *user.User) { u.Department = dept }
}

func WithRating(rating float64, total int) UserOption {
	return func(u *user.User) { u.Rating, u.TotalReviews = rating, total }
}

func WithMinRate(rate float64) UserOption {
	return func(u *user.User) { u.MinRate = rate }
}

func WithMode(mode string) UserOption {
	return func(u *user.User) { u.PreferredMode = mode }
}

func WithPoints(pts int) UserOption {
	return func(u *user.User) { u.Points = pts }
}

func WithPassword(pwd string) UserOption {
	return func(u *user.User) {
		if err := u.SetPassword(pwd); err != nil {
			panic(err)
		}
	}
}

func WithBio(bio string) UserOption {
	return func(u *user.User) { u.Bio = bio }
}

// CreateUser stores a user straight into the repository, bypassing registration side effects.
func CreateUser(t *testing.T, repo user.Repository, name, email string, opts ...UserOption) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		ID:            uuid.New().String(),
		Email:         email,
		Name:          name,
		Department:    "Computer Science",
		Year:          2,
		Points:        user.WelcomeBonus,
		PreferredMode: user.ModeBoth,
		JoinedAt:      now,
		UpdatedAt:     now,
	}
	for _, opt := range opts {
		opt(&usr)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateSession stores a session straight into the repository.
func CreateSession(t *testing.T, repo session.Repository, tutorID, learnerID, subjectID, status string, scheduledAt time.Time) session.Session {
	t.Helper()
	now := time.Now().UTC()
	sess, err := repo.CreateSession(context.Background(), session.Session{
		ID:          uuid.New().String(),
		TutorID:     tutorID,
		LearnerID:   learnerID,
		SubjectID:   subjectID,
		ScheduledAt: scheduledAt.UTC(),
		Duration:    60,
		Mode:        session.ModeVideo,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		t.Fatalf("createSession() failed: %v", err)
	}
	return sess
}

// Notifications returns every notification of the user, oldest first.
func Notifications(t *testing.T, repo notification.Repository, userID string) []notification.Notification {
	t.Helper()
	notifs, err := repo.QueryNotificationsByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("queryNotifications() failed: %v", err)
	}
	return notifs
}

// CountNotifications counts the user's notifications of the given type.
func CountNotifications(t *testing.T, repo notification.Repository, userID, typ string) int {
	t.Helper()
	var n int
	for _, notif := range Notifications(t, repo, userID) {
		if notif.Type == typ {
			n++
		}
	}
	return n
}
