package user

import (
	"context"
	"net/mail"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/subject"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInsufficientPoints = errors.New("insufficient points")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryAllUsers returns users ordered by registration date.
		QueryAllUsers(ctx context.Context) ([]User, error)
		// UpdateUser saves the profile fields and password; points, rating and totalReviews are left untouched.
		UpdateUser(ctx context.Context, usr User) (User, error)
		// AddUserPoints atomically adds `delta` to the user's balance.
		// It fails with ErrInsufficientPoints when the balance would become negative.
		AddUserPoints(ctx context.Context, id string, delta int) (User, error)
		SetUserRating(ctx context.Context, id string, rating float64, totalReviews int) (User, error)
	}

	Service struct {
		repo     Repository
		subjects *subject.Service
		mailSvc  core.EmailService
		validate *core.Validator
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	subjects *subject.Service,
	mailSvc core.EmailService,
	validate *core.Validator,
	logger core.Logger,
) *Service {
	InitValidators(validate)
	return &Service{
		repo:     repo,
		subjects: subjects,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
	}
}

func (svc *Service) checkSubjects(ctx context.Context, teach []SubjectExpertise, learn []SubjectNeed) error {
	for _, e := range teach {
		if err := svc.subjects.CheckExist(ctx, "subjects_to_teach", e.SubjectID); err != nil {
			return err
		}
	}
	for _, n := range learn {
		if err := svc.subjects.CheckExist(ctx, "subjects_to_learn", n.SubjectID); err != nil {
			return err
		}
	}
	return nil
}

// Register creates a new account credited with the welcome bonus and sends the welcome email.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	nu.clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, err
	}
	if _, err := svc.repo.GetUserByEmail(ctx, nu.Email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}
	if err := svc.checkSubjects(ctx, nu.SubjectsToTeach, nu.SubjectsToLearn); err != nil {
		return User{}, err
	}

	now := core.NowFunc().UTC()
	usr := User{
		ID:              uuid.New().String(),
		Email:           nu.Email,
		Name:            nu.Name,
		UniversityID:    nu.UniversityID,
		Department:      nu.Department,
		Year:            nu.Year,
		Bio:             nu.Bio,
		Points:          WelcomeBonus,
		MinRate:         nu.MinRate,
		PreferredMode:   nu.PreferredMode,
		SubjectsToTeach: nu.SubjectsToTeach,
		SubjectsToLearn: nu.SubjectsToLearn,
		Availability:    nu.Availability,
		JoinedAt:        now,
		UpdatedAt:       now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.logger.Info("user registered", "user_id", usr.ID)

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to Study Match",
		TemplateName: "welcome",
		TemplateData: usr,
	})
	return usr, nil
}

// Authenticate returns the user matching the credentials, or ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// CheckExist returns a ValidationError on `field` when no user has the given id.
func (svc *Service) CheckExist(ctx context.Context, field, id string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, core.NewFieldError(field, "unknown user "+id)
		}
		return User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}

// UpdateProfile lets the actor edit their own profile.
func (svc *Service) UpdateProfile(ctx context.Context, actor core.Actor, up UpdateProfile) (User, error) {
	if err := svc.validate.Struct(up); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return User{}, errors.Wrap(err, "finding user by ID")
	}

	var teach []SubjectExpertise
	var learn []SubjectNeed
	if up.SubjectsToTeach != nil {
		teach = *up.SubjectsToTeach
	}
	if up.SubjectsToLearn != nil {
		learn = *up.SubjectsToLearn
	}
	if err = svc.checkSubjects(ctx, teach, learn); err != nil {
		return User{}, err
	}

	up.apply(&usr)
	usr.UpdatedAt = actor.Now()
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword replaces the user's password after applying the password policy.
func (svc *Service) SetPassword(ctx context.Context, id, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, errors.Wrap(err, "finding user by ID")
	}
	if err = passwordError(pwd, usr.Name, usr.Email); err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// AddPoints atomically adjusts the user's points balance. Use the points ledger to credit users.
func (svc *Service) AddPoints(ctx context.Context, id string, delta int) (User, error) {
	return svc.repo.AddUserPoints(ctx, id, delta)
}

// SetRating stores the derived rating aggregate. Use the review service to record reviews.
func (svc *Service) SetRating(ctx context.Context, id string, rating float64, totalReviews int) (User, error) {
	return svc.repo.SetUserRating(ctx, id, rating, totalReviews)
}
