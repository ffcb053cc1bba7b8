package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/studymatch/core"
)

// Session modes a user is willing to study in.
const (
	ModeInPerson = "in-person"
	ModeVideo    = "video"
	ModeBoth     = "both"
)

// WelcomeBonus is credited to every new account.
const WelcomeBonus = 100

type (
	// SubjectExpertise is a subject a user can teach.
	SubjectExpertise struct {
		SubjectID   string `json:"subject_id" validate:"required"`
		Proficiency int    `json:"proficiency" validate:"min=1,max=5"`
		Description string `json:"description,omitempty" validate:"max=500"`
	}

	// SubjectNeed is a subject a user wants to learn.
	SubjectNeed struct {
		SubjectID   string `json:"subject_id" validate:"required"`
		Urgency     int    `json:"urgency" validate:"min=1,max=5"`
		Description string `json:"description,omitempty" validate:"max=500"`
	}

	// Availability is a weekly time slot; DayOfWeek 0 is Sunday.
	Availability struct {
		DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
		StartTime string `json:"start_time" validate:"hhmm"`
		EndTime   string `json:"end_time" validate:"hhmm"`
	}
)

// Overlaps reports whether both slots share some time on the same day.
func (a Availability) Overlaps(b Availability) bool {
	// HH:MM strings compare lexically
	return a.DayOfWeek == b.DayOfWeek && a.StartTime < b.EndTime && b.StartTime < a.EndTime
}

type User struct {
	ID              string             `json:"id"`
	Email           string             `json:"email"`
	PasswordHash    []byte             `json:"-"`
	Name            string             `json:"name"`
	UniversityID    string             `json:"university_id"`
	Department      string             `json:"department"`
	Year            int                `json:"year"`
	Bio             string             `json:"bio"`
	ProfileImage    string             `json:"profile_image,omitempty"`
	Points          int                `json:"points"`
	MinRate         float64            `json:"min_rate"` // per hour; 0 is free
	PreferredMode   string             `json:"preferred_mode"`
	SubjectsToTeach []SubjectExpertise `json:"subjects_to_teach"`
	SubjectsToLearn []SubjectNeed      `json:"subjects_to_learn"`
	Availability    []Availability     `json:"availability"`
	Rating          float64            `json:"rating"`
	TotalReviews    int                `json:"total_reviews"`
	JoinedAt        time.Time          `json:"joined_at"`  // UTC
	UpdatedAt       time.Time          `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// Expertise returns the user's teaching record for a subject.
func (u *User) Expertise(subjectID string) (SubjectExpertise, bool) {
	for _, e := range u.SubjectsToTeach {
		if e.SubjectID == subjectID {
			return e, true
		}
	}
	return SubjectExpertise{}, false
}

// Teaches reports whether the user lists the subject as one they can teach.
func (u *User) Teaches(subjectID string) bool {
	_, ok := u.Expertise(subjectID)
	return ok
}

// AcceptsMode reports whether the user studies in the given session mode.
func (u *User) AcceptsMode(mode string) bool {
	return u.PreferredMode == mode || u.PreferredMode == ModeBoth
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email           string             `json:"email" validate:"required,email"`
	Password        string             `json:"password" validate:"required"`
	PasswordConfirm string             `json:"password_confirm" validate:"required,eqfield=Password"`
	Name            string             `json:"name" validate:"required,max=255"`
	UniversityID    string             `json:"university_id" validate:"max=64"`
	Department      string             `json:"department" validate:"required,max=255"`
	Year            int                `json:"year" validate:"min=1,max=8"`
	Bio             string             `json:"bio" validate:"max=2000"`
	MinRate         float64            `json:"min_rate" validate:"min=0"`
	PreferredMode   string             `json:"preferred_mode" validate:"omitempty,oneof=in-person video both"`
	SubjectsToTeach []SubjectExpertise `json:"subjects_to_teach" validate:"dive"`
	SubjectsToLearn []SubjectNeed      `json:"subjects_to_learn" validate:"dive"`
	Availability    []Availability     `json:"availability" validate:"dive"`
}

func (nu *NewUser) clean() {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.UniversityID = core.CleanString(nu.UniversityID)
	nu.Department = core.CleanString(nu.Department)
	nu.Bio = core.CleanString(nu.Bio)
	if nu.PreferredMode == "" {
		nu.PreferredMode = ModeBoth
	}
	if nu.Year == 0 {
		nu.Year = 1
	}
}

// UpdateProfile defines what information a user may change on their own profile.
// Points, rating and review counts are derived and can never be set directly.
type UpdateProfile struct {
	Name            *string             `json:"name" validate:"omitempty,notblank,max=255"`
	Department      *string             `json:"department" validate:"omitempty,notblank,max=255"`
	Year            *int                `json:"year" validate:"omitempty,min=1,max=8"`
	Bio             *string             `json:"bio" validate:"omitempty,max=2000"`
	ProfileImage    *string             `json:"profile_image" validate:"omitempty,max=2048"`
	MinRate         *float64            `json:"min_rate" validate:"omitempty,min=0"`
	PreferredMode   *string             `json:"preferred_mode" validate:"omitempty,oneof=in-person video both"`
	SubjectsToTeach *[]SubjectExpertise `json:"subjects_to_teach" validate:"omitempty,dive"`
	SubjectsToLearn *[]SubjectNeed      `json:"subjects_to_learn" validate:"omitempty,dive"`
	Availability    *[]Availability     `json:"availability" validate:"omitempty,dive"`
}

func (up UpdateProfile) apply(usr *User) {
	if up.Name != nil {
		usr.Name = core.CleanString(*up.Name)
	}
	if up.Department != nil {
		usr.Department = core.CleanString(*up.Department)
	}
	if up.Year != nil {
		usr.Year = *up.Year
	}
	if up.Bio != nil {
		usr.Bio = core.CleanString(*up.Bio)
	}
	if up.ProfileImage != nil {
		usr.ProfileImage = core.CleanString(*up.ProfileImage)
	}
	if up.MinRate != nil {
		usr.MinRate = *up.MinRate
	}
	if up.PreferredMode != nil {
		usr.PreferredMode = *up.PreferredMode
	}
	if up.SubjectsToTeach != nil {
		usr.SubjectsToTeach = *up.SubjectsToTeach
	}
	if up.SubjectsToLearn != nil {
		usr.SubjectsToLearn = *up.SubjectsToLearn
	}
	if up.Availability != nil {
		usr.Availability = *up.Availability
	}
}
