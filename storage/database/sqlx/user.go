package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studymatch/core/user"
)

const userColumns = `id, email, password_hash, name, university_id, department, year, bio, profile_image,
	points, min_rate, preferred_mode, subjects_teach, subjects_learn, availability,
	rating, total_reviews, joined_at, updated_at`

type userRow struct {
	ID            string         `db:"id"`
	Email         string         `db:"email"`
	PasswordHash  []byte         `db:"password_hash"`
	Name          string         `db:"name"`
	UniversityID  string         `db:"university_id"`
	Department    string         `db:"department"`
	Year          int            `db:"year"`
	Bio           string         `db:"bio"`
	ProfileImage  null.String    `db:"profile_image"`
	Points        int            `db:"points"`
	MinRate       float64        `db:"min_rate"`
	PreferredMode string         `db:"preferred_mode"`
	SubjectsTeach types.JSONText `db:"subjects_teach"`
	SubjectsLearn types.JSONText `db:"subjects_learn"`
	Availability  types.JSONText `db:"availability"`
	Rating        float64        `db:"rating"`
	TotalReviews  int            `db:"total_reviews"`
	JoinedAt      time.Time      `db:"joined_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func newUserRow(usr user.User) (userRow, error) {
	row := userRow{
		ID:            usr.ID,
		Email:         usr.Email,
		PasswordHash:  usr.PasswordHash,
		Name:          usr.Name,
		UniversityID:  usr.UniversityID,
		Department:    usr.Department,
		Year:          usr.Year,
		Bio:           usr.Bio,
		ProfileImage:  null.NewString(usr.ProfileImage, usr.ProfileImage != ""),
		Points:        usr.Points,
		MinRate:       usr.MinRate,
		PreferredMode: usr.PreferredMode,
		Rating:        usr.Rating,
		TotalReviews:  usr.TotalReviews,
		JoinedAt:      usr.JoinedAt,
		UpdatedAt:     usr.UpdatedAt,
	}
	var err error
	if row.SubjectsTeach, err = toJSON(nonNil(usr.SubjectsToTeach)); err != nil {
		return row, errors.Wrap(err, "encoding subjects_teach")
	}
	if row.SubjectsLearn, err = toJSON(nonNil(usr.SubjectsToLearn)); err != nil {
		return row, errors.Wrap(err, "encoding subjects_learn")
	}
	if row.Availability, err = toJSON(nonNil(usr.Availability)); err != nil {
		return row, errors.Wrap(err, "encoding availability")
	}
	return row, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (row userRow) toUser() (user.User, error) {
	usr := user.User{
		ID:            row.ID,
		Email:         row.Email,
		PasswordHash:  row.PasswordHash,
		Name:          row.Name,
		UniversityID:  row.UniversityID,
		Department:    row.Department,
		Year:          row.Year,
		Bio:           row.Bio,
		ProfileImage:  row.ProfileImage.String,
		Points:        row.Points,
		MinRate:       row.MinRate,
		PreferredMode: row.PreferredMode,
		Rating:        row.Rating,
		TotalReviews:  row.TotalReviews,
		JoinedAt:      row.JoinedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
	if err := row.SubjectsTeach.Unmarshal(&usr.SubjectsToTeach); err != nil {
		return user.User{}, errors.Wrap(err, "decoding subjects_teach")
	}
	if err := row.SubjectsLearn.Unmarshal(&usr.SubjectsToLearn); err != nil {
		return user.User{}, errors.Wrap(err, "decoding subjects_learn")
	}
	if err := row.Availability.Unmarshal(&usr.Availability); err != nil {
		return user.User{}, errors.Wrap(err, "decoding availability")
	}
	return usr, nil
}

type userRepository struct {
	repo
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{repo{db: db}}
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return row.toUser()
}

func (r *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row, err := newUserRow(usr)
	if err != nil {
		return user.User{}, err
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (:id, :email, :password_hash, :name, :university_id, :department, :year, :bio, :profile_image,
			:points, :min_rate, :preferred_mode, :subjects_teach, :subjects_learn, :availability,
			:rating, :total_reviews, :joined_at, :updated_at)`, row)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY joined_at, id`); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		usr, err := row.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row, err := newUserRow(usr)
	if err != nil {
		return user.User{}, err
	}
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE users SET
			password_hash = :password_hash, name = :name, university_id = :university_id,
			department = :department, year = :year, bio = :bio, profile_image = :profile_image,
			min_rate = :min_rate, preferred_mode = :preferred_mode, subjects_teach = :subjects_teach,
			subjects_learn = :subjects_learn, availability = :availability, updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return r.GetUserByID(ctx, usr.ID)
}

func (r *userRepository) AddUserPoints(ctx context.Context, id string, delta int) (user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `
		UPDATE users SET points = points + $2
		WHERE id = $1 AND points + $2 >= 0
		RETURNING `+userColumns, id, delta)
	if err == nil {
		return row.toUser()
	}
	if !isNoRows(err) {
		return user.User{}, errors.Wrap(err, "adding user points")
	}
	// no row: either unknown user or insufficient balance
	if _, err = r.GetUserByID(ctx, id); err != nil {
		return user.User{}, err
	}
	return user.User{}, user.ErrInsufficientPoints
}

func (r *userRepository) SetUserRating(ctx context.Context, id string, rating float64, totalReviews int) (user.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `
		UPDATE users SET rating = $2, total_reviews = $3
		WHERE id = $1
		RETURNING `+userColumns, id, rating, totalReviews)
	if err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "setting user rating")
	}
	return row.toUser()
}
