package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studymatch/core/session"
)

const sessionColumns = `id, tutor_id, learner_id, subject_id, scheduled_at, duration, mode, location, meeting_link,
	notes, status, amount, points_awarded, reminded_at, created_at, updated_at`

type sessionRow struct {
	ID            string      `db:"id"`
	TutorID       string      `db:"tutor_id"`
	LearnerID     string      `db:"learner_id"`
	SubjectID     string      `db:"subject_id"`
	ScheduledAt   time.Time   `db:"scheduled_at"`
	Duration      int         `db:"duration"`
	Mode          string      `db:"mode"`
	Location      null.String `db:"location"`
	MeetingLink   null.String `db:"meeting_link"`
	Notes         null.String `db:"notes"`
	Status        string      `db:"status"`
	Amount        float64     `db:"amount"`
	PointsAwarded int         `db:"points_awarded"`
	RemindedAt    null.Time   `db:"reminded_at"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`

	FromStatus string `db:"from_status"` // optimistic lock
}

func optString(s string) null.String {
	return null.NewString(s, s != "")
}

func newSessionRow(sess session.Session) sessionRow {
	return sessionRow{
		ID:            sess.ID,
		TutorID:       sess.TutorID,
		LearnerID:     sess.LearnerID,
		SubjectID:     sess.SubjectID,
		ScheduledAt:   sess.ScheduledAt,
		Duration:      sess.Duration,
		Mode:          sess.Mode,
		Location:      optString(sess.Location),
		MeetingLink:   optString(sess.MeetingLink),
		Notes:         optString(sess.Notes),
		Status:        sess.Status,
		Amount:        sess.Amount,
		PointsAwarded: sess.PointsAwarded,
		RemindedAt:    null.TimeFromPtr(sess.RemindedAt),
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}
}

func (row sessionRow) toSession() session.Session {
	sess := session.Session{
		ID:            row.ID,
		TutorID:       row.TutorID,
		LearnerID:     row.LearnerID,
		SubjectID:     row.SubjectID,
		ScheduledAt:   row.ScheduledAt.UTC(),
		Duration:      row.Duration,
		Mode:          row.Mode,
		Location:      row.Location.String,
		MeetingLink:   row.MeetingLink.String,
		Notes:         row.Notes.String,
		Status:        row.Status,
		Amount:        row.Amount,
		PointsAwarded: row.PointsAwarded,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
	if row.RemindedAt.Valid {
		t := row.RemindedAt.Time.UTC()
		sess.RemindedAt = &t
	}
	return sess
}

type sessionRepository struct {
	repo
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) session.Repository {
	return &sessionRepository{repo{db: db}}
}

func (r *sessionRepository) query(ctx context.Context, query string, args ...interface{}) ([]session.Session, error) {
	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	sessions := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toSession())
	}
	return sessions, nil
}

func (r *sessionRepository) CreateSession(ctx context.Context, sess session.Session) (session.Session, error) {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES (:id, :tutor_id, :learner_id, :subject_id, :scheduled_at, :duration, :mode, :location, :meeting_link,
			:notes, :status, :amount, :points_awarded, :reminded_at, :created_at, :updated_at)`, newSessionRow(sess))
	if err != nil {
		return session.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (r *sessionRepository) GetSessionByID(ctx context.Context, id string) (session.Session, error) {
	var row sessionRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id); err != nil {
		if isNoRows(err) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, errors.Wrap(err, "selecting session")
	}
	return row.toSession(), nil
}

func (r *sessionRepository) QuerySessionsByUser(ctx context.Context, userID string) ([]session.Session, error) {
	return r.query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE tutor_id = $1 OR learner_id = $1
		ORDER BY created_at, id`, userID)
}

func (r *sessionRepository) QuerySessionsByStatus(ctx context.Context, status string) ([]session.Session, error) {
	return r.query(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE status = $1
		ORDER BY scheduled_at, id`, status)
}

func (r *sessionRepository) UpdateSession(ctx context.Context, sess session.Session, fromStatus string) (session.Session, error) {
	row := newSessionRow(sess)
	row.FromStatus = fromStatus
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE sessions SET
			scheduled_at = :scheduled_at, duration = :duration, mode = :mode, location = :location,
			meeting_link = :meeting_link, notes = :notes, status = :status, amount = :amount,
			points_awarded = :points_awarded, reminded_at = :reminded_at, updated_at = :updated_at
		WHERE id = :id AND status = :from_status`, row)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "updating session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err = r.GetSessionByID(ctx, sess.ID); err != nil {
			return session.Session{}, err
		}
		return session.Session{}, session.ErrConflict
	}
	return sess, nil
}
