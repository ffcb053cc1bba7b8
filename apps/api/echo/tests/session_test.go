package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/studymatch/apps/api/echo"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/session"
	"github.com/trezcool/studymatch/core/user"
	"github.com/trezcool/studymatch/tests"
)

type sessionFixture struct {
	svcs                     *testutil.Services
	app                      *Server
	tutor, learner, outsider user.User
	tutorTok, learnerTok     string
	outsiderTok              string
}

func newSessionFixture(t *testing.T) sessionFixture {
	svcs, app := setup(t)
	testutil.CreateSubject(t, svcs.SubjectRepo, "s1", "Algorithms", "Computer Science")
	f := sessionFixture{
		svcs:     svcs,
		app:      app,
		tutor:    testutil.CreateUser(t, svcs.UserRepo, "Tutor", "tutor@uni.test", testutil.WithTeach("s1", 5), testutil.WithMinRate(30)),
		learner:  testutil.CreateUser(t, svcs.UserRepo, "Learner", "learner@uni.test", testutil.WithLearn("s1", 4)),
		outsider: testutil.CreateUser(t, svcs.UserRepo, "Outsider", "outsider@uni.test"),
	}
	f.tutorTok = getToken(t, svcs, f.tutor)
	f.learnerTok = getToken(t, svcs, f.learner)
	f.outsiderTok = getToken(t, svcs, f.outsider)
	return f
}

func Test_sessionApi_request(t *testing.T) {
	f := newSessionFixture(t)
	when := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)

	newSession := func(tutorID string) session.NewSession {
		return session.NewSession{TutorID: tutorID, SubjectID: "s1", ScheduledAt: when, Duration: 90, Mode: session.ModeVideo}
	}
	bad := newSession(f.tutor.ID)
	bad.ScheduledAt = "tomorrow"

	runHTTPTests(t, f.app, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/sessions", wantCode: http.StatusUnauthorized},
		{
			name: "self booking", method: http.MethodPost, path: "/v1/sessions", token: f.tutorTok,
			body: marshallObj(t, newSession(f.tutor.ID)), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"tutor_id":"you cannot book a session with yourself"}`),
		},
		{
			name: "unknown tutor", method: http.MethodPost, path: "/v1/sessions", token: f.learnerTok,
			body: marshallObj(t, newSession("nope")), wantCode: http.StatusBadRequest,
		},
		{
			name: "malformed date", method: http.MethodPost, path: "/v1/sessions", token: f.learnerTok,
			body: marshallObj(t, bad), wantCode: http.StatusBadRequest,
		},
	})

	rec := do(f.app, http.MethodPost, "/v1/sessions", f.learnerTok, marshallObj(t, newSession(f.tutor.ID)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sess session.Session
	decode(t, rec, &sess)
	assert.Equal(t, session.StatusPending, sess.Status)
	assert.Equal(t, f.learner.ID, sess.LearnerID)
	assert.Equal(t, 45.0, sess.Amount)
	assert.Equal(t, 1, testutil.CountNotifications(t, f.svcs.NotificationRepo, f.tutor.ID, notification.TypeSessionRequest))
}

func Test_sessionApi_lifecycle(t *testing.T) {
	f := newSessionFixture(t)
	past := time.Now().Add(-2 * time.Hour)
	sess := testutil.CreateSession(t, f.svcs.SessionRepo, f.tutor.ID, f.learner.ID, "s1", session.StatusPending, past)
	path := "/v1/sessions/" + sess.ID

	runHTTPTests(t, f.app, []httpTest{
		{name: "outsider cannot see", path: path, token: f.outsiderTok, wantCode: http.StatusNotFound},
		{name: "unknown session", path: "/v1/sessions/nope", token: f.learnerTok, wantCode: http.StatusNotFound},
		{name: "learner cannot accept", method: http.MethodPost, path: path + "/accept", token: f.learnerTok, wantCode: http.StatusConflict},
		{name: "cannot complete pending", method: http.MethodPost, path: path + "/complete", token: f.tutorTok, wantCode: http.StatusConflict},
		{name: "tutor accepts", method: http.MethodPost, path: path + "/accept", token: f.tutorTok, wantCode: http.StatusOK},
		{name: "accept twice", method: http.MethodPost, path: path + "/accept", token: f.tutorTok, wantCode: http.StatusConflict},
		{name: "outsider cannot complete", method: http.MethodPost, path: path + "/complete", token: f.outsiderTok, wantCode: http.StatusConflict},
		{name: "tutor completes", method: http.MethodPost, path: path + "/complete", token: f.tutorTok, wantCode: http.StatusOK},
		{name: "cannot cancel completed", method: http.MethodPost, path: path + "/cancel", token: f.learnerTok, wantCode: http.StatusConflict},
	})

	rec := do(f.app, http.MethodGet, path, f.learnerTok)
	require.Equal(t, http.StatusOK, rec.Code)
	var got session.Session
	decode(t, rec, &got)
	assert.Equal(t, session.StatusCompleted, got.Status)
	assert.Equal(t, 50, got.PointsAwarded)

	tutor, err := f.svcs.Users.GetByID(ctxBG, f.tutor.ID)
	require.NoError(t, err)
	assert.Equal(t, f.tutor.Points+50, tutor.Points)
	learner, err := f.svcs.Users.GetByID(ctxBG, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.learner.Points, learner.Points)
}

func Test_sessionApi_cancel(t *testing.T) {
	f := newSessionFixture(t)
	sess := testutil.CreateSession(t, f.svcs.SessionRepo, f.tutor.ID, f.learner.ID, "s1", session.StatusConfirmed, time.Now().Add(time.Hour))

	rec := do(f.app, http.MethodPost, "/v1/sessions/"+sess.ID+"/cancel", f.learnerTok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got session.Session
	decode(t, rec, &got)
	assert.Equal(t, session.StatusCancelled, got.Status)
	assert.Equal(t, 1, testutil.CountNotifications(t, f.svcs.NotificationRepo, f.tutor.ID, notification.TypeSessionCancelled))
}

func Test_sessionApi_query(t *testing.T) {
	f := newSessionFixture(t)
	now := time.Now()
	pending := testutil.CreateSession(t, f.svcs.SessionRepo, f.tutor.ID, f.learner.ID, "s1", session.StatusPending, now.Add(time.Hour))
	upcoming := testutil.CreateSession(t, f.svcs.SessionRepo, f.tutor.ID, f.learner.ID, "s1", session.StatusConfirmed, now.Add(2*time.Hour))
	done := testutil.CreateSession(t, f.svcs.SessionRepo, f.tutor.ID, f.learner.ID, "s1", session.StatusCompleted, now.Add(-time.Hour))

	tests := []struct {
		name    string
		tab     string
		wantIDs []string
	}{
		{name: "all", tab: "", wantIDs: []string{upcoming.ID, pending.ID, done.ID}},
		{name: "pending", tab: session.TabPending, wantIDs: []string{pending.ID}},
		{name: "upcoming", tab: session.TabUpcoming, wantIDs: []string{upcoming.ID}},
		{name: "history", tab: session.TabHistory, wantIDs: []string{done.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(f.app, http.MethodGet, "/v1/sessions?tab="+tt.tab, f.tutorTok)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			var got []session.Session
			decode(t, rec, &got)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	t.Run("unknown tab", func(t *testing.T) {
		rec := do(f.app, http.MethodGet, "/v1/sessions?tab=later", f.tutorTok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("outsider sees nothing", func(t *testing.T) {
		rec := do(f.app, http.MethodGet, "/v1/sessions", f.outsiderTok)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})
}

func Test_sessionApi_review(t *testing.T) {
	f := newSessionFixture(t)
	done := testutil.CreateSession(t, f.svcs.SessionRepo, f.tutor.ID, f.learner.ID, "s1", session.StatusCompleted, time.Now().Add(-time.Hour))
	pending := testutil.CreateSession(t, f.svcs.SessionRepo, f.tutor.ID, f.learner.ID, "s1", session.StatusPending, time.Now().Add(time.Hour))

	body := marshallObj(t, SessionReviewRequest{RevieweeID: f.tutor.ID, Rating: 4, Comment: "clear explanations"})
	runHTTPTests(t, f.app, []httpTest{
		{
			name: "session not completed", method: http.MethodPost, path: "/v1/sessions/" + pending.ID + "/reviews",
			token: f.learnerTok, body: body, wantCode: http.StatusBadRequest,
			wantData: []byte(`{"session_id":"only completed sessions can be reviewed"}`),
		},
		{
			name: "rating out of range", method: http.MethodPost, path: "/v1/sessions/" + done.ID + "/reviews",
			token: f.learnerTok, body: marshallObj(t, SessionReviewRequest{RevieweeID: f.tutor.ID, Rating: 6}),
			wantCode: http.StatusBadRequest,
		},
	})

	rec := do(f.app, http.MethodPost, "/v1/sessions/"+done.ID+"/reviews", f.learnerTok, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var rev review.Review
	decode(t, rec, &rev)
	assert.Equal(t, f.learner.ID, rev.ReviewerID)
	assert.Equal(t, done.ID, rev.SessionID)

	rec = do(f.app, http.MethodGet, "/v1/users/"+f.tutor.ID, f.learnerTok)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile ProfileResponse
	decode(t, rec, &profile)
	assert.Equal(t, 4.0, profile.Rating)
	assert.Equal(t, 1, profile.TotalReviews)
	assert.Len(t, profile.Reviews, 1)

	learner, err := f.svcs.Users.GetByID(ctxBG, f.learner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.learner.Points+10, learner.Points)
}
