package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/studymatch/apps/api/echo"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/user"
	"github.com/trezcool/studymatch/tests"
)

func Test_userApi_register(t *testing.T) {
	svcs, app := setup(t)
	testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test")

	newUser := func(email string) user.NewUser {
		return user.NewUser{
			Email:           email,
			Password:        testPassword,
			PasswordConfirm: testPassword,
			Name:            "Grace Hopper",
			Department:      "Computer Science",
			Year:            3,
		}
	}

	tests := []struct {
		name       string
		body       []byte
		wantCode   int
		wantFields []string
	}{
		{name: "invalid json", body: []byte(`{"email":`), wantCode: http.StatusBadRequest},
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantFields: []string{"email", "password", "password_confirm", "name", "department"},
		},
		{name: "email taken", body: marshallObj(t, newUser("ADA@uni.test")), wantCode: http.StatusBadRequest, wantFields: []string{"email"}},
		{name: "ok", body: marshallObj(t, newUser("grace@uni.test")), wantCode: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, http.MethodPost, "/v1/users/register", "", tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.wantFields != nil {
				var fields map[string]string
				decode(t, rec, &fields)
				for _, f := range tt.wantFields {
					assert.Contains(t, fields, f)
				}
			}
			if tt.wantCode == http.StatusCreated {
				var usr user.User
				decode(t, rec, &usr)
				assert.NotEmpty(t, usr.ID)
				assert.Equal(t, user.WelcomeBonus, usr.Points)
				assert.Zero(t, usr.Rating)
				assert.Len(t, svcs.Mail.SentMessages(), 1)
			}
		})
	}
}

func Test_userApi_register_announcesMatches(t *testing.T) {
	svcs, app := setup(t)
	testutil.CreateSubject(t, svcs.SubjectRepo, "s1", "Algorithms", "Computer Science")
	testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test", testutil.WithTeach("s1", 5))

	nu := user.NewUser{
		Email:           "grace@uni.test",
		Password:        testPassword,
		PasswordConfirm: testPassword,
		Name:            "Grace Hopper",
		Department:      "Computer Science",
		SubjectsToLearn: []user.SubjectNeed{{SubjectID: "s1", Urgency: 4}},
	}
	rec := do(app, http.MethodPost, "/v1/users/register", "", marshallObj(t, nu))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var usr user.User
	decode(t, rec, &usr)
	assert.Equal(t, 1, testutil.CountNotifications(t, svcs.NotificationRepo, usr.ID, notification.TypeMatchFound))
}

func Test_userApi_login(t *testing.T) {
	svcs, app := setup(t)
	usr := testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test", testutil.WithPassword(testPassword))

	tests := []httpTest{
		{
			name: "missing password", body: marshallObj(t, LoginRequest{Email: usr.Email}),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"password":"this field is required"}`),
		},
		{
			name: "wrong password", body: marshallObj(t, LoginRequest{Email: usr.Email, Password: "nope"}),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name: "unknown email", body: marshallObj(t, LoginRequest{Email: "who@uni.test", Password: testPassword}),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/v1/users/login"
	}
	runHTTPTests(t, app, tests)

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", marshallObj(t, LoginRequest{Email: " ADA@uni.test", Password: testPassword}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp TokenResponse
		decode(t, rec, &resp)
		require.NotEmpty(t, resp.Token)

		rec = do(app, http.MethodGet, "/v1/users/me", resp.Token)
		require.Equal(t, http.StatusOK, rec.Code)
		var me user.User
		decode(t, rec, &me)
		assert.Equal(t, usr.ID, me.ID)
	})
}

func Test_userApi_me(t *testing.T) {
	svcs, app := setup(t)
	usr := testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test", testutil.WithPoints(250), testutil.WithRating(4.5, 2))
	token := getToken(t, svcs, usr)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/users/me", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "bad token", path: "/v1/users/me", token: "not-a-jwt", wantCode: http.StatusUnauthorized},
		{
			name: "invalid update", method: http.MethodPatch, path: "/v1/users/me", token: token,
			body: []byte(`{"preferred_mode":"carrier-pigeon"}`), wantCode: http.StatusBadRequest,
		},
	})

	t.Run("update keeps derived fields", func(t *testing.T) {
		body := []byte(`{"bio":"  compilers  ","min_rate":20,"points":9999,"rating":5,"total_reviews":40}`)
		rec := do(app, http.MethodPatch, "/v1/users/me", token, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got user.User
		decode(t, rec, &got)
		assert.Equal(t, "compilers", got.Bio)
		assert.Equal(t, 20.0, got.MinRate)
		assert.Equal(t, 250, got.Points)
		assert.Equal(t, 4.5, got.Rating)
		assert.Equal(t, 2, got.TotalReviews)
	})
}

func Test_userApi_refreshToken(t *testing.T) {
	svcs, app := setup(t)
	usr := testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test")

	expired := GetUserClaims(svcs.Conf, usr, 1 /* 1970 */)
	expiredToken, err := GenerateToken(svcs.Conf, expired)
	require.NoError(t, err)

	ghost := user.User{ID: "ghost", Name: "Ghost", Email: "ghost@uni.test"}

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/v1/users/token-refresh", wantCode: http.StatusUnauthorized},
		{
			name: "refresh expired", method: http.MethodPost, path: "/v1/users/token-refresh", token: expiredToken,
			wantCode: http.StatusForbidden, wantData: []byte(`{"error":"refresh has expired"}`),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/v1/users/token-refresh", token: getToken(t, svcs, ghost),
			wantCode: http.StatusUnauthorized,
		},
	})

	t.Run("ok", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/v1/users/token-refresh", getToken(t, svcs, usr))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp TokenResponse
		decode(t, rec, &resp)
		assert.NotEmpty(t, resp.Token)
	})
}

func Test_userApi_retrieve(t *testing.T) {
	svcs, app := setup(t)
	ada := testutil.CreateUser(t, svcs.UserRepo, "Ada", "ada@uni.test")
	bob := testutil.CreateUser(t, svcs.UserRepo, "Bob", "bob@uni.test")
	token := getToken(t, svcs, ada)

	runHTTPTests(t, app, []httpTest{
		{name: "unknown user", path: "/v1/users/nope", token: token, wantCode: http.StatusNotFound, wantData: []byte(`{"error":"user not found"}`)},
		{name: "unknown user reviews", path: "/v1/users/nope/reviews", token: token, wantCode: http.StatusNotFound},
		{name: "no reviews yet", path: "/v1/users/" + bob.ID + "/reviews", token: token, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	})

	rec := do(app, http.MethodGet, "/v1/users/"+bob.ID, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var profile ProfileResponse
	decode(t, rec, &profile)
	assert.Equal(t, bob.ID, profile.ID)
	assert.Empty(t, profile.Reviews)
	assert.NotContains(t, rec.Body.String(), "password")
}
