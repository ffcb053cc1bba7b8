package tests

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studymatch/core/match"
	"github.com/trezcool/studymatch/core/user"
	"github.com/trezcool/studymatch/tests"
)

func Test_matchApi(t *testing.T) {
	svcs, app := setup(t)
	testutil.CreateSubject(t, svcs.SubjectRepo, "s1", "Algorithms", "Computer Science")
	testutil.CreateSubject(t, svcs.SubjectRepo, "s2", "Calculus", "Mathematics")

	me := testutil.CreateUser(t, svcs.UserRepo, "Me", "me@uni.test", testutil.WithLearn("s1", 5), testutil.WithTeach("s2", 3))
	cs := testutil.CreateUser(t, svcs.UserRepo, "Cyd", "cyd@uni.test", testutil.WithTeach("s1", 4), testutil.WithMinRate(15), testutil.WithMode(user.ModeVideo))
	maths := testutil.CreateUser(t, svcs.UserRepo, "Max", "max@uni.test",
		testutil.WithDepartment("Mathematics"), testutil.WithLearn("s2", 2), testutil.WithMinRate(40), testutil.WithMode(user.ModeInPerson),
	)
	// nothing in common
	nia := testutil.CreateUser(t, svcs.UserRepo, "Nia", "nia@uni.test", testutil.WithDepartment("History"))
	token := getToken(t, svcs, me)

	t.Run("suggestions", func(t *testing.T) {
		rec := do(app, http.MethodGet, "/v1/matches", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got []match.Match
		decode(t, rec, &got)
		require.Len(t, got, 2)
		assert.Equal(t, cs.ID, got[0].User.ID)
		assert.Equal(t, 25.0, got[0].Score) // 4*5 + department bonus
		assert.Equal(t, maths.ID, got[1].User.ID)
		assert.Equal(t, 6.0, got[1].Score) // 3*2
	})

	discover := func(v url.Values) string { return "/v1/discover?" + v.Encode() }

	tests := []struct {
		name     string
		query    url.Values
		wantCode int
		wantIDs  []string
	}{
		{name: "no filter", query: url.Values{}, wantCode: http.StatusOK, wantIDs: []string{cs.ID, maths.ID, nia.ID}},
		{name: "department", query: url.Values{"department": {"Mathematics"}}, wantCode: http.StatusOK, wantIDs: []string{maths.ID}},
		{name: "subject taught", query: url.Values{"subject": {"s1"}}, wantCode: http.StatusOK, wantIDs: []string{cs.ID}},
		{name: "mode", query: url.Values{"mode": {user.ModeInPerson}}, wantCode: http.StatusOK, wantIDs: []string{maths.ID, nia.ID}},
		{name: "max rate", query: url.Values{"max_rate": {"20"}}, wantCode: http.StatusOK, wantIDs: []string{cs.ID, nia.ID}},
		{name: "search", query: url.Values{"search": {"MAX"}}, wantCode: http.StatusOK, wantIDs: []string{maths.ID}},
		{name: "bad max rate", query: url.Values{"max_rate": {"cheap"}}, wantCode: http.StatusBadRequest},
		{name: "negative max rate", query: url.Values{"max_rate": {"-1"}}, wantCode: http.StatusBadRequest},
		{name: "unknown mode", query: url.Values{"mode": {"telepathy"}}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, http.MethodGet, discover(tt.query), token)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			var got []match.Match
			decode(t, rec, &got)
			gotIDs := make([]string, 0, len(got))
			for _, m := range got {
				gotIDs = append(gotIDs, m.User.ID)
				assert.NotEqual(t, me.ID, m.User.ID)
			}
			assert.ElementsMatch(t, tt.wantIDs, gotIDs)
		})
	}
}
