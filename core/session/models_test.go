package session

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     bool
	}{
		{name: "accept", from: StatusPending, to: StatusConfirmed, want: true},
		{name: "decline", from: StatusPending, to: StatusCancelled, want: true},
		{name: "complete pending", from: StatusPending, to: StatusCompleted},
		{name: "complete", from: StatusConfirmed, to: StatusCompleted, want: true},
		{name: "cancel confirmed", from: StatusConfirmed, to: StatusCancelled, want: true},
		{name: "reopen completed", from: StatusCompleted, to: StatusConfirmed},
		{name: "cancel completed", from: StatusCompleted, to: StatusCancelled},
		{name: "revive cancelled", from: StatusCancelled, to: StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("canTransition(%s, %s) = %v; want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestSessionAmount(t *testing.T) {
	tests := []struct {
		name     string
		minRate  float64
		duration int
		want     float64
	}{
		{name: "one hour", minRate: 25, duration: 60, want: 25},
		{name: "free", minRate: 0, duration: 90, want: 0},
		{name: "prorated", minRate: 20, duration: 45, want: 15},
		{name: "fractional", minRate: 12.5, duration: 50, want: 12.5 * 50 / 60.0},
		{name: "not rounded", minRate: 10, duration: 20, want: 10 * 20 / 60.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sessionAmount(tt.minRate, tt.duration); got != tt.want {
				t.Errorf("sessionAmount() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestSession_RoleOf(t *testing.T) {
	s := Session{TutorID: "t", LearnerID: "l"}
	for userID, want := range map[string]string{"t": RoleTutor, "l": RoleLearner, "x": "", "": ""} {
		if got := s.RoleOf(userID); got != want {
			t.Errorf("RoleOf(%q) = %q; want %q", userID, got, want)
		}
	}
	if s.OtherParty("t") != "l" || s.OtherParty("l") != "t" {
		t.Error("OtherParty() mismatch")
	}
}
