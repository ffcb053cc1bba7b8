package match

import (
	"sort"
	"strings"

	"github.com/trezcool/studymatch/core/user"
)

// Scoring weights
const (
	DepartmentBonus = 5
	RatingWeight    = 2
	SuggestLimit    = 10
)

// Common subject types, from the querying user's point of view.
const (
	CommonLearn = "learn" // the other user teaches it, the querying user wants to learn it
	CommonTeach = "teach" // the querying user teaches it, the other user wants to learn it
)

type (
	CommonSubject struct {
		SubjectID string `json:"subject_id"`
		Type      string `json:"type"`
	}

	// Match is a ranked study partner candidate.
	Match struct {
		User           user.User       `json:"user"`
		Score          float64         `json:"match_score"`
		CommonSubjects []CommonSubject `json:"common_subjects"`
		Available      bool            `json:"availability"` // weekly availabilities overlap
	}

	// Filter narrows the discovery list. Zero values disable a criterion.
	Filter struct {
		Search     string   // case-insensitive, on name, bio or department
		Department string   // exact
		SubjectID  string   // taught by the candidate
		Mode       string   // all | in-person | video
		MaxRate    *float64 // candidate's minimum rate must not exceed it
	}
)

// profile indexes a user's teaching records by subject id.
type profile struct {
	user  user.User
	teach map[string]user.SubjectExpertise
}

func index(u user.User) profile {
	p := profile{user: u, teach: make(map[string]user.SubjectExpertise, len(u.SubjectsToTeach))}
	for _, e := range u.SubjectsToTeach {
		if _, ok := p.teach[e.SubjectID]; !ok { // first record wins
			p.teach[e.SubjectID] = e
		}
	}
	return p
}

// overlap sums proficiency*urgency over every need of the learner the tutor can teach.
func overlap(tutor, learner profile) (int, []string) {
	var score int
	var ids []string
	for _, need := range learner.user.SubjectsToLearn {
		if e, ok := tutor.teach[need.SubjectID]; ok {
			score += e.Proficiency * need.Urgency
			ids = append(ids, need.SubjectID)
		}
	}
	return score, ids
}

func commonSubjects(learnIDs, teachIDs []string) []CommonSubject {
	common := make([]CommonSubject, 0, len(learnIDs)+len(teachIDs))
	for _, id := range learnIDs {
		common = append(common, CommonSubject{SubjectID: id, Type: CommonLearn})
	}
	for _, id := range teachIDs {
		common = append(common, CommonSubject{SubjectID: id, Type: CommonTeach})
	}
	return common
}

func available(a, b user.User) bool {
	for _, sa := range a.Availability {
		for _, sb := range b.Availability {
			if sa.Overlaps(sb) {
				return true
			}
		}
	}
	return false
}

func rank(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
}

// Suggest ranks the best study partners for `me`:
// reciprocal subject overlap, a department bonus and the candidate's rating.
// Candidates scoring 0 or less are dropped and at most SuggestLimit matches are returned.
// Equal scores keep the order of `others`.
func Suggest(me user.User, others []user.User) []Match {
	mine := index(me)
	matches := make([]Match, 0, len(others))
	for _, other := range others {
		if other.ID == me.ID {
			continue
		}
		theirs := index(other)
		learnScore, learnIDs := overlap(theirs, mine)
		teachScore, teachIDs := overlap(mine, theirs)

		score := float64(learnScore + teachScore)
		if other.Department == me.Department {
			score += DepartmentBonus
		}
		score += other.Rating * RatingWeight
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{
			User:           other,
			Score:          score,
			CommonSubjects: commonSubjects(learnIDs, teachIDs),
			Available:      available(me, other),
		})
	}

	rank(matches)
	if len(matches) > SuggestLimit {
		matches = matches[:SuggestLimit]
	}
	return matches
}

// Browse lists every candidate passing `filter`, ranked by what they can teach `me` plus their rating.
// There is no department bonus, no minimum score and no limit. Equal scores keep the order of `others`.
func Browse(me user.User, others []user.User, filter Filter) []Match {
	mine := index(me)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matches := make([]Match, 0, len(others))
	for _, other := range others {
		if other.ID == me.ID || !filter.keep(other, search) {
			continue
		}
		theirs := index(other)
		learnScore, learnIDs := overlap(theirs, mine)
		_, teachIDs := overlap(mine, theirs)

		matches = append(matches, Match{
			User:           other,
			Score:          float64(learnScore) + other.Rating*RatingWeight,
			CommonSubjects: commonSubjects(learnIDs, teachIDs),
			Available:      available(me, other),
		})
	}
	rank(matches)
	return matches
}

func (f Filter) keep(u user.User, search string) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(u.Name), search) &&
		!strings.Contains(strings.ToLower(u.Bio), search) &&
		!strings.Contains(strings.ToLower(u.Department), search) {
		return false
	}
	if f.Department != "" && u.Department != f.Department {
		return false
	}
	if f.SubjectID != "" && !u.Teaches(f.SubjectID) {
		return false
	}
	if f.Mode != "" && f.Mode != ModeAll && !u.AcceptsMode(f.Mode) {
		return false
	}
	if f.MaxRate != nil && u.MinRate > *f.MaxRate {
		return false
	}
	return true
}
