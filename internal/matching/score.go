package matching

import (
	"math"

	"github.com/spigell/matchmaker/internal/profile"
)

const (
	MaxScore = 100

	weightInterest      = 10
	weightSkill         = 6
	weightLocation      = 20
	weightGoal          = 15
	weightLanguage      = 15
	activityDivisor     = 5
	maxActivityPoints   = 20
	completenessDivisor = 10
)

// ScoreBreakdown lists the contribution of every factor to a score.
type ScoreBreakdown struct {
	SharedInterests []string `json:"sharedInterests,omitempty"`
	SharedSkills    []string `json:"sharedSkills,omitempty"`

	Interests    float64 `json:"interests"`
	Skills       float64 `json:"skills"`
	Location     float64 `json:"location"`
	Goal         float64 `json:"goal"`
	Language     float64 `json:"language"`
	Activity     float64 `json:"activity"`
	Completeness float64 `json:"completeness"`
	// Total is the clamped sum of the factors.
	Total float64 `json:"total"`
}

// Score rates how well b fits a. It is not symmetric: the set terms count b's
// elements found in a, and activity and completeness are taken from b alone.
func Score(a, b *profile.Profile) float64 {
	return Breakdown(a, b).Total
}

func Breakdown(a, b *profile.Profile) ScoreBreakdown {
	var r ScoreBreakdown

	r.SharedInterests = sharedFrom(b.Interests, a.Interests)
	r.Interests = float64(len(r.SharedInterests) * weightInterest)

	if len(a.Skills) > 0 && len(b.Skills) > 0 {
		r.SharedSkills = sharedFrom(b.Skills, a.Skills)
		r.Skills = float64(len(r.SharedSkills) * weightSkill)
	}

	if a.Location == b.Location {
		r.Location = weightLocation
	}
	if a.RelationshipGoal == b.RelationshipGoal {
		r.Goal = weightGoal
	}
	if a.Language == b.Language {
		r.Language = weightLanguage
	}

	r.Activity = math.Min(b.ActivityScore/activityDivisor, maxActivityPoints)
	r.Completeness = b.ProfileCompleteness / completenessDivisor

	total := r.Interests + r.Skills + r.Location + r.Goal + r.Language + r.Activity + r.Completeness
	r.Total = math.Min(total, MaxScore)
	return r
}

// sharedFrom returns the elements of from that also appear in in, keeping
// from's order and duplicates.
func sharedFrom(from, in []string) []string {
	if len(from) == 0 || len(in) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(in))
	for _, v := range in {
		set[v] = struct{}{}
	}

	var shared []string
	for _, v := range from {
		if _, ok := set[v]; ok {
			shared = append(shared, v)
		}
	}
	return shared
}

type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
	QualityNone      Quality = "none"
)

func QualityOf(score float64) Quality {
	switch {
	case score >= 80:
		return QualityExcellent
	case score >= 60:
		return QualityGood
	case score >= 40:
		return QualityFair
	case score >= 20:
		return QualityPoor
	default:
		return QualityNone
	}
}
