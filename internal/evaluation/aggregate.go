package evaluation

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/config"
	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

// ErrNoScoredQuestions means only screening data exists, which cannot be classified.
var ErrNoScoredQuestions = errors.New("no interview questions were scored")

// Aggregation is the weighted roll-up of one attempt's question evaluations.
type Aggregation struct {
	Overall  int
	Weighted int
	Max      int
	// Variance is the population variance of the raw 1-4 scores.
	Variance     float64
	Competencies []domain.CompetencyScore
	// Strengths are ordered from the best-scored answers down, concerns
	// from the worst-scored up. Both are de-duplicated ignoring case.
	Strengths []string
	Concerns  []string
	scores    []scoredItem
}

type scoredItem struct {
	Competency string
	Weight     int
	Score      int
}

// Classification is the tier decision for an Aggregation.
type Classification struct {
	Recommendation domain.Recommendation
	Confidence     domain.Confidence
	Triggers       []string
}

// Aggregate computes overall = round(100 * sum(score*weight) / sum(4*weight)).
func Aggregate(evals []domain.QuestionEvaluation) (Aggregation, error) {
	if len(evals) == 0 {
		return Aggregation{}, fmt.Errorf("op=evaluation.aggregate: %w: %w", domain.ErrInvalidArgument, ErrNoScoredQuestions)
	}
	var agg Aggregation
	type compAcc struct {
		score domain.CompetencyScore
		sum   int
	}
	comps := map[string]*compAcc{}
	var order []string
	sum := 0.0
	for _, e := range evals {
		w := e.Weight
		if w < domain.WeightNiceToHave {
			w = domain.WeightNiceToHave
		}
		agg.Weighted += e.Score * w
		agg.Max += 4 * w
		sum += float64(e.Score)
		agg.scores = append(agg.scores, scoredItem{Competency: e.CompetencyName, Weight: w, Score: e.Score})

		key := e.CompetencyID
		if key == "" {
			key = e.CompetencyName
		}
		acc, ok := comps[key]
		if !ok {
			acc = &compAcc{score: domain.CompetencyScore{CompetencyID: e.CompetencyID, Name: e.CompetencyName, Weight: w}}
			comps[key] = acc
			order = append(order, key)
		}
		acc.sum += e.Score
		acc.score.QuestionCount++
	}
	agg.Overall = int(math.Round(100 * float64(agg.Weighted) / float64(agg.Max)))

	mean := sum / float64(len(evals))
	for _, e := range evals {
		d := float64(e.Score) - mean
		agg.Variance += d * d
	}
	agg.Variance /= float64(len(evals))

	for _, k := range order {
		acc := comps[k]
		acc.score.Score = math.Round(float64(acc.sum)/float64(acc.score.QuestionCount)*100) / 100
		agg.Competencies = append(agg.Competencies, acc.score)
	}

	best := rank(evals, func(a, b domain.QuestionEvaluation) bool { return a.Score > b.Score })
	worst := rank(evals, func(a, b domain.QuestionEvaluation) bool { return a.Score < b.Score })
	for _, e := range best {
		agg.Strengths = append(agg.Strengths, e.Strengths...)
	}
	for _, e := range worst {
		agg.Concerns = append(agg.Concerns, e.Concerns...)
	}
	agg.Strengths = dedupeFold(agg.Strengths)
	agg.Concerns = dedupeFold(agg.Concerns)
	return agg, nil
}

// rank orders a copy by less, breaking ties on the heavier competency.
func rank(evals []domain.QuestionEvaluation, less func(a, b domain.QuestionEvaluation) bool) []domain.QuestionEvaluation {
	out := append([]domain.QuestionEvaluation(nil), evals...)
	sort.SliceStable(out, func(i, j int) bool {
		if less(out[i], out[j]) {
			return true
		}
		if less(out[j], out[i]) {
			return false
		}
		return out[i].Weight > out[j].Weight
	})
	return out
}

func dedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := strings.ToLower(strings.TrimSpace(it))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, strings.TrimSpace(it))
	}
	return out
}

// Triggers lists the conditions that make a mid-range score borderline.
func Triggers(agg Aggregation, p config.ScoringPolicy) []string {
	var out []string
	if agg.Variance > p.VarianceTrigger {
		out = append(out, fmt.Sprintf("Inconsistent performance across competencies (variance %.2f)", agg.Variance))
	}
	seen := map[string]bool{}
	for _, s := range agg.scores {
		if s.Weight >= p.CriticalWeight && s.Score < p.CriticalMinScore && !seen[s.Competency] {
			seen[s.Competency] = true
			out = append(out, fmt.Sprintf("Critical competency %q scored %d/4", s.Competency, s.Score))
		}
	}
	return out
}

// Classify applies the tiers in precedence order. Triggers only override
// the score inside the policy's trigger band.
func Classify(agg Aggregation, p config.ScoringPolicy) Classification {
	triggers := Triggers(agg, p)
	o := agg.Overall
	switch {
	case len(triggers) > 0 && o >= p.TriggerBandMin && o < p.TriggerBandMax:
		return Classification{Recommendation: domain.RecommendationBorderline, Confidence: domain.ConfidenceLow, Triggers: triggers}
	case o >= p.StrongYesMin:
		return Classification{Recommendation: domain.RecommendationStrongYes, Confidence: domain.ConfidenceHigh, Triggers: triggers}
	case o >= p.YesMin:
		conf := domain.ConfidenceHigh
		if agg.Variance > p.YesHighConfidenceMaxVar {
			conf = domain.ConfidenceModerate
		}
		return Classification{Recommendation: domain.RecommendationYes, Confidence: conf, Triggers: triggers}
	case o >= p.BorderlineMin:
		return Classification{Recommendation: domain.RecommendationBorderline, Confidence: domain.ConfidenceModerate, Triggers: triggers}
	case o >= p.NoMin:
		return Classification{Recommendation: domain.RecommendationNo, Confidence: domain.ConfidenceHigh, Triggers: triggers}
	default:
		return Classification{Recommendation: domain.RecommendationStrongNo, Confidence: domain.ConfidenceHigh, Triggers: triggers}
	}
}

// Shape fills the tier-dependent evidence lists of se.
func Shape(se *domain.StructuredEvaluation, agg Aggregation, cls Classification, p config.ScoringPolicy) {
	se.Recommendation = cls.Recommendation
	se.Confidence = cls.Confidence
	se.OverallScore = agg.Overall
	se.Variance = math.Round(agg.Variance*100) / 100
	se.CompetencyScores = agg.Competencies
	// Outside the borderline tier triggers still surface, ahead of the
	// capped evidence, so a critical failure is never hidden by the score.
	switch {
	case cls.Recommendation.Positive():
		se.ProceedReasons = topN(agg.Strengths, p.PositiveEvidenceLimit)
		se.Flags = dedupeFold(append(append([]string(nil), cls.Triggers...), topN(agg.Concerns, p.PositiveEvidenceLimit)...))
	case cls.Recommendation.Negative():
		se.Concerns = dedupeFold(append(append([]string(nil), cls.Triggers...), topN(agg.Concerns, p.NegativeEvidenceLimit)...))
		se.Strengths = topN(agg.Strengths, p.NegativeEvidenceLimit)
	default:
		se.For = topN(agg.Strengths, p.BorderlineEvidenceLimit)
		se.Against = topN(agg.Concerns, p.BorderlineEvidenceLimit)
		se.BorderlineTriggers = cls.Triggers
		if low, ok := LowestCompetency(agg.Competencies); ok {
			se.ReviewFocus = fmt.Sprintf("Probe %s in the next round; it was the weakest competency at %.1f/4.", low.Name, low.Score)
		}
	}
}

// LowestCompetency picks the lowest average, preferring the heavier
// competency and then the name on ties.
func LowestCompetency(cs []domain.CompetencyScore) (domain.CompetencyScore, bool) {
	if len(cs) == 0 {
		return domain.CompetencyScore{}, false
	}
	low := cs[0]
	for _, c := range cs[1:] {
		switch {
		case c.Score < low.Score:
			low = c
		case c.Score == low.Score && c.Weight > low.Weight:
			low = c
		case c.Score == low.Score && c.Weight == low.Weight && c.Name < low.Name:
			low = c
		}
	}
	return low, true
}

func topN(items []string, n int) []string {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	if len(items) > n {
		items = items[:n]
	}
	return append([]string(nil), items...)
}
