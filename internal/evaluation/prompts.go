package evaluation

import (
	"fmt"
	"strings"

	"github.com/HYRE-AU/Hyrenow-sub000/internal/domain"
)

const segmentSystemPrompt = `You align interview answers to interview questions.
You receive a numbered list of questions and the transcript of a voice interview.
For each question, find the candidate's answer by meaning, not by exact wording. The interviewer may paraphrase questions.
Copy the candidate's words; do not summarize or correct them. Join answers that span several turns.
If a question was never answered, return an empty string for it.

Respond with ONLY valid JSON in this shape:
{"pairs":[{"question_index":0,"answer":"..."}]}`

const scoreSystemPrompt = `You are a structured interviewer scoring one answer against a behaviourally anchored rubric.
Score only what the candidate actually said. Do not reward confidence, length or buzzwords, and do not infer experience that was not described.
Pick the highest level whose anchor the answer fully meets.

Respond with ONLY valid JSON in this shape:
{"score":1,"strengths":["..."],"concerns":["..."],"evidence_quotes":["exact words from the answer"],"why_not_higher_score":"..."}
score is an integer from 1 to 4. Evidence quotes must be copied verbatim from the answer.`

const summarySystemPrompt = `You summarize a candidate's answer to a screening question for a recruiter.
Write one or two plain sentences keeping concrete facts (dates, numbers, names). No opinions.

Respond with ONLY valid JSON in this shape:
{"summary":"..."}`

const rationaleSystemPrompt = `You explain a hiring recommendation to a hiring manager.
Write two or three sentences in plain language explaining why the candidate landed in the given tier, citing the strongest evidence on each side.
Do not change the recommendation or the score.

Respond with ONLY valid JSON in this shape:
{"rationale":"..."}`

func segmentUserPrompt(questions []domain.Question, transcript string) string {
	var b strings.Builder
	b.WriteString("Questions:\n")
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i, strings.TrimSpace(q.Text))
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}

func scoreUserPrompt(pair domain.QAPair, roleContext string) string {
	c := pair.Question.Competency
	var b strings.Builder
	if roleContext != "" {
		fmt.Fprintf(&b, "Role:\n%s\n\n", roleContext)
	}
	fmt.Fprintf(&b, "Competency: %s\n", c.Name)
	if d := strings.TrimSpace(c.Description); d != "" {
		fmt.Fprintf(&b, "Definition: %s\n", d)
	}
	b.WriteString("Rubric:\n")
	for i, anchor := range c.Rubric {
		fmt.Fprintf(&b, "%d - %s\n", i+1, strings.TrimSpace(anchor))
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n\nAnswer:\n%s", strings.TrimSpace(pair.Question.Text), answerOrPlaceholder(pair.Answer))
	return b.String()
}

func summaryUserPrompt(pair domain.QAPair) string {
	return fmt.Sprintf("Question: %s\n\nAnswer:\n%s", strings.TrimSpace(pair.Question.Text), pair.Answer)
}

func rationaleUserPrompt(agg Aggregation, cls Classification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommendation: %s\nOverall score: %d/100\nConfidence: %s\n", cls.Recommendation.Label(), agg.Overall, cls.Confidence)
	if len(cls.Triggers) > 0 {
		fmt.Fprintf(&b, "Borderline triggers: %s\n", strings.Join(cls.Triggers, "; "))
	}
	writeList(&b, "Top strengths", topN(agg.Strengths, 3))
	writeList(&b, "Top concerns", topN(agg.Concerns, 3))
	b.WriteString("Competency scores:\n")
	for _, cs := range agg.Competencies {
		fmt.Fprintf(&b, "- %s (weight %d): %.1f/4\n", cs.Name, cs.Weight, cs.Score)
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

func answerOrPlaceholder(a string) string {
	if strings.TrimSpace(a) == "" {
		return "(no answer given)"
	}
	return a
}
