package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

func TestCleanDisplayTextStripsEmphasisAndHeaders(t *testing.T) {
	in := "## Plan\n**Schedule** a *meeting* soon."

	out := CleanDisplayText(in)

	assert.Equal(t, "Plan\nSchedule a meeting soon.", out)
}

func TestCleanDisplayTextRemovesRules(t *testing.T) {
	in := "before\n---\nafter\n======\nend"

	out := CleanDisplayText(in)

	assert.NotContains(t, out, "---")
	assert.NotContains(t, out, "===")
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "after")
	assert.Contains(t, out, "end")
}

func TestCleanDisplayTextSalvagesTableSecondColumn(t *testing.T) {
	in := "| Step | Detail |\n|------|--------|\n| 1 | Call the student |\n| 2 | Book tutoring |"

	out := CleanDisplayText(in)

	assert.Contains(t, out, "- Detail")
	assert.Contains(t, out, "- Call the student")
	assert.Contains(t, out, "- Book tutoring")
	assert.NotContains(t, out, "|")
}

func TestCleanDisplayTextCollapsesBlankRuns(t *testing.T) {
	out := CleanDisplayText("a\n\n\n\n\nb")

	assert.Equal(t, "a\n\nb", out)
}

func TestCleanDisplayTextPreservesOriginalWhenEmptied(t *testing.T) {
	in := "***"

	assert.Equal(t, in, CleanDisplayText(in))
}

func TestCleanDisplayTextIdempotent(t *testing.T) {
	in := "1. First step\n2. Second step\n\nSome prose."

	once := CleanDisplayText(in)
	twice := CleanDisplayText(once)

	assert.Equal(t, once, twice)
}

func TestFormatRecommendationsNumberedBlocks(t *testing.T) {
	recs := []entities.Recommendation{
		{InterventionType: "Tutoring Referral", Priority: "High", Action: "Book sessions", Timeline: "1 week", Goal: "Pass midterms"},
		{InterventionType: "Academic Advising", Priority: "Medium", Action: "Review plan", Timeline: "2 weeks", Goal: "Reduce load"},
	}

	out := FormatRecommendations(recs)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "1. Tutoring Referral (High Priority)", lines[0])
	assert.Contains(t, out, "   Action: Book sessions")
	assert.Contains(t, out, "   Timeline: 1 week")
	assert.Contains(t, out, "   Goal: Pass midterms")
	assert.Contains(t, out, "2. Academic Advising (Medium Priority)")
}

func TestFormatRecommendationsEmpty(t *testing.T) {
	assert.Equal(t, "", FormatRecommendations(nil))
}
