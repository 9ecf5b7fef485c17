package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCandidateJSONFencedBlock(t *testing.T) {
	buffer := "Here is the plan:\n```json\n{\"recommendations\": []}\n```\nThanks."

	assert.Equal(t, `{"recommendations": []}`, ExtractCandidateJSON(buffer))
}

func TestExtractCandidateJSONFencedBlockWithoutTag(t *testing.T) {
	buffer := "```\n{\"recommendations\": []}\n```"

	assert.Equal(t, `{"recommendations": []}`, ExtractCandidateJSON(buffer))
}

func TestExtractCandidateJSONBraceScan(t *testing.T) {
	buffer := `prefix {"other": 1} middle {"recommendations": [{"action": "x"}]} suffix`

	assert.Equal(t, `{"recommendations": [{"action": "x"}]}`, ExtractCandidateJSON(buffer))
}

func TestExtractCandidateJSONBraceScanHonorsStrings(t *testing.T) {
	buffer := `{"recommendations": [{"action": "use {curly} braces"}]}`

	assert.Equal(t, buffer, ExtractCandidateJSON(buffer))
}

func TestExtractCandidateJSONStripsBackticks(t *testing.T) {
	assert.Equal(t, "plain text", ExtractCandidateJSON("`plain` `text`"))
}

func TestParseRecommendationsFromStreamedBuffer(t *testing.T) {
	buffer := "Analysis complete.\n```json\n" +
		`{"recommendations":[{"intervention_type":"Tutoring Referral","priority":"High","action":"x","timeline":"y","goal":"z"}]}` +
		"\n```"

	recs := ParseRecommendations(ExtractCandidateJSON(buffer))

	require.Len(t, recs, 1)
	assert.Equal(t, "Tutoring Referral", recs[0].InterventionType)
	assert.Equal(t, "High", recs[0].Priority)
	assert.Equal(t, "x", recs[0].Action)
	assert.Equal(t, "y", recs[0].Timeline)
	assert.Equal(t, "z", recs[0].Goal)
}

func TestParseRecommendationsDefaultsMissingFields(t *testing.T) {
	recs := ParseRecommendations(`{"recommendations":[{"action":"call home"}]}`)

	require.Len(t, recs, 1)
	assert.Equal(t, "Unknown", recs[0].InterventionType)
	assert.Equal(t, "Medium", recs[0].Priority)
	assert.Equal(t, "call home", recs[0].Action)
	assert.Equal(t, "N/A", recs[0].Timeline)
	assert.Equal(t, "N/A", recs[0].Goal)
}

func TestParseRecommendationsRejectsNonJSON(t *testing.T) {
	assert.Nil(t, ParseRecommendations("just prose, no structure"))
	assert.Nil(t, ParseRecommendations(`{"unrelated": true}`))
}
