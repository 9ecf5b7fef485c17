package services

import (
	"fmt"
	"strings"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
)

// RecommendationResponseFormat is the JSON-schema contract for structured
// intervention recommendations.
func RecommendationResponseFormat() map[string]interface{} {
	entrySchema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"intervention_type": map[string]interface{}{
				"type": "string",
				"enum": entities.InterventionTypeNames(),
			},
			"priority": map[string]interface{}{
				"type": "string",
				"enum": []string{"High", "Medium", "Low"},
			},
			"action": map[string]interface{}{
				"type":        "string",
				"description": "Brief specific action explaining why this student needs this intervention",
			},
			"timeline": map[string]interface{}{
				"type":        "string",
				"description": "When to implement this intervention",
			},
			"goal": map[string]interface{}{
				"type":        "string",
				"description": "Measurable outcome specific to this student",
			},
		},
		"required":             []string{"intervention_type", "priority", "action", "timeline", "goal"},
		"additionalProperties": false,
	}

	return map[string]interface{}{
		"type": "json_schema",
		"json_schema": map[string]interface{}{
			"name": "intervention_recommendations",
			"schema": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"recommendations": map[string]interface{}{
						"type":  "array",
						"items": entrySchema,
					},
				},
				"required":             []string{"recommendations"},
				"additionalProperties": false,
			},
			"strict": true,
		},
	}
}

// BuildRecommendationPrompt asks for three structured recommendations
// grounded in the student's record.
func BuildRecommendationPrompt(student *entities.Student) string {
	var b strings.Builder
	b.WriteString("Provide 3 concise intervention recommendations for this student. ")
	b.WriteString("Each recommendation should directly address their specific situation.\n\n")
	fmt.Fprintf(&b, "Student: %s (%s, %s)\n", student.FullName, student.Major, student.YearLevel)
	fmt.Fprintf(&b, "GPA: %.2f | Failing: %d/%d courses | Risk: %s\n\n",
		student.GPA, student.FailingGrades, student.CoursesEnrolled, student.RiskCategory)
	b.WriteString("For each recommendation:\n")
	fmt.Fprintf(&b, "- Choose intervention_type from: %s\n", strings.Join(entities.InterventionTypeNames(), ", "))
	b.WriteString("- Set priority: High, Medium, or Low\n")
	b.WriteString("- Write a brief action explaining why this specific student needs this intervention\n")
	b.WriteString("- Specify a timeline for implementation\n")
	b.WriteString("- Define a measurable goal specific to this student's situation\n\n")
	b.WriteString("Respond with a JSON object containing an array of 3 recommendations.")
	return b.String()
}

// BuildDetailsPrompt asks for a plain-text action plan for one intervention.
// The output constraints match what the dashboard can render.
func BuildDetailsPrompt(student *entities.Student, interventionType, priority string) string {
	var b strings.Builder
	b.WriteString("Create a specific action plan for this intervention. Be direct and practical.\n\n")
	fmt.Fprintf(&b, "Student: %s (%s, %s)\n", student.FullName, student.Major, student.YearLevel)
	fmt.Fprintf(&b, "GPA: %.2f | Risk: %s\n", student.GPA, student.RiskCategory)
	fmt.Fprintf(&b, "Intervention: %s (Priority: %s)\n\n", interventionType, priority)
	b.WriteString("CRITICAL: Output ONLY clean numbered lists. ")
	b.WriteString("NO tables, NO pipes (|), NO equals signs (=), NO markdown headers (#).\n\n")
	b.WriteString("Cover: 1. Objective, 2. Action Steps, 3. Timeline, 4. Resources Needed, 5. Success Measures.\n")
	b.WriteString("Keep it concise and actionable. Use simple bullet points only.")
	return b.String()
}
