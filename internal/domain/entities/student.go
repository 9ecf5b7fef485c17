package entities

// RiskCategory is the precomputed risk label assigned to a student by the
// upstream analytics pipeline.
type RiskCategory string

const (
	RiskHigh      RiskCategory = "High Risk"
	RiskMedium    RiskCategory = "Medium Risk"
	RiskLow       RiskCategory = "Low Risk"
	RiskExcellent RiskCategory = "Excellent"
)

// Rank returns the sort rank of a risk category: highest risk sorts first,
// unknown labels last.
func (c RiskCategory) Rank() int {
	switch c {
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	case RiskLow:
		return 3
	case RiskExcellent:
		return 4
	default:
		return 5
	}
}

// Student represents one row of the student risk analysis read-model. The
// table is owned by the upstream pipeline; the dashboard only reads it.
type Student struct {
	StudentID       string       `json:"student_id" db:"student_id"`
	FullName        string       `json:"full_name" db:"full_name"`
	Major           string       `json:"major" db:"major"`
	YearLevel       string       `json:"year_level" db:"year_level"`
	GPA             float64      `json:"gpa" db:"gpa"`
	CoursesEnrolled int          `json:"courses_enrolled" db:"courses_enrolled"`
	FailingGrades   int          `json:"failing_grades" db:"failing_grades"`
	RiskCategory    RiskCategory `json:"risk_category" db:"risk_category"`
	ActivityStatus  string       `json:"activity_status" db:"activity_status"`
}

// RosterSummary aggregates the roster for the dashboard header metrics.
type RosterSummary struct {
	TotalStudents int                  `json:"total_students"`
	ByRisk        map[RiskCategory]int `json:"by_risk"`
	AverageGPA    float64              `json:"average_gpa"`
}
