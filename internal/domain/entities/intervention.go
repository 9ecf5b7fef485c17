package entities

import (
	"strings"
	"time"
)

// InterventionStatus represents the lifecycle state of an intervention.
// Interventions are never deleted; the only transition is Pending→Completed.
type InterventionStatus string

const (
	InterventionStatusPending   InterventionStatus = "Pending"
	InterventionStatusCompleted InterventionStatus = "Completed"
)

// InterventionType enumerates the remediation actions an advisor can record.
type InterventionType string

const (
	InterventionAcademicMeeting    InterventionType = "Academic Meeting"
	InterventionStudyPlan          InterventionType = "Study Plan Assignment"
	InterventionTutoringReferral   InterventionType = "Tutoring Referral"
	InterventionCounselingReferral InterventionType = "Counseling Referral"
	InterventionFinancialAid       InterventionType = "Financial Aid Consultation"
	InterventionCareerGuidance     InterventionType = "Career Guidance Session"
	InterventionPeerMentoring      InterventionType = "Peer Mentoring Program"
	InterventionProbationReview    InterventionType = "Academic Probation Review"
)

// InterventionTypes lists every valid intervention type in display order.
func InterventionTypes() []InterventionType {
	return []InterventionType{
		InterventionAcademicMeeting,
		InterventionStudyPlan,
		InterventionTutoringReferral,
		InterventionCounselingReferral,
		InterventionFinancialAid,
		InterventionCareerGuidance,
		InterventionPeerMentoring,
		InterventionProbationReview,
	}
}

// InterventionTypeNames returns the known intervention types as plain
// strings, in display order.
func InterventionTypeNames() []string {
	types := InterventionTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// IsValid reports whether t is one of the known intervention types.
func (t InterventionType) IsValid() bool {
	for _, known := range InterventionTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Priority represents the urgency of a recommendation or intervention.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Rank returns the sort rank of a priority, highest urgency first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Intervention is a recorded remediation action tied to a student. The
// composite key is (StudentID, CreatedDate); CreatedDate and Status are
// assigned by the database on insert.
type Intervention struct {
	StudentID   string             `json:"student_id" db:"student_id"`
	Type        InterventionType   `json:"intervention_type" db:"intervention_type"`
	Details     string             `json:"intervention_details" db:"intervention_details"`
	CreatedDate time.Time          `json:"created_date" db:"created_date"`
	Status      InterventionStatus `json:"status" db:"status"`
	CreatedBy   string             `json:"created_by" db:"created_by"`
}

// Priority extracts the priority label embedded in the details blob. The
// details text is a concatenation of "Priority: <level>", structured fields
// and free notes, so this is a substring probe, not a parse.
func (i *Intervention) Priority() Priority {
	details := i.Details
	switch {
	case strings.Contains(details, "Priority: High"):
		return PriorityHigh
	case strings.Contains(details, "Priority: Low"):
		return PriorityLow
	default:
		return PriorityMedium
	}
}
