package main

import (
	"context"
	"log"
	"os"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/riversideu/studentrisk/backend/internal/domain/entities"
	"github.com/riversideu/studentrisk/backend/internal/infrastructure/clients/postgres"
	"github.com/riversideu/studentrisk/backend/pkg/config"
)

const createRiskTable = `
CREATE TABLE IF NOT EXISTS public.student_risk_analysis_gold (
	student_id VARCHAR(255) PRIMARY KEY,
	full_name VARCHAR(255),
	major VARCHAR(255),
	year_level VARCHAR(50),
	gpa DOUBLE PRECISION,
	courses_enrolled INTEGER,
	failing_grades INTEGER,
	risk_category VARCHAR(50),
	activity_status VARCHAR(50)
)`

// Seeds the risk read-model with sample rows for local development. The
// seeding identity comes from SEED_EMAIL / SEED_TOKEN so the script runs
// under the same per-user connection model as the app.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	creds := entities.Credentials{
		Email: os.Getenv("SEED_EMAIL"),
		Token: os.Getenv("SEED_TOKEN"),
	}
	if !creds.Valid() {
		log.Fatal("SEED_EMAIL and SEED_TOKEN must be set")
	}

	ctx := context.Background()
	connector := postgres.NewConnector(&cfg.Database)
	db, err := connector.OpenRiskDB(ctx, creds)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createRiskTable); err != nil {
		log.Fatalf("Failed to create risk table: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating risk table before seeding")
		if _, err := db.ExecContext(ctx, "TRUNCATE TABLE public.student_risk_analysis_gold"); err != nil {
			log.Fatalf("Failed to reset risk table: %v", err)
		}
	}

	students := []entities.Student{
		{StudentID: "S001", FullName: "Ada Okafor", Major: "Computer Science", YearLevel: "Sophomore", GPA: 1.65, CoursesEnrolled: 5, FailingGrades: 3, RiskCategory: entities.RiskHigh, ActivityStatus: "Active"},
		{StudentID: "S002", FullName: "Miguel Santos", Major: "Biology", YearLevel: "Freshman", GPA: 1.92, CoursesEnrolled: 4, FailingGrades: 2, RiskCategory: entities.RiskHigh, ActivityStatus: "Active"},
		{StudentID: "S003", FullName: "Priya Raman", Major: "Economics", YearLevel: "Junior", GPA: 2.35, CoursesEnrolled: 5, FailingGrades: 1, RiskCategory: entities.RiskMedium, ActivityStatus: "Active"},
		{StudentID: "S004", FullName: "Tomasz Nowak", Major: "History", YearLevel: "Senior", GPA: 2.48, CoursesEnrolled: 3, FailingGrades: 1, RiskCategory: entities.RiskMedium, ActivityStatus: "Inactive"},
		{StudentID: "S005", FullName: "Leila Haddad", Major: "Mathematics", YearLevel: "Sophomore", GPA: 2.95, CoursesEnrolled: 5, FailingGrades: 0, RiskCategory: entities.RiskLow, ActivityStatus: "Active"},
		{StudentID: "S006", FullName: "James Whitfield", Major: "Physics", YearLevel: "Junior", GPA: 3.78, CoursesEnrolled: 5, FailingGrades: 0, RiskCategory: entities.RiskExcellent, ActivityStatus: "Active"},
	}

	dialect := goqu.Dialect("postgres")
	for _, s := range students {
		sql, args, err := dialect.Insert("student_risk_analysis_gold").
			Rows(goqu.Record{
				"student_id":       s.StudentID,
				"full_name":        s.FullName,
				"major":            s.Major,
				"year_level":       s.YearLevel,
				"gpa":              s.GPA,
				"courses_enrolled": s.CoursesEnrolled,
				"failing_grades":   s.FailingGrades,
				"risk_category":    s.RiskCategory,
				"activity_status":  s.ActivityStatus,
			}).
			OnConflict(goqu.DoNothing()).
			ToSQL()
		if err != nil {
			log.Fatalf("Failed to build insert for %s: %v", s.StudentID, err)
		}
		if _, err := db.ExecContext(ctx, sql, args...); err != nil {
			log.Printf("Failed to seed student %s: %v", s.StudentID, err)
		}
	}

	log.Printf("Seeded %d students", len(students))
}
