package database

import (
	"errors"
	"fmt"

	"github.com/dibyendu2004/BrightPath/model"
	applog "github.com/dibyendu2004/BrightPath/utils/logger"
	"gorm.io/gorm"
)

// Demo identities created by the seeder
const (
	DemoEducatorID = "user_demo_educator"
	DemoStudentID  = "user_demo_student"
)

// Seeder handles database seeding operations
type Seeder struct {
	db  *gorm.DB
	log *applog.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, log *applog.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// SeedAll runs all seed functions. Existing rows are left untouched so it
// can be run repeatedly.
func (s *Seeder) SeedAll() error {
	s.log.Info("Starting database seeding")

	if err := s.SeedUsers(); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	s.log.Info("Database seeding completed")
	return nil
}

// SeedUsers creates one educator and one student
func (s *Seeder) SeedUsers() error {
	users := []model.User{
		{
			ID:       DemoEducatorID,
			Name:     "Ada Educator",
			Email:    "educator@brightpath.dev",
			ImageURL: "https://img.brightpath.dev/avatars/educator.png",
			Role:     model.RoleEducator,
		},
		{
			ID:       DemoStudentID,
			Name:     "Sam Student",
			Email:    "student@brightpath.dev",
			ImageURL: "https://img.brightpath.dev/avatars/student.png",
			Role:     model.RoleStudent,
		},
	}

	for i := range users {
		created, err := s.createIfMissing(&model.User{}, users[i].ID, &users[i])
		if err != nil {
			return err
		}
		if created {
			s.log.Info("Seeded user", "user_id", users[i].ID, "role", users[i].Role)
		}
	}
	return nil
}

// SeedCourses creates two published courses owned by the demo educator
func (s *Seeder) SeedCourses() error {
	courses := []model.Course{
		{
			ID:          "course_demo_go",
			Title:       "Practical Go",
			Description: "<p>Build <strong>services</strong> in Go from scratch.</p>",
			Thumbnail:   "https://img.brightpath.dev/thumbnails/go.png",
			Price:       49.99,
			Discount:    20,
			IsPublished: true,
			EducatorID:  DemoEducatorID,
			Content: []model.Chapter{
				{ID: "go-ch1", Order: 1, Title: "Getting Started", Lectures: []model.Lecture{
					{ID: "go-l1", Order: 1, Title: "Installing Go", Duration: 10, URL: "https://youtu.be/go-install", IsPreviewFree: true},
					{ID: "go-l2", Order: 2, Title: "Hello World", Duration: 15, URL: "https://youtu.be/go-hello"},
				}},
				{ID: "go-ch2", Order: 2, Title: "Concurrency", Lectures: []model.Lecture{
					{ID: "go-l3", Order: 1, Title: "Goroutines", Duration: 20, URL: "https://youtu.be/go-goroutines"},
					{ID: "go-l4", Order: 2, Title: "Channels", Duration: 25, URL: "https://youtu.be/go-channels"},
					{ID: "go-l5", Order: 3, Title: "Context", Duration: 30, URL: "https://youtu.be/go-context"},
				}},
			},
		},
		{
			ID:          "course_demo_sql",
			Title:       "SQL for Developers",
			Description: "<p>Query, index and tune relational databases.</p>",
			Thumbnail:   "https://img.brightpath.dev/thumbnails/sql.png",
			Price:       29,
			Discount:    0,
			IsPublished: true,
			EducatorID:  DemoEducatorID,
			Content: []model.Chapter{
				{ID: "sql-ch1", Order: 1, Title: "Basics", Lectures: []model.Lecture{
					{ID: "sql-l1", Order: 1, Title: "SELECT", Duration: 12, URL: "https://youtu.be/sql-select", IsPreviewFree: true},
					{ID: "sql-l2", Order: 2, Title: "JOIN", Duration: 18, URL: "https://youtu.be/sql-join"},
				}},
			},
		},
	}

	for i := range courses {
		created, err := s.createIfMissing(&model.Course{}, courses[i].ID, &courses[i])
		if err != nil {
			return err
		}
		if created {
			s.log.Info("Seeded course", "course_id", courses[i].ID, "title", courses[i].Title)
		}
	}
	return nil
}

func (s *Seeder) createIfMissing(probe interface{}, id string, row interface{}) (bool, error) {
	err := s.db.Select("id").Where("id = ?", id).Take(probe).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := s.db.Create(row).Error; err != nil {
		return false, err
	}
	return true, nil
}

// RunSeeds executes all seeds
func RunSeeds(db *gorm.DB, log *applog.Logger) error {
	return NewSeeder(db, log).SeedAll()
}
