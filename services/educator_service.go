package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StudentSummary is the public part of a student's profile
type StudentSummary struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// EnrolledStudentEntry is one purchase of one of the educator's courses
type EnrolledStudentEntry struct {
	CourseID     string         `json:"courseId"`
	CourseTitle  string         `json:"courseTitle"`
	Student      StudentSummary `json:"student"`
	PurchaseDate time.Time      `json:"purchaseDate"`
}

type DashboardData struct {
	TotalEarnings        float64                `json:"totalEarnings"`
	TotalCourses         int                    `json:"totalCourses"`
	TotalStudents        int                    `json:"totalStudents"`
	EnrolledStudentsData []EnrolledStudentEntry `json:"enrolledStudentsData"`
}

// EducatorService aggregates sales of an educator's courses
type EducatorService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEducatorService(db *gorm.DB, log *logger.Logger) *EducatorService {
	return &EducatorService{db: db, log: log.With("service", "EducatorService")}
}

// DashboardData returns earnings, course count and the enrollment feed
func (s *EducatorService) DashboardData(ctx context.Context, educatorID string) (*DashboardData, error) {
	courses, purchases, err := s.sales(ctx, educatorID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range purchases {
		total = total.Add(decimal.NewFromFloat(p.Amount))
	}
	earnings, _ := total.Round(2).Float64()

	entries, err := s.entries(ctx, courses, purchases)
	if err != nil {
		return nil, err
	}

	students := make(map[string]bool)
	for _, p := range purchases {
		students[p.UserID] = true
	}

	return &DashboardData{
		TotalEarnings:        earnings,
		TotalCourses:         len(courses),
		TotalStudents:        len(students),
		EnrolledStudentsData: entries,
	}, nil
}

// EnrolledStudents lists purchases of the educator's courses, newest first
func (s *EducatorService) EnrolledStudents(ctx context.Context, educatorID string) ([]EnrolledStudentEntry, error) {
	courses, purchases, err := s.sales(ctx, educatorID)
	if err != nil {
		return nil, err
	}
	return s.entries(ctx, courses, purchases)
}

func (s *EducatorService) sales(ctx context.Context, educatorID string) ([]model.Course, []model.Purchase, error) {
	db := s.db.WithContext(ctx)

	var courses []model.Course
	if err := db.Select("id", "title").Where("educator_id = ?", educatorID).Find(&courses).Error; err != nil {
		return nil, nil, upstreamError("Failed to load courses", fmt.Errorf("failed to list educator courses: %w", err))
	}
	if len(courses) == 0 {
		return courses, nil, nil
	}

	ids := make([]string, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}

	var purchases []model.Purchase
	err := db.Where("course_id IN ? AND status = ?", ids, model.PurchaseStatusCompleted).
		Order("created_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, nil, upstreamError("Failed to load purchases", fmt.Errorf("failed to list purchases: %w", err))
	}
	return courses, purchases, nil
}

func (s *EducatorService) entries(ctx context.Context, courses []model.Course, purchases []model.Purchase) ([]EnrolledStudentEntry, error) {
	titles := make(map[string]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}

	userIDs := make([]string, 0, len(purchases))
	seen := make(map[string]bool)
	for _, p := range purchases {
		if !seen[p.UserID] {
			seen[p.UserID] = true
			userIDs = append(userIDs, p.UserID)
		}
	}

	students := make(map[string]StudentSummary, len(userIDs))
	if len(userIDs) > 0 {
		var users []model.User
		if err := s.db.WithContext(ctx).Select("id", "name", "image_url").Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, upstreamError("Failed to load students", fmt.Errorf("failed to load students: %w", err))
		}
		for _, u := range users {
			students[u.ID] = StudentSummary{ID: u.ID, Name: u.Name, ImageURL: u.ImageURL}
		}
	}

	entries := make([]EnrolledStudentEntry, 0, len(purchases))
	for _, p := range purchases {
		student, ok := students[p.UserID]
		if !ok {
			student = StudentSummary{ID: p.UserID}
		}
		entries = append(entries, EnrolledStudentEntry{
			CourseID:     p.CourseID,
			CourseTitle:  titles[p.CourseID],
			Student:      student,
			PurchaseDate: p.CreatedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PurchaseDate.After(entries[j].PurchaseDate)
	})
	return entries, nil
}
