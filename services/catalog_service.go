package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/dibyendu2004/BrightPath/utils/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	catalogTTL          = 5 * time.Minute
	publishedCatalogKey = "catalog:courses:published"
	thumbnailPrefix     = "thumbnails"
)

func courseCacheKey(id string) string {
	return "catalog:course:" + id
}

// CatalogCache is the subset of the Redis cache used for catalog reads
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ImageUploader stores course thumbnails on the asset host
type ImageUploader interface {
	UploadImage(ctx context.Context, prefix, filename string, data []byte) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// EducatorSummary is the populated educator reference on catalog reads
type EducatorSummary struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// CourseView is a course with its educator populated
type CourseView struct {
	model.Course
	Educator *EducatorSummary `json:"educator"`
}

// cachedCourseView keeps the owner id next to the populated educator; on
// CourseView the outer "educator" key shadows Course.EducatorID.
type cachedCourseView struct {
	Course   model.Course     `json:"course"`
	Educator *EducatorSummary `json:"educatorSummary"`
}

func toCached(views []CourseView) []cachedCourseView {
	out := make([]cachedCourseView, len(views))
	for i, v := range views {
		out[i] = cachedCourseView{Course: v.Course, Educator: v.Educator}
	}
	return out
}

func fromCached(entries []cachedCourseView) []CourseView {
	out := make([]CourseView, len(entries))
	for i, e := range entries {
		out[i] = CourseView{Course: e.Course, Educator: e.Educator}
	}
	return out
}

// CourseInput is the courseData part of an add-course request
type CourseInput struct {
	CourseTitle       string         `json:"courseTitle" validate:"required,max=200"`
	CourseDescription string         `json:"courseDescription" validate:"required"`
	CoursePrice       float64        `json:"coursePrice" validate:"gte=0"`
	Discount          float64        `json:"discount" validate:"gte=0,lte=100"`
	IsPublished       *bool          `json:"isPublished"`
	CourseContent     []ChapterInput `json:"courseContent" validate:"dive"`
}

type ChapterInput struct {
	ChapterID      string         `json:"chapterId"`
	ChapterOrder   int            `json:"chapterOrder" validate:"gte=0"`
	ChapterTitle   string         `json:"chapterTitle" validate:"required,max=200"`
	ChapterContent []LectureInput `json:"chapterContent" validate:"dive"`
}

type LectureInput struct {
	LectureID       string `json:"lectureId"`
	LectureTitle    string `json:"lectureTitle" validate:"required,max=200"`
	LectureDuration int    `json:"lectureDuration" validate:"gte=0"`
	LectureURL      string `json:"lectureUrl" validate:"required,url"`
	IsPreviewFree   bool   `json:"isPreviewFree"`
	LectureOrder    int    `json:"lectureOrder" validate:"gte=0"`
}

// Upload is an uploaded file held in memory
type Upload struct {
	Filename string
	Data     []byte
}

// CatalogService serves the public catalog and educator course management
type CatalogService struct {
	db        *gorm.DB
	cache     CatalogCache
	uploader  ImageUploader
	validator *validation.Validator
	log       *logger.Logger
}

// NewCatalogService creates a catalog service without cache or asset host
func NewCatalogService(db *gorm.DB, log *logger.Logger) *CatalogService {
	return &CatalogService{
		db:        db,
		validator: validation.NewValidator(),
		log:       log.With("service", "CatalogService"),
	}
}

// WithCache enables read-through caching of catalog reads
func (s *CatalogService) WithCache(cache CatalogCache) *CatalogService {
	s.cache = cache
	return s
}

// WithUploader sets the asset host used for thumbnails
func (s *CatalogService) WithUploader(uploader ImageUploader) *CatalogService {
	s.uploader = uploader
	return s
}

// ListPublished returns published courses without content or enrolled ids
func (s *CatalogService) ListPublished(ctx context.Context) ([]CourseView, error) {
	var cached []cachedCourseView
	if s.cacheGet(ctx, publishedCatalogKey, &cached) {
		return fromCached(cached), nil
	}

	var courses []model.Course
	err := s.db.WithContext(ctx).
		Omit("content", "enrolled_students").
		Where("is_published = ?", true).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, upstreamError("Failed to load courses", fmt.Errorf("failed to list published courses: %w", err))
	}

	educators, err := s.loadEducators(ctx, courses)
	if err != nil {
		return nil, err
	}

	views := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		c.Content = nil
		c.EnrolledStudents = nil
		views = append(views, CourseView{Course: c, Educator: educators[c.EducatorID]})
	}

	s.cacheSet(ctx, publishedCatalogKey, toCached(views))
	return views, nil
}

// GetCourse returns one course. Lecture links are only kept for free
// previews and enrolled student ids are never exposed.
func (s *CatalogService) GetCourse(ctx context.Context, id string) (*CourseView, error) {
	var cached cachedCourseView
	if s.cacheGet(ctx, courseCacheKey(id), &cached) {
		return &CourseView{Course: cached.Course, Educator: cached.Educator}, nil
	}

	course, err := findCourse(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	educators, err := s.loadEducators(ctx, []model.Course{*course})
	if err != nil {
		return nil, err
	}

	course.SortContent()
	course.HidePaidLectureURLs()
	course.EnrolledStudents = nil
	view := &CourseView{Course: *course, Educator: educators[course.EducatorID]}

	s.cacheSet(ctx, courseCacheKey(id), cachedCourseView{Course: view.Course, Educator: view.Educator})
	return view, nil
}

// ListByEducator returns every course owned by educatorID, newest first
func (s *CatalogService) ListByEducator(ctx context.Context, educatorID string) ([]model.Course, error) {
	var courses []model.Course
	err := s.db.WithContext(ctx).
		Where("educator_id = ?", educatorID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, upstreamError("Failed to load courses", fmt.Errorf("failed to list educator courses: %w", err))
	}
	for i := range courses {
		courses[i].SortContent()
	}
	return courses, nil
}

// CreateCourse validates input, uploads the thumbnail and stores a new
// course owned by educatorID.
func (s *CatalogService) CreateCourse(ctx context.Context, educatorID string, input CourseInput, thumbnail *Upload) (*model.Course, error) {
	if thumbnail == nil || len(thumbnail.Data) == 0 {
		return nil, ErrThumbnailRequired
	}
	if err := s.validator.ValidateStruct(input); err != nil {
		return nil, validationError("%s", validation.Summary(err))
	}

	course, err := buildCourse(educatorID, input)
	if err != nil {
		return nil, err
	}

	if s.uploader == nil {
		return nil, ErrAssetStorageUnavailable
	}
	url, err := s.uploader.UploadImage(ctx, thumbnailPrefix, thumbnail.Filename, thumbnail.Data)
	if err != nil {
		return nil, upstreamError("Failed to upload thumbnail", err)
	}
	course.Thumbnail = url

	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		if delErr := s.uploader.DeleteByURL(ctx, url); delErr != nil {
			s.log.Warn("Failed to remove orphaned thumbnail", "url", url, "error", delErr)
		}
		return nil, upstreamError("Failed to save course", fmt.Errorf("failed to create course: %w", err))
	}

	s.log.Info("Course created", "course_id", course.ID, "educator_id", educatorID)
	s.InvalidateCourse(ctx, course.ID)
	return course, nil
}

// InvalidateCourse drops cached reads that include the course
func (s *CatalogService) InvalidateCourse(ctx context.Context, courseID string) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, publishedCatalogKey, courseCacheKey(courseID)); err != nil {
		s.log.Warn("Failed to invalidate catalog cache", "course_id", courseID, "error", err)
	}
}

func buildCourse(educatorID string, input CourseInput) (*model.Course, error) {
	description := validation.SanitizeRichText(input.CourseDescription)
	if description == "" {
		return nil, validationError("courseDescription is required")
	}

	published := true
	if input.IsPublished != nil {
		published = *input.IsPublished
	}

	chapters := make([]model.Chapter, 0, len(input.CourseContent))
	chapterOrders := make(map[int]bool)
	chapterIDs := make(map[string]bool)
	lectureIDs := make(map[string]bool)

	for i, ch := range input.CourseContent {
		chapter := model.Chapter{
			ID:    ch.ChapterID,
			Order: ch.ChapterOrder,
			Title: validation.SanitizeString(ch.ChapterTitle),
		}
		if chapter.ID == "" {
			chapter.ID = uuid.New().String()
		}
		if chapter.Order == 0 {
			chapter.Order = i + 1
		}
		if chapterOrders[chapter.Order] {
			return nil, validationError("chapterOrder %d is used more than once", chapter.Order)
		}
		if chapterIDs[chapter.ID] {
			return nil, validationError("chapterId %s is used more than once", chapter.ID)
		}
		chapterOrders[chapter.Order] = true
		chapterIDs[chapter.ID] = true

		chapter.Lectures = make([]model.Lecture, 0, len(ch.ChapterContent))
		for j, l := range ch.ChapterContent {
			lecture := model.Lecture{
				ID:            l.LectureID,
				Title:         validation.SanitizeString(l.LectureTitle),
				Duration:      l.LectureDuration,
				URL:           validation.SanitizeString(l.LectureURL),
				IsPreviewFree: l.IsPreviewFree,
				Order:         l.LectureOrder,
			}
			if lecture.ID == "" {
				lecture.ID = uuid.New().String()
			}
			if lecture.Order == 0 {
				lecture.Order = j + 1
			}
			if lectureIDs[lecture.ID] {
				return nil, validationError("lectureId %s is used more than once", lecture.ID)
			}
			lectureIDs[lecture.ID] = true
			chapter.Lectures = append(chapter.Lectures, lecture)
		}
		chapters = append(chapters, chapter)
	}

	course := &model.Course{
		ID:               uuid.New().String(),
		Title:            validation.SanitizeString(input.CourseTitle),
		Description:      description,
		Price:            input.CoursePrice,
		Discount:         input.Discount,
		IsPublished:      published,
		Content:          chapters,
		EducatorID:       educatorID,
		EnrolledStudents: []string{},
		Ratings:          []model.Rating{},
	}
	course.SortContent()
	return course, nil
}

func findCourse(ctx context.Context, db *gorm.DB, id string) (*model.Course, error) {
	var course model.Course
	if err := db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, upstreamError("Failed to load course", fmt.Errorf("failed to find course %s: %w", id, err))
	}
	return &course, nil
}

func (s *CatalogService) loadEducators(ctx context.Context, courses []model.Course) (map[string]*EducatorSummary, error) {
	ids := make([]string, 0, len(courses))
	seen := make(map[string]bool)
	for _, c := range courses {
		if !seen[c.EducatorID] {
			seen[c.EducatorID] = true
			ids = append(ids, c.EducatorID)
		}
	}
	out := make(map[string]*EducatorSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Select("id", "name", "image_url").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, upstreamError("Failed to load educators", fmt.Errorf("failed to load educators: %w", err))
	}
	for _, u := range users {
		out[u.ID] = &EducatorSummary{ID: u.ID, Name: u.Name, ImageURL: u.ImageURL}
	}
	return out, nil
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.GetJSON(ctx, key, dest) == nil
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, catalogTTL); err != nil {
		s.log.Warn("Failed to cache catalog read", "key", key, "error", err)
	}
}
