package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dibyendu2004/BrightPath/database"
	"github.com/dibyendu2004/BrightPath/model"
	"github.com/dibyendu2004/BrightPath/utils/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	catalog    *CatalogService
	enrollment *EnrollmentService
	progress   *ProgressService
	rating     *RatingService
	educator   *EducatorService
	users      *UserService
	cache      *memoryCache
	uploader   *fakeUploader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := database.OpenInMemory(logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	db := store.GetDB()
	log := logger.NewNop()
	cache := newMemoryCache()
	uploader := &fakeUploader{}
	catalog := NewCatalogService(db, log).WithCache(cache).WithUploader(uploader)

	return &testEnv{
		db:         db,
		catalog:    catalog,
		enrollment: NewEnrollmentService(db, catalog, log),
		progress:   NewProgressService(db, log),
		rating:     NewRatingService(db, catalog, log),
		educator:   NewEducatorService(db, log),
		users:      NewUserService(db, catalog, log),
		cache:      cache,
		uploader:   uploader,
	}
}

func (e *testEnv) createUser(t *testing.T, id, role string) *model.User {
	t.Helper()
	u := &model.User{
		ID:              id,
		Name:            "User " + id,
		Email:           id + "@example.com",
		ImageURL:        "https://img.example.com/" + id,
		Role:            role,
		EnrolledCourses: []string{},
		CourseRatings:   []model.UserCourseRating{},
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

// createCourse stores a published course with the 2+3 lecture layout
func (e *testEnv) createCourse(t *testing.T, id, educatorID string, price, discount float64) *model.Course {
	t.Helper()
	c := &model.Course{
		ID:          id,
		Title:       "Course " + id,
		Description: "<p>About " + id + "</p>",
		Thumbnail:   "https://cdn.example.com/" + id + ".png",
		Price:       price,
		Discount:    discount,
		IsPublished: true,
		EducatorID:  educatorID,
		Content: []model.Chapter{
			{ID: id + "-ch1", Order: 1, Title: "Intro", Lectures: []model.Lecture{
				{ID: id + "-l1", Title: "Welcome", Duration: 10, URL: "https://video.example.com/1", IsPreviewFree: true, Order: 1},
				{ID: id + "-l2", Title: "Setup", Duration: 15, URL: "https://video.example.com/2", Order: 2},
			}},
			{ID: id + "-ch2", Order: 2, Title: "Core", Lectures: []model.Lecture{
				{ID: id + "-l3", Title: "Types", Duration: 20, URL: "https://video.example.com/3", Order: 1},
				{ID: id + "-l4", Title: "Funcs", Duration: 25, URL: "https://video.example.com/4", Order: 2},
				{ID: id + "-l5", Title: "Errors", Duration: 30, URL: "https://video.example.com/5", Order: 3},
			}},
		},
		EnrolledStudents: []string{},
		Ratings:          []model.Rating{},
	}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *testEnv) reloadUser(t *testing.T, id string) model.User {
	t.Helper()
	var u model.User
	require.NoError(t, e.db.First(&u, "id = ?", id).Error)
	return u
}

func (e *testEnv) reloadCourse(t *testing.T, id string) model.Course {
	t.Helper()
	var c model.Course
	require.NoError(t, e.db.First(&c, "id = ?", id).Error)
	return c
}

func (e *testEnv) countPurchases(t *testing.T, userID, courseID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Purchase{}).Where("user_id = ? AND course_id = ?", userID, courseID).Count(&n).Error)
	return n
}

var errCacheMiss = errors.New("cache miss")

// memoryCache is an in-process CatalogCache
type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	deletes []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return errCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
		m.deletes = append(m.deletes, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

type fakeUploader struct {
	uploads []string
	deleted []string
	err     error
}

func (f *fakeUploader) UploadImage(_ context.Context, prefix, filename string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	url := "https://cdn.example.com/" + prefix + "/" + filename
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeUploader) DeleteByURL(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}
