package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Course is a chaptered video course owned by an educator. Chapters,
// ratings and the enrolled-student set are embedded JSON documents so the
// whole course is read and written as one row.
type Course struct {
	ID               string                       `gorm:"type:varchar(36);primaryKey" json:"_id"`
	Title            string                       `gorm:"not null" json:"courseTitle"`
	Description      string                       `gorm:"type:text;not null" json:"courseDescription"`
	Thumbnail        string                       `gorm:"type:text" json:"courseThumbnail"`
	Price            float64                      `gorm:"not null" json:"coursePrice"`
	Discount         float64                      `gorm:"not null" json:"discount"` // percent, 0-100
	IsPublished      bool                         `gorm:"not null;index" json:"isPublished"`
	Content          datatypes.JSONSlice[Chapter] `json:"courseContent,omitempty"`
	EducatorID       string                       `gorm:"type:varchar(191);not null;index" json:"educator"`
	EnrolledStudents datatypes.JSONSlice[string]  `json:"enrolledStudents,omitempty"`
	Ratings          datatypes.JSONSlice[Rating]  `json:"courseRatings"`
	CreatedAt        time.Time                    `json:"createdAt"`
	UpdatedAt        time.Time                    `json:"updatedAt"`
}

// TableName specifies the table name for Course
func (Course) TableName() string {
	return "courses"
}

// Chapter groups lectures inside a course
type Chapter struct {
	ID       string    `json:"chapterId"`
	Order    int       `json:"chapterOrder"`
	Title    string    `json:"chapterTitle"`
	Lectures []Lecture `json:"chapterContent"`
}

type Lecture struct {
	ID            string `json:"lectureId"`
	Title         string `json:"lectureTitle"`
	Duration      int    `json:"lectureDuration"` // minutes
	URL           string `json:"lectureUrl"`
	IsPreviewFree bool   `json:"isPreviewFree"`
	Order         int    `json:"lectureOrder"`
}

// Rating is one student's score for a course. A user has at most one.
type Rating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// EffectivePrice returns price less the discount percentage, rounded to
// two decimals. The discount is clamped to [0, 100] so the result always
// lies in [0, price].
func EffectivePrice(price, discount float64) float64 {
	if price <= 0 {
		return 0
	}
	pct := decimal.NewFromFloat(discount)
	if pct.IsNegative() {
		pct = decimal.Zero
	}
	if pct.GreaterThan(decimal.NewFromInt(100)) {
		pct = decimal.NewFromInt(100)
	}

	p := decimal.NewFromFloat(price)
	off := p.Mul(pct).Div(decimal.NewFromInt(100))
	amount, _ := p.Sub(off).Round(2).Float64()
	if amount < 0 {
		return 0
	}
	return amount
}

func (c *Course) EffectivePrice() float64 {
	return EffectivePrice(c.Price, c.Discount)
}

func (ch Chapter) DurationMinutes() int {
	total := 0
	for _, l := range ch.Lectures {
		total += l.Duration
	}
	return total
}

func (c *Course) TotalLectures() int {
	total := 0
	for _, ch := range c.Content {
		total += len(ch.Lectures)
	}
	return total
}

func (c *Course) TotalDurationMinutes() int {
	total := 0
	for _, ch := range c.Content {
		total += ch.DurationMinutes()
	}
	return total
}

// LectureIDs returns the set of lecture ids present in the course.
func (c *Course) LectureIDs() map[string]struct{} {
	ids := make(map[string]struct{}, c.TotalLectures())
	for _, ch := range c.Content {
		for _, l := range ch.Lectures {
			ids[l.ID] = struct{}{}
		}
	}
	return ids
}

func (c *Course) HasLecture(lectureID string) bool {
	for _, ch := range c.Content {
		for _, l := range ch.Lectures {
			if l.ID == lectureID {
				return true
			}
		}
	}
	return false
}

// SortContent orders chapters by chapterOrder and lectures by lectureOrder.
func (c *Course) SortContent() {
	sort.SliceStable(c.Content, func(i, j int) bool {
		return c.Content[i].Order < c.Content[j].Order
	})
	for i := range c.Content {
		lectures := c.Content[i].Lectures
		sort.SliceStable(lectures, func(a, b int) bool {
			return lectures[a].Order < lectures[b].Order
		})
	}
}

// HidePaidLectureURLs blanks the video link of every lecture that is not a
// free preview.
func (c *Course) HidePaidLectureURLs() {
	chapters := make([]Chapter, len(c.Content))
	for i, ch := range c.Content {
		lectures := make([]Lecture, len(ch.Lectures))
		for j, l := range ch.Lectures {
			if !l.IsPreviewFree {
				l.URL = ""
			}
			lectures[j] = l
		}
		ch.Lectures = lectures
		chapters[i] = ch
	}
	c.Content = chapters
}

// AverageRating is the unrounded mean of all ratings, 0 when there are none.
func (c *Course) AverageRating() float64 {
	if len(c.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range c.Ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(c.Ratings))
}

// UpsertRating replaces the user's existing rating or appends a new one.
// It reports whether a new entry was added.
func (c *Course) UpsertRating(userID string, value int) bool {
	for i := range c.Ratings {
		if c.Ratings[i].UserID == userID {
			c.Ratings[i].Rating = value
			return false
		}
	}
	c.Ratings = append(c.Ratings, Rating{UserID: userID, Rating: value})
	return true
}

func (c *Course) HasStudent(userID string) bool {
	return containsString(c.EnrolledStudents, userID)
}

// AddStudent adds userID to the enrolled set, reporting whether it was absent.
func (c *Course) AddStudent(userID string) bool {
	var added bool
	c.EnrolledStudents, added = addUnique(c.EnrolledStudents, userID)
	return added
}
