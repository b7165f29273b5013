package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleStudent  = "student"
	RoleEducator = "educator"
)

// User is a profile mirrored from the external identity provider. The id is
// the provider's user id.
type User struct {
	ID              string                                `gorm:"type:varchar(191);primaryKey" json:"_id"`
	Name            string                                `gorm:"not null" json:"name"`
	Email           string                                `gorm:"not null;index" json:"email"`
	ImageURL        string                                `gorm:"type:text" json:"imageUrl"`
	Role            string                                `gorm:"type:varchar(20);not null" json:"role"` // student, educator
	EnrolledCourses datatypes.JSONSlice[string]           `json:"enrolledCourses"`
	CourseRatings   datatypes.JSONSlice[UserCourseRating] `json:"courseRatings"`
	CreatedAt       time.Time                             `json:"createdAt"`
	UpdatedAt       time.Time                             `json:"updatedAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// UserCourseRating is the user-side copy of a rating, used by clients to
// pre-fill the stars they gave.
type UserCourseRating struct {
	CourseID string `json:"courseId"`
	Rating   int    `json:"rating"`
}

func (u *User) IsEnrolled(courseID string) bool {
	return containsString(u.EnrolledCourses, courseID)
}

func (u *User) IsEducator() bool {
	return u.Role == RoleEducator
}

// AddEnrolledCourse adds courseID to the enrolled set, reporting whether it was absent.
func (u *User) AddEnrolledCourse(courseID string) bool {
	var added bool
	u.EnrolledCourses, added = addUnique(u.EnrolledCourses, courseID)
	return added
}

func (u *User) UpsertRatingHistory(courseID string, value int) {
	for i := range u.CourseRatings {
		if u.CourseRatings[i].CourseID == courseID {
			u.CourseRatings[i].Rating = value
			return
		}
	}
	u.CourseRatings = append(u.CourseRatings, UserCourseRating{CourseID: courseID, Rating: value})
}
