// Package inmemdb provides in-memory repository implementations backed by
// mutex-guarded maps. It is used by tests and local development.
package inmemdb

import (
	"sync"

	"github.com/katleho/brainhub/core/booking"
	"github.com/katleho/brainhub/core/course"
	"github.com/katleho/brainhub/core/review"
	"github.com/katleho/brainhub/core/tutor"
	"github.com/katleho/brainhub/core/user"
)

type userTable struct {
	mutex sync.RWMutex
	table map[string]*user.User
}

type profileTable struct {
	mutex sync.RWMutex
	table map[string]*tutor.Profile
}

type tutorProfileTable struct {
	mutex sync.RWMutex
	table map[string]*tutor.TutorProfile
}

type subjectTable struct {
	mutex sync.RWMutex
	table map[string]*course.Subject
}

type courseTable struct {
	mutex sync.RWMutex
	table map[string]*course.Course
}

type reviewTable struct {
	mutex sync.RWMutex
	table map[string]*review.Review
}

type bookingTable struct {
	mutex sync.RWMutex
	table map[string]*booking.Booking
}

type DB struct {
	user         *userTable
	profile      *profileTable
	tutorProfile *tutorProfileTable
	subject      *subjectTable
	course       *courseTable
	review       *reviewTable
	booking      *bookingTable
}

func NewDB() *DB {
	return &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		profile:      &profileTable{table: make(map[string]*tutor.Profile)},
		tutorProfile: &tutorProfileTable{table: make(map[string]*tutor.TutorProfile)},
		subject:      &subjectTable{table: make(map[string]*course.Subject)},
		course:       &courseTable{table: make(map[string]*course.Course)},
		review:       &reviewTable{table: make(map[string]*review.Review)},
		booking:      &bookingTable{table: make(map[string]*booking.Booking)},
	}
}
