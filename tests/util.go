package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/katleho/brainhub/core/booking"
	"github.com/katleho/brainhub/core/course"
	"github.com/katleho/brainhub/core/review"
	"github.com/katleho/brainhub/core/tutor"
	"github.com/katleho/brainhub/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateProfile(
	t *testing.T,
	repo tutor.Repository,
	id, firstName, lastName, role, school string,
) tutor.Profile {
	t.Helper()

	now := time.Now().UTC()
	prof := tutor.Profile{
		ID:         id,
		FirstName:  firstName,
		LastName:   lastName,
		Role:       role,
		SchoolName: school,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	prof, err := repo.CreateProfile(context.Background(), prof)
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return prof
}

func CreateTutorProfile(
	t *testing.T,
	repo tutor.Repository,
	id string,
	hourlyRate float64,
	verified bool,
	rating float64,
) tutor.TutorProfile {
	t.Helper()

	now := time.Now().UTC()
	tp := tutor.TutorProfile{
		ID:         id,
		HourlyRate: hourlyRate,
		Verified:   verified,
		Rating:     rating,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	tp, err := repo.CreateTutorProfile(context.Background(), tp)
	if err != nil {
		t.Fatalf("CreateTutorProfile() failed: %v", err)
	}
	return tp
}

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	title, subject, subjectID, tutorID string,
	gradeLevel int,
	createdAt ...time.Time,
) course.Course {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	crs := course.Course{
		Title:      title,
		Subject:    subject,
		SubjectID:  subjectID,
		TutorID:    tutorID,
		GradeLevel: gradeLevel,
		IsActive:   true,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	crs, err := repo.CreateCourse(context.Background(), crs)
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateReview(
	t *testing.T,
	repo review.Repository,
	userID, courseID string,
	rating int,
) review.Review {
	t.Helper()

	rev := review.Review{
		UserID:    userID,
		CourseID:  courseID,
		Rating:    rating,
		CreatedAt: time.Now().UTC(),
	}
	rev, err := repo.CreateReview(context.Background(), rev)
	if err != nil {
		t.Fatalf("CreateReview() failed: %v", err)
	}
	return rev
}

func CreateBooking(
	t *testing.T,
	repo booking.Repository,
	studentID, tutorID, courseID, status string,
	startsAt, endsAt time.Time,
) booking.Booking {
	t.Helper()

	now := time.Now().UTC()
	bk := booking.Booking{
		StudentID: studentID,
		TutorID:   tutorID,
		CourseID:  courseID,
		Status:    status,
		StartsAt:  startsAt.UTC(),
		EndsAt:    endsAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	bk, err := repo.CreateBooking(context.Background(), bk)
	if err != nil {
		t.Fatalf("CreateBooking() failed: %v", err)
	}
	return bk
}
