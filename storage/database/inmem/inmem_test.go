package inmemdb

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/katleho/brainhub/core/course"
	"github.com/katleho/brainhub/core/review"
)

// Listing order must not depend on map iteration: records created in the same
// instant are tie-broken by ID.

func Test_courseRepository_listingOrderIsStable(t *testing.T) {
	repo := NewCourseRepository(NewDB())
	ctx := context.Background()

	now := time.Now().UTC()
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		crs, err := repo.CreateCourse(ctx, course.Course{Title: "Algebra", CreatedAt: now, UpdatedAt: now})
		if err != nil {
			t.Fatalf("CreateCourse() failed: %v", err)
		}
		ids = append(ids, crs.ID)
	}
	sort.Strings(ids)

	for run := 0; run < 10; run++ {
		courses, err := repo.FilterCourses(ctx, course.QueryFilter{})
		if err != nil {
			t.Fatalf("FilterCourses() failed: %v", err)
		}
		if len(courses) != len(ids) {
			t.Fatalf("len = %d; want %d", len(courses), len(ids))
		}
		for i, crs := range courses {
			if crs.ID != ids[i] {
				t.Fatalf("run %d: [%d].ID = %s; want %s", run, i, crs.ID, ids[i])
			}
		}
	}
}

func Test_reviewRepository_listingOrderIsStable(t *testing.T) {
	repo := NewReviewRepository(NewDB())
	ctx := context.Background()

	now := time.Now().UTC()
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		rev, err := repo.CreateReview(ctx, review.Review{CourseID: "crs", Rating: 5, CreatedAt: now})
		if err != nil {
			t.Fatalf("CreateReview() failed: %v", err)
		}
		ids = append(ids, rev.ID)
	}
	sort.Strings(ids)

	for run := 0; run < 10; run++ {
		reviews, err := repo.QueryReviewsByCourse(ctx, "crs")
		if err != nil {
			t.Fatalf("QueryReviewsByCourse() failed: %v", err)
		}
		if len(reviews) != len(ids) {
			t.Fatalf("len = %d; want %d", len(reviews), len(ids))
		}
		for i, rev := range reviews {
			if rev.ID != ids[i] {
				t.Fatalf("run %d: [%d].ID = %s; want %s", run, i, rev.ID, ids[i])
			}
		}
	}
}
