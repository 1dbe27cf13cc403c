package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/katleho/brainhub/core/booking"
	"github.com/katleho/brainhub/core/user"
	emailsvc "github.com/katleho/brainhub/services/email"
	testutil "github.com/katleho/brainhub/tests"
)

func Test_bookingApi_bookings(t *testing.T) {
	app := setup(t)

	tutorUsr := testutil.CreateUser(t, usrRepo, "Thabo Mokoena", "thabo1", "thabo@test.za", "", []string{user.RoleTutor}, true)
	student := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.za", "", []string{user.RoleStudent}, true)
	student2 := testutil.CreateUser(t, usrRepo, "King", "king01", "king@test.za", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.za", "", []string{user.RoleAdmin}, true)

	testutil.CreateProfile(t, tutRepo, tutorUsr.ID, "Thabo", "Mokoena", "tutor", "Parktown High")
	testutil.CreateTutorProfile(t, tutRepo, tutorUsr.ID, 150, true, 4.5)
	crs := testutil.CreateCourse(t, crsRepo, "Algebra Basics", "Mathematics", "", tutorUsr.ID, 10)

	tutorToken := getToken(t, tutorUsr)
	studentToken := getToken(t, student)
	student2Token := getToken(t, student2)
	adminToken := getToken(t, admin)

	startsAt := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	endsAt := startsAt.Add(time.Hour)

	var bk booking.Booking
	t.Run("student books a slot", func(t *testing.T) {
		// student_id of someone else is silently overridden
		body := marchallObj(t, booking.NewBooking{
			CourseID: crs.ID, StudentID: student2.ID, TutorID: tutorUsr.ID, StartsAt: startsAt, EndsAt: endsAt,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", studentToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &bk); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if bk.StudentID != student.ID {
			t.Errorf("StudentID = %s; want %s", bk.StudentID, student.ID)
		}
		if bk.Status != booking.StatusPending {
			t.Errorf("Status = %s; want %s", bk.Status, booking.StatusPending)
		}
	})

	t.Run("ends_at must be after starts_at", func(t *testing.T) {
		body := marchallObj(t, booking.NewBooking{
			CourseID: crs.ID, TutorID: tutorUsr.ID, StartsAt: endsAt, EndsAt: startsAt,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", studentToken, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"ends_at": "ends_at must be greater than StartsAt"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("overlapping slot is rejected", func(t *testing.T) {
		body := marchallObj(t, booking.NewBooking{
			CourseID: crs.ID, TutorID: tutorUsr.ID, StartsAt: startsAt.Add(30 * time.Minute), EndsAt: endsAt.Add(30 * time.Minute),
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/bookings", student2Token, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"starts_at": booking.ErrSlotTaken.Error()}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("students only see their own bookings", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallList(t, bk)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/bookings", studentToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)

		tt = httpTest{wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...)}
		req, rec = newAuthRequest(http.MethodGet, "/v1/bookings", student2Token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("strangers cannot see a booking", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/bookings/"+bk.ID, student2Token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("only the tutor confirms", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/v1/bookings/"+bk.ID+"/confirm", studentToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)}
		checkCodeAndData(t, tt, rec)

		emailsvc.SentMessages = nil // reset
		req, rec = newAuthRequest(http.MethodPatch, "/v1/bookings/"+bk.ID+"/confirm", tutorToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var confirmed booking.Booking
		if err := json.Unmarshal(rec.Body.Bytes(), &confirmed); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if confirmed.Status != booking.StatusConfirmed {
			t.Errorf("Status = %s; want %s", confirmed.Status, booking.StatusConfirmed)
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Errorf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
		}
	})

	t.Run("session rating must be 5 or less", func(t *testing.T) {
		body := marchallObj(t, booking.CompleteBooking{Rating: 6})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/bookings/"+bk.ID+"/complete", tutorToken, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"rating": "rating must be 5 or less"}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("completing records the session on the tutor's profile", func(t *testing.T) {
		body := marchallObj(t, booking.CompleteBooking{Rating: 4})
		req, rec := newAuthRequest(http.MethodPatch, "/v1/bookings/"+bk.ID+"/complete", tutorToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		tp, err := tutRepo.GetTutorProfileByID(context.Background(), tutorUsr.ID)
		if err != nil {
			t.Fatalf("GetTutorProfileByID(): %v", err)
		}
		if tp.TotalSessions != 1 {
			t.Errorf("TotalSessions = %d; want 1", tp.TotalSessions)
		}
		if tp.Rating != 4 {
			t.Errorf("Rating = %v; want 4", tp.Rating)
		}
	})

	t.Run("completed bookings cannot be cancelled", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/v1/bookings/"+bk.ID+"/cancel", studentToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": booking.ErrInvalidTransition.Error()}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("participants cancel pending bookings", func(t *testing.T) {
		bk2 := testutil.CreateBooking(t, bkRepo, student.ID, tutorUsr.ID, crs.ID, booking.StatusPending,
			startsAt.Add(48*time.Hour), endsAt.Add(48*time.Hour))

		req, rec := newAuthRequest(http.MethodPatch, "/v1/bookings/"+bk2.ID+"/cancel", studentToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var cancelled booking.Booking
		if err := json.Unmarshal(rec.Body.Bytes(), &cancelled); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if cancelled.Status != booking.StatusCancelled {
			t.Errorf("Status = %s; want %s", cancelled.Status, booking.StatusCancelled)
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/bookings", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		var bookings []booking.Booking
		if err := json.Unmarshal(rec.Body.Bytes(), &bookings); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if len(bookings) != 2 {
			t.Errorf("failed! len(bookings) = %d; want 2", len(bookings))
		}
	})
}
