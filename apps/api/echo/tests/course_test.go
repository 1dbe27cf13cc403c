package tests

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/course"
	"github.com/katleho/brainhub/core/user"
	testutil "github.com/katleho/brainhub/tests"
)

type courseFixtures struct {
	mathSub, engSub  course.Subject
	tutor1, tutor2   user.User
	student, admin   user.User
	mathCrs, engCrs  course.Course
	untaggedCrs      course.Course
}

func setupCourses(t *testing.T) courseFixtures {
	t.Helper()
	var fx courseFixtures

	fx.mathSub = db.SeedSubject(course.Subject{Name: "Mathematics", GradeLevels: []int{8, 9, 10, 11, 12}})
	fx.engSub = db.SeedSubject(course.Subject{Name: "English Home Language", GradeLevels: []int{10, 11, 12}})

	fx.tutor1 = testutil.CreateUser(t, usrRepo, "Thabo Mokoena", "thabo1", "thabo@test.za", "", []string{user.RoleTutor}, true)
	fx.tutor2 = testutil.CreateUser(t, usrRepo, "Lerato Dlamini", "lerato", "lerato@test.za", "", []string{user.RoleTutor}, true)
	fx.student = testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.za", "", []string{user.RoleStudent}, true)
	fx.admin = testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.za", "", []string{user.RoleAdmin}, true)

	testutil.CreateProfile(t, tutRepo, fx.tutor1.ID, "Thabo", "Mokoena", "tutor", "Parktown High")
	testutil.CreateProfile(t, tutRepo, fx.tutor2.ID, "Lerato", "Dlamini", "tutor", "Soweto Academy")
	testutil.CreateTutorProfile(t, tutRepo, fx.tutor1.ID, 150, true, 4.5)
	testutil.CreateTutorProfile(t, tutRepo, fx.tutor2.ID, 100, false, 3.0)

	fx.mathCrs = testutil.CreateCourse(t, crsRepo, "Algebra Basics", "Mathematics", fx.mathSub.ID, fx.tutor1.ID, 10)
	fx.engCrs = testutil.CreateCourse(t, crsRepo, "Essay Writing", "English Home Language", fx.engSub.ID, fx.tutor2.ID, 11)
	// no explicit subject; matching falls back to title inference
	fx.untaggedCrs = testutil.CreateCourse(t, crsRepo, "Grade 9 Accounting", "", "", fx.tutor2.ID, 0)

	testutil.CreateReview(t, revRepo, fx.student.ID, fx.mathCrs.ID, 5)
	return fx
}

func Test_courseApi_courseQuery(t *testing.T) {
	app := setup(t)
	fx := setupCourses(t)

	path := func(v url.Values) string { return "/v1/courses?" + v.Encode() }
	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "Get all", path: "/v1/courses", wantData: marchallList(t, fx.mathCrs, fx.engCrs, fx.untaggedCrs)},
		{name: "search (unknown)", path: path(url.Values{"search": {"lol"}}), wantData: empty},
		{name: "search=algebra", path: path(url.Values{"search": {"algebra"}}), wantData: marchallList(t, fx.mathCrs)},
		{
			name: "tutor_id", path: path(url.Values{"tutor_id": {fx.tutor2.ID}}),
			wantData: marchallList(t, fx.engCrs, fx.untaggedCrs),
		},
		{name: "subject_id", path: path(url.Values{"subject_id": {fx.engSub.ID}}), wantData: marchallList(t, fx.engCrs)},
		{name: "grade_level", path: path(url.Values{"grade_level": {"10"}}), wantData: marchallList(t, fx.mathCrs)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.wantCode = http.StatusOK

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("subjects are public", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallList(t, fx.engSub, fx.mathSub),
		}
		req, rec := newRequest(http.MethodGet, "/v1/courses/subjects")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("retrieve", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, fx.mathCrs)}
		req, rec := newRequest(http.MethodGet, "/v1/courses/"+fx.mathCrs.ID)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("retrieve unknown", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}
		req, rec := newRequest(http.MethodGet, "/v1/courses/lol")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_courseApi_courseMatch(t *testing.T) {
	app := setup(t)
	fx := setupCourses(t)

	decode := func(t *testing.T, body []byte) []course.ScoredCourse {
		t.Helper()
		var matches []course.ScoredCourse
		if err := json.Unmarshal(body, &matches); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return matches
	}

	type want struct {
		courseID string
		score    int
	}
	assertMatches := func(t *testing.T, matches []course.ScoredCourse, wants []want) {
		t.Helper()
		if len(matches) != len(wants) {
			t.Fatalf("failed! len(matches) = %d; want %d", len(matches), len(wants))
		}
		for i, w := range wants {
			if matches[i].ID != w.courseID {
				t.Errorf("matches[%d].ID = %s; want %s", i, matches[i].ID, w.courseID)
			}
			if matches[i].Score != w.score {
				t.Errorf("matches[%d].Score = %d; want %d", i, matches[i].Score, w.score)
			}
		}
	}

	t.Run("full preferences (GET)", func(t *testing.T) {
		v := url.Values{"subject": {"Mathematics"}, "grade": {"10"}, "location": {"Parktown High"}}
		req, rec := newRequest(http.MethodGet, "/v1/courses/match?"+v.Encode())
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}

		// mathCrs: base + exact subject + exact grade + exact location + verified + rating
		// engCrs: base + exact grade (10 is in the subject's grade list)
		// untaggedCrs: base + partial grade (title says 9, want 10)
		assertMatches(t, decode(t, rec.Body.Bytes()), []want{
			{fx.mathCrs.ID, 110},
			{fx.engCrs.ID, 40},
			{fx.untaggedCrs.ID, 25},
		})
	})

	t.Run("full preferences (POST)", func(t *testing.T) {
		body := marchallObj(t, course.SearchPreferences{Subject: "Mathematics", Grade: "10", Location: "Parktown High"})
		req, rec := newRequest(http.MethodPost, "/v1/courses/match", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		assertMatches(t, decode(t, rec.Body.Bytes()), []want{
			{fx.mathCrs.ID, 110},
			{fx.engCrs.ID, 40},
			{fx.untaggedCrs.ID, 25},
		})
	})

	t.Run("no preferences still ranks everything", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/courses/match")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		// only the flat bonuses differ: verified+rating tutor first
		assertMatches(t, decode(t, rec.Body.Bytes()), []want{
			{fx.mathCrs.ID, 20},
			{fx.engCrs.ID, 10},
			{fx.untaggedCrs.ID, 10},
		})
	})

	t.Run("malformed grade is a wildcard", func(t *testing.T) {
		v := url.Values{"grade": {"lol"}}
		req, rec := newRequest(http.MethodGet, "/v1/courses/match?"+v.Encode())
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
		matches := decode(t, rec.Body.Bytes())
		if len(matches) != 3 {
			t.Fatalf("failed! len(matches) = %d; want 3", len(matches))
		}
	})
}

func Test_courseApi_courseCRUD(t *testing.T) {
	app := setup(t)
	fx := setupCourses(t)

	tutor1Token := getToken(t, fx.tutor1)
	tutor2Token := getToken(t, fx.tutor2)
	studentToken := getToken(t, fx.student)
	adminToken := getToken(t, fx.admin)

	t.Run("create requires auth", func(t *testing.T) {
		body := marchallObj(t, course.NewCourse{Title: "Trig", TutorID: fx.tutor1.ID})
		req, rec := newRequest(http.MethodPost, "/v1/courses", body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("students cannot create", func(t *testing.T) {
		body := marchallObj(t, course.NewCourse{Title: "Trig", TutorID: fx.student.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", studentToken, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("tutors create their own courses only", func(t *testing.T) {
		// tutor_id of another tutor is silently overridden
		body := marchallObj(t, course.NewCourse{
			Title: "Trigonometry", Subject: "Mathematics", SubjectID: fx.mathSub.ID, GradeLevel: 11, TutorID: fx.tutor2.ID, Price: 120,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", tutor1Token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var crs course.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if crs.TutorID != fx.tutor1.ID {
			t.Errorf("TutorID = %s; want %s", crs.TutorID, fx.tutor1.ID)
		}
		if !crs.IsActive {
			t.Error("new course should be active")
		}
	})

	t.Run("price accepts the quoted form", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{
			"title": "Geometry", "tutor_id": fx.tutor1.ID, "price": "99.50",
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", tutor1Token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var crs course.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if crs.Price != 99.5 {
			t.Errorf("Price = %v; want 99.5", crs.Price)
		}
	})

	t.Run("unknown subject is rejected", func(t *testing.T) {
		body := marchallObj(t, course.NewCourse{
			Title: "Trig", SubjectID: "6b2460cf-5ee7-4a54-a52e-9b53b63c24d1", TutorID: fx.tutor1.ID,
		})
		req, rec := newAuthRequest(http.MethodPost, "/v1/courses", tutor1Token, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"subject_id": course.ErrSubjectNotFound.Error()}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("tutors cannot update others' courses", func(t *testing.T) {
		body := marchallObj(t, course.UpdateCourse{Title: "Hijacked"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+fx.mathCrs.ID, tutor2Token, body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errPermDenied)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admin updates any course", func(t *testing.T) {
		price := core.Decimal(200)
		body := marchallObj(t, course.UpdateCourse{Title: "Algebra Mastery", Price: &price})
		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/"+fx.mathCrs.ID, adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var crs course.Course
		if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		if crs.Title != "Algebra Mastery" {
			t.Errorf("Title = %s; want Algebra Mastery", crs.Title)
		}
		if crs.Price != float64(price) {
			t.Errorf("Price = %v; want %v", crs.Price, price)
		}
	})

	t.Run("tutor deletes own course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/courses/"+fx.untaggedCrs.ID, tutor2Token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v", rec.Code, http.StatusNoContent)
		}

		req, rec = newRequest(http.MethodGet, "/v1/courses/"+fx.untaggedCrs.ID)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})
}
