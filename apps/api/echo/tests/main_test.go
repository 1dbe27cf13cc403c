package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/katleho/brainhub/apps/api/echo"
	"github.com/katleho/brainhub/core"
	"github.com/katleho/brainhub/core/booking"
	"github.com/katleho/brainhub/core/course"
	"github.com/katleho/brainhub/core/review"
	"github.com/katleho/brainhub/core/tutor"
	"github.com/katleho/brainhub/core/user"
	emailsvc "github.com/katleho/brainhub/services/email"
	logsvc "github.com/katleho/brainhub/services/logger"
	inmemdb "github.com/katleho/brainhub/storage/database/inmem"
)

var (
	db      *inmemdb.DB
	usrRepo user.Repository
	tutRepo tutor.Repository
	crsRepo course.Repository
	revRepo review.Repository
	bkRepo  booking.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errPermDenied   = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	core.Conf.Debug = false
	core.Conf.TestMode = true
	os.Exit(m.Run())
}

// setup builds a fresh in-memory DB and an app server wired against it.
func setup(t *testing.T) echoapi.Server {
	t.Helper()

	db = inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	tutRepo = inmemdb.NewTutorRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	revRepo = inmemdb.NewReviewRepository(db)
	bkRepo = inmemdb.NewBookingRepository(db)

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock()
	emailsvc.SentMessages = nil

	return echoapi.NewServer(
		&echoapi.Options{
			DisableReqLogs: true,
			Logger:         logger,
			SignalShutdown: func() {},
			UserSvc:        user.NewServiceMock(usrRepo, mailSvc),
			TutorSvc:       tutor.NewService(tutRepo),
			CourseSvc:      course.NewService(crsRepo, tutRepo, revRepo),
			ReviewSvc:      review.NewService(revRepo),
			BookingSvc:     booking.NewService(bkRepo, tutor.NewService(tutRepo), usrRepo, mailSvc),
		},
	)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
