package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	. "github.com/tkalearning/lms/apps/api/echo"
	"github.com/tkalearning/lms/core"
	"github.com/tkalearning/lms/core/course"
	"github.com/tkalearning/lms/core/dashboard"
	"github.com/tkalearning/lms/core/enrollment"
	"github.com/tkalearning/lms/core/progress"
	"github.com/tkalearning/lms/core/user"
	"github.com/tkalearning/lms/fs"
	"github.com/tkalearning/lms/services/email"
	"github.com/tkalearning/lms/storage/database/sqlx"
	"github.com/tkalearning/lms/tests"
)

var (
	errMissingToken     = httpErr{Error: "missing or malformed jwt"}
	errUnauthenticated  = httpErr{Error: "user not authenticated"}
	errPermissionDenied = httpErr{Error: "permission denied"}
	errNotFound         = httpErr{Error: "course not found"}
)

type fixture struct {
	conf     *core.Config
	db       *sqlx.DB
	app      *Server
	registry *prometheus.Registry
	usrRepo  user.Repository
	crsRepo  course.Repository
	mailSvc  *emailsvc.ConsoleServiceMock
}

func setup(t *testing.T) fixture {
	conf := testutil.NewConfig(t)
	logger := testutil.NewLogger(t, conf)
	db := testutil.PrepareDB(t, conf)

	core.ParseEmailTemplates(appfs.FS, conf, logger)
	user.LoadCommonPasswords(appfs.FS, logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	usrRepo := sqlxrepos.NewUserRepository(db)
	crsRepo := sqlxrepos.NewCourseRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	crsSvc := course.NewService(crsRepo)
	registry := prometheus.NewRegistry()

	app := NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		Registry:      registry,
		UserSvc:       user.NewService(usrRepo, mailSvc),
		CourseSvc:     crsSvc,
		EnrollmentSvc: enrollment.NewService(sqlxrepos.NewEnrollmentRepository(db), crsSvc),
		ProgressSvc:   progress.NewService(sqlxrepos.NewProgressRepository(db), crsSvc),
		DashboardSvc:  dashboard.NewService(sqlxrepos.NewDashboardRepository(db)),
		Validate:      validate,
		Translator:    translator,
	})
	t.Cleanup(func() { _ = app.Close() })

	return fixture{
		conf:     conf,
		db:       db,
		app:      app,
		registry: registry,
		usrRepo:  usrRepo,
		crsRepo:  crsRepo,
		mailSvc:  mailSvc,
	}
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

// do serves a request and returns the recorder.
func (f fixture) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	f.app.ServeHTTP(rec, req)
	return rec
}

func (f fixture) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			checkCodeAndData(t, tt, f.do(method, tt.path, tt.token, tt.body))
		})
	}
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marshalList(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode(): %v; body %s", err, rec.Body.String())
	}
}

func itoa(i int) string { return strconv.Itoa(i) }

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	i, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("mustAtoi(%q): %v", s, err)
	}
	return i
}

func TestHome(t *testing.T) {
	f := setup(t)
	rec := f.do(http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	if want := "Welcome to " + f.conf.AppName + " API!"; rec.Body.String() != want {
		t.Errorf("failed! body = %q; want %q", rec.Body.String(), want)
	}
}

func TestServer_shutdownOnClosedDB(t *testing.T) {
	f := setup(t)
	testutil.CreateCourse(t, f.crsRepo, "Advanced Canva Design", "")
	require.NoError(t, f.db.Close())

	rec := f.do(http.MethodGet, "/v1/courses", "")
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusInternalServerError,
		wantData: marshalObj(t, httpErr{Error: http.StatusText(http.StatusInternalServerError)}),
	}, rec)

	select {
	case <-f.app.ShutdownSignal():
	case <-time.After(time.Second):
		t.Fatal("ShutdownSignal() did not fire")
	}
}
