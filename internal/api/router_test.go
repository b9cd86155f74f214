package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/kritin29/Patient-Management-Web-App/internal/auth"
	"github.com/kritin29/Patient-Management-Web-App/internal/database"
	"github.com/kritin29/Patient-Management-Web-App/internal/models"
	"github.com/kritin29/Patient-Management-Web-App/internal/services"
	"github.com/kritin29/Patient-Management-Web-App/internal/session"
	"github.com/kritin29/Patient-Management-Web-App/internal/signup"
	"github.com/kritin29/Patient-Management-Web-App/internal/websocket"
)

type captureMailer struct {
	mu   sync.Mutex
	last string
	sent int
}

func (c *captureMailer) Send(_ context.Context, _, _, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = body
	c.sent++
	return nil
}

var codePattern = regexp.MustCompile(`authenticate your email: ([1-6]{5})`)

func (c *captureMailer) code(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	m := codePattern.FindStringSubmatch(c.last)
	if m == nil {
		t.Fatalf("no OTP in mail body %q", c.last)
	}
	return m[1]
}

type testServer struct {
	*httptest.Server
	mail   *captureMailer
	client *http.Client
}

func newTestServer(t *testing.T, limiter *RateLimiter) *testServer {
	t.Helper()
	db, err := database.New(":memory:")
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub()
	go hub.Run(ctx)

	hasher := auth.BcryptHasher{Cost: 4}
	mail := &captureMailer{}
	events := services.NewEventService(db, hub)
	users := services.NewUserService(db, hasher, events)
	patients := services.NewPatientService(db, events)
	appointments := services.NewAppointmentService(db, events)

	router := NewRouter(Deps{
		Tokens:       auth.NewManager("test-secret"),
		Sessions:     session.NewMemoryStore(),
		SessionTTL:   time.Hour,
		Limiter:      limiter,
		Hub:          hub,
		Users:        users,
		Signup:       signup.NewService(users, mail, hasher, 10*time.Minute),
		Patients:     patients,
		Pictures:     services.NewPictureService(db, patients, events),
		Appointments: appointments,
		Dashboard:    services.NewDashboardService(patients, appointments),
		Events:       events,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	jar, _ := cookiejar.New(nil)
	return &testServer{Server: srv, mail: mail, client: &http.Client{Jar: jar}}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func (s *testServer) expect(t *testing.T, method, path string, body interface{}, want int) []byte {
	t.Helper()
	resp, data := s.do(t, method, path, body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s = %d (%s), want %d", method, path, resp.StatusCode, data, want)
	}
	return data
}

var signupForm = map[string]string{
	"username":         "alice",
	"email":            "a@x.com",
	"password":         "Secr3tPass",
	"confirm_password": "Secr3tPass",
}

func (s *testServer) signUpAndIn(t *testing.T) {
	t.Helper()
	s.expect(t, "POST", "/api/v1/auth/signup", signupForm, http.StatusAccepted)
	s.expect(t, "POST", "/api/v1/auth/signup/otp", map[string]string{"otp": s.mail.code(t)}, http.StatusCreated)
	s.expect(t, "POST", "/api/v1/auth/signin", map[string]string{"email": "a@x.com", "password": "Secr3tPass"}, http.StatusOK)
}

func TestSignupFlow(t *testing.T) {
	s := newTestServer(t, nil)

	// Verify without a signup.
	data := s.expect(t, "POST", "/api/v1/auth/signup/otp", map[string]string{"otp": "12345"}, http.StatusBadRequest)
	var otpErr map[string]string
	json.Unmarshal(data, &otpErr)
	if otpErr["redirect"] != "/api/v1/auth/signup" {
		t.Errorf("redirect = %q", otpErr["redirect"])
	}

	// Invalid form.
	data = s.expect(t, "POST", "/api/v1/auth/signup", map[string]string{"username": "al"}, http.StatusUnprocessableEntity)
	var ve struct{ Errors map[string]string }
	json.Unmarshal(data, &ve)
	if _, ok := ve.Errors["username"]; !ok {
		t.Errorf("validation errors = %v, want username", ve.Errors)
	}

	// Wrong code consumes the pending signup.
	s.expect(t, "POST", "/api/v1/auth/signup", signupForm, http.StatusAccepted)
	code := s.mail.code(t)
	s.expect(t, "POST", "/api/v1/auth/signup/otp", map[string]string{"otp": "00000"}, http.StatusBadRequest)
	s.expect(t, "POST", "/api/v1/auth/signup/otp", map[string]string{"otp": code}, http.StatusBadRequest)
	s.expect(t, "POST", "/api/v1/auth/signin", map[string]string{"email": "a@x.com", "password": "Secr3tPass"}, http.StatusUnauthorized)

	// Correct code creates the account once.
	s.expect(t, "POST", "/api/v1/auth/signup", signupForm, http.StatusAccepted)
	code = s.mail.code(t)
	data = s.expect(t, "POST", "/api/v1/auth/signup/otp", map[string]string{"otp": code}, http.StatusCreated)
	var user models.User
	json.Unmarshal(data, &user)
	if user.Username != "alice" || bytes.Contains(data, []byte("Secr3tPass")) {
		t.Errorf("created user = %s", data)
	}
	s.expect(t, "POST", "/api/v1/auth/signup/otp", map[string]string{"otp": code}, http.StatusBadRequest)

	// Taken username and email.
	data = s.expect(t, "POST", "/api/v1/auth/signup", signupForm, http.StatusUnprocessableEntity)
	var taken struct{ Errors map[string]string }
	json.Unmarshal(data, &taken)
	if len(taken.Errors) != 2 || taken.Errors["username"] == "" || taken.Errors["email"] == "" {
		t.Errorf("validation errors = %v, want username and email", taken.Errors)
	}

	s.expect(t, "POST", "/api/v1/auth/signin", map[string]string{"email": "a@x.com", "password": "wrong-pass"}, http.StatusUnauthorized)
	s.expect(t, "POST", "/api/v1/auth/signin", map[string]string{"email": "a@x.com", "password": "Secr3tPass"}, http.StatusOK)
	s.expect(t, "GET", "/api/v1/auth/me", nil, http.StatusOK)
	s.expect(t, "POST", "/api/v1/auth/signin", map[string]string{"email": "a@x.com", "password": "Secr3tPass"}, http.StatusConflict)

	s.expect(t, "POST", "/api/v1/auth/signout", nil, http.StatusNoContent)
	s.expect(t, "GET", "/api/v1/auth/me", nil, http.StatusUnauthorized)

	if s.mail.sent != 2 {
		t.Errorf("sent %d mails, want 2", s.mail.sent)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/api/v1/patients", "/api/v1/appointments", "/api/v1/dashboard", "/api/v1/events"} {
		s.expect(t, "GET", path, nil, http.StatusUnauthorized)
	}
}

func TestPatientsAndAppointments(t *testing.T) {
	s := newTestServer(t, nil)
	s.signUpAndIn(t)

	data := s.expect(t, "POST", "/api/v1/patients", map[string]interface{}{
		"name": "Bob Smith", "gender": "male", "age": 42,
	}, http.StatusCreated)
	var patient models.Patient
	json.Unmarshal(data, &patient)

	s.expect(t, "POST", "/api/v1/patients", map[string]interface{}{"name": "B", "gender": "x"}, http.StatusUnprocessableEntity)
	s.expect(t, "PUT", "/api/v1/patients/"+patient.ID+"/diagnosis", map[string]string{"diagnosis": "Cavity"}, http.StatusOK)
	s.expect(t, "GET", "/api/v1/patients/missing", nil, http.StatusNotFound)

	data = s.expect(t, "GET", "/api/v1/patients?search=smi", nil, http.StatusOK)
	var found []models.Patient
	json.Unmarshal(data, &found)
	if len(found) != 1 || found[0].Diagnosis != "Cavity" {
		t.Errorf("search = %s", data)
	}

	today := time.Now().Format(models.DateLayout)
	book := func(date, start, end string) map[string]string {
		return map[string]string{"patient_id": patient.ID, "date": date, "start_time": start, "end_time": end}
	}
	data = s.expect(t, "POST", "/api/v1/appointments", book(today, "09:00", "10:00"), http.StatusCreated)
	var appt models.Appointment
	json.Unmarshal(data, &appt)

	data = s.expect(t, "POST", "/api/v1/appointments", book(today, "09:30", "09:45"), http.StatusConflict)
	var conflict map[string]string
	json.Unmarshal(data, &conflict)
	if conflict["error"] != "There is already an appointment scheduled at that time. Please choose another time." {
		t.Errorf("conflict body = %s", data)
	}
	s.expect(t, "POST", "/api/v1/appointments", book(today, "10:00", "11:00"), http.StatusCreated)
	s.expect(t, "POST", "/api/v1/appointments", book(today, "12:00", "11:00"), http.StatusUnprocessableEntity)
	s.expect(t, "POST", "/api/v1/appointments", map[string]string{
		"patient_id": "missing", "date": today, "start_time": "13:00", "end_time": "14:00",
	}, http.StatusUnprocessableEntity)

	move := map[string]string{"date": today, "start_time": "08:30", "end_time": "09:30"}
	s.expect(t, "PUT", "/api/v1/appointments/"+appt.ID, move, http.StatusOK)
	move["end_time"] = "10:30"
	s.expect(t, "PUT", "/api/v1/appointments/"+appt.ID, move, http.StatusConflict)
	s.expect(t, "PUT", "/api/v1/appointments/missing", map[string]string{"date": today, "start_time": "15:00", "end_time": "16:00"}, http.StatusNotFound)

	data = s.expect(t, "GET", "/api/v1/dashboard", nil, http.StatusOK)
	var dash models.Dashboard
	json.Unmarshal(data, &dash)
	if dash.PatientCount != 1 || dash.AppointmentCount != 2 || len(dash.TodaysAppointments) != 2 {
		t.Errorf("dashboard = %s", data)
	}

	data = s.expect(t, "GET", "/api/v1/events?limit=3", nil, http.StatusOK)
	var events []models.Event
	json.Unmarshal(data, &events)
	if len(events) != 3 || events[0].Type != "appointment.update" {
		t.Errorf("events = %s", data)
	}
}

func TestPictures(t *testing.T) {
	s := newTestServer(t, nil)
	s.signUpAndIn(t)

	data := s.expect(t, "POST", "/api/v1/patients", map[string]interface{}{
		"name": "Carol", "gender": "female", "age": 30,
	}, http.StatusCreated)
	var patient models.Patient
	json.Unmarshal(data, &patient)

	upload := func(filename string, content []byte) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("picture", filename)
		fw.Write(content)
		mw.Close()
		req, _ := http.NewRequest("POST", s.URL+"/api/v1/patients/"+patient.ID+"/pictures", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := s.client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		return resp
	}

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n'}
	if resp := upload("smile.png", png); resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload png = %d", resp.StatusCode)
	}
	if resp := upload("notes.txt", []byte("hi")); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("upload txt = %d, want 422", resp.StatusCode)
	}

	data = s.expect(t, "GET", "/api/v1/patients/"+patient.ID+"/pictures", nil, http.StatusOK)
	var pics []models.Picture
	json.Unmarshal(data, &pics)
	if len(pics) != 1 {
		t.Fatalf("pictures = %s", data)
	}

	resp, raw := s.do(t, "GET", "/api/v1/patients/"+patient.ID+"/pictures/"+pics[0].ID, nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" || !bytes.Equal(raw, png) {
		t.Errorf("raw picture = %d %s %v", resp.StatusCode, resp.Header.Get("Content-Type"), raw)
	}
}

func TestAuthRateLimit(t *testing.T) {
	s := newTestServer(t, NewRateLimiter(1, 2))
	creds := map[string]string{"email": "a@x.com", "password": "Secr3tPass"}
	s.expect(t, "POST", "/api/v1/auth/signin", creds, http.StatusUnauthorized)
	s.expect(t, "POST", "/api/v1/auth/signin", creds, http.StatusUnauthorized)
	s.expect(t, "POST", "/api/v1/auth/signin", creds, http.StatusTooManyRequests)
}

func TestAuthRateLimitIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t, NewRateLimiter(1, 2))
	body := []byte(`{"email":"a@x.com","password":"Secr3tPass"}`)
	for i, want := range []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests} {
		req, _ := http.NewRequest("POST", s.URL+"/api/v1/auth/signin", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))
		resp, err := s.client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("request %d with rotated forwarding headers = %d, want %d", i+1, resp.StatusCode, want)
		}
	}
}

func TestRateLimiterPrune(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	rl.get("10.0.0.1")
	rl.get("10.0.0.2")
	rl.visitors["10.0.0.1"].seen = time.Now().Add(-time.Hour)
	if n := rl.Purge(); n != 1 {
		t.Errorf("Purge() = %d, want 1", n)
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("recent visitor was pruned")
	}
}
