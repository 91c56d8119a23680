package accounts_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abdeliveries/abdeliveries/internal/app/features/accounts"
	"github.com/abdeliveries/abdeliveries/internal/app/store/audit"
	"github.com/abdeliveries/abdeliveries/internal/app/system/auditlog"
	"github.com/abdeliveries/abdeliveries/internal/app/system/authutil"
	"github.com/abdeliveries/abdeliveries/internal/app/system/limits"
	"github.com/abdeliveries/abdeliveries/internal/app/system/notifier"
	"github.com/abdeliveries/abdeliveries/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type apiEnv struct {
	router http.Handler
	store  *memStore
	logs   *observer.ObservedLogs
}

// newAPI builds the /api router over an in-memory store and a real notifier
// client pointed at notifierURL.
func newAPI(t *testing.T, notifierURL string) *apiEnv {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	hasher, err := authutil.NewHasher(4)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	store := &memStore{}
	svc := accounts.NewService(store, notifier.New(notifierURL, 2*time.Second, logger), hasher, logger)
	h := accounts.NewHandler(svc, auditlog.New(nil, logger, auditlog.Config{Auth: auditlog.ModeLog}), logger)

	r := chi.NewRouter()
	r.Mount("/api", accounts.Routes(h))
	return &apiEnv{router: r, store: store, logs: logs}
}

func (e *apiEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse response %q: %v", rec.Body.String(), err)
	}
	return out
}

func auditEvents(e *apiEnv, eventType string) int {
	n := 0
	for _, entry := range e.logs.FilterMessage("audit event").All() {
		if entry.ContextMap()["event_type"] == eventType {
			n++
		}
	}
	return n
}

var dana = map[string]string{
	"name":     "Dana Levi",
	"email":    "dana@example.com",
	"phone":    "0501234567",
	"password": "s3cret!",
}

func TestRegisterThenGetUser(t *testing.T) {
	fake := testutil.NewFakeNotifier(t, nil)
	env := newAPI(t, fake.URL())

	rec := env.do(t, "POST", "/api/register", dana)
	if rec.Code != http.StatusOK {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}
	reg := decode(t, rec)
	if reg["ok"] != true {
		t.Errorf("register ok = %v", reg["ok"])
	}
	userID, _ := reg["user_id"].(string)
	if len(userID) != 24 {
		t.Errorf("user_id = %q, want 24-char hex ObjectID", userID)
	}

	rec = env.do(t, "GET", "/api/user?phone=0501234567", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get user: status %d", rec.Code)
	}
	got := decode(t, rec)
	if got["exists"] != true || got["name"] != "Dana Levi" || got["email"] != "dana@example.com" || got["phone"] != "0501234567" {
		t.Errorf("unexpected user: %v", got)
	}
	if _, err := time.Parse(time.RFC3339Nano, got["created_at"].(string)); err != nil {
		t.Errorf("created_at %v is not ISO-8601: %v", got["created_at"], err)
	}
	if _, ok := got["password_hash"]; ok {
		t.Error("password hash must never be returned")
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(calls))
	}
	if calls[0].Path != "/chat" || calls[0].Message != "נרשמתי למערכת A.B Deliveries" || calls[0].Name != "Dana Levi" {
		t.Errorf("unexpected notifier call: %+v", calls[0])
	}
	if calls[0].RequestID == "" {
		t.Error("expected an X-Request-ID on the notifier call")
	}
	if auditEvents(env, audit.EventRegisterSuccess) != 1 {
		t.Error("expected a register_success audit event")
	}
}

func TestRegister_DuplicateLeavesCountUnchanged(t *testing.T) {
	env := newAPI(t, testutil.NewFakeNotifier(t, nil).URL())

	if rec := env.do(t, "POST", "/api/register", dana); rec.Code != http.StatusOK {
		t.Fatalf("first register: %d", rec.Code)
	}

	sameEmail := map[string]string{"name": "Other", "email": "dana@example.com", "phone": "0509999999", "password": "x"}
	samePhone := map[string]string{"name": "Other", "email": "other@example.com", "phone": "0501234567", "password": "x"}

	for _, body := range []map[string]string{sameEmail, samePhone} {
		rec := env.do(t, "POST", "/api/register", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("duplicate register: status %d, want 400", rec.Code)
		}
		if got := decode(t, rec)["detail"]; got != "User with this email/phone already exists" {
			t.Errorf("detail = %v", got)
		}
	}

	if env.store.Len() != 1 {
		t.Errorf("user count = %d, want 1", env.store.Len())
	}
	if auditEvents(env, audit.EventRegisterConflict) != 2 {
		t.Error("expected two register_conflict audit events")
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	env := newAPI(t, testutil.NewFakeNotifier(t, nil).URL())

	tests := []struct {
		name string
		body any
	}{
		{"bad email", map[string]string{"name": "A", "email": "nope", "phone": "1", "password": "x"}},
		{"missing password", map[string]string{"name": "A", "email": "a@example.com", "phone": "1"}},
		{"malformed json", `{"name": "A",`},
		{"empty body", ""},
		{"trailing data", `{"name":"A","email":"a@example.com","phone":"1","password":"x"} garbage`},
		{"two objects", `{"name":"A","email":"a@example.com","phone":"1","password":"x"}{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "POST", "/api/register", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rec.Code)
			}
			if d, _ := decode(t, rec)["detail"].(string); d == "" {
				t.Error("expected a detail message")
			}
		})
	}
	if env.store.Len() != 0 {
		t.Errorf("invalid registrations must not insert, count = %d", env.store.Len())
	}
}

func TestLogin_Outcomes(t *testing.T) {
	env := newAPI(t, testutil.NewFakeNotifier(t, nil).URL())
	if rec := env.do(t, "POST", "/api/register", dana); rec.Code != http.StatusOK {
		t.Fatalf("register: %d", rec.Code)
	}

	rec := env.do(t, "POST", "/api/login", map[string]string{"email": "dana@example.com", "password": "s3cret!"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d, body %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if msg, _ := out["message"].(string); !strings.Contains(msg, "Dana Levi") {
		t.Errorf("message %q should contain the user's name", msg)
	}
	if out["phone"] != "0501234567" || out["email"] != "dana@example.com" {
		t.Errorf("unexpected login body: %v", out)
	}
	if _, ok := out["user_id"]; ok {
		t.Error("login body should not carry user_id")
	}

	unknown := env.do(t, "POST", "/api/login", map[string]string{"email": "ghost@example.com", "password": "s3cret!"})
	wrong := env.do(t, "POST", "/api/login", map[string]string{"email": "dana@example.com", "password": "nope"})

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", unknown.Code, wrong.Code)
	}
	du, dw := decode(t, unknown)["detail"], decode(t, wrong)["detail"]
	if du != "Email not found" || dw != "Incorrect password" {
		t.Errorf("details = %q/%q", du, dw)
	}

	if auditEvents(env, audit.EventLoginSuccess) != 1 ||
		auditEvents(env, audit.EventLoginFailedUserNotFound) != 1 ||
		auditEvents(env, audit.EventLoginFailedWrongPassword) != 1 {
		t.Error("expected one audit event per login outcome")
	}
	for _, entry := range env.logs.All() {
		for k, v := range entry.ContextMap() {
			if s, ok := v.(string); ok && strings.Contains(s, "s3cret!") {
				t.Errorf("password leaked into log field %q", k)
			}
		}
	}
}

func TestGetUser_MissAndMissingPhone(t *testing.T) {
	env := newAPI(t, testutil.NewFakeNotifier(t, nil).URL())

	rec := env.do(t, "GET", "/api/user?phone=0000", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"exists":false}` {
		t.Errorf("body = %s, want {\"exists\":false}", got)
	}

	rec = env.do(t, "GET", "/api/user", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("missing phone: status = %d, want 422", rec.Code)
	}
	if got := decode(t, rec)["detail"]; got != "Missing phone parameter" {
		t.Errorf("detail = %v", got)
	}
}

func TestUnreachableNotifier(t *testing.T) {
	env := newAPI(t, testutil.UnreachableURL(t))

	rec := env.do(t, "POST", "/api/register", dana)
	if rec.Code != http.StatusOK {
		t.Fatalf("register should succeed without the notifier, got %d", rec.Code)
	}

	rec = env.do(t, "POST", "/api/login", map[string]string{"email": "dana@example.com", "password": "s3cret!"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login should succeed without the notifier, got %d", rec.Code)
	}
	if msg, _ := decode(t, rec)["message"].(string); !strings.Contains(msg, "(Node not responding: ") {
		t.Errorf("message %q should note the notifier failure", msg)
	}

	rec = env.do(t, "POST", "/api/register-toast", map[string]string{"name": "Dana", "email": "dana@example.com", "phone": "0501"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("register-toast: status %d, want 500", rec.Code)
	}
	if d, _ := decode(t, rec)["detail"].(string); !strings.HasPrefix(d, "Register toast failed: ") {
		t.Errorf("detail = %q", d)
	}
}

func TestRegisterToast_HTTP(t *testing.T) {
	fake := testutil.NewFakeNotifier(t, map[string]string{"reply": "ברוכה הבאה דנה!"})
	env := newAPI(t, fake.URL())
	body := map[string]string{"name": "Dana", "email": "dana@example.com", "phone": "0501"}

	rec := env.do(t, "POST", "/api/register-toast", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	out := decode(t, rec)
	if out["ok"] != true || out["toast"] != "ברוכה הבאה דנה!" {
		t.Errorf("unexpected body: %v", out)
	}
	if calls := fake.Calls(); len(calls) != 1 || calls[0].Path != "/register-toast" {
		t.Errorf("unexpected notifier calls: %+v", calls)
	}
	if env.store.Len() != 0 {
		t.Error("register-toast must not create users")
	}

	fake.SetStatus(http.StatusBadGateway)
	rec = env.do(t, "POST", "/api/register-toast", body)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("non-2xx notifier: status %d, want 500", rec.Code)
	}
}

func TestRegisterToast_EmptyReplyUsesDefault(t *testing.T) {
	fake := testutil.NewFakeNotifier(t, map[string]string{})
	env := newAPI(t, fake.URL())

	rec := env.do(t, "POST", "/api/register-toast", map[string]string{"name": "Dana", "email": "dana@example.com", "phone": "0501"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if got := decode(t, rec)["toast"]; got != "ברוך הבא למערכת A.B Deliveries 🚚" {
		t.Errorf("toast = %v", got)
	}
}

func TestRegister_OversizedBody(t *testing.T) {
	env := newAPI(t, testutil.NewFakeNotifier(t, nil).URL())

	huge := `{"name":"` + strings.Repeat("a", limits.MaxAPIBodySize) + `","email":"a@example.com","phone":"1","password":"x"}`
	rec := env.do(t, "POST", "/api/register", huge)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for an oversized body", rec.Code)
	}
	if env.store.Len() != 0 {
		t.Error("oversized body must not create a user")
	}
}

func TestRegister_TrailingDataRejected(t *testing.T) {
	env := newAPI(t, testutil.NewFakeNotifier(t, nil).URL())

	rec := env.do(t, "POST", "/api/register",
		`{"name":"Dana Levi","email":"dana@example.com","phone":"0501234567","password":"s3cret!"} trailing`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if got := decode(t, rec)["detail"]; got != "invalid JSON body" {
		t.Errorf("detail = %v", got)
	}
	if env.store.Len() != 0 {
		t.Error("a body with trailing data must not create a user")
	}

	// Trailing whitespace after the value is still a single value.
	rec = env.do(t, "POST", "/api/register",
		"{\"name\":\"Dana Levi\",\"email\":\"dana@example.com\",\"phone\":\"0501234567\",\"password\":\"s3cret!\"}\n\t ")
	if rec.Code != http.StatusOK {
		t.Errorf("trailing whitespace: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegister_PasswordTooLong(t *testing.T) {
	env := newAPI(t, testutil.NewFakeNotifier(t, nil).URL())

	body := map[string]string{
		"name":     "Dana Levi",
		"email":    "dana@example.com",
		"phone":    "0501234567",
		"password": strings.Repeat("a", authutil.MaxPasswordBytes+1),
	}
	rec := env.do(t, "POST", "/api/register", body)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["detail"]; got != accounts.MsgPasswordTooLong {
		t.Errorf("detail = %v", got)
	}
	if env.store.Len() != 0 {
		t.Error("an over-long password must not create a user")
	}
}

func TestGetUser_HitWithoutCreatedAt(t *testing.T) {
	env := newAPI(t, testutil.NewFakeNotifier(t, nil).URL())
	if rec := env.do(t, "POST", "/api/register", dana); rec.Code != http.StatusOK {
		t.Fatalf("register: %d", rec.Code)
	}
	env.store.noCreatedAt = true

	rec := env.do(t, "GET", "/api/user?phone=0501234567", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	got := decode(t, rec)
	for _, key := range []string{"exists", "name", "email", "phone", "created_at"} {
		if _, ok := got[key]; !ok {
			t.Errorf("hit body is missing %q: %s", key, rec.Body.String())
		}
	}
	if got["created_at"] != "" {
		t.Errorf("created_at = %v, want empty string", got["created_at"])
	}
}
