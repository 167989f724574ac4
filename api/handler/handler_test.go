package handler_test

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/staff-portal/api/handler"
	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/internal/catalog"
	"github.com/fastygo/staff-portal/internal/infrastructure/monitor"
	"github.com/fastygo/staff-portal/internal/middleware"
	"github.com/fastygo/staff-portal/internal/router"
	"github.com/fastygo/staff-portal/pkg/httpcontext"
	"github.com/fastygo/staff-portal/pkg/token"
	boltRepo "github.com/fastygo/staff-portal/repository/bolt"
	authUC "github.com/fastygo/staff-portal/usecase/auth"
	portalUC "github.com/fastygo/staff-portal/usecase/portal"
	profileUC "github.com/fastygo/staff-portal/usecase/profile"
)

const cookieName = "staff_session"

type memoryDirectory struct {
	mu        sync.Mutex
	employees map[string]domain.Employee
}

func (d *memoryDirectory) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.employees[id]
	if !ok {
		return nil, domain.ErrEmployeeNotFound
	}
	return &e, nil
}

func (d *memoryDirectory) Upsert(_ context.Context, e *domain.Employee) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.employees[e.ID] = *e
	return nil
}

type staticStatus monitor.Status

func (s staticStatus) GetStatus() monitor.Status { return monitor.Status(s) }

type harness struct {
	handler   fasthttp.RequestHandler
	sessions  *boltRepo.SessionStore
	directory *memoryDirectory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sessions, err := boltRepo.OpenSessionStore(filepath.Join(t.TempDir(), "sessions.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	directory := &memoryDirectory{employees: map[string]domain.Employee{}}
	adapter := httpcontext.NewAdapter(time.Second)
	cookies := middleware.NewSessionCookies(cookieName, false, token.NewSigner("test-secret", "staff-portal"))
	policy := access.NewPolicy(access.DefaultPages)

	auth := authUC.New(sessions, profileUC.New(directory, nil, nil), nil)
	portal := portalUC.New(policy, catalog.MustLoad(), nil)

	r := router.New(router.Handlers{
		Auth:   apiHandler.NewAuthHandler(auth, cookies, adapter, nil),
		Portal: apiHandler.NewPortalHandler(portal, adapter, nil),
		Health: apiHandler.NewHealthHandler(staticStatus{Online: true, Components: map[string]bool{"redis": true}}, adapter, nil),
	}, middleware.NewGate(auth, policy, cookies, adapter, nil))

	return &harness{handler: r.Handler, sessions: sessions, directory: directory}
}

type request struct {
	method string
	uri    string
	json   interface{}
	form   url.Values
	accept string
	cookie string
	bearer string
	auth   string
}

func (h *harness) do(t *testing.T, r request) *fasthttp.RequestCtx {
	t.Helper()
	var req fasthttp.Request
	req.Header.SetMethod(r.method)
	req.SetRequestURI(r.uri)
	switch {
	case r.json != nil:
		body, err := json.Marshal(r.json)
		require.NoError(t, err)
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	case r.form != nil:
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBodyString(r.form.Encode())
	}
	if r.accept != "" {
		req.Header.Set(fasthttp.HeaderAccept, r.accept)
	}
	if r.cookie != "" {
		req.Header.SetCookie(cookieName, r.cookie)
	}
	if r.bearer != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+r.bearer)
	}
	if r.auth != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, r.auth)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	h.handler(ctx)
	return ctx
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  interface{}     `json:"error"`
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env), string(ctx.Response.Body()))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func responseCookie(ctx *fasthttp.RequestCtx) (string, bool) {
	c := fasthttp.AcquireCookie()
	defer fasthttp.ReleaseCookie(c)
	c.SetKey(cookieName)
	if !ctx.Response.Header.Cookie(c) {
		return "", false
	}
	return string(c.Value()), true
}

func location(ctx *fasthttp.RequestCtx) string {
	return string(ctx.Response.Header.Peek(fasthttp.HeaderLocation))
}

type flow struct {
	Next       string `json:"next"`
	State      string `json:"state"`
	Role       string `json:"role"`
	EmployeeID string `json:"employee_id"`
	Restricted bool   `json:"restricted"`
	Token      string `json:"token"`
}

type pageView struct {
	Page       string   `json:"page"`
	Title      string   `json:"title"`
	Restricted bool     `json:"restricted"`
	Hidden     []string `json:"hidden"`
	Sections   []struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	} `json:"sections"`
}

func TestAnonymousVisitorIsRedirectedToLogin(t *testing.T) {
	h := newHarness(t)

	ctx := h.do(t, request{method: "GET", uri: "/portal/hr-dashboard", accept: "text/html"})
	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	assert.Equal(t, "/login", location(ctx))

	ctx = h.do(t, request{method: "GET", uri: "/portal/hr-dashboard", accept: "application/json"})
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Equal(t, "UNAUTHORIZED", decode(t, ctx, nil).Code)
}

func TestExecutiveLoginLandsOnDashboard(t *testing.T) {
	h := newHarness(t)

	ctx := h.do(t, request{method: "POST", uri: "/login", json: map[string]string{
		"employee_id": "C001", "pin": "9999", "role": "ceo",
	}})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))

	var res flow
	decode(t, ctx, &res)
	assert.Equal(t, "/portal/ceo-dashboard", res.Next)
	assert.Equal(t, "admitted", res.State)
	assert.False(t, res.Restricted)

	cookie, ok := responseCookie(ctx)
	require.True(t, ok)
	assert.Equal(t, res.Token, cookie)

	ctx = h.do(t, request{method: "GET", uri: res.Next, cookie: cookie})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var page pageView
	decode(t, ctx, &page)
	assert.Equal(t, "CEO Dashboard", page.Title)
	assert.False(t, page.Restricted)

	ctx = h.do(t, request{method: "GET", uri: "/portal/facilities", cookie: cookie})
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = h.do(t, request{method: "GET", uri: "/portal/hr-dashboard", cookie: cookie})
	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
	ctx = h.do(t, request{method: "GET", uri: "/portal/hr-dashboard", cookie: cookie, accept: "application/json"})
	assert.Equal(t, fasthttp.StatusForbidden, ctx.Response.StatusCode())
}

func TestEmployeeFormLoginAndSkip(t *testing.T) {
	h := newHarness(t)

	ctx := h.do(t, request{method: "POST", uri: "/login", form: url.Values{
		"employee_id": {"emp001"},
		"pin":         {"1234"},
		"role":        {"employee"},
		"department":  {"Engineering"},
		"manager":     {"Sarah Chen"},
	}})
	require.Equal(t, fasthttp.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/profile-setup", location(ctx))
	cookie, ok := responseCookie(ctx)
	require.True(t, ok)

	ctx = h.do(t, request{method: "GET", uri: "/portal/employee-dashboard", cookie: cookie})
	assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode(), "pending record must not pass the gate")

	ctx = h.do(t, request{method: "GET", uri: "/profile-setup", cookie: cookie})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var pending map[string]string
	decode(t, ctx, &pending)
	assert.Equal(t, "EMP001", pending["employee_id"])
	assert.Equal(t, "Sarah Chen", pending["manager"])

	ctx = h.do(t, request{method: "POST", uri: "/profile-setup/skip", form: url.Values{}, cookie: cookie})
	require.Equal(t, fasthttp.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/portal/employee-dashboard?restricted=true", location(ctx))
	cookie, ok = responseCookie(ctx)
	require.True(t, ok)

	ctx = h.do(t, request{method: "GET", uri: "/portal/employee-dashboard?restricted=true", cookie: cookie})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var page pageView
	decode(t, ctx, &page)
	assert.True(t, page.Restricted)
	assert.Equal(t, []string{"benefits"}, page.Hidden)

	var session struct {
		Authenticated     bool   `json:"authenticated"`
		Role              string `json:"role"`
		ProfileIncomplete bool   `json:"profile_incomplete"`
		ProfileSkipTime   int64  `json:"profile_skip_time"`
		Landing           string `json:"landing"`
	}
	ctx = h.do(t, request{method: "GET", uri: "/api/v1/session", cookie: cookie})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	decode(t, ctx, &session)
	assert.True(t, session.Authenticated)
	assert.Equal(t, "employee", session.Role)
	assert.True(t, session.ProfileIncomplete)
	assert.NotZero(t, session.ProfileSkipTime)
	assert.Equal(t, "/portal/employee-dashboard?restricted=true", session.Landing)
}

func TestHRWithoutDepartmentIsRejected(t *testing.T) {
	h := newHarness(t)

	ctx := h.do(t, request{method: "POST", uri: "/login", form: url.Values{
		"employee_id": {"H100"},
		"pin":         {"1111"},
		"role":        {"hr"},
		"manager":     {"Dana Scully"},
	}})
	assert.Equal(t, fasthttp.StatusSeeOther, ctx.Response.StatusCode())
	assert.Equal(t, "/login?error=Please+select+your+department", location(ctx))
	_, ok := responseCookie(ctx)
	assert.False(t, ok)

	ctx = h.do(t, request{method: "POST", uri: "/login", json: map[string]string{
		"employee_id": "H100", "pin": "1111", "role": "hr", "manager": "Dana Scully",
	}})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	env := decode(t, ctx, nil)
	assert.Equal(t, "INVALID", env.Code)
	assert.Equal(t, "Please select your department", env.Error)
}

func TestCompleteProfileWritesDirectory(t *testing.T) {
	h := newHarness(t)

	ctx := h.do(t, request{method: "POST", uri: "/login", json: map[string]string{
		"employee_id": "M7", "pin": "7", "role": "manager", "department": "Sales", "manager": "Lee",
	}})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var res flow
	decode(t, ctx, &res)
	assert.Equal(t, "/profile-setup", res.Next)
	assert.Equal(t, "pending", res.State)

	ctx = h.do(t, request{method: "POST", uri: "/profile-setup", bearer: res.Token, json: map[string]string{
		"full_name": "Morgan Reyes", "email": "morgan@example.com",
	}})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), string(ctx.Response.Body()))
	decode(t, ctx, &res)
	assert.Equal(t, "/portal/manager-dashboard", res.Next)
	assert.Equal(t, "admitted", res.State)

	employee, err := h.directory.GetByID(context.Background(), "M7")
	require.NoError(t, err)
	assert.Equal(t, "Morgan Reyes", employee.FullName)
	assert.True(t, employee.ProfileComplete)

	ctx = h.do(t, request{method: "POST", uri: "/profile-setup/skip", bearer: res.Token, accept: "application/json"})
	assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
}

func TestLogoutIsIdempotent(t *testing.T) {
	h := newHarness(t)

	ctx := h.do(t, request{method: "POST", uri: "/login", json: map[string]string{"employee_id": "O1", "pin": "1", "role": "coo"}})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	cookie, _ := responseCookie(ctx)

	for i := 0; i < 3; i++ {
		ctx = h.do(t, request{method: "POST", uri: "/logout", cookie: cookie})
		assert.Equal(t, fasthttp.StatusSeeOther, ctx.Response.StatusCode())
		assert.Equal(t, "/login", location(ctx))

		ctx = h.do(t, request{method: "GET", uri: "/portal/coo-dashboard", cookie: cookie})
		assert.Equal(t, fasthttp.StatusFound, ctx.Response.StatusCode())
		assert.Equal(t, "/login", location(ctx))
	}

	ctx = h.do(t, request{method: "POST", uri: "/logout", accept: "application/json"})
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestTamperedTokenIsAnonymous(t *testing.T) {
	h := newHarness(t)
	other := token.NewSigner("other-secret", "staff-portal")
	forged, err := other.Issue("whatever", time.Now())
	require.NoError(t, err)

	ctx := h.do(t, request{method: "GET", uri: "/api/v1/session", bearer: forged, accept: "application/json"})
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestProxyBasicAuthKeepsCookieSession(t *testing.T) {
	h := newHarness(t)
	ctx := h.do(t, request{method: "POST", uri: "/login", json: map[string]string{"employee_id": "C1", "pin": "1", "role": "coo"}})
	cookie, ok := responseCookie(ctx)
	require.True(t, ok)

	ctx = h.do(t, request{method: "GET", uri: "/portal/coo-dashboard", cookie: cookie, auth: "Basic dXNlcjpwYXNz"})
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestUnknownPage(t *testing.T) {
	h := newHarness(t)
	ctx := h.do(t, request{method: "POST", uri: "/login", json: map[string]string{"employee_id": "C1", "pin": "1", "role": "cfo"}})
	cookie, _ := responseCookie(ctx)

	ctx = h.do(t, request{method: "GET", uri: "/portal/payroll", cookie: cookie})
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestLoginForm(t *testing.T) {
	h := newHarness(t)

	ctx := h.do(t, request{method: "GET", uri: "/login?error=Please+enter+your+PIN"})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var form struct {
		Roles []struct {
			Value     string `json:"value"`
			Label     string `json:"label"`
			Executive bool   `json:"executive"`
		} `json:"roles"`
		Departments  []string `json:"departments"`
		PINMaxLength int      `json:"pin_max_length"`
		Error        string   `json:"error"`
	}
	decode(t, ctx, &form)
	require.Len(t, form.Roles, 7)
	assert.Equal(t, "Employee", form.Roles[0].Label)
	assert.Equal(t, "HR", form.Roles[2].Label)
	assert.Equal(t, "CFO", form.Roles[3].Label)
	assert.True(t, form.Roles[3].Executive)
	assert.Contains(t, form.Departments, "Engineering")
	assert.Equal(t, 6, form.PINMaxLength)
	assert.Equal(t, "Please enter your PIN", form.Error)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	ctx := h.do(t, request{method: "GET", uri: "/health"})
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}
