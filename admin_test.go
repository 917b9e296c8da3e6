package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, r http.Handler) *http.Cookie {
	t.Helper()
	w := postForm(r, "/admin/login", nil, url.Values{"username": {"admin"}, "password": {"secret"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/certificates", w.Header().Get("Location"))
	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookie {
			return c
		}
	}
	t.Fatal("login did not set the admin cookie")
	return nil
}

func postForm(r http.Handler, path string, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return serve(r, req)
}

func htmx(r http.Handler, method, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(cookie)
	return serve(r, req)
}

func certForm(title, date, category string) url.Values {
	return url.Values{
		"title":       {title},
		"issuer":      {"CompTIA"},
		"date_issued": {date},
		"category":    {category},
	}
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	w := postForm(a.router(), "/admin/login", nil, url.Values{"username": {"admin"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
	assert.Empty(t, w.Result().Cookies())
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	r := a.router()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/certificates", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))

	w = htmx(r, http.MethodGet, "/admin/certificates/list", &http.Cookie{Name: adminCookie, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("HX-Redirect"))
}

func TestAdminLogoutEndsSession(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)

	req := httptest.NewRequest(http.MethodGet, "/admin/logout", nil)
	req.AddCookie(cookie)
	w := serve(r, req)
	assert.Equal(t, http.StatusFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/certificates", nil)
	req.AddCookie(cookie)
	w = serve(r, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login", w.Header().Get("Location"))
}

func TestAdminPageDefersList(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)

	req := httptest.NewRequest(http.MethodGet, "/admin/certificates", nil)
	req.AddCookie(cookie)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Certificate Management")
	assert.Contains(t, w.Body.String(), "Loading certificates...")
	assert.Contains(t, w.Body.String(), "Add New Certificate")

	w = htmx(r, http.MethodGet, "/admin/certificates/list", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No certificates found. Add your first certificate above!")
}

func TestAdminCreateResetsForm(t *testing.T) {
	a, tbl := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)

	w := postForm(r, "/admin/certificates", cookie, certForm("Network Security", "2022-07-01", "Security"))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Certificate added successfully")
	assert.Contains(t, body, "Network Security")
	assert.Contains(t, body, "text-red-300 border-red-500/30")
	assert.Contains(t, body, `name="title" value=""`)

	records, err := tbl.Select(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CompTIA", records[0].Issuer)
	assert.Empty(t, records[0].CertificateURL)
}

func TestAdminInvalidFormKeepsInput(t *testing.T) {
	a, tbl := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)

	w := postForm(r, "/admin/certificates", cookie, url.Values{"title": {"Partial"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "are required")
	assert.Contains(t, w.Body.String(), `value="Partial"`)

	records, err := tbl.Select(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAdminEditUpdateAndCancel(t *testing.T) {
	a, tbl := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)
	rec := insert(t, tbl, "Old Title", "Cloud", "2020-01-01")

	w := htmx(r, http.MethodGet, "/admin/certificates/"+rec.ID+"/edit", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Edit Certificate")
	assert.Contains(t, w.Body.String(), "Update Certificate")
	assert.Contains(t, w.Body.String(), `value="Old Title"`)
	assert.Contains(t, w.Body.String(), `value="2020-01-01"`)

	w = postForm(r, "/admin/certificates/cancel", cookie, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Add New Certificate")

	htmx(r, http.MethodGet, "/admin/certificates/"+rec.ID+"/edit", cookie)
	w = postForm(r, "/admin/certificates", cookie, certForm("New Title", "2021-02-02", "Database"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Certificate updated successfully")
	assert.Contains(t, w.Body.String(), "Add New Certificate")

	records, err := tbl.Select(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, "New Title", records[0].Title)
	assert.Equal(t, "2021-02-02", records[0].DateIssued.String())
}

func TestAdminEditUnknownID(t *testing.T) {
	a, _ := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)

	w := htmx(r, http.MethodGet, "/admin/certificates/missing/edit", cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Certificate not found")
	assert.Contains(t, w.Body.String(), "Add New Certificate")

	req := httptest.NewRequest(http.MethodGet, "/admin/certificates/missing/edit", nil)
	req.AddCookie(cookie)
	w = serve(r, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Certificate not found")
}

func TestAdminDeleteNeedsConfirmation(t *testing.T) {
	a, tbl := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)
	rec := insert(t, tbl, "Doomed", "AI", "2023-03-03")

	w := htmx(r, http.MethodDelete, "/admin/certificates/"+rec.ID, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Certificate deleted successfully")
	records, err := tbl.Select(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	w = htmx(r, http.MethodDelete, "/admin/certificates/"+rec.ID+"?confirm=yes", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Certificate deleted successfully")
	assert.Contains(t, w.Body.String(), "No certificates found.")
	records, err = tbl.Select(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	w = htmx(r, http.MethodDelete, "/admin/certificates/"+rec.ID+"?confirm=yes", cookie)
	assert.Contains(t, w.Body.String(), "Failed to delete certificate")
}

// htmx sends hx-vals of a DELETE as a form body, which net/http leaves
// unparsed for that method.
func TestAdminDeleteConfirmedInFormBody(t *testing.T) {
	a, tbl := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)
	rec := insert(t, tbl, "Doomed", "AI", "2023-03-03")

	req := httptest.NewRequest(http.MethodDelete, "/admin/certificates/"+rec.ID, strings.NewReader("confirm=yes"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.AddCookie(cookie)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Certificate deleted successfully")

	records, err := tbl.Select(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

// The delete button on each card must carry what the handler reads as a
// confirmation.
func TestAdminCardDeleteButtonConfirms(t *testing.T) {
	a, tbl := newTestApp(t, testConfig())
	r := a.router()
	cookie := login(t, r)
	rec := insert(t, tbl, "Doomed", "AI", "2023-03-03")

	w := htmx(r, http.MethodGet, "/admin/certificates/list", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `hx-delete="/admin/certificates/`+rec.ID+`"`)
	assert.Contains(t, body, `hx-headers='{"X-Confirm": "yes"}'`)

	req := httptest.NewRequest(http.MethodDelete, "/admin/certificates/"+rec.ID, nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("X-Confirm", "yes")
	req.AddCookie(cookie)
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Certificate deleted successfully")

	records, err := tbl.Select(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAdminSessionsDoNotShareEditor(t *testing.T) {
	a, tbl := newTestApp(t, testConfig())
	r := a.router()
	first := login(t, r)
	second := login(t, r)
	rec := insert(t, tbl, "Shared", "Security", "2022-01-01")

	w := htmx(r, http.MethodGet, "/admin/certificates/"+rec.ID+"/edit", first)
	require.Contains(t, w.Body.String(), "Edit Certificate")

	req := httptest.NewRequest(http.MethodGet, "/admin/certificates", nil)
	req.AddCookie(second)
	w = serve(r, req)
	assert.Contains(t, w.Body.String(), "Add New Certificate")
	assert.NotContains(t, w.Body.String(), "Edit Certificate")
}

func TestRequestConfirmer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := map[string]bool{
		"/?confirm=yes":  true,
		"/?confirm=true": true,
		"/?confirm=no":   false,
		"/":              false,
	}
	for target, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodDelete, target, nil)
		assert.Equal(t, want, requestConfirmer(c).Confirm(context.Background(), "sure?"), target)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodDelete, "/", nil)
	c.Request.Header.Set("X-Confirm", "yes")
	assert.True(t, requestConfirmer(c).Confirm(context.Background(), "sure?"))

	bodies := map[string]bool{
		"confirm=yes": true,
		"confirm=no":  false,
		"other=yes":   false,
	}
	for body, want := range bodies {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodDelete, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		assert.Equal(t, want, requestConfirmer(c).Confirm(context.Background(), "sure?"), body)
	}

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodDelete, "/", strings.NewReader("confirm=yes"))
	c.Request.Header.Set("Content-Type", "text/plain")
	assert.False(t, requestConfirmer(c).Confirm(context.Background(), "sure?"))
}
