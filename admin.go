// admin.go - certificate admin with per-session editor state
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Zachkp/portfolio/internal/certificate"
	"github.com/Zachkp/portfolio/internal/editor"
	"github.com/Zachkp/portfolio/internal/notify"
	"github.com/Zachkp/portfolio/internal/store"
)

const (
	adminCookie  = "admin_token"
	sessionTTL   = 24 * time.Hour
	workspaceKey = "workspace"
)

// workspace is the state one admin session edits against: its own
// snapshot, form and pending toasts.
type workspace struct {
	store  *store.Store
	editor *editor.Editor
	toasts *notify.Queue
}

type adminSession struct {
	token   string
	expires time.Time
	ws      *workspace
}

type adminSessions struct {
	mu       sync.Mutex
	sessions []*adminSession
}

func newAdminSessions() *adminSessions {
	return &adminSessions{}
}

func (s *adminSessions) open(ws *workspace) string {
	token := generateAdminToken()
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.sessions[:0]
	for _, sess := range s.sessions {
		if now.Before(sess.expires) {
			live = append(live, sess)
		}
	}
	s.sessions = append(live, &adminSession{token: token, expires: now.Add(sessionTTL), ws: ws})
	return token
}

func (s *adminSessions) lookup(token string) (*workspace, bool) {
	if token == "" {
		return nil, false
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if subtle.ConstantTimeCompare([]byte(token), []byte(sess.token)) == 1 && now.Before(sess.expires) {
			return sess.ws, true
		}
	}
	return nil, false
}

func (s *adminSessions) close(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sess := range s.sessions {
		if subtle.ConstantTimeCompare([]byte(token), []byte(sess.token)) == 1 {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return
		}
	}
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate admin token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

// Hash IP address for privacy compliance (consistent per IP)
func (a *app) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + a.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16]
}

func (a *app) newWorkspace() *workspace {
	toasts := &notify.Queue{}
	sink := notify.Multi{toasts, notify.Log{Logger: a.logger}}
	s := a.newStore(sink, false)
	return &workspace{
		store:  s,
		editor: editor.New(s, sink),
		toasts: toasts,
	}
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

// Middleware to check admin authentication
func (a *app) adminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(adminCookie)
		ws, ok := a.admins.lookup(token)
		if !ok {
			if isHTMX(c) {
				c.Header("HX-Redirect", "/admin/login")
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

func workspaceOf(c *gin.Context) *workspace {
	return c.MustGet(workspaceKey).(*workspace)
}

// requestConfirmer answers the delete prompt from the request. The page
// asks the question in the browser and sends X-Confirm: yes when accepted;
// a confirm=yes query or form field is accepted too.
func requestConfirmer(c *gin.Context) store.Confirmer {
	return store.ConfirmFunc(func(context.Context, string) bool {
		answer := c.GetHeader("X-Confirm")
		if answer == "" {
			answer = c.Query("confirm")
		}
		if answer == "" {
			answer = formBodyValue(c, "confirm")
		}
		return answer == "yes" || answer == "true"
	})
}

// formBodyValue reads key from a form-encoded body whatever the method.
// net/http only parses bodies of POST, PUT and PATCH, and htmx sends the
// parameters of a DELETE in the body.
func formBodyValue(c *gin.Context, key string) string {
	if c.Request.Body == nil || c.ContentType() != binding.MIMEPOSTForm {
		return ""
	}
	data, err := c.GetRawData()
	if err != nil {
		return ""
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return ""
	}
	return values.Get(key)
}

type editorView struct {
	Form      editor.Form
	EditingID string
	Editing   bool
	Records   []certificate.Record
	Deferred  bool
	Error     string
	Toasts    []notify.Notification
}

// renderEditor renders the editor for ws. HTMX requests get the editor
// fragment, everything else the full page. Toasts are drained last so
// they include anything raised while handling the request.
func (a *app) renderEditor(c *gin.Context, status int, ws *workspace, deferred bool, errMsg string) {
	id, editing := ws.editor.EditingID()
	view := editorView{
		Form:      ws.editor.Form(),
		EditingID: id,
		Editing:   editing,
		Records:   ws.store.Snapshot(),
		Deferred:  deferred,
		Error:     errMsg,
	}
	view.Toasts = ws.toasts.Drain()

	name := "admin-certificates.html"
	if isHTMX(c) {
		name = "certificate-editor"
		// htmx does not swap error responses
		status = http.StatusOK
	}
	c.HTML(status, name, view)
}

// Setup all admin routes
func (a *app) setupAdminRoutes(r *gin.Engine) {
	// Admin login page
	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	// Admin login handler
	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.cfg.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.cfg.AdminPassword)) == 1
		if !userOK || !passOK {
			a.logger.Warn("Failed admin login attempt", "client", a.hashIP(c.ClientIP()))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}

		token := a.admins.open(a.newWorkspace())
		c.SetCookie(adminCookie, token, int(sessionTTL/time.Second), "/admin", "", false, true)
		a.logger.Info("Admin login successful", "client", a.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/certificates")
	})

	// Admin logout
	r.GET("/admin/logout", func(c *gin.Context) {
		if token, err := c.Cookie(adminCookie); err == nil {
			a.admins.close(token)
		}
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		a.logger.Info("Admin logout", "client", a.hashIP(c.ClientIP()))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin")
	adminGroup.Use(a.adminAuthMiddleware())

	adminGroup.GET("", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin/certificates")
	})

	// Editor page; the list is fetched by HTMX after the page renders
	adminGroup.GET("/certificates", func(c *gin.Context) {
		a.renderEditor(c, http.StatusOK, workspaceOf(c), true, "")
	})

	adminGroup.GET("/certificates/list", func(c *gin.Context) {
		ws := workspaceOf(c)
		ws.store.Load(c.Request.Context())
		c.HTML(http.StatusOK, "admin-certificate-list", editorView{
			Records: ws.store.Snapshot(),
			Toasts:  ws.toasts.Drain(),
		})
	})

	adminGroup.POST("/certificates", func(c *gin.Context) {
		ws := workspaceOf(c)
		var form editor.Form
		if err := c.ShouldBind(&form); err != nil {
			ws.editor.SetForm(form)
			a.renderEditor(c, http.StatusBadRequest, ws, false,
				"Title, issuer, date issued and category are required, and the certificate URL must be a valid URL.")
			return
		}
		ws.editor.SetForm(form)

		res := ws.editor.Submit(c.Request.Context())
		a.logger.Info("Certificate submitted by admin", "outcome", res.Outcome.String(), "client", a.hashIP(c.ClientIP()))
		a.renderEditor(c, http.StatusOK, ws, false, "")
	})

	adminGroup.GET("/certificates/:id/edit", func(c *gin.Context) {
		ws := workspaceOf(c)
		id := c.Param("id")
		rec, ok := ws.store.Find(id)
		if !ok {
			ws.store.Load(c.Request.Context())
			rec, ok = ws.store.Find(id)
		}
		if !ok {
			if isHTMX(c) {
				ws.toasts.Notify(notify.Notification{
					Title:       "Error",
					Description: "Certificate not found",
					Severity:    notify.SeverityDestructive,
				})
				a.renderEditor(c, http.StatusNotFound, ws, false, "")
				return
			}
			c.HTML(http.StatusNotFound, "admin-error.html", gin.H{
				"error": "Certificate not found",
			})
			return
		}
		ws.editor.BeginEdit(rec)
		a.renderEditor(c, http.StatusOK, ws, false, "")
	})

	adminGroup.POST("/certificates/cancel", func(c *gin.Context) {
		ws := workspaceOf(c)
		ws.editor.CancelEdit()
		a.renderEditor(c, http.StatusOK, ws, false, "")
	})

	// Delete certificate (with confirmation)
	adminGroup.DELETE("/certificates/:id", func(c *gin.Context) {
		ws := workspaceOf(c)
		id := c.Param("id")
		res := ws.store.Delete(c.Request.Context(), id, requestConfirmer(c))
		if res.Outcome != store.Declined {
			a.logger.Info("Certificate delete by admin", "id", id, "outcome", res.Outcome.String(), "client", a.hashIP(c.ClientIP()))
		}
		a.renderEditor(c, http.StatusOK, ws, false, "")
	})
}
