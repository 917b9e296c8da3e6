// rest.go - REST API over the certificates table
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Zachkp/portfolio/internal/apikey"
	"github.com/Zachkp/portfolio/internal/certificate"
	"github.com/Zachkp/portfolio/internal/table"
	"github.com/Zachkp/portfolio/internal/table/resttable"
)

const roleKey = "apikey_role"

var errDateRequired = errors.New("date_issued is required")

// certificateInput is the request body of POST and PATCH.
type certificateInput struct {
	Title          string           `json:"title" binding:"required"`
	Issuer         string           `json:"issuer" binding:"required"`
	DateIssued     certificate.Date `json:"date_issued"`
	Category       string           `json:"category" binding:"required"`
	CertificateURL string           `json:"certificate_url" binding:"omitempty,url"`
}

func (in *certificateInput) validate() error {
	if err := binding.Validator.ValidateStruct(in); err != nil {
		return err
	}
	if in.DateIssued.IsZero() {
		return errDateRequired
	}
	return nil
}

func (in certificateInput) fields() certificate.Fields {
	return certificate.Fields{
		Title:          in.Title,
		Issuer:         in.Issuer,
		DateIssued:     in.DateIssued,
		Category:       in.Category,
		CertificateURL: in.CertificateURL,
	}
}

func (a *app) setupTableRoutes(r *gin.Engine) {
	if a.keys == nil {
		return
	}

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"apikey", "Authorization", "Content-Type", "Prefer"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(a.cfg.TableAllowOrigins) == 0 || slices.Contains(a.cfg.TableAllowOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = a.cfg.TableAllowOrigins
	}

	rest := r.Group(resttable.Path)
	rest.Use(cors.New(corsConfig))
	// preflight is answered by the cors middleware
	rest.OPTIONS("", func(c *gin.Context) {})
	rest.Use(a.apiKeyMiddleware())

	rest.GET("", a.selectCertificates)
	rest.POST("", requireWrite(), a.insertCertificates)
	rest.PATCH("", requireWrite(), a.updateCertificateRow)
	rest.DELETE("", requireWrite(), a.deleteCertificateRow)
}

// apiKeyMiddleware accepts the key from the apikey header or as a bearer
// token.
func (a *app) apiKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("apikey")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "api key is required"})
			return
		}
		claims, err := a.keys.Verify(token)
		if err != nil {
			a.logger.Warn("Rejected api key", "client", a.hashIP(c.ClientIP()), "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

func requireWrite() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(roleKey)
		if r, ok := role.(apikey.Role); !ok || !r.CanWrite() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "api key cannot write"})
			return
		}
		c.Next()
	}
}

// idFilter reads the id=eq.<id> filter every row-level call needs.
func idFilter(c *gin.Context) (string, bool) {
	id, ok := strings.CutPrefix(c.Query("id"), "eq.")
	if !ok || id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filter id=eq.<id> is required"})
		return "", false
	}
	return id, true
}

func (a *app) selectCertificates(c *gin.Context) {
	var ascending bool
	switch c.DefaultQuery("order", "date_issued.desc") {
	case "date_issued.desc":
	case "date_issued.asc":
		ascending = true
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported order"})
		return
	}

	records, err := a.table.Select(c.Request.Context())
	if err != nil {
		a.logger.Error("Error selecting certificates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch certificates"})
		return
	}
	if ascending {
		slices.Reverse(records)
	}
	c.JSON(http.StatusOK, records)
}

// insertCertificates accepts one object or an array of them and returns
// the created rows.
func (a *app) insertCertificates(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	var inputs []certificateInput
	body = bytes.TrimSpace(body)
	if bytes.HasPrefix(body, []byte("[")) {
		err = json.Unmarshal(body, &inputs)
	} else {
		var one certificateInput
		err = json.Unmarshal(body, &one)
		inputs = []certificateInput{one}
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for i := range inputs {
		if err := inputs[i].validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	created := make([]certificate.Record, 0, len(inputs))
	for _, in := range inputs {
		rec, err := a.table.Insert(c.Request.Context(), in.fields())
		if err != nil {
			a.logger.Error("Error inserting certificate", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to insert certificate"})
			return
		}
		created = append(created, rec)
	}
	a.logger.Info("Certificates inserted via api", "count", len(created), "client", a.hashIP(c.ClientIP()))
	c.JSON(http.StatusCreated, created)
}

func (a *app) updateCertificateRow(c *gin.Context) {
	id, ok := idFilter(c)
	if !ok {
		return
	}
	var in certificateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if in.DateIssued.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": errDateRequired.Error()})
		return
	}

	if err := a.table.Update(c.Request.Context(), id, in.fields()); err != nil {
		a.tableError(c, "Error updating certificate", id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *app) deleteCertificateRow(c *gin.Context) {
	id, ok := idFilter(c)
	if !ok {
		return
	}
	if err := a.table.Delete(c.Request.Context(), id); err != nil {
		a.tableError(c, "Error deleting certificate", id, err)
		return
	}
	a.logger.Info("Certificate deleted via api", "id", id, "client", a.hashIP(c.ClientIP()))
	c.Status(http.StatusNoContent)
}

func (a *app) tableError(c *gin.Context, msg, id string, err error) {
	if errors.Is(err, table.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": table.ErrNotFound.Error()})
		return
	}
	a.logger.Error(msg, "id", id, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "table operation failed"})
}
