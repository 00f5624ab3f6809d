package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/linergy/subtrans-ops/internal/auth"
	"github.com/linergy/subtrans-ops/internal/catalog"
	"github.com/linergy/subtrans-ops/internal/geo"
	"github.com/linergy/subtrans-ops/internal/importer"
	"github.com/linergy/subtrans-ops/internal/models"
	"github.com/linergy/subtrans-ops/internal/report"
	"github.com/linergy/subtrans-ops/internal/store"
	"github.com/linergy/subtrans-ops/internal/urlstate"
)

const maxKMZSize = 32 << 20

type Handler struct {
	store         store.Store
	auth          *auth.Manager
	importer      *importer.Importer
	apiKey        string
	overridesPath string
	overrides     catalog.Overrides
}

func NewHandler(s store.Store, am *auth.Manager, im *importer.Importer, apiKey, overridesPath string) *Handler {
	return &Handler{
		store:         s,
		auth:          am,
		importer:      im,
		apiKey:        apiKey,
		overridesPath: overridesPath,
		overrides:     catalog.LoadOverrides(overridesPath),
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)
	r.POST("/auth/login", h.login)
	r.GET("/api/map-state", h.mapState)

	// The function endpoint accepts either a session token or the
	// deployment API key as bearer.
	r.POST("/functions/v1/compute-fault-location", h.requireKeyOrSession, h.computeFaultLocation)

	api := r.Group("/api", auth.Middleware(h.auth))

	api.GET("/lineas", h.listLineas)
	api.GET("/lineas/:id", h.getLinea)
	api.POST("/lineas", auth.RequireAdmin(), h.createLinea)
	api.PUT("/lineas/:id", auth.RequireAdmin(), h.updateLinea)
	api.DELETE("/lineas/:id", auth.RequireAdmin(), h.deleteLinea)

	api.GET("/estructuras", h.listEstructuras)

	api.GET("/fallas", h.listFallas)
	api.GET("/fallas/:id", h.getFalla)
	api.PATCH("/fallas/:id", h.updateFalla)
	api.DELETE("/fallas/:id", h.deleteFalla)
	api.POST("/fallas/:id/estado", h.setFallaEstado)
	api.GET("/fallas/:id/reporte.pdf", h.reportePDF)
	api.GET("/fallas/:id/reporte.txt", h.reporteTexto)

	api.GET("/reportes", h.listReportes)
	api.DELETE("/reportes/:id", h.deleteReporte)

	api.GET("/geojson/lineas", h.lineasGeoJSON)
	api.GET("/geojson/estructuras", h.estructurasGeoJSON)
	api.GET("/geojson/fallas", h.fallasGeoJSON)

	api.POST("/rpc/insert_falla_with_wkt", h.insertFallaWithWKT)
	api.POST("/rpc/update_falla_geom", auth.RequireAdmin(), h.updateFallaGeom)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.GET("/users", h.listUsers)
	admin.POST("/users", h.createUser)
	admin.PUT("/users/:id/role", h.updateUserRole)
	admin.PUT("/catalog/:clave", h.setCatalogOverride)

	r.POST("/functions/v1/import-kmz",
		auth.Middleware(h.auth), auth.RequireAdmin(), h.importKMZ)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requireKeyOrSession admits requests carrying either a valid session
// token or the deployment API key, mirroring anonymous function access.
func (h *Handler) requireKeyOrSession(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}
	if h.apiKey != "" && token == h.apiKey {
		c.Next()
		return
	}
	if _, err := h.auth.Verify(token); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.Next()
}

func (h *Handler) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, hash, err := h.store.GetProfileByEmail(c.Request.Context(), body.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrBadCredentials.Error()})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrBadCredentials.Error()})
		return
	}

	token, err := h.auth.Mint(profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": profile})
}

func (h *Handler) listLineas(c *gin.Context) {
	lineas, err := h.store.ListLineas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch lineas"})
		return
	}
	c.JSON(http.StatusOK, lineas)
}

func (h *Handler) getLinea(c *gin.Context) {
	l, err := h.store.GetLinea(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err, "failed to fetch linea")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) createLinea(c *gin.Context) {
	var l models.Linea
	if err := c.ShouldBindJSON(&l); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if l.Numero == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "numero is required"})
		return
	}
	if l.Clasificacion != "" && !l.Clasificacion.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("clasificación desconocida: %s", l.Clasificacion)})
		return
	}
	if err := h.store.CreateLinea(c.Request.Context(), &l); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create linea"})
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *Handler) updateLinea(c *gin.Context) {
	var l models.Linea
	if err := c.ShouldBindJSON(&l); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	l.ID = c.Param("id")
	if err := h.store.UpdateLinea(c.Request.Context(), &l); err != nil {
		h.notFoundOr500(c, err, "failed to update linea")
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) deleteLinea(c *gin.Context) {
	if err := h.store.DeleteLinea(c.Request.Context(), c.Param("id")); err != nil {
		h.notFoundOr500(c, err, "failed to delete linea")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listEstructuras(c *gin.Context) {
	estructuras, err := h.store.ListEstructuras(c.Request.Context(), c.Query("linea_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch estructuras"})
		return
	}
	c.JSON(http.StatusOK, estructuras)
}

func (h *Handler) fallaFilter(c *gin.Context) store.FallaFilter {
	filter := store.FallaFilter{Limit: 100}

	if id := c.Query("linea_id"); id != "" {
		filter.LineaID = &id
	}
	if e := c.Query("estado"); e != "" {
		estado := models.Estado(strings.ToUpper(e))
		if estado.Valid() {
			filter.Estado = &estado
		}
	}
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}
	return filter
}

func (h *Handler) listFallas(c *gin.Context) {
	fallas, err := h.store.ListFallas(c.Request.Context(), h.fallaFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch fallas"})
		return
	}
	c.JSON(http.StatusOK, fallas)
}

func (h *Handler) getFalla(c *gin.Context) {
	f, err := h.store.GetFalla(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err, "failed to fetch falla")
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) updateFalla(c *gin.Context) {
	var body struct {
		LineaID      *string    `json:"linea_id"`
		Km           *float64   `json:"km"`
		Tipo         *string    `json:"tipo"`
		Descripcion  *string    `json:"descripcion"`
		Estado       *string    `json:"estado"`
		OcurrenciaTS *time.Time `json:"ocurrencia_ts"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Km != nil && *body.Km < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "km must be zero or positive"})
		return
	}

	upd := store.FallaUpdate{
		LineaID:      body.LineaID,
		Km:           body.Km,
		Tipo:         body.Tipo,
		Descripcion:  body.Descripcion,
		OcurrenciaTS: body.OcurrenciaTS,
	}
	if body.Estado != nil {
		estado := models.Estado(strings.ToUpper(*body.Estado))
		if !estado.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("estado desconocido: %s", *body.Estado)})
			return
		}
		upd.Estado = &estado
	}

	f, err := h.store.UpdateFalla(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		h.notFoundOr500(c, err, "failed to update falla")
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) deleteFalla(c *gin.Context) {
	if err := h.store.DeleteFalla(c.Request.Context(), c.Param("id")); err != nil {
		h.notFoundOr500(c, err, "failed to delete falla")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setFallaEstado(c *gin.Context) {
	var body struct {
		Estado string `json:"estado"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	estado := models.Estado(strings.ToUpper(body.Estado))
	if !estado.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("estado desconocido: %s", body.Estado)})
		return
	}

	f, err := h.store.SetFallaEstado(c.Request.Context(), c.Param("id"), estado)
	if err != nil {
		h.notFoundOr500(c, err, "failed to update estado")
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) listReportes(c *gin.Context) {
	reportes, err := h.store.ListReportes(c.Request.Context(), h.fallaFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch reportes"})
		return
	}
	c.JSON(http.StatusOK, reportes)
}

func (h *Handler) deleteReporte(c *gin.Context) {
	if err := h.store.DeleteReporte(c.Request.Context(), c.Param("id")); err != nil {
		h.notFoundOr500(c, err, "failed to delete reporte")
		return
	}
	c.Status(http.StatusNoContent)
}

// insertFallaWithWKT registers a falla and its reporte projection in
// one transaction. The geometry arrives as trusted WKT text computed
// by the location resolver.
func (h *Handler) insertFallaWithWKT(c *gin.Context) {
	var body struct {
		LineaID      string    `json:"linea_id"`
		Km           float64   `json:"km"`
		Tipo         string    `json:"tipo"`
		Descripcion  string    `json:"descripcion"`
		OcurrenciaTS time.Time `json:"ocurrencia_ts"`
		GeomWKT      string    `json:"geom_wkt"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.LineaID == "" || strings.TrimSpace(body.Tipo) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "linea_id and tipo are required"})
		return
	}
	if body.Km < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "km must be zero or positive"})
		return
	}
	if body.GeomWKT != "" && !validGeomWKT(body.GeomWKT) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geometry"})
		return
	}

	ts := body.OcurrenciaTS
	if ts.IsZero() {
		ts = time.Now()
	}
	f := &models.Falla{
		LineaID:      body.LineaID,
		Km:           body.Km,
		Tipo:         body.Tipo,
		Descripcion:  body.Descripcion,
		OcurrenciaTS: ts,
		Geom:         body.GeomWKT,
	}
	if err := h.store.InsertFallaWithWKT(c.Request.Context(), f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register falla"})
		return
	}
	c.JSON(http.StatusOK, f)
}

func (h *Handler) updateFallaGeom(c *gin.Context) {
	var body struct {
		ID      string `json:"id"`
		GeomWKT string `json:"geom_wkt"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !validGeomWKT(body.GeomWKT) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geometry"})
		return
	}
	if err := h.store.UpdateFallaGeom(c.Request.Context(), body.ID, body.GeomWKT); err != nil {
		h.notFoundOr500(c, err, "failed to update geometry")
		return
	}
	c.Status(http.StatusOK)
}

// computeFaultLocation projects km onto the line's stored path.
func (h *Handler) computeFaultLocation(c *gin.Context) {
	var body struct {
		LineaID string  `json:"lineaId"`
		Km      float64 `json:"km"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.LineaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lineaId is required"})
		return
	}

	l, err := h.store.GetLinea(c.Request.Context(), body.LineaID)
	if err != nil {
		h.notFoundOr500(c, err, "failed to fetch linea")
		return
	}

	g := geo.ParseGeometry(l.Geom)
	if g == nil || g.Type != geo.TypeLineString {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "la línea no tiene trazo geográfico"})
		return
	}

	lat, lon, err := geo.PointAtKM(g.Path, l.KmInicio, l.KmFin, body.Km)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lat":  lat,
		"lon":  lon,
		"geom": geo.Geometry{Type: geo.TypePoint, Point: []float64{lon, lat}},
	})
}

func (h *Handler) importKMZ(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxKMZSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read archive"})
		return
	}
	if len(data) > maxKMZSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "archive too large"})
		return
	}

	summary, err := h.importer.Import(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, importer.ErrNoKML) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("kmz import failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.store.ListProfiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) createUser(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Email == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if body.Role != "" && body.Role != models.RoleAdmin && body.Role != models.RoleUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("rol desconocido: %s", body.Role)})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}
	p := &models.Profile{Email: body.Email, Role: body.Role}
	if err := h.store.CreateProfile(c.Request.Context(), p, string(hash)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) updateUserRole(c *gin.Context) {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.Role != models.RoleAdmin && body.Role != models.RoleUser {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("rol desconocido: %s", body.Role)})
		return
	}
	if err := h.store.UpdateProfileRole(c.Request.Context(), c.Param("id"), body.Role); err != nil {
		h.notFoundOr500(c, err, "failed to update role")
		return
	}
	c.Status(http.StatusNoContent)
}

// setCatalogOverride stores a local annotation for one catalog entry.
// Overrides shadow the static table on report rendering only.
func (h *Handler) setCatalogOverride(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if h.overrides == nil {
		h.overrides = catalog.Overrides{}
	}
	h.overrides.Set(c.Param("clave"), fields)
	if h.overridesPath != "" {
		if err := h.overrides.Save(h.overridesPath); err != nil {
			slog.Error("failed to persist catalog overrides", "error", err)
		}
	}
	c.Status(http.StatusNoContent)
}

// mapState decodes the share-link state blob. Malformed input yields an
// empty state rather than an error.
func (h *Handler) mapState(c *gin.Context) {
	s := urlstate.Decode(c.Query("state"))
	if s == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filtros": s.Filtros,
		"vista":   s.Vista,
		"faultId": s.Fault(),
		"lineId":  s.Line(),
	})
}

func (h *Handler) reportePDF(c *gin.Context) {
	f, l, ok := h.reportData(c)
	if !ok {
		return
	}
	pdf, err := report.PDF(f, l, h.overrides)
	if err != nil {
		slog.Error("report rendering failed", "falla", f.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render report"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(f)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) reporteTexto(c *gin.Context) {
	f, l, ok := h.reportData(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, report.Text(f, l, h.overrides))
}

func (h *Handler) reportData(c *gin.Context) (*models.Falla, *models.Linea, bool) {
	f, err := h.store.GetFalla(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.notFoundOr500(c, err, "failed to fetch falla")
		return nil, nil, false
	}
	// A missing line is not fatal: the report renders its fallbacks.
	l, err := h.store.GetLinea(c.Request.Context(), f.LineaID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch linea"})
		return nil, nil, false
	}
	return f, l, true
}

// validGeomWKT reports whether payload geometry parses and every
// coordinate pair is in range. Out-of-range values are rejected, never
// stored as a location.
func validGeomWKT(wkt string) bool {
	g := geo.ParseGeometry(wkt)
	if g == nil {
		return false
	}
	if g.Type == geo.TypePoint {
		return geo.ValidLatLon(g.Point[1], g.Point[0])
	}
	for _, pt := range g.Path {
		if !geo.ValidLatLon(pt[1], pt[0]) {
			return false
		}
	}
	return true
}

func (h *Handler) notFoundOr500(c *gin.Context, err error, msg string) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": store.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
