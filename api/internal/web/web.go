// Package web is the browser front end: one page per session driving a session.Machine.
package web

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"homework-tutor/api/internal/handle"
	"homework-tutor/api/internal/session"
	"homework-tutor/api/internal/upload"
)

const (
	CookieName = "tutor_session"
	formField  = "image"
	machineKey = "machine"
	maxWait    = 5 * time.Minute
)

type Server struct {
	store     *session.Store
	analyzer  session.Analyzer
	maxUpload int64
	proxy     *handle.Handle
	logging   bool
}

type Option func(*Server)

func WithMaxUpload(n int64) Option {
	return func(s *Server) { s.maxUpload = n }
}

// WithProxy also serves the analysis proxy endpoints from the same router.
func WithProxy(h *handle.Handle) Option {
	return func(s *Server) { s.proxy = h }
}

// WithRequestLog enables gin's access log.
func WithRequestLog(on bool) Option {
	return func(s *Server) { s.logging = on }
}

func New(store *session.Store, analyzer session.Analyzer, opts ...Option) *Server {
	s := &Server{store: store, analyzer: analyzer, maxUpload: upload.DefaultMaxBytes}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	if s.logging {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", "X-Request-Timeout"}
	r.Use(cors.New(cfg))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if s.proxy != nil {
		r.POST("/v1/analyze", gin.WrapF(s.proxy.Analyze))
		r.POST("/.netlify/functions/analyze", gin.WrapF(s.proxy.Analyze))
		r.GET("/v1/engines", gin.WrapF(s.proxy.ListEngines))
	}

	app := r.Group("/", s.sessionMiddleware)
	app.GET("/", s.index)
	app.GET("/state", s.state)
	app.GET("/image", s.image)
	app.GET("/image/annotated.png", s.annotated)
	app.POST("/upload", s.upload)
	app.POST("/analyze", s.analyze)
	app.POST("/retry", s.retry)
	app.POST("/clear", s.clear)
	return r
}

// sessionMiddleware attaches the caller's machine, issuing a new cookie when needed.
func (s *Server) sessionMiddleware(c *gin.Context) {
	id, err := c.Cookie(CookieName)
	if err != nil || id == "" {
		id = session.NewID()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, 0, "/", "", false, true)
	}
	c.Set(machineKey, s.store.GetOrCreate(id))
	c.Next()
}

func machine(c *gin.Context) *session.Machine {
	return c.MustGet(machineKey).(*session.Machine)
}

func (s *Server) index(c *gin.Context) {
	s.page(c, http.StatusOK, "")
}

func (s *Server) upload(c *gin.Context) {
	fh, err := c.FormFile(formField)
	if err != nil {
		s.reject(c, "Please choose an image file to upload.")
		return
	}
	f, err := fh.Open()
	if err != nil {
		log.Printf("web: open upload: %v", err)
		s.reject(c, "The upload could not be read, please try again.")
		return
	}
	defer f.Close()

	img, err := upload.FromFile(fh.Filename, fh.Header.Get("Content-Type"), f, s.maxUpload)
	if err != nil {
		log.Printf("web: upload %q: %v", fh.Filename, err)
		msg := upload.Message(err)
		if msg == "" {
			msg = "The upload could not be read, please try again."
		}
		s.reject(c, msg)
		return
	}

	m := machine(c)
	if err := m.Select(img); err != nil {
		s.reject(c, upperFirst(err.Error())+".")
		return
	}
	log.Printf("web: selected %q %s %dx%d", img.Name, img.MIME, img.Width, img.Height)
	s.done(c, m)
}

func (s *Server) analyze(c *gin.Context) {
	m := machine(c)
	done, err := m.Analyze(s.analyzer)
	s.settle(c, m, done, err)
}

func (s *Server) retry(c *gin.Context) {
	m := machine(c)
	done, err := m.Retry(s.analyzer)
	s.settle(c, m, done, err)
}

func (s *Server) clear(c *gin.Context) {
	m := machine(c)
	m.Clear()
	s.done(c, m)
}

// settle treats rejected transitions as no-ops. With ?wait=1 it blocks until the attempt settles.
func (s *Server) settle(c *gin.Context, m *session.Machine, done <-chan struct{}, err error) {
	if err != nil && !errors.Is(err, session.ErrNoImage) && !errors.Is(err, session.ErrInvalidTransition) {
		log.Printf("web: analyze: %v", err)
	}
	if done != nil && c.Query("wait") == "1" {
		select {
		case <-done:
		case <-c.Request.Context().Done():
		case <-time.After(maxWait):
		}
	}
	s.done(c, m)
}

// done answers a state-changing request: JSON for fetch callers, otherwise back to the page.
func (s *Server) done(c *gin.Context, m *session.Machine) {
	if wantsJSON(c) {
		c.JSON(http.StatusOK, newStateJSON(m.Snapshot()))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// reject reports a validation problem without touching the session state.
func (s *Server) reject(c *gin.Context, msg string) {
	if wantsJSON(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	s.page(c, http.StatusBadRequest, msg)
}
