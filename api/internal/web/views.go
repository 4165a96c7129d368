package web

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"

	"homework-tutor/api/internal/analysis/types"
	"homework-tutor/api/internal/render"
	"homework-tutor/api/internal/session"
)

type stateJSON struct {
	State     string        `json:"state"`
	HasImage  bool          `json:"hasImage"`
	ImageName string        `json:"imageName,omitempty"`
	Width     int           `json:"width,omitempty"`
	Height    int           `json:"height,omitempty"`
	Result    *types.Result `json:"result,omitempty"`
	Overlay   *render.Rect  `json:"overlay,omitempty"`
	Error     string        `json:"error,omitempty"`
}

func newStateJSON(v session.View) stateJSON {
	out := stateJSON{
		State:    v.State.String(),
		HasImage: v.HasImage(),
		Error:    v.ErrorMessage,
	}
	if v.Image != nil {
		out.ImageName = v.Image.Name
		out.Width, out.Height = v.Image.Width, v.Image.Height
	}
	if v.State == session.Success && v.Result != nil {
		out.Result = v.Result
		if r, ok := render.Overlay(v.Result.ErrorBoundingBox); ok {
			out.Overlay = &r
		}
	}
	return out
}

func (s *Server) page(c *gin.Context, code int, notice string) {
	v := machine(c).Snapshot()
	imageURL := ""
	if v.Image != nil {
		// checksum in the query keeps the browser from showing a cached previous image
		imageURL = "/image?v=" + v.Image.Checksum[:min(12, len(v.Image.Checksum))]
	}
	var buf bytes.Buffer
	if err := render.NewPage(v, imageURL, notice).Render(&buf); err != nil {
		log.Printf("web: render: %v", err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(code, "text/html; charset=utf-8", buf.Bytes())
}

func (s *Server) state(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, newStateJSON(machine(c).Snapshot()))
}

func (s *Server) image(c *gin.Context) {
	v := machine(c).Snapshot()
	if v.Image == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no image selected"})
		return
	}
	c.Data(http.StatusOK, v.Image.MIME, v.Image.Data)
}

// annotated serves a PNG of the selected image with the error region drawn on it.
func (s *Server) annotated(c *gin.Context) {
	v := machine(c).Snapshot()
	if v.Image == nil || v.State != session.Success || v.Result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis result"})
		return
	}
	if v.Image.Width == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no preview for this image format"})
		return
	}
	png, err := render.Annotate(v.Image.Data, v.Result.ErrorBoundingBox, imaging.PNG)
	if err != nil {
		if errors.Is(err, render.ErrNoOverlay) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no error region in this result"})
			return
		}
		log.Printf("web: annotate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not draw the error region"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
