// Package httpapi serves the display status and settings over HTTP.
package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/glog"

	"github.com/epilepsia/epilepsia.go/pkg/display"
	"github.com/epilepsia/epilepsia.go/pkg/frame"
)

// Controller is the display as seen by the API.
type Controller interface {
	SetBrightness(float64)
	SetDithering(bool)
	Clear() error
	Settings() display.Settings
	Stats() display.Stats
	Geometry() frame.Geometry
}

// Status is the body of GET /api/status.
type Status struct {
	StripLength int              `json:"strip_length"`
	StripCount  int              `json:"strip_count"`
	Settings    display.Settings `json:"settings"`
	Stats       display.Stats    `json:"stats"`
	Clients     int              `json:"clients"`
}

// BrightnessRequest is the body of POST /api/brightness.
type BrightnessRequest struct {
	Value *float64 `json:"value"`
}

// DitheringRequest is the body of POST /api/dithering.
type DitheringRequest struct {
	Enabled *bool `json:"enabled"`
}

// Server is the HTTP API.
type Server struct {
	Addr string
	// Clients optionally reports the number of OPC clients.
	Clients func() int

	app *fiber.App
	ctl Controller
}

// New creates the API on addr.
func New(addr string, ctl Controller) *Server {
	s := &Server{
		Addr: addr,
		ctl:  ctl,
		app:  fiber.New(fiber.Config{DisableStartupMessage: true}),
	}
	api := s.app.Group("/api")
	api.Get("/status", s.status)
	api.Post("/brightness", s.brightness)
	api.Post("/dithering", s.dithering)
	api.Post("/clear", s.clear)
	return s
}

// App returns the fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("HTTP API on %s", s.Addr)
		errCh <- s.app.Listen(s.Addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.app.Shutdown()
		<-errCh
		return ctx.Err()
	}
}

func (s *Server) currentStatus() Status {
	geo := s.ctl.Geometry()
	st := Status{
		StripLength: geo.StripLength,
		StripCount:  geo.StripCount,
		Settings:    s.ctl.Settings(),
		Stats:       s.ctl.Stats(),
	}
	if s.Clients != nil {
		st.Clients = s.Clients()
	}
	return st
}

func (s *Server) status(c *fiber.Ctx) error {
	return c.JSON(s.currentStatus())
}

func (s *Server) brightness(c *fiber.Ctx) error {
	var req BrightnessRequest
	if err := c.BodyParser(&req); err != nil || req.Value == nil {
		return c.Status(fiber.StatusBadRequest).SendString("expect {\"value\": number}")
	}
	s.ctl.SetBrightness(*req.Value)
	return c.JSON(s.currentStatus())
}

func (s *Server) dithering(c *fiber.Ctx) error {
	var req DitheringRequest
	if err := c.BodyParser(&req); err != nil || req.Enabled == nil {
		return c.Status(fiber.StatusBadRequest).SendString("expect {\"enabled\": bool}")
	}
	s.ctl.SetDithering(*req.Enabled)
	return c.JSON(s.currentStatus())
}

func (s *Server) clear(c *fiber.Ctx) error {
	if err := s.ctl.Clear(); err != nil {
		glog.Errorf("clear: %v", err)
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
