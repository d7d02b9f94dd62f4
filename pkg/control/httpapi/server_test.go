package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epilepsia/epilepsia.go/pkg/display"
	"github.com/epilepsia/epilepsia.go/pkg/frame"
)

type fakeController struct {
	settings display.Settings
	clears   int
	clearErr error
}

func (c *fakeController) SetBrightness(v float64)    { c.settings.Brightness = v }
func (c *fakeController) SetDithering(on bool)       { c.settings.Dithering = on }
func (c *fakeController) Settings() display.Settings { return c.settings }
func (c *fakeController) Stats() display.Stats       { return display.Stats{Frames: 3} }
func (c *fakeController) Geometry() frame.Geometry {
	return frame.Geometry{StripLength: 64, StripCount: 32}
}

func (c *fakeController) Clear() error {
	c.clears++
	return c.clearErr
}

func do(t *testing.T, s *Server, method, path, body string) (int, []byte) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestStatus(t *testing.T) {
	ctl := &fakeController{settings: display.Settings{Brightness: 0.1}}
	s := New(":0", ctl)
	s.Clients = func() int { return 4 }

	code, body := do(t, s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, code)
	var st Status
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 64, st.StripLength)
	assert.Equal(t, 32, st.StripCount)
	assert.Equal(t, 0.1, st.Settings.Brightness)
	assert.EqualValues(t, 3, st.Stats.Frames)
	assert.Equal(t, 4, st.Clients)
}

func TestSettings(t *testing.T) {
	ctl := &fakeController{}
	s := New(":0", ctl)

	testCases := []struct {
		name, path, body string
		code             int
	}{
		{"brightness", "/api/brightness", `{"value": 0.4}`, http.StatusOK},
		{"brightness missing", "/api/brightness", `{}`, http.StatusBadRequest},
		{"brightness malformed", "/api/brightness", `{"value":`, http.StatusBadRequest},
		{"dithering", "/api/dithering", `{"enabled": true}`, http.StatusOK},
		{"dithering wrong type", "/api/dithering", `{"enabled": 3}`, http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := do(t, s, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.code, code)
		})
	}
	assert.Equal(t, 0.4, ctl.settings.Brightness)
	assert.True(t, ctl.settings.Dithering)
}

func TestClear(t *testing.T) {
	ctl := &fakeController{}
	s := New(":0", ctl)
	code, _ := do(t, s, http.MethodPost, "/api/clear", "")
	assert.Equal(t, http.StatusNoContent, code)

	ctl.clearErr = errors.New("unresponsive")
	code, body := do(t, s, http.MethodPost, "/api/clear", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "unresponsive", string(body))
	assert.Equal(t, 2, ctl.clears)

	code, _ = do(t, s, http.MethodGet, "/api/clear", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}
