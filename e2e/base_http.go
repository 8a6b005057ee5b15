package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"
)

// BaseHTTPSuite drives the study-session service the way a browser does:
// cookie-authenticated HTTP calls plus one websocket per session member.
type BaseHTTPSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

// Step prints a colorized header so scenario phases stand out in the log
func (s *BaseHTTPSuite) Step(t *testing.T, name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
}

// Login authenticates a seeded user and returns their session cookie.
func (s *BaseHTTPSuite) Login(username string) string {
	body, resp := s.doJSON("", http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": s.Config.Password,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, "login failed for %s: %s", username, body)
	for _, c := range resp.Cookies() {
		if c.Name == "study_token" {
			return c.Name + "=" + c.Value
		}
	}
	s.Require().FailNow("server did not set a session cookie")
	return ""
}

// PostJSON sends an authenticated XHR-style request and decodes the reply.
func (s *BaseHTTPSuite) PostJSON(cookie, path string, payload any, out any) *http.Response {
	body, resp := s.doJSON(cookie, http.MethodPost, path, payload)
	if out != nil && resp.StatusCode < 300 {
		s.Require().NoError(json.Unmarshal([]byte(body), out), "decoding %s reply", path)
	}
	return resp
}

// GetJSON fetches an authenticated endpoint and decodes the reply.
func (s *BaseHTTPSuite) GetJSON(cookie, path string, out any) *http.Response {
	body, resp := s.doJSON(cookie, http.MethodGet, path, nil)
	if out != nil && resp.StatusCode < 300 {
		s.Require().NoError(json.Unmarshal([]byte(body), out), "decoding %s reply", path)
	}
	return resp
}

// Dial opens a member's websocket into a session.
func (s *BaseHTTPSuite) Dial(cookie, code string) *websocket.Conn {
	header := http.Header{}
	header.Add("Cookie", cookie)
	url := fmt.Sprintf("ws://%s/ws/study-session/%s", s.Config.ServerAddr, code)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	s.Require().NoError(err, "dialing %s", url)
	return conn
}

func (s *BaseHTTPSuite) doJSON(cookie, method, path string, payload any) (string, *http.Response) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(raw)
	}

	url := fmt.Sprintf("http://%s%s", s.Config.ServerAddr, path)
	req, err := http.NewRequest(method, url, reqBody)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	if cookie != "" {
		req.Header.Add("Cookie", cookie)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err, "calling "+url)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	body := string(raw)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		if payload != nil {
			raw, _ := json.MarshalIndent(payload, "", "  ")
			fmt.Fprintln(&logBuilder, "\nREQUEST:")
			fmt.Fprintln(&logBuilder, string(raw))
		}
		fmt.Fprintln(&logBuilder, "RESPONSE:")
		fmt.Fprintln(&logBuilder, body)
	}
	s.T().Log(logBuilder.String())

	return body, resp
}
