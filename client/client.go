package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"STUDY_SERVER_ADDR,default=localhost:8080"`
	SessionCode   string `env:"STUDY_SESSION_CODE,required=true"`
	Username      string `env:"STUDY_USERNAME,required=true"`
	Password      string `env:"STUDY_PASSWORD,required=true"`
	LogLevel      string `env:"LOG_LEVEL,required=true"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v", err)
	}
	os.Exit(code)
}

// run logs in, joins the session, opens the socket and bridges stdin to it.
// Every received broadcast is printed as the server rendered it for us.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Login to obtain the session cookie.
	cookie, err := login(config)
	if err != nil {
		return exitRuntime, err
	}
	log.Info("Logged in", "user", config.Username)

	// 4. Join the study session over HTTP, then open the socket.
	if err := join(config, cookie); err != nil {
		return exitRuntime, err
	}

	header := http.Header{}
	header.Add("Cookie", cookie)
	url := fmt.Sprintf("ws://%s/ws/study-session/%s", config.ServerAddress, config.SessionCode)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return exitRuntime, fmt.Errorf("socket refused with status %d: %w", resp.StatusCode, err)
		}
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", url, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	log.Info(">>> Connected! Type a message and press Enter (Ctrl+C to quit)...",
		"session", config.SessionCode)

	// 5. Send loop: one stdin line per message.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			payload, _ := json.Marshal(map[string]string{"message": scanner.Text()})
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Error("Send failed", "error", err)
				return
			}
		}
	}()

	// 6. Message reception loop.
	// This loop runs until the context is canceled or the server closes the connection.
	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return exitOK, nil
		default:
			var frame struct {
				Message  string `json:"message"`
				Sender   string `json:"sender"`
				Datetime string `json:"datetime"`
			}
			if err := conn.ReadJSON(&frame); err != nil {
				// Normal exit if the user triggered a shutdown.
				if ctx.Err() != nil {
					return exitOK, nil
				}
				return exitRuntime, fmt.Errorf("socket error: %w", err)
			}
			log.Info(fmt.Sprintf("[%s] %s: %s", frame.Datetime, frame.Sender, frame.Message))
		}
	}
}

// login posts the seeded credentials and returns the raw session cookie.
func login(config Config) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"username": config.Username,
		"password": config.Password,
	})
	resp, err := http.Post(fmt.Sprintf("http://%s/login", config.ServerAddress),
		"application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login rejected with status %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "study_token" {
			return c.Name + "=" + c.Value, nil
		}
	}
	return "", fmt.Errorf("server did not set a session cookie")
}

// join enters the session so the socket's membership check passes.
func join(config Config, cookie string) error {
	body, _ := json.Marshal(map[string]string{"session_code": config.SessionCode})
	req, err := http.NewRequest(http.MethodPost,
		fmt.Sprintf("http://%s/join-study-session", config.ServerAddress), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Add("Cookie", cookie)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("join request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("join rejected with status %d", resp.StatusCode)
	}
	return nil
}
