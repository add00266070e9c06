// Package main connects one or more clients to the realtime endpoint and
// reports the events they receive.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the probe results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	EventsReceived       int64
	Errors               int64
}

type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	email := flag.String("email", "demo@hackit.dev", "Account email (ignored with -token)")
	password := flag.String("password", "password123", "Account password")
	token := flag.String("token", os.Getenv("HACKIT_TOKEN"), "Bearer token; signs in when empty")
	clients := flag.Int("clients", 1, "Number of concurrent connections")
	duration := flag.Duration("duration", 30*time.Second, "Probe duration")
	quiet := flag.Bool("quiet", false, "Only print the summary")
	flag.Parse()

	log.Printf("🔌 Realtime probe against %s (%d clients, %v)", *host, *clients, *duration)

	if *token == "" {
		t, err := signIn(*host, *email, *password)
		if err != nil {
			log.Fatalf("❌ Sign in failed: %v", err)
		}
		*token = t
		log.Printf("✅ Signed in as %s", *email)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var (
		metrics Metrics
		wg      sync.WaitGroup
	)
	stopChan := make(chan struct{})
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runClient(*host, *token, id, !*quiet, stopChan, &metrics)
		}(i)
	}

	select {
	case <-time.After(*duration):
		log.Println("⏱️  Probe duration reached")
	case <-interrupt:
		log.Println("🛑 Interrupted by user")
	}

	close(stopChan)
	wg.Wait()
	printMetrics(&metrics)
}

func signIn(host, email, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := httpClient.Post(fmt.Sprintf("http://%s/api/auth/signin", host), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign in failed with status %d", resp.StatusCode)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func getTicket(host, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/api/ws/ticket", host), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ticket issuance failed with status %d", resp.StatusCode)
	}
	var result struct {
		Ticket string `json:"ticket"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Ticket, nil
}

func runClient(host, token string, id int, verbose bool, stopChan <-chan struct{}, m *Metrics) {
	atomic.AddInt64(&m.ConnectionsAttempted, 1)

	// Tickets are single use, so every connection gets its own.
	ticket, err := getTicket(host, token)
	if err != nil {
		log.Printf("client %d: %v", id, err)
		atomic.AddInt64(&m.ConnectionsFailed, 1)
		atomic.AddInt64(&m.Errors, 1)
		return
	}

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws", RawQuery: url.Values{"ticket": {ticket}}.Encode()}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		log.Printf("client %d: dial: %v", id, err)
		atomic.AddInt64(&m.ConnectionsFailed, 1)
		atomic.AddInt64(&m.Errors, 1)
		return
	}
	defer func() { _ = c.Close() }()
	atomic.AddInt64(&m.ConnectionsSuccess, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&m.EventsReceived, 1)
			if !verbose {
				continue
			}
			var ev event
			if err := json.Unmarshal(raw, &ev); err != nil {
				atomic.AddInt64(&m.Errors, 1)
				continue
			}
			log.Printf("client %d: %s %s", id, ev.Type, ev.Payload)
		}
	}()

	select {
	case <-stopChan:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	case <-done:
	}
}

func printMetrics(m *Metrics) {
	log.Println("📊 Probe Results")
	log.Println("================")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&m.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&m.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&m.ConnectionsFailed))
	log.Printf("Events Received: %d", atomic.LoadInt64(&m.EventsReceived))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&m.Errors))
}
