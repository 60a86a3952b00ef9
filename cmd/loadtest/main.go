// Load generator: dials many concurrent chat clients against a running
// server, joins each under a generated name, and pushes messages through
// the hub while counting what comes back.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	wsURL    = flag.String("url", "ws://localhost:8080/ws", "websocket endpoint")
	users    = flag.Int("users", 50, "number of concurrent clients")
	messages = flag.Int("messages", 20, "messages per client")
)

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

var received atomic.Int64

func main() {
	flag.Parse()

	log.Printf("starting load test: %d users, %d messages each against %s", *users, *messages, *wsURL)
	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < *users; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := runClient(n); err != nil {
				log.Printf("client %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	log.Printf("done in %s: sent %d, received %d events", time.Since(start), *users**messages, received.Load())
}

func runClient(n int) error {
	conn, _, err := websocket.DefaultDialer.Dial(*wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var env envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			received.Add(1)
		}
	}()

	name := fmt.Sprintf("loadtester-%04d", n)
	if err := send(conn, "join", name); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	for i := 0; i < *messages; i++ {
		payload := map[string]any{
			"content": fmt.Sprintf("message %d from %s", i, name),
			"type":    "text",
		}
		if err := send(conn, "send_message", payload); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Give broadcasts a moment to land before hanging up.
	time.Sleep(500 * time.Millisecond)
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
	return nil
}

func send(conn *websocket.Conn, cmdType string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(envelope{Type: cmdType, Data: raw})
}
