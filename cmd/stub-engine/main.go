// Command stub-engine simulates the upstream phishing engine for local
// testing: it POSTs a stream of synthetic webhook payloads at a running
// server so the dashboard, SSE stream, and reconciler can be exercised
// without real campaigns.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var messages = []string{
	"Email Opened",
	"Clicked Link",
	"Submitted Data",
	"Email Reported",
	"Campaign Created", // classifies as unknown on purpose
}

func main() {
	target := flag.String("target", "http://localhost:8080/webhooks", "webhook endpoint to post to")
	campaign := flag.String("campaign", "1", "external campaign id to emit events for")
	count := flag.Int("count", 10, "number of events to send")
	interval := flag.Duration("interval", 500*time.Millisecond, "delay between events")
	flag.Parse()

	log.Printf("stub-engine: sending %d events to %s (campaign %s)", *count, *target, *campaign)

	client := &http.Client{Timeout: 10 * time.Second}
	sent := 0
	for i := 0; i < *count; i++ {
		payload := map[string]interface{}{
			"email":         "demo@example.com",
			"campaign_id":   *campaign,
			"campaign_name": "Stub Campaign",
			"user_id":       uuid.New().String(),
			"message":       messages[rand.Intn(len(messages))],
			"payload": map[string]interface{}{
				"ip": fmt.Sprintf("10.0.0.%d", rand.Intn(255)),
				"browser": map[string]interface{}{
					"user_agent": "stub-engine/1.0",
				},
				"latitude":  37.77 + rand.Float64(),
				"longitude": -122.41 - rand.Float64(),
			},
		}

		body, _ := json.Marshal(payload)
		resp, err := client.Post(*target, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("post failed: %v", err)
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			log.Printf("unexpected status: %s", resp.Status)
		} else {
			sent++
		}
		time.Sleep(*interval)
	}

	log.Printf("stub-engine: done (%d/%d accepted)", sent, *count)
}
