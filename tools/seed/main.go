// seed drives the position ingestion endpoint with demo vehicles and
// synthetic trajectories.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

type config struct {
	baseURL       string
	vehiclePrefix string
	vehicleCount  int
	positions     int
	interval      time.Duration
	startDate     string
}

func main() {
	cfg := parseConfig()
	if cfg.baseURL == "" {
		log.Fatal("BASE_URL is required")
	}
	if cfg.vehicleCount <= 0 {
		log.Fatal("vehicle-count must be > 0")
	}
	if cfg.positions <= 0 {
		log.Fatal("positions must be > 0")
	}

	start, err := parseStartDate(cfg.startDate)
	if err != nil {
		log.Fatalf("invalid start-date: %v", err)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 30 * time.Second}
	baseURL := strings.TrimRight(cfg.baseURL, "/")

	for idx := 0; idx < cfg.vehicleCount; idx++ {
		username := fmt.Sprintf("%s%04d", cfg.vehiclePrefix, idx+1)
		if err := seedVehicle(ctx, client, baseURL, username, idx, start, cfg.positions, cfg.interval); err != nil {
			log.Fatalf("seed vehicle %s: %v", username, err)
		}
		log.Printf("seeded vehicle %s (%d/%d)", username, idx+1, cfg.vehicleCount)
	}

	log.Printf("seed completed")
}

// seedVehicle posts one circular trajectory around a per-vehicle anchor.
func seedVehicle(ctx context.Context, client *http.Client, baseURL, username string, idx int, start time.Time, positions int, interval time.Duration) error {
	anchorLat := 48.0 + float64(idx%40)*0.1
	anchorLon := 11.0 + float64(idx%60)*0.1

	for i := 0; i < positions; i++ {
		angle := 2 * math.Pi * float64(i) / float64(positions)
		body := map[string]any{
			"username":  username,
			"latitude":  anchorLat + 0.01*math.Sin(angle),
			"longitude": anchorLon + 0.01*math.Cos(angle),
			"timestamp": start.Add(time.Duration(i) * interval).UTC().Format(time.RFC3339),
		}
		payload, _ := json.Marshal(body)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/position", bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 300 {
			_ = resp.Body.Close()
			return fmt.Errorf("post position: http %d", resp.StatusCode)
		}
		var respBody struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
			_ = resp.Body.Close()
			return err
		}
		_ = resp.Body.Close()
		if respBody.Status != "success" {
			return fmt.Errorf("post position: status %q", respBody.Status)
		}
	}
	return nil
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.baseURL, "base-url", envOrDefault("BASE_URL", ""), "API base URL")
	flag.StringVar(&cfg.vehiclePrefix, "vehicle-prefix", envOrDefault("VEHICLE_PREFIX", "vehicle-demo-"), "vehicle username prefix")
	flag.IntVar(&cfg.vehicleCount, "vehicle-count", envOrInt("VEHICLE_COUNT", 10), "number of vehicles to seed")
	flag.IntVar(&cfg.positions, "positions", envOrInt("POSITIONS", 48), "positions per vehicle")
	flag.DurationVar(&cfg.interval, "interval", envOrDuration("INTERVAL", 30*time.Minute), "capture interval between positions")
	flag.StringVar(&cfg.startDate, "start-date", envOrDefault("START_DATE", ""), "start date (YYYY-MM-DD or RFC3339)")
	flag.Parse()
	return cfg
}

func parseStartDate(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour), nil
	}
	value = strings.TrimSpace(value)
	if strings.Contains(value, "T") {
		parsed, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, err
		}
		return parsed.UTC(), nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.UTC(), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
