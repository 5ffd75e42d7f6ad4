// Command test_integration exercises a running server seeded with
// config/seed.toml and exits non-zero on the first failed check.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var baseURL = "http://localhost:8080"

type result struct {
	Book struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"book"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

type check struct {
	name   string
	path   string
	status int
	// minResults applies only to 200 responses.
	minResults int
	maxResults int
}

func main() {
	if v := os.Getenv("BASE_URL"); v != "" {
		baseURL = v
	}

	// Wait for server to start
	if !waitHealthy(10 * time.Second) {
		fmt.Println("FAILED: server did not become healthy")
		os.Exit(1)
	}

	checks := []check{
		{"collaborative", "/users/user-1/recommendations", http.StatusOK, 1, 10},
		{"genres", "/users/user-1/recommendations/genres?limit=3", http.StatusOK, 1, 3},
		{"following", "/users/user-1/recommendations/following", http.StatusOK, 1, 10},
		{"authors", "/users/user-1/recommendations/authors", http.StatusOK, 1, 10},
		{"hybrid", "/users/user-1/recommendations/hybrid?limit=5", http.StatusOK, 1, 5},
		{"similar", "/books/book-3/similar", http.StatusOK, 1, 5},
		{"trending", "/books/trending", http.StatusOK, 1, 10},
		{"unknown user", "/users/nobody/recommendations/hybrid", http.StatusOK, 0, 0},
		{"bad limit", "/books/trending?limit=0", http.StatusBadRequest, 0, 0},
	}

	failed := false
	for i, c := range checks {
		fmt.Printf("%d. %s...\n", i+1, c.name)
		if err := run(c); err != nil {
			fmt.Printf("FAILED: %s: %v\n", c.name, err)
			failed = true
			continue
		}
		fmt.Printf("PASSED: %s\n", c.name)
	}
	if failed {
		os.Exit(1)
	}
}

func waitHealthy(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}

func run(c check) error {
	resp, err := http.Get(baseURL + c.path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != c.status {
		return fmt.Errorf("status %d, want %d: %s", resp.StatusCode, c.status, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var payload struct {
		Results []result `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	n := len(payload.Results)
	if n < c.minResults || n > c.maxResults {
		return fmt.Errorf("got %d results, want %d..%d", n, c.minResults, c.maxResults)
	}
	for i := 1; i < n; i++ {
		if payload.Results[i].Score > payload.Results[i-1].Score {
			return fmt.Errorf("results not ordered by score at %d", i)
		}
	}
	for _, r := range payload.Results {
		fmt.Printf("   %.2f %-40s %s\n", r.Score, r.Book.Title, r.Reason)
	}
	return nil
}
