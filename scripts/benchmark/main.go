// Benchmark drives a running mallscan instance with repeated extract
// requests and reports latency and yield per listing page.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

var (
	apiURL = flag.String("api-url", "http://localhost:8080", "mallscan API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	target = flag.String("url", "https://www.kolonmall.com/Search/NewArrivals", "listing URL to benchmark")
	pages  = flag.Int("pages", 3, "number of listing pages to benchmark")
	runs   = flag.Int("runs", 3, "number of runs per page for averaging")
)

type extractRequest struct {
	URL     string `json:"url"`
	Page    int    `json:"page,omitempty"`
	Timeout int    `json:"timeout"`
}

type extractResponse struct {
	Success bool `json:"success"`
	Total   int  `json:"total"`
	Timing  struct {
		TotalMs   int64 `json:"total_ms"`
		FetchMs   int64 `json:"fetch_ms"`
		ExtractMs int64 `json:"extract_ms"`
	} `json:"timing"`
	EngineUsed string `json:"engine_used"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type pageStats struct {
	page      int
	succeeded int
	totalMs   int64
	fetchMs   int64
	extractMs int64
	products  int
	engine    string
	lastErr   string
}

func main() {
	flag.Parse()

	fmt.Println("=== mallscan benchmark ===")
	fmt.Printf("API URL:  %s\n", *apiURL)
	fmt.Printf("Target:   %s (pages 1-%d, %d runs each)\n\n", *target, *pages, *runs)

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 90 * time.Second}
	var stats []pageStats

	for page := 1; page <= *pages; page++ {
		ps := pageStats{page: page}
		for run := 1; run <= *runs; run++ {
			resp, err := extractOnce(client, page)
			if err != nil {
				ps.lastErr = err.Error()
				fmt.Printf("page %d run %d: FAILED: %v\n", page, run, err)
				continue
			}
			ps.succeeded++
			ps.totalMs += resp.Timing.TotalMs
			ps.fetchMs += resp.Timing.FetchMs
			ps.extractMs += resp.Timing.ExtractMs
			ps.products = resp.Total
			ps.engine = resp.EngineUsed
			fmt.Printf("page %d run %d: %d products in %dms (%s)\n",
				page, run, resp.Total, resp.Timing.TotalMs, resp.EngineUsed)
		}
		stats = append(stats, ps)
	}

	fmt.Println()
	printTable(stats)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func extractOnce(client *http.Client, page int) (*extractResponse, error) {
	body, err := json.Marshal(extractRequest{URL: *target, Page: page, Timeout: 60})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/extract", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var er extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !er.Success {
		if er.Error != nil {
			return nil, fmt.Errorf("[%s] %s", er.Error.Code, er.Error.Message)
		}
		return nil, fmt.Errorf("extraction failed")
	}
	return &er, nil
}

func printTable(stats []pageStats) {
	fmt.Println(strings.Repeat("─", 70))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Page\tProducts\tAvg Total\tAvg Fetch\tAvg Extract\tEngine\n")

	for _, ps := range stats {
		if ps.succeeded == 0 {
			fmt.Fprintf(w, "%d\tFAILED\t-\t-\t-\t%s\n", ps.page, ps.lastErr)
			continue
		}
		n := int64(ps.succeeded)
		fmt.Fprintf(w, "%d\t%d\t%dms\t%dms\t%dms\t%s\n",
			ps.page, ps.products, ps.totalMs/n, ps.fetchMs/n, ps.extractMs/n, ps.engine)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 70))
}
