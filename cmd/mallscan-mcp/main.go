package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// extractRequest mirrors the mallscan API request model.
type extractRequest struct {
	URL       string `json:"url"`
	Page      int    `json:"page,omitempty"`
	FetchMode string `json:"fetch_mode,omitempty"`
}

// exportRequest mirrors the mallscan export request model.
type exportRequest struct {
	extractRequest
	Format string `json:"format,omitempty"`
}

// extractResponse mirrors the mallscan API response model.
type extractResponse struct {
	Success  bool   `json:"success"`
	FinalURL string `json:"final_url"`
	Title    string `json:"title"`
	Total    int    `json:"total"`
	Products []struct {
		Code         string `json:"code"`
		Name         string `json:"name"`
		ThumbnailURL string `json:"thumbnail_url"`
		ProductURL   string `json:"product_url"`
		Source       string `json:"source"`
	} `json:"products"`
	EngineUsed string `json:"engine_used"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("MALLSCAN_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("MALLSCAN_API_KEY")

	s := server.NewMCPServer(
		"mallscan",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractTool := mcp.NewTool("extract_products",
		mcp.WithDescription("Scan a Kolon Mall listing page and return the product references found in its anchors and embedded hydration state (code, name, thumbnail, product URL)."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The Kolon Mall listing page URL to scan"),
		),
		mcp.WithNumber("page",
			mcp.Description("Listing page number; rewrites the page query parameter before fetching"),
		),
		mcp.WithString("fetch_mode",
			mcp.Description("Fetching strategy: 'auto' (default, HTTP with browser fallback), 'http', or 'browser'"),
			mcp.Enum("auto", "http", "browser"),
		),
	)
	s.AddTool(extractTool, handleExtractProducts(apiURL, apiKey))

	exportTool := mcp.NewTool("export_products",
		mcp.WithDescription("Scan a Kolon Mall listing page and return the product list as delimited text for saving or copying."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The Kolon Mall listing page URL to scan"),
		),
		mcp.WithString("format",
			mcp.Description("Export format: 'csv' (default), 'tsv', or 'codes' (product codes only, one per line)"),
			mcp.Enum("csv", "tsv", "codes"),
		),
		mcp.WithNumber("page",
			mcp.Description("Listing page number; rewrites the page query parameter before fetching"),
		),
	)
	s.AddTool(exportTool, handleExportProducts(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleExtractProducts(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := extractRequest{
			URL:       url,
			Page:      pageArg(request),
			FetchMode: request.GetString("fetch_mode", ""),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/extract", reqBody)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var extractResp extractResponse
		if err := json.Unmarshal(respBody, &extractResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !extractResp.Success {
			errMsg := "extraction failed"
			if extractResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", extractResp.Error.Code, extractResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Page: %s\nTitle: %s\nProducts: %d\n\n", extractResp.FinalURL, extractResp.Title, extractResp.Total)
		for _, p := range extractResp.Products {
			fmt.Fprintf(&b, "%s\t%s\t%s\n", p.Code, p.Name, p.ProductURL)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleExportProducts(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		reqBody := exportRequest{
			extractRequest: extractRequest{
				URL:  url,
				Page: pageArg(request),
			},
			Format: request.GetString("format", ""),
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/export", reqBody)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		// The export endpoint returns the serialized file on success and a
		// JSON error envelope on failure.
		var errEnvelope extractResponse
		if json.Unmarshal(respBody, &errEnvelope) == nil && errEnvelope.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", errEnvelope.Error.Code, errEnvelope.Error.Message)), nil
		}

		return mcp.NewToolResultText(string(respBody)), nil
	}
}

// pageArg reads the optional numeric "page" argument.
func pageArg(request mcp.CallToolRequest) int {
	if v, ok := request.GetArguments()["page"]; ok {
		if n, ok := v.(float64); ok {
			return int(n)
		}
	}
	return 0
}

// apiPost sends a POST request to the mallscan API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
