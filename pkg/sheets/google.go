package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the Google Sheets API endpoint.
const DefaultBaseURL = "https://sheets.googleapis.com"

// GoogleOptions configures the Sheets REST client.
type GoogleOptions struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	Client      *retryablehttp.Client
}

// GoogleClient reads and writes cells through the Sheets v4 values API.
type GoogleClient struct {
	baseURL     string
	apiKey      string
	accessToken string
	client      *retryablehttp.Client
}

// NewGoogleClient creates a Sheets client. Reads work with an API key on
// public sheets; writes need an OAuth access token.
func NewGoogleClient(opts GoogleOptions) *GoogleClient {
	client := opts.Client
	if client == nil {
		client = retryablehttp.NewClient()
		client.Logger = nil
		client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &GoogleClient{
		baseURL:     base,
		apiKey:      opts.APIKey,
		accessToken: opts.AccessToken,
		client:      client,
	}
}

func (g *GoogleClient) GetCellValues(ctx context.Context, sheetID, tab string, cells []string) (map[string]any, error) {
	if len(cells) == 0 {
		return map[string]any{}, nil
	}

	q := url.Values{}
	for _, cell := range cells {
		q.Add("ranges", A1Range(tab, NormalizeCell(cell)))
	}
	q.Set("valueRenderOption", "UNFORMATTED_VALUE")
	q.Set("majorDimension", "ROWS")

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values:batchGet?%s", g.baseURL, url.PathEscape(sheetID), q.Encode())
	body, err := g.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("batch get %d cells: %w", len(cells), err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("batch get: invalid JSON response")
	}
	ranges := gjson.GetBytes(body, "valueRanges").Array()
	if len(ranges) != len(cells) {
		return nil, fmt.Errorf("batch get: requested %d ranges, got %d", len(cells), len(ranges))
	}

	values := make(map[string]any, len(cells))
	for i, vr := range ranges {
		if v, ok := cellValue(vr.Get("values.0.0")); ok {
			values[NormalizeCell(cells[i])] = v
		}
	}
	return values, nil
}

func (g *GoogleClient) SetCellValue(ctx context.Context, sheetID, tab, cell string, value decimal.Decimal) error {
	rng := A1Range(tab, NormalizeCell(cell))

	payload, err := json.Marshal(map[string]any{
		"range":          rng,
		"majorDimension": "ROWS",
		"values":         [][]any{{json.Number(value.String())}},
	})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	q := url.Values{}
	q.Set("valueInputOption", "RAW")

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?%s",
		g.baseURL, url.PathEscape(sheetID), url.PathEscape(rng), q.Encode())
	if _, err := g.do(ctx, http.MethodPut, endpoint, payload); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (g *GoogleClient) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var body any
	if payload != nil {
		body = payload
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.apiKey != "" {
		req.Header.Set("X-Goog-Api-Key", g.apiKey)
	}
	if g.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.accessToken)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", redactURLError(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(data, "error.message").String(); msg != "" {
			return nil, fmt.Errorf("sheets returned status %d: %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("sheets returned status %d", resp.StatusCode)
	}
	return data, nil
}

// redactURLError trims a transport error's URL down to scheme and host.
func redactURLError(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	host := "[REDACTED]"
	if u, perr := url.Parse(uerr.URL); perr == nil && u.Host != "" {
		host = u.Scheme + "://" + u.Host
	}
	return &url.Error{Op: uerr.Op, URL: host, Err: uerr.Err}
}

// cellValue converts one JSON cell into a raw value. Empty strings and nulls
// count as absent.
func cellValue(v gjson.Result) (any, bool) {
	if !v.Exists() {
		return nil, false
	}
	switch v.Type {
	case gjson.Number:
		return json.Number(v.Raw), true
	case gjson.String:
		if v.Str == "" {
			return nil, false
		}
		return v.Str, true
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	}
	return nil, false
}
