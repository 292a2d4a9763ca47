package sheets_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/quartermaster/pkg/sheets"
)

func testClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = nil
	c.RetryMax = 1
	c.RetryWaitMin = time.Millisecond
	c.RetryWaitMax = time.Millisecond
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return c
}

func TestA1Range(t *testing.T) {
	assert.Equal(t, "B2", sheets.A1Range("", "B2"))
	assert.Equal(t, "'Army Supplies'!B2", sheets.A1Range("Army Supplies", "B2"))
	assert.Equal(t, "'Ragnar''s Host'!C4", sheets.A1Range("Ragnar's Host", "C4"))
}

func TestNormalizeCell(t *testing.T) {
	assert.Equal(t, "B2", sheets.NormalizeCell(" $b$2 "))
	assert.Equal(t, "AA10", sheets.NormalizeCell("aa10"))
}

func TestGoogleClient_GetCellValues(t *testing.T) {
	var gotQuery map[string][]string
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("X-Goog-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"spreadsheetId": "sheet-1",
			"valueRanges": [
				{"range": "'Supplies'!B2", "majorDimension": "ROWS", "values": [[1500]]},
				{"range": "'Supplies'!B3", "majorDimension": "ROWS", "values": [["1,250"]]},
				{"range": "'Supplies'!B4", "majorDimension": "ROWS"},
				{"range": "'Supplies'!B5", "majorDimension": "ROWS", "values": [[true]]},
				{"range": "'Supplies'!B6", "majorDimension": "ROWS", "values": [[""]]}
			]
		}`)
	}))
	defer server.Close()

	client := sheets.NewGoogleClient(sheets.GoogleOptions{BaseURL: server.URL, APIKey: "k", Client: testClient()})
	values, err := client.GetCellValues(context.Background(), "sheet-1", "Supplies", []string{"B2", "b3", "B4", "B5", "B6"})
	require.NoError(t, err)

	assert.Equal(t, "/v4/spreadsheets/sheet-1/values:batchGet", gotPath)
	assert.Equal(t, []string{"'Supplies'!B2", "'Supplies'!B3", "'Supplies'!B4", "'Supplies'!B5", "'Supplies'!B6"}, gotQuery["ranges"])
	assert.Equal(t, []string{"UNFORMATTED_VALUE"}, gotQuery["valueRenderOption"])
	assert.Equal(t, "k", gotKey)
	assert.NotContains(t, gotQuery, "key")

	assert.Equal(t, json.Number("1500"), values["B2"])
	assert.Equal(t, "1,250", values["B3"])
	assert.Equal(t, true, values["B5"])
	assert.NotContains(t, values, "B4")
	assert.NotContains(t, values, "B6")
}

func TestGoogleClient_TransportErrorHidesSecrets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := server.URL
	server.Close()

	client := sheets.NewGoogleClient(sheets.GoogleOptions{BaseURL: base, APIKey: "SUPERSECRETKEY", Client: testClient()})

	_, err := client.GetCellValues(context.Background(), "secret-sheet-id", "Supplies", []string{"B2"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SUPERSECRETKEY")
	assert.NotContains(t, err.Error(), "secret-sheet-id")
	assert.Contains(t, err.Error(), base)

	err = client.SetCellValue(context.Background(), "secret-sheet-id", "Supplies", "B2", decimal.NewFromInt(1))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SUPERSECRETKEY")
	assert.NotContains(t, err.Error(), "secret-sheet-id")
}

func TestGoogleClient_GetCellValues_Empty(t *testing.T) {
	client := sheets.NewGoogleClient(sheets.GoogleOptions{BaseURL: "http://127.0.0.1:0", Client: testClient()})
	values, err := client.GetCellValues(context.Background(), "sheet-1", "Supplies", nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestGoogleClient_GetCellValues_RangeMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"valueRanges": [{"values": [[1]]}]}`)
	}))
	defer server.Close()

	client := sheets.NewGoogleClient(sheets.GoogleOptions{BaseURL: server.URL, Client: testClient()})
	_, err := client.GetCellValues(context.Background(), "sheet-1", "Supplies", []string{"B2", "B3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requested 2 ranges, got 1")
}

func TestGoogleClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error": {"code": 403, "message": "The caller does not have permission"}}`)
	}))
	defer server.Close()

	client := sheets.NewGoogleClient(sheets.GoogleOptions{BaseURL: server.URL, Client: testClient()})
	_, err := client.GetCellValues(context.Background(), "sheet-1", "Supplies", []string{"B2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "does not have permission")
}

func TestGoogleClient_SetCellValue(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	var gotQuery map[string][]string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = io.WriteString(w, `{"updatedCells": 1}`)
	}))
	defer server.Close()

	client := sheets.NewGoogleClient(sheets.GoogleOptions{BaseURL: server.URL + "/", AccessToken: "tok", Client: testClient()})
	err := client.SetCellValue(context.Background(), "sheet-1", "Army Supplies", "$b$2", decimal.RequireFromString("1495.5"))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/v4/spreadsheets/sheet-1/values/'Army Supplies'!B2", gotPath)
	assert.Equal(t, []string{"RAW"}, gotQuery["valueInputOption"])
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "'Army Supplies'!B2", gotBody["range"])
	assert.Equal(t, []any{[]any{1495.5}}, gotBody["values"])
}
