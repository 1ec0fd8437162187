package metallum

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"heavymetal-notifier/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientPage(t *testing.T) {
	var queries []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		queries = append(queries, map[string]string{
			"path":            r.URL.Path,
			"releaseYearFrom": q.Get("releaseYearFrom"),
			"releaseYearTo":   q.Get("releaseYearTo"),
			"iDisplayStart":   q.Get("iDisplayStart"),
			"iDisplayLength":  q.Get("iDisplayLength"),
		})

		start, _ := strconv.Atoi(q.Get("iDisplayStart"))
		body, err := os.ReadFile(FixturePath("testdata", 2024, start/PageSize))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/json")
		w.Write(body)
	}))
	defer server.Close()

	tel := telemetry.NewRecordingAPI()
	client := NewHTTPClient(HTTPClientOptions{
		BaseUrl:           server.URL,
		RequestsPerSecond: 1000,
		Timeout:           time.Second * 5,
	}, tel)

	cal, err := Scrape(context.Background(), client, 2024, Options{}, tel)
	require.NoError(t, err)
	require.Equal(t, 4, cal.Len())

	require.Equal(t, []map[string]string{
		{"path": searchEndpoint, "releaseYearFrom": "2024", "releaseYearTo": "2024", "iDisplayStart": "0", "iDisplayLength": "100"},
		{"path": searchEndpoint, "releaseYearFrom": "2024", "releaseYearTo": "2024", "iDisplayStart": "100", "iDisplayLength": "100"},
		{"path": searchEndpoint, "releaseYearFrom": "2024", "releaseYearTo": "2024", "iDisplayStart": "200", "iDisplayLength": "100"},
	}, queries)
}

func TestHTTPClientLenient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tel := telemetry.NewRecordingAPI()
	client := NewHTTPClient(HTTPClientOptions{BaseUrl: server.URL, RequestsPerSecond: 1000}, tel)

	records, err := client.Page(context.Background(), 2024, 0)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Len(t, tel.Reports("warning", report_client_page), 1)

	cal, err := Scrape(context.Background(), client, 2024, Options{}, tel)
	require.NoError(t, err)
	require.Equal(t, 0, cal.Len())
}

func TestHTTPClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	tel := telemetry.NewRecordingAPI()
	client := NewHTTPClient(HTTPClientOptions{BaseUrl: url, Timeout: time.Second, RequestsPerSecond: 1000}, tel)

	records, err := client.Page(context.Background(), 2024, 0)
	require.NoError(t, err)
	require.Empty(t, records)
	require.NotEmpty(t, tel.Reports("broken", report_client_page))
}
