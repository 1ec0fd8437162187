package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"heavymetal-notifier/internal/components/telemetry"
	"heavymetal-notifier/internal/errs"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientCalendar(t *testing.T) {
	page, err := os.ReadFile("testdata/2024.html")
	require.NoError(t, err)

	var requested string
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		agent = r.Header.Get("user-agent")
		w.Header().Set("content-type", "text/html")
		w.Write(page)
	}))
	defer server.Close()

	tel := telemetry.NewRecordingAPI()
	client := NewHTTPClient(HTTPClientOptions{
		BaseUrl:   server.URL,
		UserAgent: "heavymetal-notifier-test",
		Timeout:   time.Second * 5,
	}, tel)

	cal, err := Scrape(context.Background(), client, 2024, tel)
	require.NoError(t, err)
	require.Equal(t, "/2024_in_heavy_metal_music", requested)
	require.Equal(t, "heavymetal-notifier-test", agent)
	require.Equal(t, 14, cal.Len())

	require.NotEmpty(t, tel.Reports("debug", "resty.request"))
	require.Empty(t, tel.Reports("broken", ""))
}

func TestHTTPClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	tel := telemetry.NewRecordingAPI()
	client := NewHTTPClient(HTTPClientOptions{BaseUrl: server.URL}, tel)

	_, err := client.Calendar(context.Background(), 1800)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrRequestFail))
	require.Len(t, tel.Reports("warning", "resty.response"), 1)
}

func TestHTTPClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	tel := telemetry.NewRecordingAPI()
	client := NewHTTPClient(HTTPClientOptions{BaseUrl: url, Timeout: time.Second}, tel)

	_, err := client.Calendar(context.Background(), 2024)
	require.True(t, errors.Is(err, errs.ErrRequestFail))
	require.NotEmpty(t, tel.Reports("broken", report_client_calendar))
}
