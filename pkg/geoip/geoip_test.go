package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLookup тестирует успешное обогащение адреса
func TestLookup(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"country": "United States",
			"region": "California",
			"city": "Mountain View",
			"latitude": 37.4,
			"longitude": -122.07,
			"timezone": {"id": "America/Los_Angeles"},
			"connection": {"isp": "Google LLC", "org": "Google Public DNS"}
		}`))
	}))
	defer srv.Close()

	client := New(time.Second, srv.URL)

	info, err := client.Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)

	assert.Equal(t, "United States", info.Country)
	assert.Equal(t, "California", info.Region)
	assert.Equal(t, "Mountain View", info.City)
	assert.Equal(t, "Google LLC", info.ISP)
	assert.Equal(t, "Google Public DNS", info.Org)
	assert.Equal(t, "America/Los_Angeles", info.Timezone)
	assert.InDelta(t, 37.4, info.Latitude, 0.001)
	assert.InDelta(t, -122.07, info.Longitude, 0.001)
}

// TestLookupNotFound тестирует ответ success=false от внешнего сервиса
func TestLookupNotFound(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "message": "Invalid IP address"}`))
	}))
	defer srv.Close()

	client := New(time.Second, srv.URL)

	info, err := client.Lookup(context.Background(), "not-an-ip")
	assert.Error(t, err)
	assert.Nil(t, info)
}

// TestLookupBadStatus тестирует нестандартный HTTP-статус внешнего сервиса
func TestLookupBadStatus(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(time.Second, srv.URL)

	info, err := client.Lookup(context.Background(), "8.8.8.8")
	assert.Error(t, err)
	assert.Nil(t, info)
}

// TestLookupUnavailable тестирует недоступность внешнего сервиса
func TestLookupUnavailable(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(time.Second, srv.URL)

	info, err := client.Lookup(context.Background(), "8.8.8.8")
	assert.Error(t, err)
	assert.Nil(t, info)
}
