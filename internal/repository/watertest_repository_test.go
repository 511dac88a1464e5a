package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watercare/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewAPIClient(server.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return client
}

func TestNewAPIClient_RequiresBaseURL(t *testing.T) {
	_, err := NewAPIClient("", time.Second)
	require.Error(t, err)
}

func TestWaterTestRepository_List(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/watertests", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"1","customerName":"Ravi","mobile":"9876543210","place":"Chennai","waterSource":"Borewell",
			 "tds":"450","ironPPM":"0.3","pipelineType":"PVC","filterInstalled":true,"freeServicesTotal":3,
			 "servicesDone":1,"serviceHistory":["2024-02-01"],"createdAt":"2024-01-15T10:30:00.000Z"}
		]`))
	})

	records, err := NewWaterTestRepository(client).List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "Ravi", rec.CustomerName)
	assert.Equal(t, models.WaterSourceBorewell, rec.WaterSource)
	assert.Equal(t, "0.3", rec.IronPPM)
	assert.Equal(t, []string{"2024-02-01"}, rec.ServiceHistory)
	assert.Equal(t, "2024-01-15", rec.CreatedDate(time.UTC))
}

func TestWaterTestRepository_ListEmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	records, err := NewWaterTestRepository(client).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestWaterTestRepository_ListServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := NewWaterTestRepository(client).List(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "boom", statusErr.Body)
}

func TestWaterTestRepository_Create(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/watertests", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body models.CustomerRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 3, body.FreeServicesTotal)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	})

	record := &models.CustomerRecord{
		ID:                "abc",
		CustomerName:      "A",
		FilterInstalled:   true,
		FreeServicesTotal: 3,
		ServiceHistory:    []string{},
	}
	created, err := NewWaterTestRepository(client).Create(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "abc", created.ID)
}

func TestWaterTestRepository_CreateEmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	record := &models.CustomerRecord{ID: "abc", CustomerName: "A"}
	created, err := NewWaterTestRepository(client).Create(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, *record, *created)
}

func TestWaterTestRepository_UpdateServices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/watertests/42", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body, 2)
		assert.EqualValues(t, 1, body["servicesDone"])

		w.Write([]byte(`{"id":"42","servicesDone":1,"freeServicesTotal":3,"serviceHistory":["2024-03-01"]}`))
	})

	updated, err := NewWaterTestRepository(client).UpdateServices(context.Background(), "42", models.ServiceUpdate{
		ServicesDone:   1,
		ServiceHistory: []string{"2024-03-01"},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 1, updated.ServicesDone)
}

func TestWaterTestRepository_UpdateServicesNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := NewWaterTestRepository(client).UpdateServices(context.Background(), "missing", models.ServiceUpdate{})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestWaterTestRepository_Ping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, NewWaterTestRepository(client).Ping(context.Background()))
}

func TestNotificationGateway_SendWhatsApp(t *testing.T) {
	var got models.Notification
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send-whatsapp", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true}`))
	})

	n := &models.Notification{CustomerName: "A", Mobile: "9999999999", TDS: "200"}
	require.NoError(t, NewNotificationGateway(client).SendWhatsApp(context.Background(), n))
	assert.Equal(t, *n, got)
}

func TestNotificationGateway_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := NewNotificationGateway(client).SendWhatsApp(context.Background(), &models.Notification{Mobile: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
