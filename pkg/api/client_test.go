package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabletools/core/errors"
	"github.com/tabletools/core/pkg/models"
)

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/notifications", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "true", r.URL.Query().Get("unread"))

		json.NewEncoder(w).Encode(ListResult{
			Items: []*models.Notification{
				{ID: "n1", Type: models.TypeOrder, Title: "New Order", Priority: models.PriorityHigh},
			},
			UnreadCount: 7,
			Total:       42,
			Page:        2,
		})
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, nil)
	result, err := client.List(context.Background(), ListOptions{Page: 2, Unread: true})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, "n1", result.Items[0].ID)
	assert.Equal(t, 7, result.UnreadCount)
	assert.Equal(t, 42, result.Total)
}

func TestMarkRead(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, nil)
	require.NoError(t, client.MarkRead(context.Background(), "n1"))
	assert.Equal(t, "/api/notifications/n1/read", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestMarkReadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, nil)
	err := client.MarkRead(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotificationNotFound))
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"database down"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, nil)
	err := client.MarkAllRead(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeAPIStatus))

	var terr *errors.TableError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "database down", terr.Details["message"])
}

func TestDeleteAndClearAll(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClientWithHTTP(srv.URL, nil)
	require.NoError(t, client.Delete(context.Background(), "n9"))
	require.NoError(t, client.ClearAll(context.Background()))
	assert.Equal(t, []string{"/api/notifications/n9", "/api/notifications"}, paths)
}

func TestConnectionRefused(t *testing.T) {
	client := NewClientWithHTTP("http://127.0.0.1:1", nil)
	err := client.ClearAll(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeAPIRequest))
}

func TestHTTPBaseFromWebsocketURL(t *testing.T) {
	assert.Equal(t, "http://host:4000", httpBase("ws://host:4000/ws"))
	assert.Equal(t, "https://host", httpBase("wss://host"))
	assert.Equal(t, "https://host", httpBase("https://host"))
}
