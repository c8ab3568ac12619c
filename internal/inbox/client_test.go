package inbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/messages", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"_id":"m1","sender_id":"a","recipient_id":"b","message_content":"hi","sent_at":"2024-05-01T12:00:00Z","is_read":false}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	messages, err := client.FetchMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "m1", messages[0].ID)
	assert.Equal(t, "hi", messages[0].Content)
}

func TestClientFetchMessagesNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	_, err := client.FetchMessages(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.StatusCode)
}

func TestClientFetchMessagesBadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"oops":`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	_, err := client.FetchMessages(context.Background())

	var formatErr *FormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestClientFetchMessagesTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "tok", nil)
	_, err := client.FetchMessages(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.StatusCode)
}

func TestClientSendMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/message/send", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "u2", r.PostFormValue("recipient_id"))
		assert.Equal(t, "hello", r.PostFormValue("message_content"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	require.NoError(t, client.SendMessage(context.Background(), "u2", "hello"))
}

func TestClientSendMessageFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	err := client.SendMessage(context.Background(), "u2", "hello")

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, http.StatusBadRequest, sendErr.StatusCode)
}

func TestClientMarkRead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/message/mark-read", r.URL.Path)
		var req struct {
			MessageIDs []string `json:"message_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"m1", "m2"}, req.MessageIDs)
		w.Write([]byte(`{"status":"success","modified_count":2}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	require.NoError(t, client.MarkRead(context.Background(), []string{"m1", "m2"}))
}

func TestClientMarkReadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)
	err := client.MarkRead(context.Background(), []string{"m1"})

	var markErr *MarkReadError
	assert.ErrorAs(t, err, &markErr)
}

func TestClientMeAndFamilyMembers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/me":
			w.Write([]byte(`{"id":"u1","family_id":"f1","username":"mom","role":"parent"}`))
		case "/api/family/members":
			w.Write([]byte(`{"members":[{"id":"u1","username":"mom"},{"id":"u2","username":"kid"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "tok", nil)

	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)
	assert.Equal(t, "parent", me.Role)

	members, err := client.FamilyMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "kid", members[1].Username)
}
