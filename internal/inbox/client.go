package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"messaging-service/internal/models"
)

// Client talks to the messaging service HTTP API on behalf of one user.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a Client. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// FetchMessages retrieves the caller's full direct-message list in
// chronological order, as the server stores it.
func (c *Client) FetchMessages(ctx context.Context) ([]models.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/messages", "", nil)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}
	messages, err := decodeMessages(resp.Body)
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	return messages, nil
}

// SendMessage posts a form-encoded direct message to the given recipient.
func (c *Client) SendMessage(ctx context.Context, recipientID, content string) error {
	form := url.Values{
		"recipient_id":    {recipientID},
		"message_content": {content},
	}
	resp, err := c.do(ctx, http.MethodPost, "/message/send", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return &SendError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SendError{StatusCode: resp.StatusCode}
	}
	return nil
}

// MarkRead flags the given message ids as read for the caller. The server
// only flips rows addressed to the caller that are still unread.
func (c *Client) MarkRead(ctx context.Context, ids []string) error {
	body, err := json.Marshal(map[string][]string{"message_ids": ids})
	if err != nil {
		return &MarkReadError{Err: err}
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/message/mark-read", "application/json", bytes.NewReader(body))
	if err != nil {
		return &MarkReadError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &MarkReadError{StatusCode: resp.StatusCode}
	}
	return nil
}

// Me returns the authenticated user's identity.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/api/me", &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// FamilyMembers returns the caller's family roster, used to build the
// display-name directory.
func (c *Client) FamilyMembers(ctx context.Context) ([]models.User, error) {
	var payload struct {
		Members []models.User `json:"members"`
	}
	if err := c.getJSON(ctx, "/api/family/members", &payload); err != nil {
		return nil, err
	}
	return payload.Members, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, "", nil)
	if err != nil {
		return &FetchError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FormatError{Err: err}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}
