package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/corelab/internal/model"
)

// Client talks to a CoreLab server over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the server at baseURL. A zero timeout
// leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetPersons(ctx context.Context) ([]model.Person, error) {
	var persons []model.Person
	err := c.do(ctx, OpGetPersons, http.MethodGet, "/api/persons", nil, &persons)
	return persons, err
}

func (c *Client) CreatePerson(ctx context.Context, name, notes string) (int64, error) {
	var resp IDResponse
	err := c.do(ctx, OpCreatePerson, http.MethodPost, "/api/persons",
		CreatePersonRequest{Name: name, Notes: notes}, &resp)
	return resp.ID, err
}

func (c *Client) UpdatePerson(ctx context.Context, id int64, name, notes string, isActive bool) error {
	return c.do(ctx, OpUpdatePerson, http.MethodPut, fmt.Sprintf("/api/persons/%d", id),
		UpdatePersonRequest{Name: name, Notes: notes, IsActive: isActive}, nil)
}

func (c *Client) GetConversations(ctx context.Context, personID int64) ([]model.Conversation, error) {
	var convs []model.Conversation
	err := c.do(ctx, OpGetConversations, http.MethodGet,
		fmt.Sprintf("/api/persons/%d/conversations", personID), nil, &convs)
	return convs, err
}

func (c *Client) CreateConversation(ctx context.Context, personID int64, content, convContext string) (int64, error) {
	var resp IDResponse
	err := c.do(ctx, OpCreateConversation, http.MethodPost,
		fmt.Sprintf("/api/persons/%d/conversations", personID),
		CreateConversationRequest{Content: content, Context: convContext}, &resp)
	return resp.ID, err
}

func (c *Client) GetMemories(ctx context.Context, personID int64) ([]model.Memory, error) {
	var mems []model.Memory
	err := c.do(ctx, OpGetMemories, http.MethodGet,
		fmt.Sprintf("/api/persons/%d/memories", personID), nil, &mems)
	return mems, err
}

func (c *Client) CreateMemory(ctx context.Context, personID int64, key, value string, importance int) (int64, error) {
	var resp IDResponse
	err := c.do(ctx, OpCreateMemory, http.MethodPost,
		fmt.Sprintf("/api/persons/%d/memories", personID),
		CreateMemoryRequest{Key: key, Value: value, Importance: importance}, &resp)
	return resp.ID, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return wrapErr(op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return wrapErr(op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", ulid.Make().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return wrapErr(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if json.Unmarshal(b, &errResp) == nil && errResp.Error != "" {
			return &Error{Op: op, Message: errResp.Error}
		}
		return &Error{Op: op, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrapErr(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
