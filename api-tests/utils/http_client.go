// Package utils chứa tiện ích dùng chung cho bộ test API.
package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient là HTTP client cho test, tự gắn header danh tính actor.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	actorID   string
	actorRole string
}

// NewHTTPClient tạo client với base URL và timeout (giây).
func NewHTTPClient(baseURL string, timeoutSeconds int) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}
}

// SetActor đặt danh tính actor cho các request tiếp theo
// (X-Actor-ID / X-Actor-Role).
func (c *HTTPClient) SetActor(actorID, actorRole string) {
	c.actorID = actorID
	c.actorRole = actorRole
}

func (c *HTTPClient) do(method, path string, payload interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal payload: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actorID != "" {
		req.Header.Set("X-Actor-ID", c.actorID)
	}
	if c.actorRole != "" {
		req.Header.Set("X-Actor-Role", c.actorRole)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, body, nil
}

// GET gửi GET request.
func (c *HTTPClient) GET(path string) (*http.Response, []byte, error) {
	return c.do(http.MethodGet, path, nil)
}

// POST gửi POST request với payload JSON.
func (c *HTTPClient) POST(path string, payload interface{}) (*http.Response, []byte, error) {
	return c.do(http.MethodPost, path, payload)
}

// PUT gửi PUT request với payload JSON.
func (c *HTTPClient) PUT(path string, payload interface{}) (*http.Response, []byte, error) {
	return c.do(http.MethodPut, path, payload)
}

// ParseData đọc response envelope {status, data} và trả về phần data.
func ParseData(body []byte) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	data, _ := result["data"].(map[string]interface{})
	return data, nil
}
