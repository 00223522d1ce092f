// Package client is a small HTTP client for the feed auth API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/s-fanou/feed/internal/common"
)

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type Profile struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Signup creates an account and returns the new user id.
func (c *Client) Signup(ctx context.Context, email, name, password string) (string, error) {
	req := map[string]string{"email": email, "name": name, "password": password}
	var resp struct {
		Message string `json:"message"`
		UserID  string `json:"userId"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return "", err
	}
	return resp.UserID, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context, token string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

// Ping calls the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var payload struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
		if len(payload.Data) > 0 {
			_ = json.Unmarshal(payload.Data, &apiErr.Fields)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
