// Package cli implements the terminal chat client: sign in over the HTTP
// API, then talk over the websocket.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// apiClient is a thin wrapper over the server's REST surface.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type accountInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authData struct {
	User         accountInfo `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

func (c *apiClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding server response: %w", err)
	}
	if env.Status != "success" {
		if env.Error != "" {
			return errors.New(env.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

// Login exchanges credentials for a token pair.
func (c *apiClient) Login(ctx context.Context, email, password string) (*authData, error) {
	var data authData
	err := c.post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Register creates an account and returns the first token pair.
func (c *apiClient) Register(ctx context.Context, name, email, password string) (*authData, error) {
	var data authData
	err := c.post(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}
