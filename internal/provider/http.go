package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultTimeout = 15 * time.Second

// HTTPClient talks to the identity provider's REST API.
type HTTPClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewHTTPClient returns a provider client for the given base URL and API key.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type accountPayload struct {
	UID         string `json:"uid"`
	PhoneNumber string `json:"phoneNumber"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// VerifyToken posts the token for verification and resolves its identity.
func (c *HTTPClient) VerifyToken(ctx context.Context, token string) (Identity, error) {
	var out accountPayload
	err := c.do(ctx, http.MethodPost, "/v1/tokens/verify", map[string]string{"token": token}, &out)
	if err != nil {
		if isStatus(err, http.StatusUnauthorized) || isStatus(err, http.StatusForbidden) {
			return Identity{}, ErrInvalidToken
		}
		return Identity{}, err
	}
	return Identity{UID: out.UID, PhoneNumber: out.PhoneNumber, DisplayName: out.DisplayName, Email: out.Email}, nil
}

// LookupByPhone resolves an account by phone number.
func (c *HTTPClient) LookupByPhone(ctx context.Context, phoneNumber string) (Account, error) {
	var out accountPayload
	err := c.do(ctx, http.MethodGet, "/v1/accounts/phone/"+url.PathEscape(phoneNumber), nil, &out)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return Account{UID: out.UID, PhoneNumber: out.PhoneNumber, DisplayName: out.DisplayName, Email: out.Email}, nil
}

// LookupByUID resolves an account by uid.
func (c *HTTPClient) LookupByUID(ctx context.Context, uid string) (Account, error) {
	var out accountPayload
	err := c.do(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(uid), nil, &out)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return Account{UID: out.UID, PhoneNumber: out.PhoneNumber, DisplayName: out.DisplayName, Email: out.Email}, nil
}

// MintCredential asks the provider for a short-lived custom credential.
func (c *HTTPClient) MintCredential(ctx context.Context, uid string) (string, error) {
	var out struct {
		Credential string `json:"credential"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/accounts/"+url.PathEscape(uid)+"/credentials", nil, &out)
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return out.Credential, nil
}

type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider: request failed status=%d body=%s", e.status, e.body)
}

func isStatus(err error, status int) bool {
	se, ok := err.(*statusError)
	return ok && se.status == status
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{status: resp.StatusCode, body: string(b)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
