package client

import (
	"context"
	"net/http"
	"net/url"

	"storefront-backend/models"
)

// Health is the /health response.
type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp int64  `json:"timestamp"`
}

// AdminSession is a successful admin login.
type AdminSession struct {
	Admin models.Admin `json:"admin"`
	Token string       `json:"token"`
}

// ClientSession is a successful customer login.
type ClientSession struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.Do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminLogin signs in an admin and keeps the token for later calls.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AdminSession, error) {
	var out AdminSession
	in := models.LoginRequest{Username: username, Password: password}
	if err := c.Do(ctx, http.MethodPost, "/admin/auth/login", in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// ClientLogin signs in a customer and keeps the token for later calls.
func (c *Client) ClientLogin(ctx context.Context, email, password string) (*ClientSession, error) {
	var out ClientSession
	in := models.ClientLoginRequest{Email: email, Password: password}
	if err := c.Do(ctx, http.MethodPost, "/client-auth/login", in, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

func (c *Client) ListProducts(ctx context.Context, query url.Values) (*models.ProductList, error) {
	path := "/products"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var out models.ProductList
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
