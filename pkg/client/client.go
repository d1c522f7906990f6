// Package client is the HTTP client of the coupon service used by the app
// side: catalog, claimed coupons and the merchant validation flow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New builds a client for baseURL. A nil httpClient uses one with a 15s timeout.
func New(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: session,
	}
}

func (c *Client) Session() *Session {
	return c.session
}

// do sends one request and decodes a JSON body into out. It is the only place
// that looks at auth failures: a revoked or rejected session is signed out
// here before the error reaches the caller.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	var errBody struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	}
	if json.Unmarshal(raw, &errBody) == nil {
		apiErr.Code = errBody.Code
		apiErr.Message = errBody.Message
		apiErr.Field = errBody.Field
	}
	if apiErr.endsSession() && c.session != nil {
		c.session.SignOut(apiErr)
	}
	return nil, apiErr
}

// Catalog

func (c *Client) ActiveCampaigns(ctx context.Context, cityID, categoryID int64) ([]Campaign, error) {
	q := url.Values{}
	if cityID > 0 {
		q.Set("cidade_id", fmt.Sprint(cityID))
	}
	if categoryID > 0 {
		q.Set("categoria_id", fmt.Sprint(categoryID))
	}
	path := "/campanhas/active/all"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []Campaign
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/lojas/categorias", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CampaignCoupons(ctx context.Context, campaignID int64) ([]Coupon, error) {
	var out []Coupon
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/campanhas/%d/cupons", campaignID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CouponDetail(ctx context.Context, couponID int64) (*CouponDetail, error) {
	var out CouponDetail
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/cupons/%d", couponID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Claim takes one unit of the coupon for the signed-in user.
func (c *Client) Claim(ctx context.Context, couponID int64) (*Instance, error) {
	var out Instance
	body := map[string]int64{"cupomId": couponID}
	if err := c.do(ctx, http.MethodPost, "/cupons/user", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ledger

func (c *Client) MyCoupons(ctx context.Context) ([]Instance, error) {
	var out []Instance
	if err := c.do(ctx, http.MethodGet, "/cupons/user/meuscupons", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyCoupon(ctx context.Context, instanceID int64) (*Instance, error) {
	var out Instance
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/cupons/user/meuscupons/%d", instanceID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QRCode returns the PNG the merchant scans.
func (c *Client) QRCode(ctx context.Context, instanceID int64) ([]byte, error) {
	return c.send(ctx, http.MethodGet, fmt.Sprintf("/cupons/user/meuscupons/%d/qrcode", instanceID), nil)
}

// Validation

func (c *Client) Resolve(ctx context.Context, code string) (*Validation, error) {
	var out Validation
	path := "/cupons/lojista/verificar/cupom/" + url.PathEscape(code)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmUse marks the coupon behind code as used. userEmail is the e-mail of
// the customer the code was resolved to.
func (c *Client) ConfirmUse(ctx context.Context, code, userEmail string) (*Validation, error) {
	var out Validation
	body := struct {
		Status    int    `json:"status"`
		UserEmail string `json:"userEmail,omitempty"`
	}{Status: StatusUsed, UserEmail: userEmail}
	path := "/cupons/lojista/" + url.PathEscape(code) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LastValidated(ctx context.Context) ([]Validation, error) {
	var out []Validation
	if err := c.do(ctx, http.MethodGet, "/cupons/lojista/ultimos-validados", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
