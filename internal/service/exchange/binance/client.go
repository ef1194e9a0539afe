package binance

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/astrobot-dev/autotrader/internal/service/exchange"
	"github.com/shopspring/decimal"
)

type orderFill struct {
	Price string `json:"price"`
	Qty   string `json:"qty"`
}

const (
	prodBaseURL    = "https://api.binance.com"
	testnetBaseURL = "https://testnet.binance.vision"

	apiKeyHeader = "X-MBX-APIKEY"
)

var _ exchange.Client = (*Client)(nil)

type Config struct {
	APIKey    string
	SecretKey string
	// Testnet selects the sandbox endpoint. Signing is identical on both.
	Testnet bool

	// BaseURL overrides the endpoint entirely, for tests.
	BaseURL string
	// HTTPClient overrides the transport, for tests.
	HTTPClient *http.Client
}

// Client is a REST client for the Binance spot API.
// Signed endpoints get a millisecond timestamp and an HMAC-SHA256
// signature over the canonical query encoding of all other parameters,
// appended after them.
type Client struct {
	apiKey    string
	secretKey string
	baseURL   string
	cli       *http.Client
	now       func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("binance: api key and secret key are required")
	}

	baseURL := prodBaseURL
	if cfg.Testnet {
		baseURL = testnetBaseURL
	}
	if cfg.BaseURL != "" {
		baseURL = cfg.BaseURL
	}

	cli := cfg.HTTPClient
	if cli == nil {
		cli = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
		baseURL:   baseURL,
		cli:       cli,
		now:       time.Now,
	}, nil
}

// sign computes the hex HMAC-SHA256 of the canonical query encoding.
func (c *Client) sign(params url.Values) string {
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(params.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

// signParams appends timestamp and signature, in that order, last.
func (c *Client) signParams(params url.Values) url.Values {
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	params.Set("signature", c.sign(params))
	return params
}

func (c *Client) Ping(ctx context.Context) bool {
	if _, err := c.get(ctx, "/api/v3/ping", nil, false); err != nil {
		slog.Error("binance ping failed", "error", err)
		return false
	}
	return true
}

func (c *Client) GetCandles(ctx context.Context, pair exchange.TradingPair, interval exchange.Interval, limit int) ([]exchange.Kline, error) {
	params := url.Values{}
	params.Set("symbol", pair.ToString())
	params.Set("interval", interval.ToString())
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v3/klines", params, false)
	if err != nil {
		slog.Error("binance get klines failed", "symbol", pair.ToString(), "error", err)
		return nil, err
	}

	// Each row: [openTime, open, high, low, close, volume, closeTime, quoteAssetVolume, ...]
	var rows [][]any
	if err = json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: decoding klines: %v", exchange.ErrUnavailable, err)
	}

	klines := make([]exchange.Kline, 0, len(rows))
	for _, row := range rows {
		if len(row) < 8 {
			return nil, fmt.Errorf("%w: malformed kline row", exchange.ErrUnavailable)
		}
		k, err := convertKline(row)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", exchange.ErrUnavailable, err)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

func (c *Client) GetAccountBalances(ctx context.Context) ([]exchange.AccountBalance, error) {
	body, err := c.get(ctx, "/api/v3/account", url.Values{}, true)
	if err != nil {
		slog.Error("binance get account failed", "error", err)
		return nil, err
	}

	var resp struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding account: %v", exchange.ErrUnavailable, err)
	}

	balances := make([]exchange.AccountBalance, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return nil, fmt.Errorf("%w: balance %s: %v", exchange.ErrUnavailable, b.Asset, err)
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return nil, fmt.Errorf("%w: balance %s: %v", exchange.ErrUnavailable, b.Asset, err)
		}
		balances = append(balances, exchange.AccountBalance{Asset: b.Asset, Free: free, Locked: locked})
	}
	return balances, nil
}

func (c *Client) GetLastPrice(ctx context.Context, pair exchange.TradingPair) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("symbol", pair.ToString())

	body, err := c.get(ctx, "/api/v3/ticker/price", params, false)
	if err != nil {
		slog.Error("binance get ticker failed", "symbol", pair.ToString(), "error", err)
		return decimal.Zero, err
	}

	var resp struct {
		Price string `json:"price"`
	}
	if err = json.Unmarshal(body, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%w: decoding ticker: %v", exchange.ErrUnavailable, err)
	}
	price, err := decimal.NewFromString(resp.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: ticker price: %v", exchange.ErrUnavailable, err)
	}
	return price, nil
}

func (c *Client) PlaceOrder(ctx context.Context, req exchange.PlaceOrderReq) (exchange.OrderResult, error) {
	params := url.Values{}
	params.Set("symbol", req.Pair.ToString())
	params.Set("side", string(req.Side))
	params.Set("type", "MARKET")
	params.Set("quantity", req.Quantity.String())

	body, err := c.postForm(ctx, "/api/v3/order", params)
	if err != nil {
		slog.Error("binance place order failed",
			"symbol", req.Pair.ToString(), "side", req.Side, "quantity", req.Quantity, "error", err)
		return exchange.OrderResult{}, err
	}

	var resp struct {
		OrderID int64       `json:"orderId"`
		Fills   []orderFill `json:"fills"`
	}
	if err = json.Unmarshal(body, &resp); err != nil {
		return exchange.OrderResult{}, fmt.Errorf("%w: decoding order: %v", exchange.ErrUnavailable, err)
	}

	result := exchange.OrderResult{OrderID: strconv.FormatInt(resp.OrderID, 10)}
	if len(resp.Fills) > 0 {
		result.ExecutedPrice, err = decimal.NewFromString(resp.Fills[0].Price)
		if err != nil {
			return exchange.OrderResult{}, fmt.Errorf("%w: fill price: %v", exchange.ErrUnavailable, err)
		}
		for _, fill := range resp.Fills {
			qty, qerr := decimal.NewFromString(fill.Qty)
			if qerr != nil {
				return exchange.OrderResult{}, fmt.Errorf("%w: fill qty: %v", exchange.ErrUnavailable, qerr)
			}
			result.ExecutedQty = result.ExecutedQty.Add(qty)
		}
	}

	slog.Info("order executed",
		"symbol", req.Pair.ToString(), "side", req.Side, "quantity", req.Quantity, "orderId", result.OrderID)
	return result, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, signed bool) ([]byte, error) {
	if signed {
		params = c.signParams(params)
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		// signature must remain the last parameter on the wire
		reqURL += "?" + encodeSignedLast(params)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", exchange.ErrTransport, err)
	}
	if signed {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
	return c.do(req, endpoint)
}

func (c *Client) postForm(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params = c.signParams(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint,
		strings.NewReader(encodeSignedLast(params)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", exchange.ErrTransport, err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, endpoint)
}

func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.cli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", exchange.ErrTransport, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", exchange.ErrTransport, endpoint, err)
	}

	if err = classifyStatus(resp.StatusCode, endpoint, body); err != nil {
		return nil, err
	}
	return body, nil
}

func classifyStatus(code int, endpoint string, body []byte) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s: http %d", exchange.ErrAuthDenied, endpoint, code)
	case code >= 400 && code < 500 && endpoint == "/api/v3/order":
		return fmt.Errorf("%w: http %d: %s", exchange.ErrOrderRejected, code, string(body))
	default:
		return fmt.Errorf("%w: %s: http %d: %s", exchange.ErrUnavailable, endpoint, code, string(body))
	}
}

// encodeSignedLast encodes params keeping the signature as the trailing
// pair, the order the venue verifies against.
func encodeSignedLast(params url.Values) string {
	sig := params.Get("signature")
	if sig == "" {
		return params.Encode()
	}
	rest := url.Values{}
	for k, vs := range params {
		if k == "signature" {
			continue
		}
		rest[k] = vs
	}
	return rest.Encode() + "&signature=" + url.QueryEscape(sig)
}

func convertKline(row []any) (exchange.Kline, error) {
	openTime, ok := row[0].(float64)
	if !ok {
		return exchange.Kline{}, fmt.Errorf("kline open time: unexpected type %T", row[0])
	}
	closeTime, ok := row[6].(float64)
	if !ok {
		return exchange.Kline{}, fmt.Errorf("kline close time: unexpected type %T", row[6])
	}

	prices := make([]decimal.Decimal, 0, 6)
	for _, idx := range []int{1, 2, 3, 4, 5, 7} {
		s, ok := row[idx].(string)
		if !ok {
			return exchange.Kline{}, fmt.Errorf("kline field %d: unexpected type %T", idx, row[idx])
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return exchange.Kline{}, fmt.Errorf("kline field %d: %v", idx, err)
		}
		prices = append(prices, d)
	}

	return exchange.Kline{
		OpenTime:         time.UnixMilli(int64(openTime)),
		CloseTime:        time.UnixMilli(int64(closeTime)),
		Open:             prices[0],
		High:             prices[1],
		Low:              prices[2],
		Close:            prices[3],
		Volume:           prices[4],
		QuoteAssetVolume: prices[5],
	}, nil
}
