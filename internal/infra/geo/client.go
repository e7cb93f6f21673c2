package geo

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/naass/lead-api/internal/entity"
)

const (
	DefaultPublicIPURL = "https://api.ipify.org"
	DefaultLookupURL   = "http://ip-api.com/json"
	DefaultTimeout     = 2 * time.Second
)

type Client struct {
	publicIPURL string
	lookupURL   string
	httpClient  *resty.Client
	logger      zerolog.Logger
	onError     func(service string)
}

type Options struct {
	PublicIPURL string
	LookupURL   string
	Timeout     time.Duration
	// OnError is called with "ipify" or "ip-api" whenever a lookup fails.
	OnError func(service string)
}

func NewClient(opts Options, logger zerolog.Logger) *Client {
	if opts.PublicIPURL == "" {
		opts.PublicIPURL = DefaultPublicIPURL
	}
	if opts.LookupURL == "" {
		opts.LookupURL = DefaultLookupURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.OnError == nil {
		opts.OnError = func(string) {}
	}

	return &Client{
		publicIPURL: strings.TrimRight(opts.PublicIPURL, "/"),
		lookupURL:   strings.TrimRight(opts.LookupURL, "/"),
		httpClient: resty.New().
			SetHeader("User-Agent", "naass-lead-api/1.0").
			SetTimeout(opts.Timeout),
		logger:  logger.With().Str("component", "geo").Logger(),
		onError: opts.OnError,
	}
}

type ipifyResponse struct {
	IP string `json:"ip"`
}

type ipAPIResponse struct {
	Status     string  `json:"status"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Country    string  `json:"country"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Resolve swaps a loopback address for the host's public IP and then looks up
// its location. Both steps are best-effort.
func (c *Client) Resolve(ctx context.Context, ip string) (string, *entity.Location) {
	if IsLoopback(ip) {
		if public, err := c.publicIP(ctx); err != nil {
			c.onError("ipify")
			c.logger.Debug().Err(err).Str("ip", ip).Msg("could not fetch public IP, using local")
		} else if public != "" {
			ip = public
		}
	}

	if net.ParseIP(ip) == nil || IsLoopback(ip) {
		return ip, nil
	}

	loc, err := c.locate(ctx, ip)
	if err != nil {
		c.onError("ip-api")
		c.logger.Debug().Err(err).Str("ip", ip).Msg("could not fetch location data")
		return ip, nil
	}
	return ip, loc
}

func (c *Client) publicIP(ctx context.Context) (string, error) {
	var out ipifyResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("format", "json").
		SetResult(&out).
		Get(c.publicIPURL)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("ipify returned status %d", resp.StatusCode())
	}
	return out.IP, nil
}

func (c *Client) locate(ctx context.Context, ip string) (*entity.Location, error) {
	var out ipAPIResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&out).
		Get(c.lookupURL + "/" + ip)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ip-api returned status %d", resp.StatusCode())
	}
	if out.Status != "success" {
		return nil, nil
	}
	return &entity.Location{
		City:    out.City,
		Region:  out.RegionName,
		Country: out.Country,
		Lat:     out.Lat,
		Lng:     out.Lon,
	}, nil
}

// IsLoopback reports whether ip is a local address, including IPv4-mapped forms.
func IsLoopback(ip string) bool {
	parsed := net.ParseIP(strings.TrimPrefix(ip, "::ffff:"))
	return parsed != nil && parsed.IsLoopback()
}
