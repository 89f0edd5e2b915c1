// Package geoip IP 地址到人类可读位置的解析
//
// 位置只是附属元数据：任何查询失败（网络错误、响应畸形）
// 都吞掉并映射为 "Unknown"，绝不向调用方传播。
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

const (
	// LocationLocalhost 回环地址的固定结果
	LocationLocalhost = "Localhost"

	// LocationUnknown 查询失败或无数据时的兜底结果
	LocationUnknown = "Unknown"

	defaultBaseURL = "https://ipapi.co"

	// 查询超时上界，避免外部服务卡死拖慢登录/上传响应
	defaultTimeout = 3 * time.Second
)

// Cache 可选的位置缓存(Redis)，nil 表示不缓存
type Cache interface {
	GetLocation(ctx context.Context, ip string) (string, bool)
	SetLocation(ctx context.Context, ip, location string)
}

// Resolver IP 位置解析器
type Resolver struct {
	httpClient *http.Client
	baseURL    string
	cache      Cache
}

// NewResolver 创建解析器；cache 可为 nil
func NewResolver(cache Cache) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
		cache:      cache,
	}
}

// NewResolverWithBaseURL 指定查询服务地址（测试用）
func NewResolverWithBaseURL(baseURL string, cache Cache) *Resolver {
	r := NewResolver(cache)
	r.baseURL = baseURL
	return r
}

// apiResponse ipapi.co 响应中用到的字段
type apiResponse struct {
	City        string `json:"city"`
	CountryName string `json:"country_name"`
}

// Resolve 将 IP 解析为位置字符串
//
// 回环地址返回 "Localhost"；有城市和国家时拼为 "City, Country"，
// 只有其一时返回该项；查询失败一律返回 "Unknown"。
func (r *Resolver) Resolve(ctx context.Context, ip string) string {
	if isLoopback(ip) {
		return LocationLocalhost
	}

	if r.cache != nil {
		if loc, ok := r.cache.GetLocation(ctx, ip); ok {
			return loc
		}
	}

	loc := r.lookup(ctx, ip)

	if r.cache != nil && loc != LocationUnknown {
		r.cache.SetLocation(ctx, ip, loc)
	}
	return loc
}

// lookup 调外部服务查询，失败吞掉并返回 Unknown
func (r *Resolver) lookup(ctx context.Context, ip string) string {
	url := fmt.Sprintf("%s/%s/json/", r.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return LocationUnknown
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		log.Printf("[geoip] lookup failed for %s: %v", ip, err)
		return LocationUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[geoip] lookup for %s returned status %d", ip, resp.StatusCode)
		return LocationUnknown
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("[geoip] decode response for %s: %v", ip, err)
		return LocationUnknown
	}

	switch {
	case data.City != "" && data.CountryName != "":
		return data.City + ", " + data.CountryName
	case data.City != "":
		return data.City
	case data.CountryName != "":
		return data.CountryName
	default:
		return LocationUnknown
	}
}

// isLoopback 回环地址特判（含 IPv6 与 IPv4-mapped 形式）
func isLoopback(ip string) bool {
	switch ip {
	case "127.0.0.1", "::1", "::ffff:127.0.0.1":
		return true
	}
	return false
}
