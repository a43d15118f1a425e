package cmd

import (
	"context"
	"fmt"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/feedfollow/internal/config"
	"github.com/jimezsa/feedfollow/internal/export"
	"github.com/jimezsa/feedfollow/internal/models"
	"github.com/jimezsa/feedfollow/internal/network"
)

type ProxiesCmd struct {
	Check ProxyCheckCmd `cmd:"" help:"Validate proxies used for fetching pages and feeds."`
}

type ProxyCheckCmd struct {
	Target  string `help:"Target URL, typically a feed you fetch." default:"https://www.google.com"`
	Proxies string `help:"Comma-separated proxy URLs (defaults to proxies.txt)." env:"FEEDFOLLOW_PROXIES"`
	Timeout int    `help:"Timeout in seconds." default:"15"`
}

type ProxyCheckResult struct {
	Proxy     string `json:"proxy"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

func (p *ProxyCheckCmd) Run(ctx *Context) error {
	proxies, err := config.LoadProxies(p.Proxies)
	if err != nil {
		return err
	}
	if len(proxies) == 0 {
		return fmt.Errorf("no proxies configured")
	}

	results := make([]ProxyCheckResult, 0, len(proxies))
	for _, proxy := range proxies {
		results = append(results, p.check(ctx, proxy))
	}
	return writeProxyResults(ctx, results)
}

func (p *ProxyCheckCmd) check(ctx *Context, proxy string) ProxyCheckResult {
	result := ProxyCheckResult{Proxy: proxy, Status: "error"}
	rotator, err := network.NewRotator([]string{proxy}, 5*time.Minute)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	timeout := time.Duration(p.Timeout) * time.Second
	client, err := network.NewClient(rotator, models.FetchConfig{Proxies: []string{proxy}, Timeout: timeout})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	reqCtx, cancel := context.WithTimeout(ctx.context(), timeout)
	defer cancel()
	req, err := fhttp.NewRequestWithContext(reqCtx, fhttp.MethodGet, p.Target, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	_ = resp.Body.Close()

	result.LatencyMS = time.Since(start).Milliseconds()
	result.Status = fmt.Sprintf("%d", resp.StatusCode)
	return result
}

func writeProxyResults(ctx *Context, results []ProxyCheckResult) error {
	table := export.Table{
		Columns: []export.Column{{Name: "proxy"}, {Name: "status"}, {Name: "latency_ms"}, {Name: "error"}},
		Records: results,
	}
	for _, res := range results {
		table.Rows = append(table.Rows, []string{res.Proxy, res.Status, fmt.Sprintf("%d", res.LatencyMS), res.Error})
	}
	return writeTable(ctx, table)
}
