package http_pages

import (
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// httpClient is shared by all executions to reuse TCP connections.
var httpClient = newHTTPClient()

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
