package gpt

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// Engine talks to the chat completions API of OpenAI or of an Azure OpenAI deployment.
type Engine struct {
	APIKey string
	Model  string

	name       string
	endpoint   string // full chat completions URL
	azure      bool
	apiVersion string
	httpc      *http.Client
}

func New(key, model string) *Engine {
	return &Engine{
		APIKey:   strings.TrimSpace(key),
		Model:    strings.TrimSpace(model),
		name:     "gpt",
		endpoint: openAIChatURL,
		httpc:    defaultHTTPClient(),
	}
}

// NewAzure targets <endpoint>/openai/deployments/<deployment>/chat/completions.
// The deployment name doubles as the model name.
func NewAzure(endpoint, key, deployment, apiVersion string) *Engine {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return &Engine{
		APIKey:     strings.TrimSpace(key),
		Model:      strings.TrimSpace(deployment),
		name:       "azure",
		endpoint:   base + "/openai/deployments/" + url.PathEscape(strings.TrimSpace(deployment)) + "/chat/completions",
		azure:      true,
		apiVersion: strings.TrimSpace(apiVersion),
		httpc:      defaultHTTPClient(),
	}
}

func defaultHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		// vision requests with high detail take a while before the first byte
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	return &http.Client{Transport: tr}
}

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts or tests).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

// WithEndpoint overrides the chat completions URL.
func (e *Engine) WithEndpoint(u string) *Engine {
	if u = strings.TrimSpace(u); u != "" {
		e.endpoint = u
	}
	return e
}

func (e *Engine) Name() string     { return e.name }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) SetModel(m string) {
	if m = strings.TrimSpace(m); m != "" {
		e.Model = m
	}
}

func (e *Engine) requestURL() string {
	if !e.azure || e.apiVersion == "" {
		return e.endpoint
	}
	return e.endpoint + "?api-version=" + url.QueryEscape(e.apiVersion)
}

func (e *Engine) authorize(req *http.Request) {
	if e.azure {
		req.Header.Set("api-key", e.APIKey)
		return
	}
	req.Header.Set("Authorization", "Bearer "+e.APIKey)
}
