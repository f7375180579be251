// Package notify delivers best-effort alert notifications. Delivery never
// blocks the pipeline: sends run on their own goroutine, failures are
// logged and dropped, and a rate limiter keeps a flapping condition from
// flooding the webhook.
package notify

import (
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"curatord/pkg/logger"
)

// Notifier raises an out-of-band alert.
type Notifier interface {
	Alert(message string)
}

// LogNotifier writes alerts to the log only. Used when no webhook is
// configured.
type LogNotifier struct{}

func (LogNotifier) Alert(message string) {
	logger.Warn("alert", "message", message)
}

// Webhook posts alerts as JSON to a configured URL.
type Webhook struct {
	url     string
	client  *fasthttp.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewWebhook returns a webhook notifier. rps/burst bound outbound alert
// volume; zero values get conservative defaults.
func NewWebhook(url string, rps float64, burst int) *Webhook {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &Webhook{
		url:     url,
		client:  &fasthttp.Client{},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		timeout: 5 * time.Second,
	}
}

// Alert posts the message asynchronously. Rate-limited overflow and
// delivery errors are logged and otherwise ignored.
func (w *Webhook) Alert(message string) {
	logger.Warn("alert", "message", message)
	if !w.limiter.Allow() {
		logger.Debug("alert_rate_limited", "message", message)
		return
	}
	go w.post(message)
}

func (w *Webhook) post(message string) {
	body, err := json.Marshal(map[string]string{
		"alert": message,
		"ts":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)
	req.SetRequestURI(w.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)
	if err := w.client.DoTimeout(req, resp, w.timeout); err != nil {
		logger.Error("alert_delivery_failed", "url", w.url, "error", err)
		return
	}
	if c := resp.StatusCode(); c >= 300 {
		logger.Error("alert_delivery_rejected", "url", w.url, "status", c)
	}
}
