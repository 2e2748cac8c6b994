package messaging

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"paperapi/internal/config"
)

// gatewayClient implements Client against the WhatsApp bridge's HTTP API.
// The bridge (a separate session-authenticated process) exposes a single
// multipart endpoint: POST /api/send-media with fields destination, caption
// and a media file part.
type gatewayClient struct {
	baseURL string
	http    *http.Client
}

// NewGateway creates a Client that talks to the bridge at cfg.GatewayURL.
func NewGateway(cfg config.MessagingConfig) (Client, error) {
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("messaging gateway url is required")
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.TimeoutSec <= 0 {
		timeout = 60 * time.Second
	}
	return &gatewayClient{
		baseURL: strings.TrimRight(cfg.GatewayURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (g *gatewayClient) SendMedia(ctx context.Context, destination string, media io.Reader, filename, caption string) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// Stream the multipart body instead of assembling it in memory;
	// uploaded PDFs can be large.
	go func() {
		err := writeSendMediaBody(mw, destination, media, filename, caption)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/send-media", pr)
	if err != nil {
		return fmt.Errorf("build send-media request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("call messaging bridge: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Keep a short excerpt of the bridge's answer for the logs.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("messaging bridge returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}

func writeSendMediaBody(mw *multipart.Writer, destination string, media io.Reader, filename, caption string) error {
	if err := mw.WriteField("destination", destination); err != nil {
		return err
	}
	if err := mw.WriteField("caption", caption); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("media", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, media)
	return err
}
