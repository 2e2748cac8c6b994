package messaging

import (
	"context"
	"errors"
	"io"
)

// Package messaging abstracts the external WhatsApp bridge used to deliver a
// stored paper to a phone-number-derived address. The bridge process owns the
// session lifecycle (QR/pairing-code linkage, reconnects); this service only
// hands it a file and waits for the outcome. A successful send means the
// message was accepted by the bridge, not that the destination received it.

// Client delivers media to a messaging-network address.
type Client interface {
	// SendMedia forwards the media stream with a caption to destination
	// (e.g. "254712345678@c.us"). Single attempt, no retry; the call blocks
	// until the bridge acknowledges or fails.
	SendMedia(ctx context.Context, destination string, media io.Reader, filename, caption string) error
}

// ErrDisabled is returned by the disabled client.
var ErrDisabled = errors.New("messaging is not configured")

type disabledClient struct{}

func (disabledClient) SendMedia(context.Context, string, io.Reader, string, string) error {
	return ErrDisabled
}

// Disabled returns a Client that fails every send. Used when no gateway URL
// is configured so the catalog still serves browse and download.
func Disabled() Client {
	return disabledClient{}
}
