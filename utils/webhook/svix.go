package webhook

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	secretPrefix = "whsec_"
)

var (
	ErrMissingHeaders   = errors.New("missing webhook signature headers")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Verifier checks identity-provider events signed with Svix. Messages older
// or newer than five minutes are rejected by the SDK.
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier builds a verifier from a "whsec_" prefixed signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	if strings.TrimPrefix(secret, secretPrefix) == "" {
		return nil, errors.New("invalid webhook secret: empty")
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook secret: %w", err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify checks the raw request body against the three Svix headers.
func (v *Verifier) Verify(body []byte, id, timestamp, signatureHeader string) error {
	if id == "" || timestamp == "" || signatureHeader == "" {
		return ErrMissingHeaders
	}

	headers := http.Header{}
	headers.Set(HeaderID, id)
	headers.Set(HeaderTimestamp, timestamp)
	headers.Set(HeaderSignature, signatureHeader)

	if err := v.wh.Verify(body, headers); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// Sign returns the svix-signature header value ("v1,<base64>") for a message.
func (v *Verifier) Sign(id string, timestamp time.Time, body []byte) (string, error) {
	return v.wh.Sign(id, timestamp, body)
}
