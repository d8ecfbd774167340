package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"git.appkode.ru/pub/go/failure"

	"card_market/internal/config"
	"card_market/internal/domain/entity"
	"card_market/pkg/errcodes"
)

const SignatureHeader = "Payment-Signature"

var (
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrStaleSignature     = errors.New("signature timestamp outside tolerance")
	ErrSignatureMismatch  = errors.New("signature mismatch")
)

// Verifier проверяет подпись `t=<unix>,v1=<hex>` над строкой "<t>.<body>".
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(cfg config.Gateway) *Verifier {
	return &Verifier{
		secret:    []byte(cfg.WebhookSecret),
		tolerance: cfg.SignatureTolerance,
		now:       time.Now,
	}
}

func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

func (v *Verifier) Verify(payload []byte, header string) error {
	if err := v.verify(payload, header); err != nil {
		return failure.NewInvalidArgumentError(
			err.Error(),
			failure.WithCode(errcodes.InvalidSignature),
			failure.WithDescription("invalid webhook signature"),
		)
	}

	return nil
}

// ParseEvent разбирает тело, подпись которого уже проверена Verify.
func (v *Verifier) ParseEvent(payload []byte) (entity.PaymentEvent, error) {
	return ParseEvent(payload)
}

func (v *Verifier) verify(payload []byte, header string) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	signedAt := time.Unix(timestamp, 0)
	if age := v.now().Sub(signedAt); v.tolerance > 0 && (age > v.tolerance || age < -v.tolerance) {
		return ErrStaleSignature
	}

	expected := computeSignature(v.secret, timestamp, payload)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}

	return ErrSignatureMismatch
}

func parseSignatureHeader(header string) (int64, [][]byte, error) {
	var (
		timestamp  int64
		signatures [][]byte
	)

	for _, part := range strings.Split(header, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}

		switch key {
		case "t":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: timestamp: %v", ErrMalformedSignature, err)
			}
			timestamp = ts
		case "v1":
			sig, err := hex.DecodeString(val)
			if err != nil {
				continue
			}
			signatures = append(signatures, sig)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return 0, nil, ErrMalformedSignature
	}

	return timestamp, signatures, nil
}

func computeSignature(secret []byte, timestamp int64, payload []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)

	return mac.Sum(nil)
}

// Sign builds a signature header value. Used by tests and local tooling to
// replay gateway events.
func Sign(secret string, at time.Time, payload []byte) string {
	ts := at.Unix()

	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(computeSignature([]byte(secret), ts, payload)))
}
