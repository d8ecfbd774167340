package config

import "time"

// Gateway: настройки hosted-checkout шлюза. Секреты передаются только
// в клиент шлюза и проверку подписи.
type Gateway struct {
	BaseURL            string        `env:"GATEWAY_BASE_URL,notEmpty"`
	SecretKey          string        `env:"GATEWAY_SECRET_KEY,notEmpty" json:"-"`
	WebhookSecret      string        `env:"GATEWAY_WEBHOOK_SECRET,notEmpty" json:"-"`
	Currency           string        `env:"GATEWAY_CURRENCY" envDefault:"usd"`
	Timeout            time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
	SuccessURL         string        `env:"GATEWAY_SUCCESS_URL,notEmpty"`
	CancelURL          string        `env:"GATEWAY_CANCEL_URL,notEmpty"`
	SessionTTL         time.Duration `env:"GATEWAY_SESSION_TTL" envDefault:"30m"`
	SignatureTolerance time.Duration `env:"GATEWAY_SIGNATURE_TOLERANCE" envDefault:"5m"`
}
