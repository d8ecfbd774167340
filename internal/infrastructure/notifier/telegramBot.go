package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/patrickmn/go-cache"

	"card_market/internal/domain/entity"
)

const (
	alertDedupeTTL     = time.Hour
	alertCleanupPeriod = 10 * time.Minute
)

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramBot шлёт операторам алерты об оплатах в служебный чат.
type TelegramBot struct {
	bot    messageSender
	chatID int64
	sent   *cache.Cache
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return newTelegramBot(bot, chatID), nil
}

func newTelegramBot(bot messageSender, chatID int64) *TelegramBot {
	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
		sent:   cache.New(alertDedupeTTL, alertCleanupPeriod),
	}
}

// SendPaymentAlert отправляет алерт не чаще одного раза на оффер в пределах часа.
func (b *TelegramBot) SendPaymentAlert(ctx context.Context, payment entity.PaymentReceived) error {
	key := payment.OfferID.String()

	if err := b.sent.Add(key, struct{}{}, cache.DefaultExpiration); err != nil {
		return nil //nolint:nilerr // уже отправлено
	}

	text := fmt.Sprintf(
		"💳 <b>Payment received</b>\n\n"+
			"<b>Offer:</b> <code>%s</code>\n"+
			"<b>Amount:</b> %s\n"+
			"<b>Session:</b> <code>%s</code>",
		payment.OfferID,
		payment.Amount.StringFixed(2),
		payment.SessionID,
	)

	msg := tu.Message(
		tu.ID(b.chatID),
		text,
	).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		b.sent.Delete(key)
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}
