package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/google/uuid"

	"card_market/internal/domain"
	"card_market/internal/domain/entity"
	"card_market/internal/domain/value"
	"card_market/pkg/contextx"
	"card_market/pkg/errcodes"
	"card_market/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var ErrEmptySession = errors.New("session id is empty")

// EventVerifier проверяет подпись вебхука; тело разбирается только после неё.
type EventVerifier interface {
	Verify(payload []byte, signature string) error
	ParseEvent(payload []byte) (entity.PaymentEvent, error)
}

type OfferRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (entity.Offer, error)
	Transition(ctx context.Context, req entity.TransitionRequest) (entity.Offer, error)
}

type ListingGate interface {
	MarkSold(ctx context.Context, id uuid.UUID) (bool, error)
}

type TransactionRepository interface {
	Record(ctx context.Context, tx entity.Transaction) error
	GetByOfferID(ctx context.Context, offerID uuid.UUID) (entity.Transaction, error)
}

type Notifier interface {
	NotifyPaymentReceived(ctx context.Context, payment entity.PaymentReceived) error
}

type Service struct {
	verifier     EventVerifier
	offers       OfferRepository
	listings     ListingGate
	transactions TransactionRepository
	notifier     Notifier
	metrics      *Metrics
	now          func() time.Time
}

func NewService(
	verifier EventVerifier,
	offers OfferRepository,
	listings ListingGate,
	transactions TransactionRepository,
	notifier Notifier,
) *Service {
	return &Service{
		verifier:     verifier,
		offers:       offers,
		listings:     listings,
		transactions: transactions,
		notifier:     notifier,
		metrics:      NewMetrics(nil),
		now:          time.Now,
	}
}

func (s *Service) WithMetrics(metrics *Metrics) *Service {
	s.metrics = metrics
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// HandleWebhook возвращает ошибку только при неверной подписи. Всё, что
// случилось после проверки, логируется и подтверждается шлюзу.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	if err := s.verifier.Verify(payload, signature); err != nil {
		return "", fmt.Errorf("verifier.Verify: %w", err)
	}

	event, err := s.verifier.ParseEvent(payload)
	if err != nil {
		// Повтор доставки не исправит тело: подтверждаем и учитываем.
		s.fail(ctx, StageParseEvent, err)
		s.metrics.outcome(OutcomeRejected)

		return OutcomeRejected, nil
	}

	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldEventID, event.ID),
		slog.String(logx.FieldEventType, event.Type),
		slog.String(logx.FieldSessionID, event.SessionID),
	))

	outcome := s.Process(ctx, event)
	s.metrics.outcome(outcome)

	logger(ctx).Info("payment event processed", slog.String("outcome", string(outcome)))

	return outcome, nil
}

// Process переводит оффер accepted -> completed ровно один раз на оффер.
func (s *Service) Process(ctx context.Context, event entity.PaymentEvent) Outcome {
	if event.Type != entity.PaymentEventCheckoutCompleted {
		return OutcomeIgnored
	}

	offerID, buyerID, sellerID, err := correlate(event)
	if err != nil {
		logger(ctx).Warn("payment event without valid correlation metadata", logx.Error(err))
		return OutcomeRejected
	}

	ctx = contextx.WithLogger(ctx, logger(ctx).With(slog.String(logx.FieldOfferID, offerID.String())))

	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		if failure.IsNotFoundError(err) {
			logger(ctx).Warn("payment event for unknown offer")
			return OutcomeOfferNotFound
		}

		s.fail(ctx, StageLoadOffer, err)
		return OutcomeFailed
	}

	if offer.BuyerID != buyerID || offer.SellerID != sellerID {
		logger(ctx).Error("payment metadata does not match offer parties",
			slog.String("metadata-buyer-id", buyerID.String()),
			slog.String("metadata-seller-id", sellerID.String()),
		)
		return OutcomeRejected
	}

	switch offer.Status {
	case entity.OfferStatusCompleted:
		return s.redelivered(ctx, offer, event)
	case entity.OfferStatusAccepted:
	default:
		s.rejectStatus(ctx, offer)
		return OutcomeRejected
	}

	transition, _ := entity.TransitionFor(entity.OfferEventSettle)

	settled, err := s.offers.Transition(ctx, entity.TransitionRequest{
		OfferID:    offer.ID,
		Transition: transition,
		At:         s.now().UTC(),
	})
	if err != nil {
		if !failure.IsConflictError(err) {
			s.fail(ctx, StageTransition, err)
			return OutcomeFailed
		}

		// Гонку проиграли: решает фактический статус.
		current, err := s.offers.GetByID(ctx, offer.ID)
		if err != nil {
			s.fail(ctx, StageLoadOffer, err)
			return OutcomeFailed
		}

		if current.Status == entity.OfferStatusCompleted {
			return s.redelivered(ctx, current, event)
		}

		s.rejectStatus(ctx, current)
		return OutcomeRejected
	}

	s.checkAmount(ctx, settled, event)
	s.markSold(ctx, settled)

	if err := s.record(ctx, settled, event); err != nil {
		if domain.HasCode(err, errcodes.DuplicateSettlement) {
			s.checkDuplicate(ctx, settled, event)
		} else {
			s.fail(ctx, StageRecord, err)
		}
	}

	s.notify(ctx, settled, event)

	logger(ctx).Info("offer settled",
		slog.String(logx.FieldListingID, settled.ListingID.String()),
		slog.String("amount", settled.OfferedPrice.StringFixed(2)),
	)

	return OutcomeSettled
}

// redelivered обрабатывает повторную доставку для уже завершённого оффера
// и дописывает то, что не успела первая доставка.
func (s *Service) redelivered(ctx context.Context, offer entity.Offer, event entity.PaymentEvent) Outcome {
	existing, err := s.transactions.GetByOfferID(ctx, offer.ID)

	switch {
	case err == nil && existing.SessionID != event.SessionID:
		s.metrics.failure(StageOrphanedPayment)
		logger(ctx).Error("second payment for completed offer, refund required",
			slog.String("recorded-session-id", existing.SessionID),
		)
		return OutcomeDuplicate
	case err == nil:
		return OutcomeDuplicate
	case !failure.IsNotFoundError(err):
		s.fail(ctx, StageLookupLedger, err)
		return OutcomeFailed
	}

	logger(ctx).Warn("completed offer has no transaction, repairing")

	if err := s.record(ctx, offer, event); err != nil {
		if domain.HasCode(err, errcodes.DuplicateSettlement) {
			s.checkDuplicate(ctx, offer, event)
			return OutcomeDuplicate
		}

		s.fail(ctx, StageRecord, err)
		return OutcomeFailed
	}

	s.markSold(ctx, offer)
	s.notify(ctx, offer, event)

	return OutcomeRepaired
}

func (s *Service) record(ctx context.Context, offer entity.Offer, event entity.PaymentEvent) error {
	tx := entity.NewCompletedTransaction(offer, event.SessionID, event.ChargeID, s.now().UTC())

	if err := s.transactions.Record(ctx, tx); err != nil {
		return fmt.Errorf("transactions.Record: %w", err)
	}

	return nil
}

// checkDuplicate разбирает отказ уникального ключа журнала. Безвреден только
// случай, когда у этого оффера уже есть запись с той же сессией; иначе сессия
// занята другим оффером и оплата осталась без записи.
func (s *Service) checkDuplicate(ctx context.Context, offer entity.Offer, event entity.PaymentEvent) {
	existing, err := s.transactions.GetByOfferID(ctx, offer.ID)

	switch {
	case err == nil && existing.SessionID == event.SessionID:
		logger(ctx).Info("transaction already recorded")
	case err == nil:
		s.metrics.failure(StageOrphanedPayment)
		logger(ctx).Error("second payment for completed offer, refund required",
			slog.String("recorded-session-id", existing.SessionID),
		)
	case failure.IsNotFoundError(err):
		s.metrics.failure(StageOrphanedPayment)
		logger(ctx).Error("payment session is already recorded for another offer, offer has no transaction")
	default:
		s.fail(ctx, StageLookupLedger, err)
	}
}

func (s *Service) markSold(ctx context.Context, offer entity.Offer) {
	flipped, err := s.listings.MarkSold(ctx, offer.ListingID)
	if err != nil {
		s.fail(ctx, StageMarkSold, err)
		return
	}

	if !flipped {
		logger(ctx).Warn("listing was not active when marking sold",
			slog.String(logx.FieldListingID, offer.ListingID.String()),
		)
	}
}

func (s *Service) notify(ctx context.Context, offer entity.Offer, event entity.PaymentEvent) {
	err := s.notifier.NotifyPaymentReceived(ctx, entity.PaymentReceived{
		OfferID:   offer.ID,
		SellerID:  offer.SellerID,
		BuyerID:   offer.BuyerID,
		Amount:    offer.OfferedPrice,
		SessionID: event.SessionID,
	})
	if err != nil {
		s.fail(ctx, StageNotify, err)
	}
}

func (s *Service) checkAmount(ctx context.Context, offer entity.Offer, event entity.PaymentEvent) {
	if event.AmountMinor == 0 || event.AmountMinor == value.MinorUnits(offer.OfferedPrice) {
		return
	}

	s.metrics.failure(StageAmountMismatch)
	logger(ctx).Error("paid amount differs from offered price",
		slog.Int64("paid-minor", event.AmountMinor),
		slog.String("offered-price", offer.OfferedPrice.StringFixed(2)),
	)
}

func (s *Service) rejectStatus(ctx context.Context, offer entity.Offer) {
	logger(ctx).Error("payment received for offer that cannot be settled, refund required",
		slog.String(logx.FieldOfferStatus, offer.Status.String()),
	)
}

func (s *Service) fail(ctx context.Context, stage string, err error) {
	s.metrics.failure(stage)
	logger(ctx).Error("settlement step failed", slog.String(logx.FieldStage, stage), logx.Error(err))
}

func correlate(event entity.PaymentEvent) (offerID, buyerID, sellerID uuid.UUID, err error) {
	if offerID, err = value.ParseID(event.OfferID); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("offer_id: %w", err)
	}

	if buyerID, err = value.ParseID(event.BuyerID); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("buyer_id: %w", err)
	}

	if sellerID, err = value.ParseID(event.SellerID); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, fmt.Errorf("seller_id: %w", err)
	}

	if event.SessionID == "" {
		return uuid.Nil, uuid.Nil, uuid.Nil, ErrEmptySession
	}

	return offerID, buyerID, sellerID, nil
}
