package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"card_market/internal/domain/entity"
	"card_market/internal/domain/value"
	"card_market/pkg/httpx/reply"
	"card_market/pkg/lox"
	"card_market/pkg/rest"
)

type transactionRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, paging value.Paging) ([]entity.Transaction, error)
}

type TransactionServer struct {
	transactions transactionRepository
}

func NewTransactionServer(transactions transactionRepository) TransactionServer {
	return TransactionServer{
		transactions: transactions,
	}
}

func (s TransactionServer) getV1Transactions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	caller, err := callerID(ctx)
	if err != nil {
		return err
	}

	paging, err := parsePaging(r.URL.Query())
	if err != nil {
		return fmt.Errorf("parsePaging: %w", err)
	}

	transactions, err := s.transactions.ListByUser(ctx, caller, paging)
	if err != nil {
		return fmt.Errorf("transactions.ListByUser: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.TransactionList{Items: lox.Map(transactions, newRESTTransaction)})

	return nil
}
