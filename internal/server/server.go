package server

import "net/http"

// Данный сервер просто объединяет специфичные HTTP сервера, отвечающие за обработку конкретных сущностей
type Server struct {
	OfferServer
	PaymentServer
	TransactionServer

	auth func(http.Handler) http.Handler
}

func NewServer(
	offerServer OfferServer,
	paymentServer PaymentServer,
	transactionServer TransactionServer,
	auth func(http.Handler) http.Handler,
) Server {
	return Server{
		OfferServer:       offerServer,
		PaymentServer:     paymentServer,
		TransactionServer: transactionServer,
		auth:              auth,
	}
}
