package server

// Server объединяет HTTP-серверы отдельных сущностей рынка.
type Server struct {
	OfferServer
	AlertServer
	MarketServer
	PushServer
}

func NewServer(
	offerServer OfferServer,
	alertServer AlertServer,
	marketServer MarketServer,
	pushServer PushServer,
) Server {
	return Server{
		OfferServer:  offerServer,
		AlertServer:  alertServer,
		MarketServer: marketServer,
		PushServer:   pushServer,
	}
}
