package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"agromarket/internal/domain/value"
	"agromarket/internal/infrastructure/broadcast"
	"agromarket/pkg/contextx"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/httpx/reply"
	"agromarket/pkg/logx"
	"agromarket/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const (
	pingInterval = 45 * time.Second
	readTimeout  = 90 * time.Second
	writeTimeout = 10 * time.Second
	maxFrameSize = 4096
)

type pushHub interface {
	Connect() *broadcast.Subscriber
	Subscribe(sub *broadcast.Subscriber, group string) bool
	Unsubscribe(sub *broadcast.Subscriber, group string) bool
	Disconnect(sub *broadcast.Subscriber)
}

// PushServer websocket-канал подписчиков хаба.
type PushServer struct {
	hub      pushHub
	upgrader websocket.Upgrader
}

func NewPushServer(hub pushHub, allowedOrigins []string) PushServer {
	return PushServer{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (s PushServer) serveWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		reply.Status(ctx, w, http.StatusUnauthorized, errcodes.Unauthorized, "caller identity is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger(ctx).Warn("websocket upgrade failed", logx.Error(err))
		return
	}
	defer conn.Close()

	sub := s.hub.Connect()
	defer s.hub.Disconnect(sub)

	ownGroup := value.UserGroup(userID.Int64())
	s.hub.Subscribe(sub, value.GroupGlobal)
	s.hub.Subscribe(sub, ownGroup)

	log := logger(ctx).With(slog.String(logx.FieldSubscriberID, sub.ID()))
	log.Info("push subscriber connected")

	go writeLoop(conn, sub, log)

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("push subscriber read failed", logx.Error(err))
			}
			break
		}

		var cmd rest.PushCommand
		if err := json.Unmarshal(frame, &cmd); err != nil {
			log.Warn("malformed push command", logx.Error(err))
			continue
		}

		s.handleCommand(sub, ownGroup, cmd, log)
	}

	log.Info("push subscriber disconnected")
}

// handleCommand чужие личные группы недоступны; некорректные команды игнорируются.
func (s PushServer) handleCommand(sub *broadcast.Subscriber, ownGroup string, cmd rest.PushCommand, log *slog.Logger) {
	group := strings.TrimSpace(cmd.Group)
	if group == "" || (strings.HasPrefix(group, "user:") && group != ownGroup) {
		log.Warn("push command rejected", slog.String(logx.FieldGroup, group))
		return
	}

	switch strings.ToLower(cmd.Action) {
	case "subscribe":
		s.hub.Subscribe(sub, group)
	case "unsubscribe":
		s.hub.Unsubscribe(sub, group)
	default:
		log.Warn("unknown push action", slog.String("action", cmd.Action))
	}
}

// writeLoop единственный писатель в соединение; завершается, когда хаб закрывает почтовый ящик.
func writeLoop(conn *websocket.Conn, sub *broadcast.Subscriber, log *slog.Logger) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeTimeout))
				return
			}

			frame, err := json.Marshal(newPushMessage(event))
			if err != nil {
				log.Error("json.Marshal", logx.Error(err))
				continue
			}

			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Warn("push write failed", logx.Error(err))
				_ = conn.Close()
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		for _, a := range allowed {
			if strings.EqualFold(a, origin) {
				return true
			}
		}

		return false
	}
}
