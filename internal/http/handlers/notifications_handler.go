package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"powerbill/internal/http/middleware"
	"powerbill/internal/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewNotificationsHandler handles GET /ws/notifications. Browsers cannot
// set headers on websocket handshakes, so the bearer token travels in the
// `token` query parameter.
func NewNotificationsHandler(tokens middleware.TokenValidator, sessions middleware.SessionChecker, hub *notify.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		alive, err := sessions.Exists(r.Context(), tokenStr)
		if err != nil || !alive {
			writeError(w, http.StatusUnauthorized, "session expired")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		hub.Add(claims.UserID, conn)
		logger.Info("notification stream opened", zap.Int64("user_id", claims.UserID))

		go func() {
			defer func() {
				hub.Remove(claims.UserID, conn)
				conn.Close()
				logger.Info("notification stream closed", zap.Int64("user_id", claims.UserID))
			}()
			// Clients never send payloads; the read loop only detects close.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
