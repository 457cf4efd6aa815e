package httpapi

import (
	"net/http"

	"portfolio-backend-go/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (s *Server) LatestMetrics(w http.ResponseWriter, r *http.Request) {
	sample, ok := s.MetricsHub.Latest()
	if !ok {
		WriteError(w, http.StatusNotFound, "No metrics captured yet")
		return
	}
	WriteJSON(w, http.StatusOK, sample)
}

// MetricsSocket streams samples to an admin. The token may come from the
// query string or the Authorization header.
func (s *Server) MetricsSocket(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		tokenStr = bearerToken(r)
	}
	if tokenStr == "" {
		WriteError(w, http.StatusUnauthorized, "Access denied")
		return
	}
	claims, err := s.Tokens.Validate(tokenStr)
	if err != nil {
		WriteError(w, http.StatusForbidden, "Invalid token")
		return
	}
	if claims.Role != models.RoleAdmin {
		WriteError(w, http.StatusForbidden, "Access denied. Admin only.")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("metrics socket upgrade failed")
		return
	}
	if sample, ok := s.MetricsHub.Latest(); ok {
		_ = conn.WriteJSON(sample)
	}
	s.MetricsHub.Add(conn)
	defer func() {
		s.MetricsHub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
