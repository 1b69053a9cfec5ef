package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/flapcast/flapcast/internal/api"
)

// handleStream upgrades to a WebSocket and answers one prediction per
// request frame. The game pushes its snapshot every tick and renders
// whatever comes back; a failed prediction degrades to an error frame and
// the stream stays open.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	logger := s.logger.With().Str("remote_addr", conn.RemoteAddr().String()).Logger()
	logger.Info().Msg("Stream opened")

	for {
		var req api.PredictRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug().Err(err).Msg("Stream closed unexpectedly")
			}
			return
		}

		// Predictions are scoped to the connection, not the upgrade
		// request that opened it.
		resp, _ := s.predict(context.Background(), req)
		if err := conn.WriteJSON(resp); err != nil {
			logger.Debug().Err(err).Msg("Stream write failed")
			return
		}
	}
}
