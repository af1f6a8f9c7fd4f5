package api

import (
	"net/http"
	"time"

	"interlinear/internal/middleware"
)

type linkCodeResponse struct {
	Code      string `json:"code"`
	ExpiresAt string `json:"expiresAt"`
}

// handleIssueLinkCode issues a code the caller sends to the Telegram bot.
func (s *Server) handleIssueLinkCode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := middleware.OwnerFromContext(r.Context())

		code, err := s.links.IssueCode(r.Context(), ownerID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, linkCodeResponse{
			Code:      code.Code,
			ExpiresAt: code.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
}
