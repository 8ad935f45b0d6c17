package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"nightwatcher/internal/config"
	"nightwatcher/internal/httputil"
	"nightwatcher/internal/tracker"
)

// trackRequest is the POST /api/wallets payload.
type trackRequest struct {
	ChatID  int64  `json:"chat_id"`
	Address string `json:"address"`
}

// TrackWalletHandler returns a handler for POST /api/wallets.
func TrackWalletHandler(t *tracker.Tracker) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var req trackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Error(rw, http.StatusBadRequest, config.ErrorInvalidRequest, "malformed JSON body")
			return
		}
		if req.ChatID == 0 {
			httputil.Error(rw, http.StatusBadRequest, config.ErrorInvalidRequest, "chat_id is required")
			return
		}

		wallet, err := t.Track(r.Context(), req.ChatID, req.Address)
		if err != nil {
			switch {
			case errors.Is(err, config.ErrInvalidAddress):
				httputil.Error(rw, http.StatusBadRequest, config.ErrorInvalidAddress, err.Error())
			case errors.Is(err, config.ErrAlreadyTracked):
				httputil.Error(rw, http.StatusConflict, config.ErrorAlreadyTracked, "you are already tracking this wallet")
			default:
				httputil.Error(rw, http.StatusInternalServerError, config.ErrorDatabase, "failed to register wallet")
			}
			return
		}

		httputil.JSON(rw, http.StatusCreated, wallet)
	}
}

// ListWalletsHandler returns a handler for GET /api/wallets?chat_id=.
func ListWalletsHandler(t *tracker.Tracker) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		chatID, ok := chatIDParam(rw, r)
		if !ok {
			return
		}

		addresses, err := t.List(r.Context(), chatID)
		if err != nil {
			httputil.Error(rw, http.StatusInternalServerError, config.ErrorDatabase, "failed to list wallets")
			return
		}
		if addresses == nil {
			addresses = []string{}
		}

		httputil.JSON(rw, http.StatusOK, map[string]interface{}{
			"chat_id":   chatID,
			"addresses": addresses,
		})
	}
}

// StopTrackingHandler returns a handler for DELETE /api/wallets?chat_id=.
func StopTrackingHandler(t *tracker.Tracker) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		chatID, ok := chatIDParam(rw, r)
		if !ok {
			return
		}

		if err := t.StopTracking(r.Context(), chatID); err != nil {
			httputil.Error(rw, http.StatusInternalServerError, config.ErrorDatabase, "failed to stop tracking")
			return
		}

		httputil.JSON(rw, http.StatusOK, map[string]interface{}{
			"chat_id": chatID,
			"stopped": true,
		})
	}
}

// chatIDParam parses the chat_id query parameter, writing a 400 on failure.
func chatIDParam(rw http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("chat_id")
	if raw == "" {
		httputil.Error(rw, http.StatusBadRequest, config.ErrorInvalidRequest, "chat_id query parameter is required")
		return 0, false
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httputil.Error(rw, http.StatusBadRequest, config.ErrorInvalidRequest, "chat_id must be an integer")
		return 0, false
	}
	return chatID, true
}
