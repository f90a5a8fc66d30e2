// cmd/notification-service/api.go
package main

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"attendance-notifier/internal/common/errors"
	"attendance-notifier/internal/common/logger"
	"attendance-notifier/internal/notifier"
)

type sendRequest struct {
	Type      string                 `json:"type"`
	Recipient string                 `json:"recipient"`
	Variables map[string]interface{} `json:"variables"`
}

type sendRawRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	HTML      string `json:"html"`
	Text      string `json:"text"`
}

type apiResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// registerAPI wires the dispatcher behind a small JSON API used by the
// attendance backend and the admin UI.
func registerAPI(mux *http.ServeMux, d *notifier.Dispatcher, log logger.Logger) {
	mux.HandleFunc("/api/notifications/send", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Error: "method not allowed"})
			return
		}
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiResponse{Error: "invalid request body"})
			return
		}
		err := d.Send(r.Context(), notifier.Type(req.Type), req.Recipient, req.Variables)
		writeSendResult(w, err)
	})

	mux.HandleFunc("/api/notifications/send-raw", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Error: "method not allowed"})
			return
		}
		var req sendRawRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, apiResponse{Error: "invalid request body"})
			return
		}
		err := d.SendRaw(r.Context(), req.Recipient, req.Subject, req.HTML, req.Text)
		writeSendResult(w, err)
	})

	mux.HandleFunc("/api/notifications/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, apiResponse{Error: "method not allowed"})
			return
		}
		if err := d.Refresh(r.Context()); err != nil {
			log.Warn("transport refresh failed", map[string]interface{}{"error": err.Error()})
			writeSendResult(w, err)
			return
		}
		writeJSON(w, http.StatusOK, apiResponse{Success: true})
	})

	mux.HandleFunc("/api/notifications/test-connection", func(w http.ResponseWriter, r *http.Request) {
		ok := d.TestConnection(r.Context())
		writeJSON(w, http.StatusOK, apiResponse{
			Success: true,
			Data:    map[string]bool{"reachable": ok},
		})
	})

	mux.HandleFunc("/api/notifications/types", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apiResponse{
			Success: true,
			Data:    d.ListNotificationTypes(),
		})
	})
}

// writeSendResult maps the engine's error taxonomy onto HTTP statuses.
func writeSendResult(w http.ResponseWriter, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, apiResponse{Success: true})
		return
	}

	resp := apiResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var stdErr *errors.StandardError
	if stderrors.As(err, &stdErr) {
		resp.Code = string(stdErr.Code)
		resp.Error = stdErr.Message
		switch stdErr.Code {
		case errors.ErrCodeUnknownNotification, errors.ErrCodeInvalidRecipient:
			status = http.StatusBadRequest
		case errors.ErrCodeTransportUnavailable:
			status = http.StatusServiceUnavailable
		case errors.ErrCodeDeliveryFailed:
			status = http.StatusBadGateway
		}
	}

	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
