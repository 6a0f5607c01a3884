package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/splitparty/pkg/response"
)

// streamEvents serves the bill's change events as Server-Sent Events. The
// connection stays open until the client disconnects or the subscription
// closes. Clients load a snapshot first and reduce these events into it.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "billID")

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, "streaming not supported")
		return
	}

	sub, err := s.sub.Subscribe(r.Context(), billID)
	if err != nil {
		response.InternalError(w, "failed to subscribe")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	slog.Info("sse client connected", "bill_id", billID)
	defer slog.Info("sse client disconnected", "bill_id", billID)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("failed to encode change event", "bill_id", billID, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}
