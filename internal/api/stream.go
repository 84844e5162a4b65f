package api

import (
	"net/http"

	"github.com/ignite/phishsim-monitor/internal/notify"
)

// HandleStream serves the live event feed as Server-Sent Events.
//
//	GET /webhooks/stream
//
// Each processed webhook arrives as an SSE message named after the
// publish topic. There is no replay: clients load history from the list
// endpoints and follow live events from here.
func (s *Server) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))

	ch := s.hub.Register()
	defer s.hub.Unregister(ch)

	// Tell the client we're live before the first event.
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("event: " + notify.Topic + "\ndata: "))
			w.Write(msg)
			w.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}
