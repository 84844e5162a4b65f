package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/pkg/httputil"
	"github.com/ignite/phishsim-monitor/internal/service/event"
	"github.com/ignite/phishsim-monitor/internal/webhook"
)

// HandleIngest receives one engine callback.
//
//	POST /webhooks
//
// 201 with the stored canonical event; 400 on a validation failure (nothing
// stored); 500 on storage or reconciliation-persist failure.
func (s *Server) HandleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Webhook.MaxBodyBytes)

	var payload webhook.RawPayload
	if !httputil.Decode(w, r, &payload) {
		return
	}

	// Once the payload is decoded the pipeline runs to completion: a
	// sender disconnect must not cancel the append or reconcile mid-flight.
	// Storage calls carry their own bounded timeouts.
	stored, err := s.ingest.Ingest(context.WithoutCancel(r.Context()), payload)
	if err != nil {
		var verr *webhook.ValidationError
		switch {
		case errors.As(err, &verr):
			httputil.BadRequest(w, "validation_error", verr.Error())
		case errors.Is(err, event.ErrStorage):
			httputil.InternalError(w, "storage_error", err)
		default:
			// Reconcile persist failure: the event is stored and replayable,
			// but the aggregate was not updated.
			httputil.InternalError(w, "persist_error", err)
		}
		return
	}

	httputil.Created(w, stored)
}

// HandleList serves the global event feed.
//
//	GET /webhooks?limit&offset&campaignId&event&search
func (s *Server) HandleList(w http.ResponseWriter, r *http.Request) {
	s.listEvents(w, r, r.URL.Query().Get("campaignId"))
}

// HandleListByCampaign serves the campaign-scoped feed.
//
//	GET /webhooks/campaign/{campaignID}?limit&offset&event&search
func (s *Server) HandleListByCampaign(w http.ResponseWriter, r *http.Request) {
	s.listEvents(w, r, chi.URLParam(r, "campaignID"))
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, campaignID string) {
	offset, limit := ParsePagination(r, s.cfg.Webhook.DefaultPageSize, s.cfg.Webhook.MaxPageSize)

	f := event.Filter{
		CampaignID: campaignID,
		Kind:       domain.EventKind(r.URL.Query().Get("event")),
		Search:     r.URL.Query().Get("search"),
		Offset:     offset,
		Limit:      limit,
	}

	events, total, err := s.events.List(r.Context(), f)
	if err != nil {
		httputil.InternalError(w, "storage_error", err)
		return
	}

	httputil.OK(w, NewEventPage(events, total, offset, limit))
}

// HandleClearAll deletes the whole event log. Irreversible: there is no
// soft delete and the audit history is gone.
//
//	DELETE /webhooks
func (s *Server) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	s.clearEvents(w, r, "")
}

// HandleClearCampaign deletes one campaign's events.
//
//	DELETE /webhooks/campaign/{campaignID}
func (s *Server) HandleClearCampaign(w http.ResponseWriter, r *http.Request) {
	s.clearEvents(w, r, chi.URLParam(r, "campaignID"))
}

func (s *Server) clearEvents(w http.ResponseWriter, r *http.Request, campaignID string) {
	n, err := s.events.Clear(r.Context(), campaignID)
	if err != nil {
		httputil.InternalError(w, "storage_error", err)
		return
	}
	httputil.OK(w, map[string]int{"deleted": n})
}
