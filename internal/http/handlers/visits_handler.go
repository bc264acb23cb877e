package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nyumbani/visits-api/internal/domain"
	mw "github.com/nyumbani/visits-api/internal/http/middleware"
	"github.com/nyumbani/visits-api/internal/http/response"
	"github.com/nyumbani/visits-api/internal/notify"
	"github.com/nyumbani/visits-api/internal/platform/mailer"
	"github.com/nyumbani/visits-api/internal/repo/postgres"
	"github.com/nyumbani/visits-api/internal/service"
	"github.com/nyumbani/visits-api/pkg/logger"
)

type VisitsHandler struct {
	svc        service.VisitService
	properties postgres.PropertyRepo
	users      postgres.UserRepo
	mail       mailer.Service
	jwtSecret  string
}

func NewVisitsHandler(svc service.VisitService, properties postgres.PropertyRepo, users postgres.UserRepo, mail mailer.Service, jwtSecret string) *VisitsHandler {
	return &VisitsHandler{
		svc:        svc,
		properties: properties,
		users:      users,
		mail:       mail,
		jwtSecret:  jwtSecret,
	}
}

func (h *VisitsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/visits", func(vr chi.Router) {
		vr.Group(func(pr chi.Router) { // anonymous allowed
			pr.Use(mw.OptionalSession(h.jwtSecret))
			pr.Post("/", h.create)
		})

		vr.Group(func(pr chi.Router) {
			pr.Use(mw.RequireSession(h.jwtSecret))
			pr.Get("/{id}", h.getByID)
			pr.Patch("/{id}/status", h.transition)
			pr.Delete("/{id}", h.remove)
			pr.Get("/{id}/deeplink", h.deepLink)
			pr.Get("/{id}/receipt", h.receipt)
			pr.Post("/{id}/receipt/send", h.sendReceipt)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSession(h.jwtSecret))
		pr.Post("/owner/visits", h.createOwnerEntry)
		pr.Get("/owner/visits", h.listForOwner)
		pr.Get("/my/visits", h.listForRequester)
	})

	return r
}

func (h *VisitsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.SelfServiceVisitReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if claims := mw.Claims(r); claims != nil {
		sub := claims.Sub
		in.RequesterID = &sub
		if in.VisitorName == "" {
			in.VisitorName = claims.Name
		}
		if in.VisitorEmail == "" {
			in.VisitorEmail = claims.Email
		}
	}

	v, err := h.svc.CreateSelfService(r.Context(), &in)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	if v == nil {
		// Store policy turned the anonymous write away; the caller proceeds
		// as accepted.
		response.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}

	response.WriteJSON(w, http.StatusCreated, v)
}

func (h *VisitsHandler) createOwnerEntry(w http.ResponseWriter, r *http.Request) {
	var in domain.OwnerVisitReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	v, err := h.svc.CreateOwnerEntry(r.Context(), mw.ActorID(r), &in)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, v)
}

func (h *VisitsHandler) getByID(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), mw.ActorID(r))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, v)
}

func (h *VisitsHandler) transition(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	target, ok := domain.ParseVisitStatus(in.Status)
	if !ok {
		response.BadRequest(w, "status must be one of scheduled, confirmed, completed, cancelled")
		return
	}

	v, err := h.svc.Transition(r.Context(), chi.URLParam(r, "id"), target, mw.ActorID(r))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, v)
}

func (h *VisitsHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), mw.ActorID(r)); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *VisitsHandler) listForOwner(w http.ResponseWriter, r *http.Request) {
	visits, err := h.svc.ListForOwner(r.Context(), mw.ActorID(r))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"visits": visits, "count": len(visits)})
}

func (h *VisitsHandler) listForRequester(w http.ResponseWriter, r *http.Request) {
	visits, err := h.svc.ListForRequester(r.Context(), mw.ActorID(r))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{"visits": visits, "count": len(visits)})
}

// visitContext loads the visit (authorization included) plus the property and
// requester records the notification builders take.
func (h *VisitsHandler) visitContext(r *http.Request) (*domain.Visit, *domain.Property, *domain.User, error) {
	v, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), mw.ActorID(r))
	if err != nil {
		return nil, nil, nil, err
	}

	p, err := h.properties.GetByID(r.Context(), v.PropertyID)
	if err != nil {
		return nil, nil, nil, err
	}
	if p == nil {
		return nil, nil, nil, domain.ErrNotFound
	}

	var requester *domain.User
	if v.RequesterID != nil {
		requester, err = h.users.FindByID(r.Context(), *v.RequesterID)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	return v, p, requester, nil
}

func (h *VisitsHandler) deepLink(w http.ResponseWriter, r *http.Request) {
	v, p, requester, err := h.visitContext(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	link, err := notify.BuildDeepLink(v, p, requester)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"destination": link.Destination,
		"text":        link.Text,
		"url":         link.URL(),
	})
}

func (h *VisitsHandler) receipt(w http.ResponseWriter, r *http.Request) {
	v, p, requester, err := h.visitContext(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	email, err := notify.BuildReceiptEmail(v, p, requester)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, email)
}

func (h *VisitsHandler) sendReceipt(w http.ResponseWriter, r *http.Request) {
	v, p, requester, err := h.visitContext(r)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	email, err := notify.BuildReceiptEmail(v, p, requester)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	toName := v.VisitorName
	if toName == "" && requester != nil {
		toName = requester.Name
	}

	messageID, err := mailer.SendReceipt(h.mail, toName, email)
	if err != nil {
		logger.ErrorContext(r.Context(), "receipt dispatch failed", "error", err, "visit_id", v.ID)
		response.InternalError(w, "failed to send receipt")
		return
	}

	logger.InfoContext(r.Context(), "receipt sent", "visit_id", v.ID, "to", email.To)
	response.WriteJSON(w, http.StatusAccepted, map[string]string{
		"status":     "sent",
		"to":         email.To,
		"message_id": messageID,
	})
}
