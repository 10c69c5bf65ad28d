package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/borderease/internal/common"
	"github.com/dmitrijs2005/borderease/internal/logging"
	"github.com/dmitrijs2005/borderease/internal/server/auth"
	"github.com/dmitrijs2005/borderease/internal/server/models"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type VisaService interface {
	List(ctx context.Context, limit int) ([]models.Visa, error)
	Get(ctx context.Context, id string) (*models.Visa, error)
	ListByOwner(ctx context.Context, email string) ([]models.Visa, error)
	Create(ctx context.Context, p *auth.Principal, v models.Visa) (*models.Visa, error)
	Update(ctx context.Context, p *auth.Principal, id string, v models.Visa) (*models.Visa, error)
	Delete(ctx context.Context, p *auth.Principal, id string) error
}

type ApplicationService interface {
	ListByApplicant(ctx context.Context, p *auth.Principal, email string) ([]models.Application, error)
	Create(ctx context.Context, p *auth.Principal, a models.Application) (*models.Application, error)
	Delete(ctx context.Context, p *auth.Principal, id string) error
}

type UserService interface {
	Save(ctx context.Context, p *auth.Principal, u models.User) (*models.User, error)
	Get(ctx context.Context, p *auth.Principal, email string) (*models.User, error)
	Update(ctx context.Context, p *auth.Principal, email string, patch models.UserPatch) error
}

// DeleteResult acknowledges a delete.
type DeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}

type handlers struct {
	visas        VisaService
	applications ApplicationService
	users        UserService
	logger       logging.Logger
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is empty"
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// pathParam returns the unescaped chi URL parameter.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func principal(r *http.Request) *auth.Principal {
	p, _ := auth.PrincipalFrom(r.Context())
	return p
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(r.Context(), w, h.logger, err)
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) listVisas(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	out, err := h.visas.List(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) getVisa(w http.ResponseWriter, r *http.Request) {
	v, err := h.visas.Get(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) listVisasByOwner(w http.ResponseWriter, r *http.Request) {
	out, err := h.visas.ListByOwner(r.Context(), pathParam(r, "email"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) createVisa(w http.ResponseWriter, r *http.Request) {
	var in models.Visa
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := h.visas.Create(r.Context(), principal(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *handlers) updateVisa(w http.ResponseWriter, r *http.Request) {
	var in models.Visa
	if !decodeBody(w, r, &in) {
		return
	}
	v, err := h.visas.Update(r.Context(), principal(r), pathParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) deleteVisa(w http.ResponseWriter, r *http.Request) {
	if err := h.visas.Delete(r.Context(), principal(r), pathParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResult{DeletedCount: 1})
}

func (h *handlers) listApplications(w http.ResponseWriter, r *http.Request) {
	out, err := h.applications.ListByApplicant(r.Context(), principal(r), pathParam(r, "email"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) createApplication(w http.ResponseWriter, r *http.Request) {
	var in models.Application
	if !decodeBody(w, r, &in) {
		return
	}
	a, err := h.applications.Create(r.Context(), principal(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *handlers) deleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := h.applications.Delete(r.Context(), principal(r), pathParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResult{DeletedCount: 1})
}

func (h *handlers) saveUser(w http.ResponseWriter, r *http.Request) {
	var in models.User
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := h.users.Save(r.Context(), principal(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), principal(r), pathParam(r, "email"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) updateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	email := pathParam(r, "email")
	p := principal(r)
	if err := h.users.Update(r.Context(), p, email, patch); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.users.Get(r.Context(), p, email)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) notFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, common.ErrorNotFound.Error())
}

func (h *handlers) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
