package api

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	fortserr "github.com/amterp/forts/internal/errors"
	"github.com/amterp/forts/internal/flow"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/service"
)

// Home sends the root to the list.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, flow.ListRoute, http.StatusFound)
}

// ListPage renders the filtered list. The criteria live only in the query
// string of this one page view.
func (h *Handler) ListPage(w http.ResponseWriter, r *http.Request) {
	p := h.svc.List(r.Context(), model.NoFilter())
	p.Update(r.URL.Query())

	view := p.View()
	h.render(w, r, http.StatusOK, "list", &pageData{Title: "Forts", List: &view})
}

// NewPage renders an empty create form with a fresh submission token.
func (h *Handler) NewPage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, model.FormInput{}, nil, uuid.NewString(), nil)
}

// CreatePage runs the create flow for a form post.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := formInput(r.PostForm)
	token := r.PostForm.Get("token")
	if token == "" {
		token = uuid.NewString()
	}

	res, err := h.svc.Create(r.Context(), in, token)
	if err != nil {
		var verrs fortserr.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			h.renderForm(w, r, http.StatusBadRequest, in, verrs.ByField(), token, nil)
		case isFlowRejection(err):
			h.renderForm(w, r, StatusFor(err), in, nil, token, nil)
		default:
			h.serverError(w, r, err)
		}
		return
	}

	out := res.Outcome
	if out.State == flow.Failed {
		// The flow is back to idle; the same token may be retried.
		h.renderForm(w, r, StatusFor(out.Err), in, nil, token, &out.Notification)
		return
	}
	setFlash(w, out.Notification)
	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, status int, in model.FormInput, errs map[string]string, token string, notice *flow.Notification) {
	submitting := h.svc.Guard().InFlight(token)
	h.render(w, r, status, "new", &pageData{
		Title:   "Add Fort",
		Notice:  notice,
		Options: service.SelectOptions(),
		Form: &formView{
			Values:      in,
			Errors:      errs,
			Token:       token,
			SubmitLabel: flow.LabelFor(flow.Create, submitting),
			Disabled:    submitting,
		},
	})
}

// DetailPage renders one fort with its delete control.
func (h *Handler) DetailPage(w http.ResponseWriter, r *http.Request) {
	h.renderFort(w, r, "detail", http.StatusOK, r.PathValue("id"), nil)
}

// ConfirmDeletePage is the confirmation gate in front of a delete.
func (h *Handler) ConfirmDeletePage(w http.ResponseWriter, r *http.Request) {
	h.renderFort(w, r, "delete", http.StatusOK, r.PathValue("id"), nil)
}

// DeletePage runs the delete flow. Only a post carrying confirm=yes has
// passed the gate; anything else is sent back to it.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	confirmed := r.PostForm.Get("confirm") == "yes"

	out, err := h.svc.Delete(r.Context(), id, confirmed)
	if err != nil {
		switch {
		case errors.Is(err, flow.ErrNotConfirmed):
			http.Redirect(w, r, deletePath(id), http.StatusSeeOther)
		case isFlowRejection(err):
			h.renderFort(w, r, "delete", StatusFor(err), id, nil)
		default:
			h.serverError(w, r, err)
		}
		return
	}

	if out.State == flow.Failed {
		h.renderFort(w, r, "detail", StatusFor(out.Err), id, &out.Notification)
		return
	}
	setFlash(w, out.Notification)
	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}

// renderFort renders a page about one fort, falling back to the not-found
// page when it is missing. notice is shown on whichever page is rendered.
func (h *Handler) renderFort(w http.ResponseWriter, r *http.Request, page string, status int, id string, notice *flow.Notification) {
	f, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if fortserr.IsNotFound(err) {
			h.render(w, r, http.StatusNotFound, "not_found", &pageData{Title: "Not found", Notice: notice})
			return
		}
		h.logger.Error("error loading fort", zap.String("id", id), zap.Error(err))
		h.render(w, r, http.StatusInternalServerError, "not_found", &pageData{Title: "Not found", Notice: notice})
		return
	}

	submitting := h.svc.Guard().InFlight(flow.DeleteKey(id))
	h.render(w, r, status, page, &pageData{
		Title:       f.Name,
		Notice:      notice,
		Fort:        f,
		DeleteLabel: flow.LabelFor(flow.Delete, submitting),
		Disabled:    submitting,
	})
}

// NotFoundPage catches every unrouted path.
func (h *Handler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not_found", &pageData{Title: "Not found"})
}

func formInput(v url.Values) model.FormInput {
	return model.FormInput{
		Name:            v.Get("name"),
		Type:            v.Get("type"),
		District:        v.Get("district"),
		Region:          v.Get("region"),
		Elevation:       v.Get("elevation"),
		Period:          v.Get("period"),
		BuiltBy:         v.Get("built_by"),
		Significance:    v.Get("significance"),
		CurrentStatus:   v.Get("current_status"),
		BestTimeToVisit: v.Get("best_time_to_visit"),
		TrekDifficulty:  v.Get("trek_difficulty"),
		EntranceFee:     v.Get("entrance_fee"),
	}
}

func deletePath(id string) string {
	return "/forts/" + url.PathEscape(id) + "/delete"
}
