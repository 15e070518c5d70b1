package api

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amterp/forts/internal/catalog"
	"github.com/amterp/forts/internal/flow"
	"github.com/amterp/forts/internal/metrics"
	"github.com/amterp/forts/internal/model"
	"github.com/amterp/forts/internal/service"
	"github.com/amterp/forts/internal/version"
)

// SubmissionTokenHeader lets JSON clients mark retries of one create
// submission so a double-send is rejected instead of inserting twice.
const SubmissionTokenHeader = "X-Submission-Token"

// Handler serves the catalog pages and the JSON API.
type Handler struct {
	svc     *service.FortService
	views   *Views
	images  ImagePolicy
	logger  *zap.Logger
	metrics *metrics.Recorder
	dev     bool
}

// NewHandler creates a handler. views must have been built with
// TemplateFuncs(images).
func NewHandler(svc *service.FortService, views *Views, images ImagePolicy, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		svc:    svc,
		views:  views,
		images: images,
		logger: logger,
	}
}

// SetMetrics sets the recorder served on /metrics.
func (h *Handler) SetMetrics(m *metrics.Recorder) {
	h.metrics = m
}

// SetDev makes pages include the live-reload script.
func (h *Handler) SetDev(dev bool) {
	h.dev = dev
}

// TemplateFuncs returns the helpers the page templates call.
func TemplateFuncs(images ImagePolicy) template.FuncMap {
	return template.FuncMap{
		"firstImage":    images.First,
		"allowedImages": images.Filter,
	}
}

// RegisterRoutes sets up all routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Pages
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /forts", h.ListPage)
	mux.HandleFunc("GET /forts/new", h.NewPage)
	mux.HandleFunc("POST /forts", h.CreatePage)
	mux.HandleFunc("GET /forts/{id}", h.DetailPage)
	mux.HandleFunc("GET /forts/{id}/delete", h.ConfirmDeletePage)
	mux.HandleFunc("POST /forts/{id}/delete", h.DeletePage)

	// JSON API
	mux.HandleFunc("GET /api/v1/forts", h.ListForts)
	mux.HandleFunc("POST /api/v1/forts", h.CreateFort)
	mux.HandleFunc("GET /api/v1/forts/{id}", h.GetFort)
	mux.HandleFunc("DELETE /api/v1/forts/{id}", h.DeleteFort)
	mux.HandleFunc("GET /api/v1/options", h.GetOptions)

	// Operational
	mux.HandleFunc("GET /healthz", h.Health)
	mux.Handle("GET /metrics", h.metrics.Handler())
	mux.HandleFunc("GET /favicon.svg", h.GetFavicon)

	mux.HandleFunc("/", h.NotFoundPage)
}

// --- JSON API ---

// ListResponse is the JSON body of a list request.
type ListResponse struct {
	Forts    []*model.Fort  `json:"forts"`
	Total    int            `json:"total"`
	Criteria CriteriaParams `json:"criteria"`
}

// CriteriaParams echoes the criteria a list was filtered with.
type CriteriaParams struct {
	Search string `json:"q"`
	Type   string `json:"type"`
	Region string `json:"region"`
}

// MutationResponse is the JSON body of a create or delete.
type MutationResponse struct {
	Fort         *model.Fort       `json:"fort,omitempty"`
	Notification flow.Notification `json:"notification"`
	Redirect     string            `json:"redirect,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// ListForts returns the visible subset for the q, type and region parameters.
func (h *Handler) ListForts(w http.ResponseWriter, r *http.Request) {
	p := h.svc.List(r.Context(), model.NoFilter())
	p.Update(r.URL.Query())

	view := p.View()
	c := p.Criteria()
	JSON(w, http.StatusOK, ListResponse{
		Forts: view.Forts,
		Total: view.Total,
		Criteria: CriteriaParams{
			Search: c.Search,
			Type:   string(c.Type),
			Region: string(c.Region),
		},
	})
}

// CreateFort runs the create flow for a JSON body.
func (h *Handler) CreateFort(w http.ResponseWriter, r *http.Request) {
	var in model.FormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		BadRequest(w, "invalid JSON")
		return
	}

	token := r.Header.Get(SubmissionTokenHeader)
	if token == "" {
		token = uuid.NewString()
	}

	res, err := h.svc.Create(r.Context(), in, token)
	if err != nil {
		Error(w, err)
		return
	}

	out := res.Outcome
	if out.State == flow.Failed {
		h.mutationFailed(w, out)
		return
	}
	JSON(w, http.StatusCreated, MutationResponse{
		Fort:         res.Fort,
		Notification: out.Notification,
		Redirect:     out.Redirect,
	})
}

// GetFort returns one fort.
func (h *Handler) GetFort(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, f)
}

// DeleteFort runs the delete flow. The request itself is the confirmation.
func (h *Handler) DeleteFort(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Delete(r.Context(), r.PathValue("id"), true)
	if err != nil {
		Error(w, err)
		return
	}
	if out.State == flow.Failed {
		h.mutationFailed(w, out)
		return
	}
	JSON(w, http.StatusOK, MutationResponse{
		Notification: out.Notification,
		Redirect:     out.Redirect,
	})
}

func (h *Handler) mutationFailed(w http.ResponseWriter, out flow.Outcome) {
	status := StatusFor(out.Err)
	msg := out.Err.Error()
	if status == http.StatusInternalServerError {
		msg = "storage error"
	}
	JSON(w, status, MutationResponse{
		Notification: out.Notification,
		Error:        msg,
	})
}

// GetOptions returns the selector values.
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, service.SelectOptions())
}

// HealthResponse is the JSON body of /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health reports liveness. It does not touch the store.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.Version})
}

// --- rendering ---

type pageData struct {
	Title       string
	Dev         bool
	Notice      *flow.Notification
	List        *catalog.ListView
	Fort        *model.Fort
	Form        *formView
	Options     service.Options
	DeleteLabel string
	Disabled    bool
}

type formView struct {
	Values      model.FormInput
	Errors      map[string]string
	Token       string
	SubmitLabel string
	Disabled    bool
}

// render fills the fields every page shares and writes the page. A pending
// flash notification is consumed unless data already carries one.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data *pageData) {
	data.Dev = h.dev
	if data.Notice == nil {
		data.Notice = takeFlash(w, r)
	}
	if err := h.views.Render(w, status, name, data); err != nil {
		h.logger.Error("render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func isFlowRejection(err error) bool {
	return errors.Is(err, flow.ErrInFlight) || errors.Is(err, flow.ErrFinished)
}
