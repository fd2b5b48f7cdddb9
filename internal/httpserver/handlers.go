package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"notifyadmin/internal/domain"
	"notifyadmin/internal/notify"
	"notifyadmin/internal/preview"
	"notifyadmin/internal/session"
	"notifyadmin/internal/telemetry"
	"notifyadmin/internal/uploads"
)

// NotifyAPI is the slice of the notification API client the handlers use.
type NotifyAPI interface {
	GetTemplate(ctx context.Context, serviceID, templateID string) (domain.Template, error)
	GetTemplates(ctx context.Context, serviceID string) ([]domain.Template, error)
	GetService(ctx context.Context, serviceID string) (domain.Service, error)
	GetDailyStats(ctx context.Context, serviceID string) (domain.DailyStats, error)
	GetUsers(ctx context.Context, serviceID string) ([]domain.TeamMember, error)
	CreateJob(ctx context.Context, serviceID, jobID, templateID, originalFileName string, notificationCount int, scheduledFor string) (domain.Job, error)
	GetJob(ctx context.Context, serviceID, jobID string) (domain.Job, error)
	SendNotification(ctx context.Context, serviceID, templateID, recipient string, personalisation map[string]string) (domain.Notification, error)
	GetNotification(ctx context.Context, serviceID, notificationID string) (domain.Notification, error)
}

// Previewer renders message previews; letter formats need the template
// preview service.
type Previewer interface {
	HTML(t domain.Template, values map[string]string) preview.Rendered
	Letter(ctx context.Context, t domain.Template, values map[string]string, filetype string) ([]byte, string, error)
	PageCount(ctx context.Context, t domain.Template, values map[string]string) (int, error)
}

type API struct {
	Notify   NotifyAPI
	Sessions session.Store
	Uploads  uploads.Store
	Preview  Previewer
	Events   *telemetry.Emitter
	Logger   *slog.Logger

	MaxRows        int
	PreviewRows    int
	MaxUploadBytes int64
}

func (a *API) log() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func (a *API) Register(m *mux.Router) {
	m.HandleFunc("/services/{serviceID}/templates", a.handleTemplates).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/send", a.handleUpload).Methods(http.MethodPost)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/example.csv", a.handleExampleCSV).Methods(http.MethodGet)

	m.HandleFunc("/services/{serviceID}/templates/{templateID}/send-test", a.handleWizardEntry(false)).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/send-one-off", a.handleWizardEntry(true)).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/send-test/step-{step}", a.handleStep(false)).Methods(http.MethodGet, http.MethodPost)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/send-one-off/step-{step}", a.handleStep(true)).Methods(http.MethodGet, http.MethodPost)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/send-test.{filetype}", a.handleWizardLetterPreview).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/send-one-off.{filetype}", a.handleWizardLetterPreview).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/check", a.handleCheckNotification).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/templates/{templateID}/send-notification", a.handleSendNotification).Methods(http.MethodPost)

	// the filetype variant must be registered first or {uploadID} swallows
	// the dotted path
	m.HandleFunc("/services/{serviceID}/{templateType}/check/{uploadID}.{filetype}", a.handleCheckLetterPreview).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/{templateType}/check/{uploadID}", a.handleCheckMessages).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/{templateType}/check/{uploadID}", a.handleRecheckUpload).Methods(http.MethodPost)
	m.HandleFunc("/services/{serviceID}/jobs/{uploadID}", a.handleStartJob).Methods(http.MethodPost)
	m.HandleFunc("/services/{serviceID}/jobs/{jobID}", a.handleViewJob).Methods(http.MethodGet)
	m.HandleFunc("/services/{serviceID}/notifications/{notificationID}", a.handleViewNotification).Methods(http.MethodGet)

	m.HandleFunc("/hooks/user-logged-in", a.handleUserLoggedIn).Methods(http.MethodPost)
}

// apiError answers a failed notification API call: remote 404s pass through,
// everything else is a dependency failure.
func (a *API) apiError(w http.ResponseWriter, err error, msg string) {
	a.log().Error(msg, "err", err)
	var apiErr *notify.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}
	http.Error(w, ErrDependency, http.StatusBadGateway)
}

func (a *API) handleTemplates(w http.ResponseWriter, r *http.Request) {
	serviceID := mux.Vars(r)["serviceID"]
	templates, err := a.Notify.GetTemplates(r.Context(), serviceID)
	if err != nil {
		a.apiError(w, err, "get templates failed")
		return
	}

	// the template list is where abandoned flows land; any in-flight wizard
	// or upload state dies here
	sid, st := a.loadSession(w, r)
	if st.RecipientSet || st.Placeholders != nil || st.UploadData != nil {
		st.ClearWizard()
		st.UploadData = nil
		if !a.saveSession(w, r, sid, st) {
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (a *API) handleViewJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	job, err := a.Notify.GetJob(r.Context(), vars["serviceID"], vars["jobID"])
	if err != nil {
		a.apiError(w, err, "get job failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"job":       job,
		"just_sent": r.URL.Query().Get("just_sent") == "yes",
	})
}

func (a *API) handleViewNotification(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, err := a.Notify.GetNotification(r.Context(), vars["serviceID"], vars["notificationID"])
	if err != nil {
		a.apiError(w, err, "get notification failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notification": n})
}

// handleUserLoggedIn is called by the authenticating proxy after a login.
// Event delivery is best-effort so the response is always 204.
func (a *API) handleUserLoggedIn(w http.ResponseWriter, r *http.Request) {
	a.Events.OnUserLoggedIn(r.Context(), r, currentUser(r).ID)
	w.WriteHeader(http.StatusNoContent)
}

func parseTemplateType(s string) (domain.TemplateType, bool) {
	switch domain.TemplateType(s) {
	case domain.TypeSMS, domain.TypeEmail, domain.TypeLetter:
		return domain.TemplateType(s), true
	}
	return "", false
}
