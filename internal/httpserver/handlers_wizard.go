package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"notifyadmin/internal/domain"
	"notifyadmin/internal/notify"
	"notifyadmin/internal/preview"
	"notifyadmin/internal/wizard"
)

// handleWizardEntry is the canonical start of the send flow. It resets any
// half-finished run, pre-fills the recipient from the signed-in user for
// send-test, and lands on step 0. Letters get their page count computed and
// cached here; entering the flow again always recomputes it.
func (a *API) handleWizardEntry(oneOff bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		serviceID, templateID := vars["serviceID"], vars["templateID"]
		ctx := r.Context()

		t, err := a.Notify.GetTemplate(ctx, serviceID, templateID)
		if err != nil {
			a.apiError(w, err, "get template failed")
			return
		}
		svc, err := a.Notify.GetService(ctx, serviceID)
		if err != nil {
			a.apiError(w, err, "get service failed")
			return
		}
		if !svc.CanSend(t.Type) {
			writeJSON(w, http.StatusOK, checkMessagesPage{Banner: &Banner{Heading: sendingDisabledMessage(t.Type)}})
			return
		}

		sid, st := a.loadSession(w, r)
		recipient := ""
		if !oneOff {
			u := currentUser(r)
			switch t.Type {
			case domain.TypeSMS:
				recipient = u.MobileNumber
			case domain.TypeEmail:
				recipient = u.EmailAddress
			}
		}
		st.StartWizard(recipient)
		st.LetterPageCount = 0
		if t.Type == domain.TypeLetter {
			if n, err := a.Preview.PageCount(ctx, t, nil); err != nil {
				a.log().Error("letter page count failed", "err", err, "template_id", templateID)
			} else {
				st.LetterPageCount = n
			}
		}
		if !a.saveSession(w, r, sid, st) {
			return
		}

		flow := wizard.NewFlow(t, oneOff)
		if len(flow.Fields()) == 0 {
			redirect(w, r, checkNotificationPath(serviceID, templateID))
			return
		}
		redirect(w, r, stepPath(serviceID, templateID, oneOff, 0))
	}
}

// handleStep shows one wizard field (GET) or records its value and moves on
// (POST). A step outside the flow, or a flow that was never started, goes
// back to the canonical entry point instead of erroring.
func (a *API) handleStep(oneOff bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		serviceID, templateID := vars["serviceID"], vars["templateID"]
		ctx := r.Context()

		i, err := strconv.Atoi(vars["step"])
		if err != nil {
			http.Error(w, ErrNotFound, http.StatusNotFound)
			return
		}

		t, err := a.Notify.GetTemplate(ctx, serviceID, templateID)
		if err != nil {
			a.apiError(w, err, "get template failed")
			return
		}
		sid, st := a.loadSession(w, r)
		if st.Placeholders == nil {
			redirect(w, r, wizardEntryPath(serviceID, templateID, oneOff))
			return
		}

		flow := wizard.NewFlow(t, oneOff)
		step, ok := flow.At(st, i)
		if !ok {
			if len(flow.Fields()) == 0 {
				redirect(w, r, checkNotificationPath(serviceID, templateID))
			} else {
				redirect(w, r, wizardEntryPath(serviceID, templateID, oneOff))
			}
			return
		}

		page := stepPage{
			Heading:  fmt.Sprintf("Send ‘%s’", t.Name),
			Field:    step.Field,
			Optional: step.Optional,
			Value:    step.Value,
			Step:     i,
			Steps:    len(flow.Fields()),
		}

		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, page)
			return
		}

		value := r.FormValue("placeholder_value")
		if value == "" && !step.Optional {
			page.Error = "Can’t be empty"
			writeJSON(w, http.StatusOK, page)
			return
		}
		flow.Store(st, i, value)
		if !a.saveSession(w, r, sid, st) {
			return
		}
		if flow.Done(i) {
			redirect(w, r, checkNotificationPath(serviceID, templateID))
			return
		}
		redirect(w, r, stepPath(serviceID, templateID, oneOff, i+1))
	}
}

// handleWizardLetterPreview renders the letter being composed, with whatever
// values have been entered so far.
func (a *API) handleWizardLetterPreview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, templateID := vars["serviceID"], vars["templateID"]

	t, err := a.Notify.GetTemplate(r.Context(), serviceID, templateID)
	if err != nil {
		a.apiError(w, err, "get template failed")
		return
	}
	if t.Type != domain.TypeLetter {
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}
	_, st := a.loadSession(w, r)
	flow := wizard.NewFlow(t, false)
	a.renderLetter(w, r, t, flow.Values(st), vars["filetype"])
}

func (a *API) renderLetter(w http.ResponseWriter, r *http.Request, t domain.Template, values map[string]string, filetype string) {
	body, contentType, err := a.Preview.Letter(r.Context(), t, values, filetype)
	if err != nil {
		if errors.Is(err, preview.ErrUnsupportedFiletype) {
			http.Error(w, ErrNotFound, http.StatusNotFound)
			return
		}
		a.log().Error("letter preview failed", "err", err, "template_id", t.ID)
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(body)
}

// handleCheckNotification is the confirmation page for a single send. A
// session that isn't ready goes back to where the user can finish: the
// wizard when they arrived via the help flow, the template list otherwise.
func (a *API) handleCheckNotification(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, templateID := vars["serviceID"], vars["templateID"]
	ctx := r.Context()

	t, err := a.Notify.GetTemplate(ctx, serviceID, templateID)
	if err != nil {
		a.apiError(w, err, "get template failed")
		return
	}
	sid, st := a.loadSession(w, r)
	flow := wizard.NewFlow(t, false)
	if !flow.Ready(st) {
		if r.URL.Query().Get("help") != "" {
			redirect(w, r, wizardEntryPath(serviceID, templateID, false))
		} else {
			http.Redirect(w, r, templatesPath(serviceID), http.StatusFound)
		}
		return
	}

	page := checkNotificationPage{
		Heading:   fmt.Sprintf("Preview of ‘%s’", t.Name),
		Recipient: st.Recipient,
		Preview:   a.Preview.HTML(t, flow.Values(st)),
	}
	if t.Type == domain.TypeLetter {
		if st.LetterPageCount <= 0 {
			if n, err := a.Preview.PageCount(ctx, t, flow.Values(st)); err == nil {
				st.LetterPageCount = n
				if !a.saveSession(w, r, sid, st) {
					return
				}
			}
		}
		page.PageCount = st.LetterPageCount
	}
	writeJSON(w, http.StatusOK, page)
}

// handleSendNotification submits the composed message. Remote policy
// rejections become banner copy on a re-rendered page; the entered values
// stay in the session so nothing is lost.
func (a *API) handleSendNotification(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, templateID := vars["serviceID"], vars["templateID"]
	ctx := r.Context()

	t, err := a.Notify.GetTemplate(ctx, serviceID, templateID)
	if err != nil {
		a.apiError(w, err, "get template failed")
		return
	}
	sid, st := a.loadSession(w, r)
	flow := wizard.NewFlow(t, false)
	if !flow.Ready(st) {
		// same lost-state destinations as the check page
		if r.URL.Query().Get("help") != "" {
			redirect(w, r, wizardEntryPath(serviceID, templateID, false))
		} else {
			http.Redirect(w, r, templatesPath(serviceID), http.StatusFound)
		}
		return
	}

	n, err := a.Notify.SendNotification(ctx, serviceID, templateID, st.Recipient, flow.Values(st))
	if err != nil {
		var apiErr *notify.APIError
		if errors.As(err, &apiErr) {
			submitErr, known := notify.TranslateSubmitError(t.Type, apiErr)
			if !known {
				a.log().Error("unrecognised send rejection", "err", apiErr, "template_id", templateID)
			}
			writeJSON(w, http.StatusOK, sendErrorPage{
				Banner:     Banner{Heading: submitErr.Heading, Detail: submitErr.Detail},
				BackToSend: true,
			})
			return
		}
		a.apiError(w, err, "send notification failed")
		return
	}

	st.ClearWizard()
	if !a.saveSession(w, r, sid, st) {
		return
	}
	redirect(w, r, "/services/"+serviceID+"/notifications/"+n.ID)
}
