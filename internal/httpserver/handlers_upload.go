package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"notifyadmin/internal/domain"
	"notifyadmin/internal/observability"
	"notifyadmin/internal/recipients"
	"notifyadmin/internal/session"
	"notifyadmin/internal/uploads"
)

// handleUpload takes the recipient file, converts it to canonical CSV,
// stores it and sends the user on to the check page. Validation happens
// there, not here: only files we can't read at all are rejected on upload.
func (a *API) handleUpload(w http.ResponseWriter, r *http.Request) {
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

	filename, records, ok := a.readRecipientFile(w, r)
	if !ok {
		return
	}

	sid, st := a.loadSession(w, r)
	uploadID := uploads.NewUploadID()
	if err := a.Uploads.Put(ctx, uploadID, []byte(recipients.ToCSV(records))); err != nil {
		a.log().Error("upload store failed", "err", err, "upload_id", uploadID)
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return
	}
	observability.Uploads.WithLabelValues("ok").Inc()

	st.UploadData = &session.UploadData{
		OriginalFileName: filename,
		TemplateID:       templateID,
		UploadID:         uploadID,
	}
	if !a.saveSession(w, r, sid, st) {
		return
	}
	redirect(w, r, checkPath(serviceID, t.Type, uploadID))
}

// readRecipientFile pulls the multipart file out of the request and parses
// it. On an unreadable file it has already answered with the error banner.
func (a *API) readRecipientFile(w http.ResponseWriter, r *http.Request) (string, [][]string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		http.Error(w, ErrBadForm, http.StatusBadRequest)
		return "", nil, false
	}
	f, fh, err := r.FormFile("file")
	if err != nil {
		http.Error(w, ErrBadForm, http.StatusBadRequest)
		return "", nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, ErrBadForm, http.StatusBadRequest)
		return "", nil, false
	}

	records, err := recipients.Parse(fh.Filename, data)
	if err != nil {
		observability.Uploads.WithLabelValues("unreadable").Inc()
		var unreadable recipients.UnreadableFileError
		if errors.As(err, &unreadable) {
			writeJSON(w, http.StatusOK, checkMessagesPage{Banner: bannerFor(unreadable, domain.Template{})})
			return "", nil, false
		}
		http.Error(w, ErrBadForm, http.StatusBadRequest)
		return "", nil, false
	}
	return fh.Filename, records, true
}

// handleRecheckUpload replaces the stored file from the check page's
// try-again form and redirects to the new file's check page.
func (a *API) handleRecheckUpload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID := vars["serviceID"]
	tType, ok := parseTemplateType(vars["templateType"])
	if !ok {
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}

	sid, st := a.loadSession(w, r)
	if st.UploadData == nil || st.UploadData.TemplateID == "" {
		http.Redirect(w, r, templatesPath(serviceID), http.StatusFound)
		return
	}

	filename, records, ok := a.readRecipientFile(w, r)
	if !ok {
		return
	}

	uploadID := uploads.NewUploadID()
	if err := a.Uploads.Put(r.Context(), uploadID, []byte(recipients.ToCSV(records))); err != nil {
		a.log().Error("upload store failed", "err", err, "upload_id", uploadID)
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return
	}
	observability.Uploads.WithLabelValues("ok").Inc()

	st.UploadData.OriginalFileName = filename
	st.UploadData.UploadID = uploadID
	st.UploadData.Valid = false
	if !a.saveSession(w, r, sid, st) {
		return
	}
	redirect(w, r, checkPath(serviceID, tType, uploadID))
}

// handleCheckMessages re-downloads the stored file and validates the whole
// thing against the template and today's sending policy. The session caches
// only the outcome; the file itself is always re-read so a stale browser tab
// can't submit a file that no longer passes.
func (a *API) handleCheckMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, uploadID := vars["serviceID"], vars["uploadID"]
	if _, ok := parseTemplateType(vars["templateType"]); !ok {
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}
	ctx := r.Context()

	sid, st := a.loadSession(w, r)
	ud := st.UploadData
	if ud == nil || ud.UploadID != uploadID {
		http.Redirect(w, r, templatesPath(serviceID), http.StatusFound)
		return
	}

	t, err := a.Notify.GetTemplate(ctx, serviceID, ud.TemplateID)
	if err != nil {
		a.apiError(w, err, "get template failed")
		return
	}
	svc, err := a.Notify.GetService(ctx, serviceID)
	if err != nil {
		a.apiError(w, err, "get service failed")
		return
	}
	team, err := a.Notify.GetUsers(ctx, serviceID)
	if err != nil {
		a.apiError(w, err, "get users failed")
		return
	}
	stats, err := a.Notify.GetDailyStats(ctx, serviceID)
	if err != nil {
		a.apiError(w, err, "get daily stats failed")
		return
	}

	table, ok := a.loadTable(w, r, t, svc, ud)
	if !ok {
		return
	}
	observability.UploadRows.Observe(float64(len(table.Rows)))

	verdict := table.Verdict(recipients.Policy{
		Service:          svc,
		Team:             team,
		Stats:            stats,
		OriginalFileName: ud.OriginalFileName,
	})
	ud.NotificationCount = len(table.Rows)
	ud.Valid = verdict == nil
	if !a.saveSession(w, r, sid, st) {
		return
	}

	page := checkMessagesPage{ReadyToSend: verdict == nil}
	if verdict != nil {
		page.Banner = bannerFor(verdict, t)
	} else {
		page.Heading = "Preview of " + ud.OriginalFileName
		page.AllowScheduling = t.Type != domain.TypeLetter
	}
	page.Table = tableView(table.Preview(a.PreviewRows))
	if verdict == nil && len(table.Rows) > 0 {
		rendered := a.Preview.HTML(t, rowValues(t, table.Rows[0]))
		page.Preview = &rendered
	}
	writeJSON(w, http.StatusOK, page)
}

// loadTable fetches the stored upload and parses it into a validated table.
func (a *API) loadTable(w http.ResponseWriter, r *http.Request, t domain.Template, svc domain.Service, ud *session.UploadData) (*recipients.Table, bool) {
	data, err := a.Uploads.Get(r.Context(), ud.UploadID)
	if err != nil {
		if errors.Is(err, uploads.ErrNotFound) {
			http.Redirect(w, r, templatesPath(t.ServiceID), http.StatusFound)
			return nil, false
		}
		a.log().Error("upload fetch failed", "err", err, "upload_id", ud.UploadID)
		http.Error(w, ErrDependency, http.StatusBadGateway)
		return nil, false
	}
	records, err := recipients.Parse(ud.OriginalFileName, data)
	if err != nil {
		writeJSON(w, http.StatusOK, checkMessagesPage{Banner: bannerFor(err, t)})
		return nil, false
	}
	return recipients.NewTable(records, recipients.Options{
		Template:         t,
		InternationalSMS: svc.InternationalSMS,
		MaxRows:          a.MaxRows,
	}), true
}

// handleCheckLetterPreview renders the first row of the uploaded file as a
// letter PDF or PNG.
func (a *API) handleCheckLetterPreview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, uploadID := vars["serviceID"], vars["uploadID"]
	ctx := r.Context()

	_, st := a.loadSession(w, r)
	ud := st.UploadData
	if ud == nil || ud.UploadID != uploadID {
		http.Redirect(w, r, templatesPath(serviceID), http.StatusFound)
		return
	}
	t, err := a.Notify.GetTemplate(ctx, serviceID, ud.TemplateID)
	if err != nil {
		a.apiError(w, err, "get template failed")
		return
	}
	svc, err := a.Notify.GetService(ctx, serviceID)
	if err != nil {
		a.apiError(w, err, "get service failed")
		return
	}
	table, ok := a.loadTable(w, r, t, svc, ud)
	if !ok {
		return
	}
	if len(table.Rows) == 0 {
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}

	a.renderLetter(w, r, t, rowValues(t, table.Rows[0]), vars["filetype"])
}

// handleStartJob turns a checked upload into a batch job. Re-validation
// already happened on the check page; a file that was never marked valid is
// bounced back there.
func (a *API) handleStartJob(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceID, uploadID := vars["serviceID"], vars["uploadID"]
	ctx := r.Context()

	sid, st := a.loadSession(w, r)
	ud := st.UploadData
	if ud == nil || ud.UploadID != uploadID {
		http.Redirect(w, r, templatesPath(serviceID), http.StatusFound)
		return
	}
	t, err := a.Notify.GetTemplate(ctx, serviceID, ud.TemplateID)
	if err != nil {
		a.apiError(w, err, "get template failed")
		return
	}
	if !ud.Valid {
		redirect(w, r, checkPath(serviceID, t.Type, uploadID))
		return
	}

	scheduledFor := r.FormValue("scheduled_for")
	if scheduledFor != "" && t.Type == domain.TypeLetter {
		scheduledFor = ""
	}

	job, err := a.Notify.CreateJob(ctx, serviceID, uploadID, ud.TemplateID, ud.OriginalFileName, ud.NotificationCount, scheduledFor)
	if err != nil {
		observability.JobsStarted.WithLabelValues("error").Inc()
		a.apiError(w, err, "create job failed")
		return
	}
	observability.JobsStarted.WithLabelValues("ok").Inc()

	st.UploadData = nil
	if !a.saveSession(w, r, sid, st) {
		return
	}
	http.Redirect(w, r, "/services/"+serviceID+"/jobs/"+job.ID+"?just_sent=yes", http.StatusFound)
}

// handleExampleCSV serves a downloadable starter file with one column per
// required field and a single example row.
func (a *API) handleExampleCSV(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	t, err := a.Notify.GetTemplate(r.Context(), vars["serviceID"], vars["templateID"])
	if err != nil {
		a.apiError(w, err, "get template failed")
		return
	}
	cols := t.RequiredColumns()
	example := make([]string, len(cols))
	for i, c := range cols {
		example[i] = exampleValue(c)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="example.csv"`)
	_, _ = w.Write([]byte(recipients.ToCSV([][]string{cols, example})))
}

func exampleValue(column string) string {
	switch domain.NormalizeColumn(column) {
	case "phonenumber":
		return "07700 900321"
	case "emailaddress":
		return "test@example.com"
	case "addressline1":
		return "A. Name"
	case "addressline2":
		return "123 Example Street"
	case "postcode":
		return "XM4 5HQ"
	}
	return "example"
}

// rowValues extracts the first row's personalisation for message previews.
func rowValues(t domain.Template, row recipients.Row) map[string]string {
	values := make(map[string]string)
	for _, field := range t.WizardFields() {
		values[field] = row.Get(field)
	}
	return values
}
