package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"notifyadmin/internal/domain"
	"notifyadmin/internal/preview"
	"notifyadmin/internal/recipients"
)

// RowView is one preview row. Cells line up with the table headers; values
// from duplicate-named columns are collapsed into one cell.
type RowView struct {
	Index          int      `json:"index"`
	Cells          []string `json:"cells"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	RecipientError string   `json:"recipient_error,omitempty"`
}

type TableView struct {
	Headers   []string  `json:"headers"`
	Rows      []RowView `json:"rows"`
	TotalRows int       `json:"total_rows"`
	Note      string    `json:"note,omitempty"`
}

func tableView(p recipients.Preview) *TableView {
	tv := &TableView{Headers: p.Headers, TotalRows: p.TotalRows}
	for _, row := range p.Rows {
		rv := RowView{
			Index:          row.Index,
			MissingColumns: row.MissingColumns,
			RecipientError: row.RecipientError,
		}
		for _, h := range p.Headers {
			rv.Cells = append(rv.Cells, strings.Join(row.Cells[domain.NormalizeColumn(h)], " "))
		}
		tv.Rows = append(tv.Rows, rv)
	}
	if p.Truncated {
		tv.Note = fmt.Sprintf("Only showing the first %d rows", len(p.Rows))
	}
	return tv
}

type checkMessagesPage struct {
	Heading         string            `json:"heading,omitempty"`
	Banner          *Banner           `json:"banner,omitempty"`
	Table           *TableView        `json:"table,omitempty"`
	Preview         *preview.Rendered `json:"preview,omitempty"`
	ReadyToSend     bool              `json:"ready_to_send"`
	AllowScheduling bool              `json:"allow_scheduling"`
}

type stepPage struct {
	Heading  string `json:"heading"`
	Field    string `json:"field"`
	Optional bool   `json:"optional"`
	Value    string `json:"value,omitempty"`
	Step     int    `json:"step"`
	Steps    int    `json:"steps"`
	Error    string `json:"error,omitempty"`
}

type checkNotificationPage struct {
	Heading   string           `json:"heading"`
	Recipient string           `json:"recipient,omitempty"`
	Preview   preview.Rendered `json:"preview"`
	PageCount int              `json:"page_count,omitempty"`
}

type sendErrorPage struct {
	Banner     Banner `json:"banner"`
	BackToSend bool   `json:"back_to_send"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// redirect issues a 302, carrying the request's query string along so flags
// like help survive the hop.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if q := r.URL.RawQuery; q != "" {
		path += "?" + q
	}
	http.Redirect(w, r, path, http.StatusFound)
}

func templatesPath(serviceID string) string {
	return "/services/" + serviceID + "/templates"
}

func checkPath(serviceID string, t domain.TemplateType, uploadID string) string {
	return fmt.Sprintf("/services/%s/%s/check/%s", serviceID, string(t), uploadID)
}

func wizardEntryPath(serviceID, templateID string, oneOff bool) string {
	suffix := "/send-test"
	if oneOff {
		suffix = "/send-one-off"
	}
	return "/services/" + serviceID + "/templates/" + templateID + suffix
}

func stepPath(serviceID, templateID string, oneOff bool, i int) string {
	return fmt.Sprintf("%s/step-%d", wizardEntryPath(serviceID, templateID, oneOff), i)
}

func checkNotificationPath(serviceID, templateID string) string {
	return "/services/" + serviceID + "/templates/" + templateID + "/check"
}
