package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	AdminRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "admin_requests_total", Help: "Admin page requests"},
		[]string{"route", "status"},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "admin_uploads_total", Help: "Recipient file uploads by outcome"},
		[]string{"outcome"},
	)
	UploadRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "admin_upload_rows",
			Help:    "Data rows per uploaded recipient file",
			Buckets: []float64{1, 10, 100, 1000, 10000, 50000},
		},
	)
	NotifyClientRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notify_client_requests_total", Help: "Notification API calls"},
		[]string{"method", "status"},
	)
	EventsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "admin_events_emitted_total", Help: "Analytics event emit results"},
		[]string{"result"},
	)
	JobsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "admin_jobs_started_total", Help: "Batch jobs submitted"},
		[]string{"result"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(AdminRequests, Uploads, UploadRows, NotifyClientRequests, EventsEmitted, JobsStarted)
}
