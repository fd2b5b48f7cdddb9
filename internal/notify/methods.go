package notify

import (
	"context"
	"net/http"

	"notifyadmin/internal/domain"
)

func (c *Client) GetTemplate(ctx context.Context, serviceID, templateID string) (domain.Template, error) {
	var out struct {
		Data domain.Template `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/service/"+serviceID+"/template/"+templateID, nil, nil, &out)
	return out.Data, err
}

func (c *Client) GetTemplates(ctx context.Context, serviceID string) ([]domain.Template, error) {
	var out struct {
		Data []domain.Template `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/service/"+serviceID+"/template", nil, nil, &out)
	return out.Data, err
}

func (c *Client) GetService(ctx context.Context, serviceID string) (domain.Service, error) {
	var out struct {
		Data domain.Service `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/service/"+serviceID, nil, nil, &out)
	return out.Data, err
}

// GetDailyStats fetches today's per-channel statistics for the service.
func (c *Client) GetDailyStats(ctx context.Context, serviceID string) (domain.DailyStats, error) {
	var out struct {
		Data struct {
			Statistics domain.DailyStats `json:"statistics"`
		} `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/service/"+serviceID,
		map[string]string{"detailed": "True", "today_only": "True"}, nil, &out)
	return out.Data.Statistics, err
}

func (c *Client) GetUsers(ctx context.Context, serviceID string) ([]domain.TeamMember, error) {
	var out struct {
		Data []domain.TeamMember `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/service/"+serviceID+"/users", nil, nil, &out)
	return out.Data, err
}

// CreateJob submits a validated upload as a batch job. scheduledFor is an
// ISO-8601 timestamp; empty string means send now.
func (c *Client) CreateJob(ctx context.Context, serviceID, jobID, templateID, originalFileName string, notificationCount int, scheduledFor string) (domain.Job, error) {
	body := map[string]any{
		"id":                 jobID,
		"template":           templateID,
		"original_file_name": originalFileName,
		"notification_count": notificationCount,
	}
	if scheduledFor != "" {
		body["scheduled_for"] = scheduledFor
	}
	var out struct {
		Data domain.Job `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/service/"+serviceID+"/job", nil, body, &out)
	return out.Data, err
}

func (c *Client) GetJob(ctx context.Context, serviceID, jobID string) (domain.Job, error) {
	var out struct {
		Data domain.Job `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/service/"+serviceID+"/job/"+jobID, nil, nil, &out)
	return out.Data, err
}

// SendNotification sends a single message composed in the wizard.
func (c *Client) SendNotification(ctx context.Context, serviceID, templateID, recipient string, personalisation map[string]string) (domain.Notification, error) {
	body := map[string]any{
		"template_id":     templateID,
		"to":              recipient,
		"personalisation": personalisation,
	}
	var out struct {
		Data domain.Notification `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/service/"+serviceID+"/send-notification", nil, body, &out)
	return out.Data, err
}

func (c *Client) GetNotification(ctx context.Context, serviceID, notificationID string) (domain.Notification, error) {
	var out struct {
		Data domain.Notification `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/service/"+serviceID+"/notifications/"+notificationID, nil, nil, &out)
	return out.Data, err
}

// DeleteTemplate archives a template; the API models deletion as an update.
func (c *Client) DeleteTemplate(ctx context.Context, serviceID, templateID, userID string) error {
	body := map[string]any{
		"archived":   true,
		"created_by": userID,
	}
	return c.do(ctx, http.MethodPost, "/service/"+serviceID+"/template/"+templateID, nil, body, nil)
}

// CreateEvent records an analytics event; callers treat failures as
// best-effort.
func (c *Client) CreateEvent(ctx context.Context, eventType string, data map[string]any) error {
	body := map[string]any{
		"event_type": eventType,
		"data":       data,
	}
	return c.do(ctx, http.MethodPost, "/events", nil, body, nil)
}
