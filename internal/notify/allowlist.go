package notify

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// updatableServiceAttributes is the closed set of fields UpdateService may
// touch. Anything else fails before a request is built; this is a
// programming error, not a runtime condition.
var updatableServiceAttributes = map[string]bool{
	"name":                       true,
	"active":                     true,
	"message_limit":              true,
	"restricted":                 true,
	"email_from":                 true,
	"reply_to_email_address":     true,
	"sms_sender":                 true,
	"permissions":                true,
	"can_send_international_sms": true,
}

// AttributeNotAllowedError signals an attempt to update a service attribute
// outside the allow-list.
type AttributeNotAllowedError struct {
	Attributes []string
}

func (e *AttributeNotAllowedError) Error() string {
	return fmt.Sprintf("not allowed to update service attributes: %s", strings.Join(e.Attributes, ", "))
}

// UpdateService patches the named attributes. The allow-list is checked
// before any network I/O.
func (c *Client) UpdateService(ctx context.Context, serviceID string, attrs map[string]any) error {
	var disallowed []string
	for k := range attrs {
		if !updatableServiceAttributes[k] {
			disallowed = append(disallowed, k)
		}
	}
	if len(disallowed) > 0 {
		sort.Strings(disallowed)
		return &AttributeNotAllowedError{Attributes: disallowed}
	}
	return c.do(ctx, http.MethodPost, "/service/"+serviceID, nil, attrs, nil)
}
