package models

import "time"

// Client is the subject record conditions are evaluated against. It is owned
// by the client directory; the engine only reads it (except for tags, which
// the tag action mutates through the directory).
type Client struct {
	ID            string            `json:"id"             validate:"required"`
	Name          string            `json:"name"`
	Email         string            `json:"email,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	ClientType    string            `json:"client_type,omitempty"`
	TotalSpent    float64           `json:"total_spent"`
	VisitCount    int               `json:"visit_count"`
	LastVisitAt   *time.Time        `json:"last_visit_at,omitempty"`
	LastService   string            `json:"last_service,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Birthday      *time.Time        `json:"birthday,omitempty"`
	LoyaltyPoints int               `json:"loyalty_points"`
	Custom        map[string]string `json:"custom,omitempty"`
}

// HasTag reports whether the client carries the given tag.
func (c *Client) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}

	return false
}
