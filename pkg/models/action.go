package models

// ActionType is the closed set of dispatchable action types.
type ActionType string

const (
	ActionMessage      ActionType = "message"
	ActionEmail        ActionType = "email"
	ActionTag          ActionType = "tag"
	ActionNotification ActionType = "notification"
	ActionWait         ActionType = "wait"
	ActionWebhook      ActionType = "webhook"
)

// KnownActionTypes lists every dispatchable action type.
var KnownActionTypes = []ActionType{
	ActionMessage,
	ActionEmail,
	ActionTag,
	ActionNotification,
	ActionWait,
	ActionWebhook,
}

// Action is one entry of a branch's (or the else list's) ordered action list.
// Config fields depend on the type: channel/content/template for message and
// email, tag_name for tag, delay_ms for wait, url/payload for webhook.
type Action struct {
	ID     string         `json:"id"`
	Type   ActionType     `json:"type" validate:"required"`
	Name   string         `json:"name,omitempty"`
	Config map[string]any `json:"config"`
}

// DelayMS returns the configured wait delay in milliseconds. JSON decoding
// stores numbers as float64.
func (a Action) DelayMS() int64 {
	switch v := a.Config["delay_ms"].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	}

	return 0
}
