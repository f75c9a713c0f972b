package model

// Action is a named button attached to a notification.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// Payload is the canonical, pre-localization notification content.
// A Payload is never mutated after construction; localization returns
// a new value.
type Payload struct {
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Icon    string            `json:"icon,omitempty"`
	Badge   string            `json:"badge,omitempty"`
	Image   string            `json:"image,omitempty"`
	Tag     string            `json:"tag,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
	Actions []Action          `json:"actions,omitempty"`
}

// CloneData returns a copy of the payload's data map, never nil.
func (p Payload) CloneData() map[string]string {
	data := make(map[string]string, len(p.Data)+1)
	for k, v := range p.Data {
		data[k] = v
	}
	return data
}
