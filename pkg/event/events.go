package event

const (
	TemplateReloaded     = "template.reloaded"
	TemplateReloadFailed = "template.reloadFailed"
)

// TemplateReloadedEvent is emitted after container.html was re-parsed.
type TemplateReloadedEvent struct {
	Path string `json:"path"`
}

func (e TemplateReloadedEvent) EventName() string { return TemplateReloaded }

// TemplateReloadFailedEvent is emitted when the changed template no longer
// parses. The previous template stays in use.
type TemplateReloadFailedEvent struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func (e TemplateReloadFailedEvent) EventName() string { return TemplateReloadFailed }
