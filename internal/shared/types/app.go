package types

// AppMode is the runtime behavior class of an app.
type AppMode string

const (
	ModeChat         AppMode = "chat"
	ModeAdvancedChat AppMode = "advanced-chat"
	ModeAgentChat    AppMode = "agent-chat"
	ModeWorkflow     AppMode = "workflow"
)

// AppType is a coarse filter bucket over app modes. The empty value means
// "no type filter".
type AppType string

const (
	TypeAll      AppType = ""
	TypeChatbot  AppType = "chatbot"
	TypeAgent    AppType = "agent"
	TypeWorkflow AppType = "workflow"
)

// TemplateApp is a reusable app definition available for instantiation.
// Instances are immutable once fetched; the catalog replaces them wholesale
// on re-fetch.
type TemplateApp struct {
	AppID          string  `json:"app_id"`
	Mode           AppMode `json:"mode"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Position       int     `json:"position"`
	IconType       string  `json:"icon_type"`
	Icon           string  `json:"icon"`
	IconBackground string  `json:"icon_background"`
	IconURL        *string `json:"icon_url,omitempty"`
	Description    string  `json:"description"`
}

// AppList is the catalog payload returned by the upstream explore endpoint.
type AppList struct {
	Categories      []string      `json:"categories"`
	RecommendedApps []TemplateApp `json:"recommended_apps"`
}

// AppDetail carries the export representation of a template app. ExportData
// is opaque to this service and passed through unmodified to the import call.
type AppDetail struct {
	ExportData string  `json:"export_data"`
	Mode       AppMode `json:"mode"`
}

// ImportModeYAMLContent is the import-format discriminator for inline DSL
// payloads. Distinct concept from AppMode despite the shared field name.
const ImportModeYAMLContent = "yaml-content"

// ImportRequest is the body of the DSL import call.
type ImportRequest struct {
	Mode           string `json:"mode"`
	YAMLContent    string `json:"yaml_content"`
	Name           string `json:"name"`
	IconType       string `json:"icon_type"`
	Icon           string `json:"icon"`
	IconBackground string `json:"icon_background"`
	Description    string `json:"description"`
}

// ImportResult is returned by the import call. AppID may be absent when the
// upstream accepted the import but deferred app creation.
type ImportResult struct {
	AppID *string `json:"app_id,omitempty"`
	Mode  AppMode `json:"mode"`
}

// CreationForm holds the user-edited metadata collected by the creation
// dialog before submission.
type CreationForm struct {
	Name           string `json:"name"`
	IconType       string `json:"icon_type"`
	Icon           string `json:"icon"`
	IconBackground string `json:"icon_background"`
	Description    string `json:"description"`
}

// FilterState is the current catalog filter selection. SearchTerm tracks raw
// input; DebouncedSearchTerm is the committed value that feeds filtering.
type FilterState struct {
	Category            string  `json:"category"`
	Type                AppType `json:"type"`
	SearchTerm          string  `json:"search_term"`
	DebouncedSearchTerm string  `json:"debounced_search_term"`
}
