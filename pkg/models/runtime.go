package models

// RuntimeInfo describes how this process was started: which mode it detected
// and which asset prefixes the page is rendered with.
type RuntimeInfo struct {
	Mode         string `json:"mode"`
	Local        bool   `json:"local"`
	DistJSPath   string `json:"dist_js_path"`
	StaticJSPath string `json:"static_js_path"`
	HTTPBaseURL  string `json:"http_base_url"`
	WSBaseURL    string `json:"ws_base_url,omitempty"`
	Port         int    `json:"port"`
}

// Response is the envelope used by the JSON endpoints.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
