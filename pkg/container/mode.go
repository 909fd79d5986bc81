package container

import "strings"

// Mode says where the page's JavaScript comes from. It is decided once at
// startup and never changes for the life of the process.
type Mode int

const (
	// ModeDeployed serves bundles from the server's own root-relative paths.
	ModeDeployed Mode = iota
	// ModeLocal points every bundle at the local development bundle server.
	ModeLocal
)

// DetectMode reports ModeLocal when value starts with marker. An empty marker
// never matches, so a misconfigured marker cannot flip production into
// development mode.
func DetectMode(value, marker string) Mode {
	if marker != "" && strings.HasPrefix(value, marker) {
		return ModeLocal
	}
	return ModeDeployed
}

func (m Mode) IsLocal() bool { return m == ModeLocal }

func (m Mode) String() string {
	if m == ModeLocal {
		return "local"
	}
	return "deployed"
}

// Placeholder names available to container.html.
const (
	DistJSPathKey   = "DIST_JS_PATH"
	StaticJSPathKey = "STATIC_JS_PATH"
	// JSPathKey is the older single-placeholder name; it carries the static path.
	JSPathKey = "JS_PATH"
	// LiveReloadPathKey is the event socket path in local mode, empty otherwise.
	LiveReloadPathKey = "LIVE_RELOAD_PATH"
)

// Options are the literal path prefixes the two modes choose between.
type Options struct {
	DevServerURL string
	DistPath     string
	StaticPath   string
	// LiveReloadPath is handed to the page in local mode only.
	LiveReloadPath string
}

// DefaultOptions matches the webpack dev server and the deployed layout.
func DefaultOptions() Options {
	return Options{
		DevServerURL: "http://localhost:8081/",
		DistPath:     "/dist/",
		StaticPath:   "/static/",
	}
}

// AssetPaths are the values substituted into the template.
type AssetPaths struct {
	DistJSPath     string `json:"dist_js_path"`
	StaticJSPath   string `json:"static_js_path"`
	LiveReloadPath string `json:"live_reload_path,omitempty"`
}

// ResolveAssetPaths picks the prefixes for mode. In local mode the dev server
// serves both the bundle and the support files.
func ResolveAssetPaths(mode Mode, opts Options) AssetPaths {
	if mode.IsLocal() {
		return AssetPaths{
			DistJSPath:     opts.DevServerURL,
			StaticJSPath:   opts.DevServerURL,
			LiveReloadPath: opts.LiveReloadPath,
		}
	}
	return AssetPaths{DistJSPath: opts.DistPath, StaticJSPath: opts.StaticPath}
}

// Bindings returns the placeholder values keyed by template name.
func (p AssetPaths) Bindings() map[string]string {
	return map[string]string{
		DistJSPathKey:     p.DistJSPath,
		StaticJSPathKey:   p.StaticJSPath,
		JSPathKey:         p.StaticJSPath,
		LiveReloadPathKey: p.LiveReloadPath,
	}
}
