package errors

import (
	"maps"
	"slices"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No weave.json was found in the current directory or any parent directory.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "weave.json could not be parsed as JSON.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A value in weave.json is out of range or has the wrong form.",
	},

	// ============================================
	// Runtime Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryRuntime,
		Message:  "Invalid binding value",
		Detail:   "A binding received a value of the wrong shape. Class lists take a list of strings and style maps take a mapping of property names to values.",
	},
	"E202": {
		Category: CategoryRuntime,
		Message:  "Component construction failed",
		Detail:   "The component's template could not be instantiated or its initial props could not be applied.",
	},
	"E203": {
		Category: CategoryRuntime,
		Message:  "Mount failed",
		Detail:   "A component can only be mounted once, into a non-nil parent.",
	},

	// ============================================
	// Manifest Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryManifest,
		Message:  "Unknown template",
		Detail:   "A mount entry names a component whose template is not declared under templates.",
	},
	"E302": {
		Category: CategoryManifest,
		Message:  "Invalid manifest",
		Detail:   "The manifest could not be parsed as YAML or HCL.",
	},
	"E303": {
		Category: CategoryManifest,
		Message:  "Invalid template markup",
		Detail:   "Template and drop markup must contain at least one element.",
	},
	"E304": {
		Category: CategoryManifest,
		Message:  "Unknown slot",
		Detail:   "A mount entry fills a slot that its component's template does not declare.",
	},
	"E305": {
		Category: CategoryManifest,
		Message:  "Duplicate mount id",
		Detail:   "Every top-level mount entry needs a unique id.",
	},

	// ============================================
	// CLI and Publishing Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryCLI,
		Message:  "Render failed",
		Detail:   "The document could not be rendered to HTML.",
	},
	"E402": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The preview server stopped with an error.",
	},
	"E410": {
		Category: CategoryPublish,
		Message:  "Publishing not configured",
		Detail:   "publish.bucket must be set in weave.json to publish rendered output.",
	},
	"E411": {
		Category: CategoryPublish,
		Message:  "Upload failed",
		Detail:   "The rendered document could not be uploaded to the object store.",
	},
}

// GetAllCodes returns all registered error codes in sorted order.
func GetAllCodes() []string {
	return slices.Sorted(maps.Keys(registry))
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
