package arjs

import (
	"fmt"
	"strings"

	"github.com/universo-platformo/updl-engine/internal/template"
)

// Viewer libraries the wrapper injects.
const (
	LibAFrame = "aframe"
	LibARJS   = "arjs"
)

// Default library versions when no override is given.
const (
	DefaultAFrameVersion = "1.7.1"
	DefaultARJSVersion   = "3.4.7"
)

// ResolveLibraryURL maps a library plus an optional override to a
// concrete script URL. Official points at the upstream CDN; selfhosted
// points at the mirror served next to published documents. Unknown
// sources fall back to official.
func ResolveLibraryURL(lib string, cfg map[string]template.LibraryOverride) string {
	source := template.SourceOfficial
	version := ""
	if cfg != nil {
		if ov, ok := cfg[lib]; ok {
			if ov.Source != "" {
				source = ov.Source
			}
			version = ov.Version
		}
	}

	switch lib {
	case LibAFrame:
		if version == "" {
			version = DefaultAFrameVersion
		}
		if source == template.SourceSelfHosted {
			return fmt.Sprintf("/assets/libs/aframe/%s/aframe.min.js", version)
		}
		return fmt.Sprintf("https://aframe.io/releases/%s/aframe.min.js", version)
	case LibARJS:
		if version == "" {
			version = DefaultARJSVersion
		}
		if source == template.SourceSelfHosted {
			return fmt.Sprintf("/assets/libs/arjs/%s/aframe-ar.js", version)
		}
		return fmt.Sprintf("https://raw.githack.com/AR-js-org/AR.js/%s/aframe/build/aframe-ar.js", version)
	}
	return ""
}

// WrapDocument wraps generated scene content with full HTML boilerplate:
// doctype, metadata, viewer library script tags and reset CSS.
func WrapDocument(sceneContent string, opts template.BuildOptions) string {
	title := opts.ProjectName
	if title == "" {
		title = "UPDL Space"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"en\">\n<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "    <title>%s</title>\n", escape(title))
	fmt.Fprintf(&b, "    <script src=\"%s\"></script>\n", ResolveLibraryURL(LibAFrame, opts.LibraryConfig))
	fmt.Fprintf(&b, "    <script src=\"%s\"></script>\n", ResolveLibraryURL(LibARJS, opts.LibraryConfig))
	b.WriteString("    <style>\n")
	b.WriteString("        * { box-sizing: border-box; margin: 0; padding: 0; }\n")
	b.WriteString("        html, body { width: 100%; height: 100%; overflow: hidden; }\n")
	b.WriteString("    </style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(sceneContent)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
