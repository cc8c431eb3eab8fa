package arjs

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/universo-platformo/updl-engine/internal/updl"
)

// escape sanitizes free text destined for HTML attributes or content.
// Covers & < > " ' so authored values can never become markup.
func escape(s string) string {
	return html.EscapeString(s)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func vec(v updl.Vec3) string {
	return num(v.X) + " " + num(v.Y) + " " + num(v.Z)
}

// objectTag renders one scene object as an A-Frame primitive tag.
// Unrecognized types fall back to a box; the caller logs the warning.
func objectTag(obj updl.SceneObject) (string, bool) {
	attrs := fmt.Sprintf(`id="%s" position="%s" rotation="%s" scale="%s" color="%s"`,
		escape(obj.ID), vec(obj.Position), vec(obj.Rotation), vec(obj.Scale), escape(obj.Color))

	switch obj.Type {
	case updl.ObjectBox:
		return fmt.Sprintf(`<a-box %s depth="%s" height="%s" width="%s"></a-box>`,
			attrs, num(obj.Depth), num(obj.Height), num(obj.Width)), true
	case updl.ObjectSphere:
		return fmt.Sprintf(`<a-sphere %s radius="%s"></a-sphere>`, attrs, num(obj.Radius)), true
	case updl.ObjectCylinder:
		return fmt.Sprintf(`<a-cylinder %s radius="%s" height="%s"></a-cylinder>`,
			attrs, num(obj.Radius), num(obj.Height)), true
	case updl.ObjectPlane:
		return fmt.Sprintf(`<a-plane %s width="%s" height="%s"></a-plane>`,
			attrs, num(obj.Width), num(obj.Height)), true
	case updl.ObjectText:
		return fmt.Sprintf(`<a-text %s value="%s" align="center"></a-text>`,
			attrs, escape(obj.Value)), true
	case updl.ObjectCircle:
		return fmt.Sprintf(`<a-circle %s radius="%s"></a-circle>`, attrs, num(obj.Radius)), true
	case updl.ObjectCone:
		return fmt.Sprintf(`<a-cone %s radius-bottom="%s" height="%s"></a-cone>`,
			attrs, num(obj.Radius), num(obj.Height)), true
	}
	return fmt.Sprintf(`<a-box %s depth="%s" height="%s" width="%s"></a-box>`,
		attrs, num(obj.Depth), num(obj.Height), num(obj.Width)), false
}

func lightTag(l updl.SceneLight) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<a-light id="%s" type="%s" color="%s" intensity="%s" position="%s"`,
		escape(l.ID), escape(string(l.Type)), escape(l.Color), num(l.Intensity), vec(l.Position))
	if l.Distance > 0 {
		fmt.Fprintf(&b, ` distance="%s"`, num(l.Distance))
	}
	if l.Decay > 0 {
		fmt.Fprintf(&b, ` decay="%s"`, num(l.Decay))
	}
	b.WriteString(`></a-light>`)
	return b.String()
}

func cameraTag(cams []updl.SceneCamera) string {
	if len(cams) == 0 {
		return `<a-entity camera></a-entity>`
	}
	c := cams[0]
	return fmt.Sprintf(`<a-entity id="%s" camera="fov: %s; near: %s; far: %s" position="%s" rotation="%s"></a-entity>`,
		escape(c.ID), num(c.FOV), num(c.Near), num(c.Far), vec(c.Position), vec(c.Rotation))
}

// markerOpen renders the opening tag of the AR tracking anchor.
func markerOpen(markerType, markerValue string) (string, bool) {
	switch markerType {
	case "preset":
		return fmt.Sprintf(`<a-marker preset="%s">`, escape(markerValue)), true
	case "pattern":
		return fmt.Sprintf(`<a-marker type="pattern" url="%s">`, escape(markerValue)), true
	case "barcode":
		return fmt.Sprintf(`<a-marker type="barcode" value="%s">`, escape(markerValue)), true
	}
	return `<a-marker preset="hiro">`, false
}

// defaultObject is the visible fallback emitted when a space resolves
// with no objects; the viewer must never face an empty marker.
func defaultObject() updl.SceneObject {
	return updl.SceneObject{
		ID:       "default-box",
		Name:     "Default Box",
		Type:     updl.ObjectBox,
		Position: updl.Vec3{X: 0, Y: 0.5, Z: 0},
		Scale:    updl.Vec3{X: 1, Y: 1, Z: 1},
		Color:    "#FF0000",
		Width:    1,
		Height:   1,
		Depth:    1,
	}
}
