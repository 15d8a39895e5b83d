package binding

import "strings"

// Marker attribute names. Binding markers match by prefix, so an element can
// carry several bindings of one kind (data-text, data-text-2, ...).
const (
	AttrRef   = "data-ref"
	AttrText  = "data-text"
	AttrHTML  = "data-html"
	AttrClass = "data-class"
	AttrStyle = "data-style"
	AttrProp  = "data-prop-"

	// SlotPrefix starts the data of a comment node that anchors a slot.
	SlotPrefix = "slot:"
)

// Classify maps a marker attribute name to a binding kind. For
// KindAttribute the bound attribute name is returned as well. ok is false
// for attributes that are not binding markers (including data-ref).
func Classify(attrName string) (kind Kind, boundAttr string, ok bool) {
	switch {
	case strings.HasPrefix(attrName, AttrProp):
		name := strings.TrimPrefix(attrName, AttrProp)
		if name == "" {
			return 0, "", false
		}
		return KindAttribute, name, true
	case strings.HasPrefix(attrName, AttrText):
		return KindText, "", true
	case strings.HasPrefix(attrName, AttrHTML):
		return KindMarkup, "", true
	case strings.HasPrefix(attrName, AttrClass):
		return KindClassList, "", true
	case strings.HasPrefix(attrName, AttrStyle):
		return KindStyleMap, "", true
	}
	return 0, "", false
}

// IsRef reports whether attrName marks a reference handle.
func IsRef(attrName string) bool {
	return strings.HasPrefix(attrName, AttrRef)
}

// SlotName returns the slot name of a slot anchor comment's data.
func SlotName(commentData string) (string, bool) {
	if !strings.HasPrefix(commentData, SlotPrefix) {
		return "", false
	}
	return strings.TrimPrefix(commentData, SlotPrefix), true
}
