package models

import "fmt"

// ItemType names the kind of content item. Only Components carry a guarded title.
type ItemType string

const (
	ItemTypeComponent      ItemType = "Component"
	ItemTypeFolder         ItemType = "Folder"
	ItemTypePage           ItemType = "Page"
	ItemTypeSchema         ItemType = "Schema"
	ItemTypeStructureGroup ItemType = "StructureGroup"
	ItemTypePublication    ItemType = "Publication"
)

var knownItemTypes = map[ItemType]struct{}{
	ItemTypeComponent:      {},
	ItemTypeFolder:         {},
	ItemTypePage:           {},
	ItemTypeSchema:         {},
	ItemTypeStructureGroup: {},
	ItemTypePublication:    {},
}

// ParseItemType returns the ItemType named by s or an error for unknown names.
// Names are case-sensitive, matching what the authoring tool reports.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if _, ok := knownItemTypes[t]; !ok {
		return "", fmt.Errorf("unknown item type %q", s)
	}
	return t, nil
}

// String returns the underlying string value.
func (t ItemType) String() string {
	return string(t)
}
