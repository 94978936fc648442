package activity

import (
	"maps"
	"strings"
	"time"
)

const (
	VerbValueChanged    = "datamodel.value.changed"
	VerbValueDeleted    = "datamodel.value.deleted"
	VerbMappingRefresh  = "datamodel.mapping.refreshed"
	ObjectTypeDocument  = "datamodel.document"
	ObjectTypeChangeSet = "datamodel.changeset"
)

// ChangeInput describes a committed change of one document path.
type ChangeInput struct {
	DocumentID string
	Path       string
	Value      any
	ActorID    string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildValueChangedEvent reports a path that received a new value.
func BuildValueChangedEvent(input ChangeInput) Event {
	event := buildChangeEvent(VerbValueChanged, input)
	if input.Value != nil {
		event.Metadata["value"] = input.Value
	}
	return event
}

// BuildValueDeletedEvent reports a path that was deleted.
func BuildValueDeletedEvent(input ChangeInput) Event {
	return buildChangeEvent(VerbValueDeleted, input)
}

func buildChangeEvent(verb string, input ChangeInput) Event {
	metadata := ensureMetadata(maps.Clone(input.Metadata))
	if input.Path != "" {
		metadata["path"] = input.Path
	}
	if input.DocumentID != "" {
		metadata["document_id"] = input.DocumentID
	}
	objectID := strings.TrimSpace(input.DocumentID)
	if path := strings.TrimSpace(input.Path); path != "" {
		if objectID == "" {
			objectID = path
		} else {
			objectID = objectID + "#" + path
		}
	}
	if objectID == "" {
		objectID = ObjectTypeDocument
	}
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: ObjectTypeDocument,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

// RefreshInput describes a forced mapping refresh.
type RefreshInput struct {
	DocumentID string
	Tags       []string
	Invoked    int
	ActorID    string
	Channel    string
	OccurredAt time.Time
}

// BuildMappingRefreshedEvent reports a forced refresh of tagged mappings.
func BuildMappingRefreshedEvent(input RefreshInput) Event {
	metadata := map[string]any{
		"invoked": input.Invoked,
	}
	if len(input.Tags) > 0 {
		metadata["tags"] = append([]string{}, input.Tags...)
	}
	if input.DocumentID != "" {
		metadata["document_id"] = input.DocumentID
	}
	objectID := strings.TrimSpace(input.DocumentID)
	if objectID == "" {
		objectID = ObjectTypeChangeSet
	}
	return Event{
		Verb:       VerbMappingRefresh,
		ActorID:    strings.TrimSpace(input.ActorID),
		ObjectType: ObjectTypeChangeSet,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
