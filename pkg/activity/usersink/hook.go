// Package usersink forwards datamodel activity events to a go-users
// ActivitySink.
package usersink

import (
	"context"

	"github.com/goliatone/go-datamodel/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook is an activity.ActivityHook writing one ActivityRecord per event.
type Hook struct {
	Sink usertypes.ActivitySink
}

var _ activity.ActivityHook = Hook{}

func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = activity.NormalizeEvent(event)
	if !event.Routable() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, record(event))
}

// record maps event onto the go-users schema. Actors that are not UUIDs
// travel in Data under "actor".
func record(event activity.Event) usertypes.ActivityRecord {
	rec := usertypes.ActivityRecord{
		ActorID:    toUUID(event.ActorID),
		TenantID:   toUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       event.Metadata,
		OccurredAt: event.OccurredAt,
	}
	if event.ActorID != "" && rec.ActorID == uuid.Nil {
		if rec.Data == nil {
			rec.Data = make(map[string]any, 1)
		}
		rec.Data["actor"] = event.ActorID
	}
	return rec
}

func toUUID(value string) uuid.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil
	}
	return id
}
