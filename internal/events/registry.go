package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// publish
	"publish.started":   {},
	"publish.completed": {},
	"publish.failed":    {},

	// build
	"build.warning": {},

	// publication records
	"publication.created": {},
	"publication.deleted": {},

	// viewer
	"viewer.served": {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

// Validate rejects event names outside the allowed vocabulary. A typo'd
// name is a programming error, not data.
func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
