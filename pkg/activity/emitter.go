package activity

import (
	"context"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "forms"

// Config controls activity emission defaults.
type Config struct {
	Enabled bool
	// Channel is the fallback for events whose class has no route.
	Channel string
	// ClassChannels routes events by form class (Event.ObjectType), so each
	// form root can be observed on its own channel.
	ClassChannels map[string]string
	// Verbs limits emission to the listed verbs. Empty emits every verb.
	Verbs []string
}

// Emitter routes form lifecycle events to hooks.
type Emitter struct {
	hooks    Hooks
	enabled  bool
	fallback string
	routes   map[string]string
	verbs    map[string]bool
}

// NewEmitter constructs an emitter from hooks and configuration. Blank
// class routes and verbs are ignored.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	fallback := strings.TrimSpace(cfg.Channel)
	if fallback == "" {
		fallback = DefaultChannel
	}
	routes := make(map[string]string, len(cfg.ClassChannels))
	for class, channel := range cfg.ClassChannels {
		class, channel = strings.TrimSpace(class), strings.TrimSpace(channel)
		if class != "" && channel != "" {
			routes[class] = channel
		}
	}
	var verbs map[string]bool
	for _, verb := range cfg.Verbs {
		if verb = strings.TrimSpace(verb); verb == "" {
			continue
		}
		if verbs == nil {
			verbs = map[string]bool{}
		}
		verbs[verb] = true
	}
	live := compactHooks(hooks)
	return &Emitter{
		hooks:    live,
		enabled:  cfg.Enabled && len(live) > 0,
		fallback: fallback,
		routes:   routes,
		verbs:    verbs,
	}
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled
}

// Allows reports whether events with verb pass the verb filter.
func (e *Emitter) Allows(verb string) bool {
	if !e.Enabled() {
		return false
	}
	return e.verbs == nil || e.verbs[verb]
}

// ChannelFor returns the channel events of class are routed to.
func (e *Emitter) ChannelFor(class string) string {
	if e == nil {
		return DefaultChannel
	}
	if channel, ok := e.routes[strings.TrimSpace(class)]; ok {
		return channel
	}
	return e.fallback
}

// Emit forwards event to every hook. An explicit event channel wins over the
// class route. Filtered verbs are dropped without error.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Allows(event.Verb) {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.ChannelFor(event.ObjectType)
	}
	return e.hooks.Notify(ctx, event)
}

func compactHooks(hooks Hooks) Hooks {
	var live Hooks
	for _, hook := range hooks {
		if hook != nil {
			live = append(live, hook)
		}
	}
	return live
}
