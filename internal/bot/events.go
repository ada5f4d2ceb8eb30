package bot

import (
	"strings"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
)

// EventKind discriminates everything the engine can be asked to do.
// Dispatch is a single switch over this enum, independent of any framework
// registration mechanism.
type EventKind int

const (
	EventMessage EventKind = iota
	EventWarn
	EventUnwarn
	EventBan
	EventUnban
	EventRemove
	EventPromote
	EventDemote
)

func (k EventKind) String() string {
	switch k {
	case EventWarn:
		return "warn"
	case EventUnwarn:
		return "unwarn"
	case EventBan:
		return "ban"
	case EventUnban:
		return "unban"
	case EventRemove:
		return "remove"
	case EventPromote:
		return "promote"
	case EventDemote:
		return "demote"
	default:
		return "message"
	}
}

// Event is a raw platform update reduced to what the engine needs.
type Event struct {
	Kind          EventKind
	ChatID        int64
	ChatTitle     string
	MessageID     int
	ActorID       int64
	TargetID      int64
	TargetName    string
	DurationToken string
	Reason        string
	At            time.Time
}

var commandKinds = map[string]EventKind{
	"warn":   EventWarn,
	"unwarn": EventUnwarn,
	"ban":    EventBan,
	"unban":  EventUnban,
	"remove": EventRemove,
	"mod":    EventPromote,
	"unmod":  EventDemote,
}

// ParseUpdate maps an update in a monitored chat onto a typed event. The
// command target is resolved from the replied-to message; a recognized
// command without a reply still parses, the engine rejects it as missing
// its target. Unknown commands count as ordinary messages.
func ParseUpdate(u *api.Update, monitored map[int64]struct{}) (Event, bool) {
	if u == nil || u.Message == nil || u.Message.From == nil {
		return Event{}, false
	}
	msg := u.Message
	if _, ok := monitored[msg.Chat.ID]; !ok {
		return Event{}, false
	}

	ev := Event{
		Kind:      EventMessage,
		ChatID:    msg.Chat.ID,
		ChatTitle: msg.Chat.Title,
		MessageID: msg.MessageID,
		ActorID:   msg.From.ID,
		At:        time.Unix(int64(msg.Date), 0),
	}

	if !msg.IsCommand() {
		return ev, true
	}
	kind, ok := commandKinds[msg.Command()]
	if !ok {
		return ev, true
	}
	ev.Kind = kind

	if reply := msg.ReplyToMessage; reply != nil && reply.From != nil {
		ev.TargetID = reply.From.ID
		ev.TargetName = GetFullName(reply.From)
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch kind {
	case EventWarn:
		ev.Reason = args
	case EventBan:
		parts := strings.SplitN(args, " ", 2)
		ev.DurationToken = strings.ToLower(strings.TrimSpace(parts[0]))
		if len(parts) > 1 {
			ev.Reason = strings.TrimSpace(parts[1])
		}
	}
	return ev, true
}

func GetFullName(user *api.User) string {
	if user == nil {
		return ""
	}
	fullName := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if len(fullName) == 0 {
		fullName = user.UserName
	}
	return fullName
}
