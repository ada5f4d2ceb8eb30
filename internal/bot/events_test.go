package bot

import (
	"testing"
	"time"

	api "github.com/OvyFlash/telegram-bot-api"
)

const testChatID = int64(-1001)

func monitored() map[int64]struct{} {
	return map[int64]struct{}{testChatID: {}}
}

func commandUpdate(text string, reply *api.Message) *api.Update {
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	return &api.Update{
		Message: &api.Message{
			MessageID: 10,
			Date:      int(time.Now().Unix()),
			Chat:      api.Chat{ID: testChatID, Title: "test chat"},
			From:      &api.User{ID: 100, FirstName: "Actor"},
			Text:      text,
			Entities: []api.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: cmdLen},
			},
			ReplyToMessage: reply,
		},
	}
}

func targetReply() *api.Message {
	return &api.Message{
		MessageID: 5,
		From:      &api.User{ID: 5, FirstName: "Target", LastName: "User"},
	}
}

func TestParseUpdateCommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		wantKind     EventKind
		wantDuration string
		wantReason   string
	}{
		{"warn with reason", "/warn spam links", EventWarn, "", "spam links"},
		{"warn bare", "/warn", EventWarn, "", ""},
		{"unwarn", "/unwarn", EventUnwarn, "", ""},
		{"ban with reason", "/ban 7day being rude", EventBan, "7day", "being rude"},
		{"ban duration only", "/ban 5hour", EventBan, "5hour", ""},
		{"ban uppercase token", "/ban 5HOUR", EventBan, "5hour", ""},
		{"unban", "/unban", EventUnban, "", ""},
		{"remove", "/remove", EventRemove, "", ""},
		{"mod", "/mod", EventPromote, "", ""},
		{"unmod", "/unmod", EventDemote, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev, ok := ParseUpdate(commandUpdate(tt.text, targetReply()), monitored())
			if !ok {
				t.Fatalf("update %q should parse", tt.text)
			}
			if ev.Kind != tt.wantKind {
				t.Fatalf("expected kind %v, got %v", tt.wantKind, ev.Kind)
			}
			if ev.DurationToken != tt.wantDuration {
				t.Fatalf("expected duration %q, got %q", tt.wantDuration, ev.DurationToken)
			}
			if ev.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, ev.Reason)
			}
			if ev.TargetID != 5 {
				t.Fatalf("expected target from reply, got %d", ev.TargetID)
			}
			if ev.TargetName != "Target User" {
				t.Fatalf("expected full target name, got %q", ev.TargetName)
			}
			if ev.ActorID != 100 || ev.ChatID != testChatID {
				t.Fatalf("unexpected actor/chat: %d/%d", ev.ActorID, ev.ChatID)
			}
		})
	}
}

func TestParseUpdateCommandWithoutReply(t *testing.T) {
	t.Parallel()

	ev, ok := ParseUpdate(commandUpdate("/warn", nil), monitored())
	if !ok {
		t.Fatal("command without reply should still parse")
	}
	if ev.Kind != EventWarn {
		t.Fatalf("expected warn event, got %v", ev.Kind)
	}
	if ev.TargetID != 0 {
		t.Fatalf("expected unresolved target, got %d", ev.TargetID)
	}
}

func TestParseUpdateOrdinaryMessage(t *testing.T) {
	t.Parallel()

	u := &api.Update{
		Message: &api.Message{
			MessageID: 11,
			Date:      int(time.Now().Unix()),
			Chat:      api.Chat{ID: testChatID},
			From:      &api.User{ID: 7},
			Text:      "hello there",
		},
	}
	ev, ok := ParseUpdate(u, monitored())
	if !ok {
		t.Fatal("ordinary message should parse")
	}
	if ev.Kind != EventMessage {
		t.Fatalf("expected message event, got %v", ev.Kind)
	}
	if ev.ActorID != 7 {
		t.Fatalf("expected sender 7, got %d", ev.ActorID)
	}
}

func TestParseUpdateUnknownCommandIsMessage(t *testing.T) {
	t.Parallel()

	ev, ok := ParseUpdate(commandUpdate("/start", nil), monitored())
	if !ok {
		t.Fatal("unknown command should parse as a message")
	}
	if ev.Kind != EventMessage {
		t.Fatalf("expected message event, got %v", ev.Kind)
	}
}

func TestParseUpdateIgnoresUnmonitoredChat(t *testing.T) {
	t.Parallel()

	u := commandUpdate("/warn", targetReply())
	u.Message.Chat.ID = -2002
	if _, ok := ParseUpdate(u, monitored()); ok {
		t.Fatal("unmonitored chat must be ignored")
	}
}

func TestParseUpdateIgnoresNonMessages(t *testing.T) {
	t.Parallel()

	if _, ok := ParseUpdate(nil, monitored()); ok {
		t.Fatal("nil update must be ignored")
	}
	if _, ok := ParseUpdate(&api.Update{}, monitored()); ok {
		t.Fatal("update without message must be ignored")
	}
}

func TestGetFullName(t *testing.T) {
	t.Parallel()

	if got := GetFullName(&api.User{FirstName: "A", LastName: "B"}); got != "A B" {
		t.Fatalf("unexpected full name %q", got)
	}
	if got := GetFullName(&api.User{UserName: "handle"}); got != "handle" {
		t.Fatalf("expected username fallback, got %q", got)
	}
	if got := GetFullName(nil); got != "" {
		t.Fatalf("expected empty name for nil user, got %q", got)
	}
}
