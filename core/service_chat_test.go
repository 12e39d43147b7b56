package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"pkt.systems/lumina/schema"
)

func TestSendChatAppendsBothMessages(t *testing.T) {
	sink := &captureSink{}
	assistant := &fakeAssistant{reply: "Go is a programming language."}
	svc := newTestService(t, ServiceDeps{EventSink: sink, Assistant: assistant})
	ctx := context.Background()
	svc.Navigate(ctx, schema.NavigateRequest{Input: "go.dev"})

	resp, err := svc.SendChat(ctx, schema.SendChatRequest{Text: "what is this?"})
	if err != nil {
		t.Fatalf("send chat: %v", err)
	}
	if resp.Failed || resp.Reply.Role != schema.ChatRoleAssistant || resp.Reply.Text != "Go is a programming language." {
		t.Fatalf("unexpected reply %+v", resp)
	}
	want := []schema.AssistantRequest{{PageURL: "https://go.dev", UserText: "what is this?"}}
	if diff := cmp.Diff(want, assistant.got); diff != "" {
		t.Fatalf("unexpected assistant request (-want +got):\n%s", diff)
	}
	session := snapshot(t, svc)
	if session.AssistantBusy {
		t.Fatalf("assistant should be idle after reply")
	}
	var roles []schema.ChatRole
	for _, msg := range session.Chat {
		roles = append(roles, msg.Role)
	}
	if diff := cmp.Diff([]schema.ChatRole{schema.ChatRoleUser, schema.ChatRoleAssistant}, roles); diff != "" {
		t.Fatalf("unexpected chat roles (-want +got):\n%s", diff)
	}

	var busy []bool
	for _, event := range sink.events {
		if event.Type == schema.EventChat {
			busy = append(busy, event.AssistantBusy)
		}
	}
	if diff := cmp.Diff([]bool{true, false}, busy); diff != "" {
		t.Fatalf("unexpected busy transitions (-want +got):\n%s", diff)
	}
}

func TestSendChatFailureUsesFallback(t *testing.T) {
	assistant := &fakeAssistant{err: errors.New("quota exceeded")}
	svc := newTestService(t, ServiceDeps{Assistant: assistant})
	resp, err := svc.SendChat(context.Background(), schema.SendChatRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("assistant failure should not be returned: %v", err)
	}
	if !resp.Failed || resp.Reply.Text != ChatFailureReply {
		t.Fatalf("expected fallback reply, got %+v", resp)
	}
	if snapshot(t, svc).AssistantBusy {
		t.Fatalf("busy flag should be cleared after failure")
	}
}

func TestSendChatWithoutAssistantUsesFallback(t *testing.T) {
	svc := newTestService(t, ServiceDeps{})
	resp, err := svc.SendChat(context.Background(), schema.SendChatRequest{Text: "hi"})
	if err != nil || !resp.Failed || resp.Reply.Text != ChatFailureReply {
		t.Fatalf("expected fallback reply, got %+v, %v", resp, err)
	}
}

func TestSendChatEmptyReply(t *testing.T) {
	svc := newTestService(t, ServiceDeps{Assistant: &fakeAssistant{reply: "  \n"}})
	resp, err := svc.SendChat(context.Background(), schema.SendChatRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("send chat: %v", err)
	}
	if resp.Failed || resp.Reply.Text != ChatEmptyReply {
		t.Fatalf("expected empty reply placeholder, got %+v", resp)
	}
}

func TestSendChatRejectsBlankText(t *testing.T) {
	assistant := &fakeAssistant{reply: "unused"}
	svc := newTestService(t, ServiceDeps{Assistant: assistant})
	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := svc.SendChat(context.Background(), schema.SendChatRequest{Text: text}); !errors.Is(err, schema.ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage for %q, got %v", text, err)
		}
	}
	if len(assistant.got) != 0 || len(snapshot(t, svc).Chat) != 0 {
		t.Fatalf("blank text should not reach the assistant or the log")
	}
}

func TestSendChatRejectsConcurrentRequest(t *testing.T) {
	assistant := &fakeAssistant{reply: "done", block: make(chan struct{})}
	svc := newTestService(t, ServiceDeps{Assistant: assistant})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.SendChat(ctx, schema.SendChatRequest{Text: "first"})
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !snapshot(t, svc).AssistantBusy {
		if time.Now().After(deadline) {
			t.Fatalf("assistant never became busy")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := svc.SendChat(ctx, schema.SendChatRequest{Text: "second"}); !errors.Is(err, schema.ErrAssistantBusy) {
		t.Fatalf("expected ErrAssistantBusy, got %v", err)
	}

	close(assistant.block)
	if err := <-done; err != nil {
		t.Fatalf("first chat: %v", err)
	}
	if got := len(snapshot(t, svc).Chat); got != 2 {
		t.Fatalf("expected 2 messages, got %d", got)
	}
}
