package rules

import (
	"strings"
	"testing"
	"time"
)

func TestStoreAppendIdempotency(t *testing.T) {
	store := NewStore()

	if !store.Append("knowledge", true, "[*] wear [a] mask", "+ [*] wear [a] mask\n- abc\n\n", "") {
		t.Fatal("first Append() = false, want true")
	}
	if store.Append("knowledge", true, "[*] wear [a] mask", "+ [*] wear [a] mask\n- abc\n\n", "") {
		t.Error("second Append() with same pattern = true, want false")
	}
	if !store.Append("other", true, "[*] wear [a] mask", "+ [*] wear [a] mask\n- abc\n\n", "") {
		t.Error("Append() in a different namespace = false, want true")
	}
}

func TestStoreAppendWithoutPattern(t *testing.T) {
	store := NewStore()

	// Branch-only blocks carry no trigger pattern and are always appended.
	if !store.Append("live_conversations", false, "", "> topic a\n< topic\n\n", "conv1") {
		t.Fatal("Append() without pattern = false, want true")
	}
	if !store.Append("live_conversations", false, "", "> topic b\n< topic\n\n", "conv1") {
		t.Error("second Append() without pattern = false, want true")
	}
}

func TestStoreExpire(t *testing.T) {
	store := NewStore()
	store.Append("knowledge", true, "p1", "+ p1\n- a\n\n", "")
	store.Append("live_conversations", false, "p2", "+ p2\n- b\n\n", "conv1")

	if expired := store.Expire(time.Hour); expired != 0 {
		t.Errorf("Expire(1h) = %d, want 0", expired)
	}

	// Everything ephemeral is older than a zero TTL.
	if expired := store.Expire(0); expired != 1 {
		t.Errorf("Expire(0) = %d, want 1", expired)
	}

	rendered := store.Render()
	if !strings.Contains(rendered, "+ p1") {
		t.Error("Render() lost the persistent rule")
	}
	if strings.Contains(rendered, "+ p2") {
		t.Error("Render() still contains the expired ephemeral rule")
	}

	// The emptied namespace no longer blocks re-insertion.
	if !store.Append("live_conversations", false, "p2", "+ p2\n- b\n\n", "conv2") {
		t.Error("Append() after expiry = false, want true")
	}
}

func TestRuleRender(t *testing.T) {
	flat := Rule{
		Namespace:  "masks",
		Persistent: true,
		Pattern:    "[*] wear [a] mask",
		Question:   "1f0a4c7e",
	}
	got := flat.render()
	want := "+ [*] wear [a] mask\n- 1f0a4c7e\n\n"
	if got != want {
		t.Errorf("flat render() = %q, want %q", got, want)
	}

	branched := Rule{
		Namespace: "live_conversations",
		ConvID:    "conv1",
		Pattern:   "[*] mask",
		Question:  "1. Should I wear a mask?(*)",
		RuleID:    "choose_question_1",
		ParentID:  "random",
		Branches: []Branch{
			{UserPattern: "[*](1|one)[*]", BotReply: "Should I wear a mask?"},
		},
	}
	got = branched.render()
	for _, fragment := range []string{
		"+ [*] mask\n- 1. Should I wear a mask?(*) {topic=choose_question_1}\n\n",
		"> topic choose_question_1\n",
		"  + [*](1|one)[*]\n  - ^Recursive=Should I wear a mask?\n\n",
		"  + *\n  - ^Return-to-Maintopic=<star>{topic=random}\n\n",
		"< topic\n",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("branched render() missing %q in:\n%s", fragment, got)
		}
	}
}
