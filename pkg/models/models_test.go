package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Protocol-Lattice/chat-bridge/pkg/intent"
)

func TestCannedReplyPerIntent(t *testing.T) {
	var c Canned
	assert.Contains(t, c.Reply(intent.Result{Intent: intent.Greeting}, 0), "Welcome")
	assert.Contains(t, c.Reply(intent.Result{Intent: intent.SupportRequest}, 0), "assistance")
	assert.Contains(t, c.Reply(intent.Result{Intent: intent.PricingInquiry}, 0), "pricing")
	assert.Contains(t, c.Reply(intent.Result{Intent: intent.AccountHelp}, 0), "account")
}

func TestCannedReplyMentionsFileCount(t *testing.T) {
	got := Canned{}.Reply(intent.FileOnlyResult(), 3)
	assert.Contains(t, got, "3 file(s)")

	got = Canned{}.Reply(intent.Result{Intent: intent.GeneralInquiry}, 0)
	assert.NotContains(t, got, "file(s)")
}

func TestMessageText(t *testing.T) {
	msg := Message{Blocks: []ContentBlock{TextBlock("one"), ImageBlock("file_1"), TextBlock("two")}}
	assert.Equal(t, "one\n\ntwo", msg.Text())
	assert.True(t, msg.HasImages())
	assert.False(t, Message{Blocks: []ContentBlock{TextBlock("x")}}.HasImages())
}

func TestRunFailed(t *testing.T) {
	assert.True(t, Run{Status: RunFailed}.Failed())
	assert.True(t, Run{Status: RunExpired}.Failed())
	assert.False(t, Run{Status: RunCompleted}.Failed())
}

func TestNewOpenAIServiceRequiresConfig(t *testing.T) {
	_, err := NewOpenAIService(OpenAIConfig{Endpoint: "https://example.test/v1"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
