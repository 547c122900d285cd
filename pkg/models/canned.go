package models

import (
	"fmt"

	"github.com/Protocol-Lattice/chat-bridge/pkg/intent"
)

// Canned answers from fixed per-intent templates without calling the agent
// service. Useful for local testing and for deployments without an agent.
type Canned struct{}

func (Canned) Reply(res intent.Result, fileCount int) string {
	switch res.Intent {
	case intent.Greeting:
		return "Hello! Welcome to our support chat. How can I help you today?"
	case intent.SupportRequest:
		return "I understand you need assistance. I've analyzed your message and I'm here to help resolve your issue."
	case intent.PricingInquiry:
		return "I'd be happy to help you with pricing information. Let me get you the details you need."
	case intent.AccountHelp:
		return "I can help you with your account. What specific account issue are you experiencing?"
	}
	if fileCount > 0 {
		return fmt.Sprintf("Thank you for your message and the %d file(s) you've shared. I'm processing your request and will provide assistance based on the information you've provided.", fileCount)
	}
	return "Thank you for your message. I'm here to help you with any questions or concerns you may have."
}
