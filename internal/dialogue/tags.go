package dialogue

import "strings"

// TagKind identifies the control prefix carried by a matcher reply.
type TagKind int

const (
	// TagNone means the reply is plain text (or a Q&A id).
	TagNone TagKind = iota
	// TagReturnToMaintopic asks the interpreter to re-submit the attached
	// text at the parent conversational scope.
	TagReturnToMaintopic
	// TagRecursive means the user picked an option; the attached text is
	// the real follow-up question.
	TagRecursive
	// TagUserHandoverRequest starts a handover for the sending user.
	TagUserHandoverRequest
	// TagUserHandoverContinue forwards a mid-handover user message.
	TagUserHandoverContinue
	// TagUserHandoverClosed ends the user's handover.
	TagUserHandoverClosed
	// TagHumanHandoverAccepted means the human channel accepted a request.
	TagHumanHandoverAccepted
	// TagHumanHandoverAnswer means the human channel answered a user.
	TagHumanHandoverAnswer
	// TagHumanReportAbuse blacklists the attached user id.
	TagHumanReportAbuse
)

// Tag is a matcher reply decoded once at the interpreter boundary.
type Tag struct {
	Kind TagKind
	// Text is the "=<text>" payload; for TagNone it is the whole reply.
	Text string
	// Recipient is the second "=" payload on the human-side tags.
	Recipient string
	// Malformed marks a human-side tag that is missing its payloads.
	Malformed bool
	// Raw is the undecoded reply.
	Raw string
}

// DecodeTag parses a matcher reply's control prefix, if any.
func DecodeTag(reply string) Tag {
	tag := Tag{Raw: reply}
	switch {
	case strings.HasPrefix(reply, "^Return-to-Maintopic="):
		tag.Kind = TagReturnToMaintopic
		tag.Text = strings.TrimPrefix(reply, "^Return-to-Maintopic=")
	case strings.HasPrefix(reply, "^Recursive="):
		tag.Kind = TagRecursive
		tag.Text = strings.TrimPrefix(reply, "^Recursive=")
	case strings.HasPrefix(reply, "^User-Handover-Request="):
		tag.Kind = TagUserHandoverRequest
		tag.Text = strings.TrimPrefix(reply, "^User-Handover-Request=")
	case strings.HasPrefix(reply, "^User-Handover-Continue"):
		tag.Kind = TagUserHandoverContinue
	case strings.HasPrefix(reply, "^User-Handover-Closed"):
		tag.Kind = TagUserHandoverClosed
		tag.Text, tag.Malformed = payload(reply, 1)
	case strings.HasPrefix(reply, "^Human-Handover-Accepted"):
		tag.Kind = TagHumanHandoverAccepted
		tag.Text, tag.Malformed = payload(reply, 1)
		if recipient, malformed := payload(reply, 2); !malformed {
			tag.Recipient = recipient
		} else {
			tag.Malformed = true
		}
	case strings.HasPrefix(reply, "^Human-Handover-Answer"):
		tag.Kind = TagHumanHandoverAnswer
	case strings.HasPrefix(reply, "^Human-Report-Abuse"):
		tag.Kind = TagHumanReportAbuse
		tag.Text, tag.Malformed = payload(reply, 1)
		if recipient, malformed := payload(reply, 2); !malformed {
			tag.Recipient = recipient
		} else {
			tag.Malformed = true
		}
	default:
		tag.Text = reply
	}
	return tag
}

// payload returns the n-th "="-separated segment of a tagged reply.
func payload(reply string, n int) (string, bool) {
	parts := strings.Split(reply, "=")
	if len(parts) <= n {
		return "", true
	}
	return parts[n], false
}
