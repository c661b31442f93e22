package messaging

import "fmt"

// Fixed texts sent to users and to the human channel. WhatsApp renders
// *bold* and _italic_ markers.

// HandoverPending notifies the human channel that a user is waiting.
func HandoverPending(userID string) string {
	return fmt.Sprintf("Hi, a user wants to talk to you 👀\nYou can accept it by replying this 👇 message...\n\nConnect me to user %s", userID)
}

// HandoverUserMessage wraps a mid-handover user message for the human channel.
func HandoverUserMessage(userID, text string) string {
	return fmt.Sprintf("*Message from user %s*:\n\"%s\"\n\nPlease reply in this 👇 format...", userID, text)
}

// HandoverReplyFormat is the envelope the human must use to answer a user.
func HandoverReplyFormat(userID string) string {
	return fmt.Sprintf("HANDOVER RESPONSE\nUser: %s\n_your message goes here..._", userID)
}

// HumanJoined tells a user their handover was accepted.
func HumanJoined() string {
	return "Hi, you are now talking to a human 👨🏻‍💻...\nHow can I help?"
}

// HandoverDelivered confirms to the human that their answer was forwarded.
func HandoverDelivered(text, userID string) string {
	return fmt.Sprintf("Handover message:\n_%s_\nsent to user *%s*, thanks! 🙏", text, userID)
}

// FormatError asks the human channel to resend a malformed envelope.
func FormatError() string {
	return "Your message is not in the expected format 😥, please fix it and send again."
}

// PermissionDenied is sent when a non-human sender invokes a human-only tag.
func PermissionDenied() string {
	return "Sorry I don't have enough permission to perform this request 😥"
}

// UnknownAnswer is the terminal response for unresolvable questions.
func UnknownAnswer() string {
	return "I don't know the answer of your question 🧐"
}

// Blacklisted is sent to users on the blacklist.
func Blacklisted() string {
	return "Unfortunately, I'm not allowed to talk to you...😔"
}

// UnsupportedLanguage asks the user to switch to the supported language.
func UnsupportedLanguage(detected string) string {
	return fmt.Sprintf("I can only talk in *English* 🇬🇧 at the moment, but soon I will be able to talk in _%s_ 😎", detected)
}

// UnknownLanguage is sent when language detection fails entirely.
func UnknownLanguage() string {
	return "I don't understand your language 🧐"
}

// MediaNotSupported is sent when a message carries attachments.
func MediaNotSupported() string {
	return "Sorry, I can only answer to textual messages at the moment! 😉🧐"
}

// GenericApology is the degraded response when a collaborator call fails.
func GenericApology() string {
	return "Oops! Something wrong happened on my side!"
}
