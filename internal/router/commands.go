package router

import "strings"

// Command is a recognized text command.
type Command string

const (
	CommandNone         Command = ""
	CommandGreeting     Command = "greeting"
	CommandHelp         Command = "help"
	CommandSendImage    Command = "send_image"
	CommandSendAudio    Command = "send_audio"
	CommandSendVideo    Command = "send_video"
	CommandSendDocument Command = "send_document"
)

// ParseCommand matches a text body against the recognized command set.
// Matching is case-insensitive on the trimmed body. Unrecognized text is not
// an error; callers fall through to the echo outcome.
func ParseCommand(body string) (Command, bool) {
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "hello", "hi":
		return CommandGreeting, true
	case "help":
		return CommandHelp, true
	case "send image":
		return CommandSendImage, true
	case "send audio":
		return CommandSendAudio, true
	case "send video":
		return CommandSendVideo, true
	case "send document", "send doc":
		return CommandSendDocument, true
	}
	return CommandNone, false
}
