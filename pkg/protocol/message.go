// Package protocol defines the line-oriented text protocol spoken between
// tcptalk clients and the server.
package protocol

import (
	"strings"

	"golang.org/x/text/cases"
)

// DefaultPort is the well-known port both ends use unless configured otherwise.
const DefaultPort = 2133

// ReadBufferSize bounds a single read on either end of a connection.
const ReadBufferSize = 4096

// SystemAuthor is the reserved author of join/leave notices and local notices.
const SystemAuthor = "System"

// Handshake lines written by the server.
const (
	Prompt         = "Enter your username: "
	RejectEmpty    = "Username cannot be empty. Please try again.\n"
	RejectReserved = "Username 'System' is reserved. Please choose another.\n"
	RejectTaken    = "Username is already taken. Please choose another.\n"
)

// Rejections lists every handshake rejection line.
var Rejections = []string{RejectEmpty, RejectReserved, RejectTaken}

// MessageType represents the type of message
type MessageType int

const (
	MessageTypeText MessageType = iota
	MessageTypeJoin
	MessageTypeLeave
	MessageTypeSystem
)

// String returns the string representation of MessageType
func (mt MessageType) String() string {
	switch mt {
	case MessageTypeText:
		return "TEXT"
	case MessageTypeJoin:
		return "JOIN"
	case MessageTypeLeave:
		return "LEAVE"
	case MessageTypeSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Message represents a chat message
type Message struct {
	Type    MessageType
	Sender  string
	Content string
}

// Encode renders the message as it travels on the wire.
// Text content is written verbatim after "<sender>: ", so a chunk that already
// carries its trailing newline keeps exactly one.
func (m *Message) Encode() []byte {
	switch m.Type {
	case MessageTypeJoin:
		return []byte(m.Sender + " has joined the chat\n")
	case MessageTypeLeave:
		return []byte(m.Sender + " has left the chat\n")
	case MessageTypeSystem:
		return []byte(m.Content + "\n")
	default:
		return []byte(m.Sender + ": " + m.Content)
	}
}

// JoinNotice returns the line broadcast when username enters the chat.
func JoinNotice(username string) []byte {
	m := Message{Type: MessageTypeJoin, Sender: username}
	return m.Encode()
}

// LeaveNotice returns the line broadcast when username leaves the chat.
func LeaveNotice(username string) []byte {
	m := Message{Type: MessageTypeLeave, Sender: username}
	return m.Encode()
}

// ChatLine prefixes a raw chunk received from username with its author.
func ChatLine(username string, chunk []byte) []byte {
	line := make([]byte, 0, len(username)+2+len(chunk))
	line = append(line, username...)
	line = append(line, ": "...)
	return append(line, chunk...)
}

// Parse turns one inbound chunk into a message.
// The chunk is trimmed; an empty result yields ok == false. Text before the
// first ':' is the author, the remainder is the content. Chunks without a ':'
// are attributed to SystemAuthor.
func Parse(chunk string) (msg Message, ok bool) {
	text := strings.TrimSpace(chunk)
	if text == "" {
		return Message{}, false
	}

	author, content, found := strings.Cut(text, ":")
	if !found {
		return Message{Type: MessageTypeSystem, Sender: SystemAuthor, Content: text}, true
	}
	return Message{
		Type:    MessageTypeText,
		Sender:  strings.TrimSpace(author),
		Content: strings.TrimSpace(content),
	}, true
}

// FoldName returns the case-insensitive comparison key for a username.
func FoldName(name string) string {
	// cases.Caser is stateful, so a fresh one is built per call.
	return cases.Fold().String(name)
}

// IsReserved reports whether name collides with SystemAuthor.
func IsReserved(name string) bool {
	return FoldName(name) == FoldName(SystemAuthor)
}

// FindRejection returns the first rejection line contained in text.
func FindRejection(text string) (string, bool) {
	for _, r := range Rejections {
		if strings.Contains(text, r) {
			return strings.TrimSpace(r), true
		}
	}
	return "", false
}
