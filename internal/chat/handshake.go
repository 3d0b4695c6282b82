package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omochice/tcptalk/pkg/protocol"
)

var (
	// ErrEmptyUsername is returned by ValidateUsername for blank names.
	ErrEmptyUsername = errors.New("username cannot be empty")
	// ErrReservedUsername is returned by ValidateUsername for the system author.
	ErrReservedUsername = errors.New("username is reserved")
)

// AdmitFunc claims a validated username. It returns ErrUsernameTaken when the
// name is in use, which makes the handshake ask again.
type AdmitFunc func(username string) error

// ValidateUsername checks the rules that do not depend on the registry.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrEmptyUsername
	}
	if protocol.IsReserved(username) {
		return ErrReservedUsername
	}
	return nil
}

// Handshake prompts the peer until it offers a username that is non-empty,
// not reserved and accepted by admit. Only I/O errors end it early.
func Handshake(ctx context.Context, conn Conn, admit AdmitFunc) (string, error) {
	for {
		if err := conn.Write(ctx, []byte(protocol.Prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		chunk, err := conn.Read(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to read username: %w", err)
		}
		username := strings.TrimSpace(strings.ToValidUTF8(string(chunk), "\uFFFD"))

		var reject string
		switch err := ValidateUsername(username); {
		case errors.Is(err, ErrEmptyUsername):
			reject = protocol.RejectEmpty
		case errors.Is(err, ErrReservedUsername):
			reject = protocol.RejectReserved
		default:
			err = admit(username)
			if err == nil {
				return username, nil
			}
			if !errors.Is(err, ErrUsernameTaken) {
				return "", fmt.Errorf("failed to admit %q: %w", username, err)
			}
			reject = protocol.RejectTaken
		}

		if err := conn.Write(ctx, []byte(reject)); err != nil {
			return "", fmt.Errorf("failed to write rejection: %w", err)
		}
	}
}
