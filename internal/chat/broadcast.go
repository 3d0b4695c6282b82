package chat

import (
	"context"

	"go.uber.org/zap"
)

// Broadcast writes payload to every registered session, skipping the sender
// unless includeSender is set.
//
// The registry lock is held for the whole pass, so a stalled peer delays
// delivery to everyone behind it. Sessions whose write fails are removed
// after the pass; the failure is never reported to the sender.
func (r *Registry) Broadcast(ctx context.Context, payload []byte, senderID string, includeSender bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dead []*Session
	for id, s := range r.sessions {
		if !includeSender && id == senderID {
			continue
		}
		if err := s.Conn.Write(ctx, payload); err != nil {
			r.logger.Debug("Failed to write to session",
				zap.String("conn", id),
				zap.String("username", s.Username),
				zap.Error(err))
			dead = append(dead, s)
		}
	}

	for _, s := range dead {
		delete(r.sessions, s.ID)
		r.logger.Info("Removed dead connection",
			zap.String("conn", s.ID),
			zap.String("username", s.Username),
			zap.String("remote", s.Conn.RemoteAddr()),
			zap.Int("total", len(r.sessions)))
	}
}
