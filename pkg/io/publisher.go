package io

import (
	"context"
	"fmt"

	"github.com/cryptocast/cryptocast/pkg/io/registry"
	"github.com/google/uuid"
)

// Publisher fans broadcast output out to every viewer endpoint attached to a
// session.
type Publisher struct {
	reg registry.Registry
}

func New(reg registry.Registry) Publisher {
	return Publisher{reg: reg}
}

// SendLine publishes one script line going on air to every text-capable
// viewer endpoint.
func (p *Publisher) SendLine(
	ctx context.Context,
	sessionID uuid.UUID,
	seq int,
	line any,
) error {
	eps := p.reg.ListSessionEndpoints(sessionID)
	if len(eps) == 0 {
		return fmt.Errorf("no viewers attached to session %s", sessionID)
	}
	for _, ep := range eps {
		if !ep.Caps().TextSink {
			continue
		}
		_ = ep.SendLine(sessionID, seq, line)
	}
	return nil
}

// SendAudioFrame publishes a raw audio payload to audio-capable endpoints.
func (p *Publisher) SendAudioFrame(
	ctx context.Context,
	sessionID uuid.UUID,
	seq int,
	frame []byte,
) error {
	sent := false
	for _, ep := range p.reg.ListSessionEndpoints(sessionID) {
		if !ep.Caps().AudioSink || !ep.IsAlive() {
			continue
		}
		if err := ep.SendAudioFrame(sessionID, seq, frame); err == nil {
			sent = true
		}
	}
	if !sent {
		return fmt.Errorf("couldn't send audio frame")
	}
	return nil
}

// SendEvent publishes a named lifecycle event to every live endpoint.
func (p *Publisher) SendEvent(
	ctx context.Context,
	sessionID uuid.UUID,
	name string,
	payload any,
) error {
	for _, ep := range p.reg.ListSessionEndpoints(sessionID) {
		if ep.IsAlive() {
			_ = ep.SendEvent(sessionID, name, payload)
		}
	}
	return nil
}
