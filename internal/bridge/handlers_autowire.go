package bridge

import (
	"context"
	"encoding/json"

	"github.com/scenewire/scenewire/internal/core/autowire"
	"github.com/scenewire/scenewire/internal/protocol"
)

type linkParams struct {
	Pairs  []autowire.Pair `json:"pairs"`
	Atomic bool            `json:"atomic,omitempty"`
}

func handleLinkComponents(_ context.Context, h *Host, params json.RawMessage) (any, error) {
	p, err := decodeParams[linkParams](params)
	if err != nil {
		return nil, err
	}
	if len(p.Pairs) == 0 {
		return nil, protocol.NewError(protocol.CodeBadParams, "no pairs to wire")
	}
	for _, pair := range p.Pairs {
		if pair.Source == "" || pair.Target == "" {
			return nil, protocol.NewError(protocol.CodeBadParams, "pair missing source or target")
		}
	}
	return h.Wirer.Wire(p.Pairs, p.Atomic), nil
}
