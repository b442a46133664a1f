package match

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/protocol"
	"github.com/cory-johannsen/battlesim/internal/transport"
)

var sides = [...]string{"p1", "p2"}

// trackers holds one independent snapshot per perspective. Public lines are
// applied to both; private lines reach exactly one.
type trackers struct {
	states map[string]*battle.State
	logger *zap.Logger
}

func newTrackers(logger *zap.Logger) *trackers {
	t := &trackers{states: make(map[string]*battle.State, len(sides)), logger: logger}
	for _, side := range sides {
		t.states[side] = battle.NewState(side, logger)
	}
	return t
}

// deliver routes one block and reports which sides received a request and
// which received an error line.
func (t *trackers) deliver(b *transport.Block) (requests, errs []string) {
	switch b.Kind {
	case transport.BlockSideUpdate:
		st, ok := t.states[b.Side]
		if !ok {
			t.logger.Warn("dropping sideupdate for unknown side", zap.String("side", b.Side))
			return nil, nil
		}
		for _, line := range b.Lines {
			st.ApplyLine(line)
			switch protocol.Decode(line).Kind() {
			case "request":
				requests = append(requests, b.Side)
			case "error":
				errs = append(errs, b.Side)
			}
		}
	case transport.BlockUpdate:
		t.public(b.Lines)
	case transport.BlockEnd:
		t.logger.Debug("engine end block", zap.Strings("lines", b.Lines))
	}
	return requests, errs
}

// public applies an update block. "|split|pN" announces that the next line is
// pN's exact view and the line after it is everyone else's.
func (t *trackers) public(lines []string) {
	for i := 0; i < len(lines); i++ {
		owner, ok := strings.CutPrefix(lines[i], "|split|")
		if !ok {
			for _, side := range sides {
				t.states[side].ApplyLine(lines[i])
			}
			continue
		}
		var secret, public string
		if i+1 < len(lines) {
			secret = lines[i+1]
		}
		if i+2 < len(lines) {
			public = lines[i+2]
		}
		i += 2
		for _, side := range sides {
			line := public
			if side == owner {
				line = secret
			}
			if line != "" {
				t.states[side].ApplyLine(line)
			}
		}
	}
}
