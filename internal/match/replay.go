package match

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/transport"
)

// Replay feeds a recorded protocol log into fresh p1 and p2 trackers. The
// log may be framed, as ProtocolLog returns it, or a bare list of public
// lines.
func Replay(log []string, logger *zap.Logger) (p1, p2 *battle.State) {
	t := newTrackers(logger)
	for _, b := range transport.Frame(log) {
		t.deliver(b)
	}
	return t.states["p1"], t.states["p2"]
}

// ReplayResult derives the outcome of a recorded log from its public events.
func ReplayResult(log []string) Result {
	p1, _ := Replay(log, zap.NewNop())
	return Result{Winner: p1.Winner, Tie: p1.Tie, Turns: p1.Turn}
}
