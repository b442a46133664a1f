package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/config"
	"github.com/cory-johannsen/battlesim/internal/game/battle"
	"github.com/cory-johannsen/battlesim/internal/game/sim"
)

const systemPrompt = "You are playing a singles Pokémon battle. " +
	"Reply with only the number of the action you choose."

// MessageClient is the subset of the Anthropic messages API the Claude
// chooser uses.
type MessageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Claude asks a language model to pick an action and defers to a fallback
// chooser whenever the call fails or the reply names no legal action.
type Claude struct {
	msgs      MessageClient
	model     string
	maxTokens int64
	fallback  sim.Chooser
	logger    *zap.Logger
}

var _ sim.Chooser = (*Claude)(nil)

// NewClaude builds a Claude chooser backed by the Anthropic API. Extra
// request options are passed to the client, e.g. option.WithBaseURL.
//
// Precondition: fallback and logger must not be nil.
func NewClaude(cfg config.AgentConfig, fallback sim.Chooser, logger *zap.Logger, opts ...option.RequestOption) *Claude {
	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return NewClaudeWithClient(&client.Messages, cfg.Model, cfg.MaxTokens, fallback, logger)
}

// NewClaudeWithClient builds a Claude chooser over an existing client.
//
// Precondition: msgs, fallback, and logger must not be nil.
func NewClaudeWithClient(msgs MessageClient, model string, maxTokens int, fallback sim.Chooser, logger *zap.Logger) *Claude {
	if msgs == nil || fallback == nil || logger == nil {
		panic("agent.NewClaudeWithClient: msgs, fallback, and logger must not be nil")
	}
	return &Claude{
		msgs:      msgs,
		model:     model,
		maxTokens: int64(max(maxTokens, 1)),
		fallback:  fallback,
		logger:    logger,
	}
}

// Choose implements sim.Chooser.
func (c *Claude) Choose(ctx context.Context, s *battle.State, side string, actions []battle.Action) (battle.Action, error) {
	if len(actions) == 0 {
		return battle.Default, nil
	}
	msg, err := c.msgs.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Prompt(s, side, actions))),
		},
	})
	if err != nil {
		c.logger.Warn("model call failed, using fallback", zap.String("side", side), zap.Error(err))
		return c.fallback.Choose(ctx, s, side, actions)
	}
	var reply strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			reply.WriteString(block.Text)
		}
	}
	n, ok := ParseChoice(reply.String(), len(actions))
	if !ok {
		c.logger.Warn("unusable model reply, using fallback",
			zap.String("side", side),
			zap.String("reply", reply.String()),
		)
		return c.fallback.Choose(ctx, s, side, actions)
	}
	return actions[n-1], nil
}

// ParseChoice extracts the first integer in reply and reports whether it is
// a valid 1-based index into n actions.
func ParseChoice(reply string, n int) (int, bool) {
	fields := strings.FieldsFunc(reply, func(r rune) bool { return r < '0' || r > '9' })
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v, true
}

// Prompt describes the position from side's perspective and numbers the
// legal actions.
func Prompt(s *battle.State, side string, actions []battle.Action) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Turn %d.\n", s.Turn)
	if own, ok := s.Side(side); ok {
		describe(&sb, "Your active", own.ActivePokemon())
	}
	if foe, ok := s.Side(battle.OtherSide(side)); ok {
		describe(&sb, "Opponent's active", foe.ActivePokemon())
	}
	if w := s.Field.Weather; w != "" {
		fmt.Fprintf(&sb, "Weather: %s.\n", w)
	}
	sb.WriteString("Actions:\n")
	for i, a := range actions {
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, a.Kind, a.Label)
	}
	return sb.String()
}

func describe(sb *strings.Builder, label string, p *battle.Pokemon) {
	if p == nil {
		fmt.Fprintf(sb, "%s: none.\n", label)
		return
	}
	fmt.Fprintf(sb, "%s: %s (%s) %d/%d HP", label, p.Name, strings.Join(p.Types, "/"), p.HP, p.MaxHP)
	if p.Status != battle.StatusNone {
		fmt.Fprintf(sb, ", %s", p.Status)
	}
	sb.WriteString(".\n")
}
