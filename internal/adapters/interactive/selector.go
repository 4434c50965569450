// Package interactive implements terminal pickers for votes and commitments.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
)

// ErrNonInteractive is returned when a selection is needed but prompts are disabled.
var ErrNonInteractive = errors.New("interactive selection not available in non-interactive mode")

// SelectorAdapter handles interactive selection
type SelectorAdapter struct {
	config *config.RuntimeConfig
	run    func(prompt string, options []string) (int, error)
}

// NewSelectorAdapter creates a new selector adapter
func NewSelectorAdapter(cfg *config.RuntimeConfig) *SelectorAdapter {
	return &SelectorAdapter{config: cfg, run: runPrompt}
}

// SelectVote picks one disputed vote. A single candidate is returned without prompting.
func (s *SelectorAdapter) SelectVote(_ context.Context, votes []*usecase.DisputedVote, prompt string) (*usecase.DisputedVote, error) {
	if len(votes) == 0 {
		return nil, fmt.Errorf("no disputed votes to select from")
	}
	if len(votes) == 1 {
		return votes[0], nil
	}
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}

	index, err := s.run(prompt, FormatVoteOptions(votes))
	if err != nil {
		return nil, err
	}
	return votes[index], nil
}

// SelectCommitment picks one stored commitment.
func (s *SelectorAdapter) SelectCommitment(_ context.Context, commitments []*domain.VoteCommitment, prompt string) (*domain.VoteCommitment, error) {
	if len(commitments) == 0 {
		return nil, fmt.Errorf("no stored commitments to select from")
	}
	if len(commitments) == 1 {
		return commitments[0], nil
	}
	if s.config.NonInteractive {
		return nil, ErrNonInteractive
	}

	index, err := s.run(prompt, FormatCommitmentOptions(commitments))
	if err != nil {
		return nil, err
	}
	return commitments[index], nil
}

// FormatVoteOptions renders "claim [phase] 0xabcd…" lines.
func FormatVoteOptions(votes []*usecase.DisputedVote) []string {
	options := make([]string, len(votes))
	for i, v := range votes {
		claim := color.New(color.FgWhite, color.Bold).Sprint(domain.DecodeForDisplay(v.Assertion.Claim))
		phase := color.New(color.FgYellow).Sprintf("[%s]", v.Phase.Phase.Label())
		marker := ""
		if v.Commitment != nil {
			marker = color.New(color.FgGreen).Sprint(" (committed)")
		}
		options[i] = fmt.Sprintf("%s %s %s%s", claim, phase, shortHex(v.Assertion.ID.Hex()), marker)
	}
	return options
}

// FormatCommitmentOptions renders "request vote committed-at" lines.
func FormatCommitmentOptions(commitments []*domain.VoteCommitment) []string {
	options := make([]string, len(commitments))
	for i, c := range commitments {
		vote := color.New(color.FgRed).Sprint("NO")
		if c.Vote() {
			vote = color.New(color.FgGreen).Sprint("YES")
		}
		options[i] = fmt.Sprintf("%s %s %s", shortHex(c.RequestID), vote,
			color.New(color.Faint).Sprint(c.CommittedTime().UTC().Format("2006-01-02 15:04")))
	}
	return options
}

func shortHex(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "…" + h[len(h)-4:]
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// searchKeys strips color codes so typed filters match what the user sees.
func searchKeys(options []string) []string {
	return lo.Map(options, func(o string, _ int) string {
		return strings.ToLower(ansiEscape.ReplaceAllString(o, ""))
	})
}

func runPrompt(label string, options []string) (int, error) {
	keys := searchKeys(options)
	sel := promptui.Select{
		Label:        label,
		Items:        options,
		Size:         min(len(options), 8),
		HideSelected: true,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "→ {{ . }}",
			Inactive: "  {{ . }}",
			Help:     color.New(color.Faint).Sprint("↑/↓ move, / filter, enter picks"),
		},
		Searcher: func(input string, i int) bool {
			return matchesFilter(keys[i], input)
		},
	}

	i, _, err := sel.Run()
	switch {
	case errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF), errors.Is(err, promptui.ErrAbort):
		return 0, fmt.Errorf("selection cancelled")
	case err != nil:
		return 0, fmt.Errorf("selection failed: %w", err)
	}
	return i, nil
}

// matchesFilter accepts substrings first and falls back to fuzzy matching.
func matchesFilter(key, input string) bool {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || strings.Contains(key, input) {
		return true
	}
	return len(fuzzy.Find(input, []string{key})) > 0
}

var (
	_ usecase.VoteSelector       = (*SelectorAdapter)(nil)
	_ usecase.CommitmentSelector = (*SelectorAdapter)(nil)
)
