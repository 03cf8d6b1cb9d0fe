package scale

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
)

// ConfirmationGate presents the proposed changes to the operator and
// returns their decision. It is consulted strictly before any mutating or
// snapshot-persisting call; a rejection leaves all state untouched.
type ConfirmationGate interface {
	Confirm(ctx context.Context, down, up *Plan) (bool, error)
}

// PromptGate renders the plans and asks interactively. Anything other than
// an explicit yes, including an aborted prompt, is rejection.
type PromptGate struct {
	out       io.Writer
	namespace string
}

func NewPromptGate(out io.Writer, namespace string) *PromptGate {
	return &PromptGate{out: out, namespace: namespace}
}

func (g *PromptGate) Confirm(ctx context.Context, down, up *Plan) (bool, error) {
	fmt.Fprintln(g.out, "Proposed changes:")
	if down != nil {
		down.Render(g.out)
	}
	if up != nil {
		up.Render(g.out)
	}

	accepted := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Apply the above changes to namespace %q?", g.namespace)).
				Affirmative("Yes").
				Negative("No").
				Value(&accepted),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return accepted, nil
}

// AutoApproveGate accepts every plan without prompting, for --yes runs.
type AutoApproveGate struct{}

func (AutoApproveGate) Confirm(ctx context.Context, down, up *Plan) (bool, error) {
	return true, nil
}
