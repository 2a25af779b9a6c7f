package story

import (
	"fmt"
	"log/slog"
	"maps"
)

type Status string

const (
	StatusReady    Status = "ready"
	StatusSay      Status = "say"
	StatusChoice   Status = "choice"
	StatusEnded    Status = "ended"
	StatusFinished Status = "finished"
)

// Hooks are the presentation callbacks a host provides. Nil hooks are
// skipped. Hooks must not call back into the Runner.
type Hooks struct {
	Say        func(Say)
	Background func(Background)
	PlayBGM    func(BGMPlay)
	StopBGM    func(BGMStop)
	CrossBGM   func(BGMCross)
	SE         func(SE)
	Choice     func(Choice)
	End        func(Destination)
}

type Option func(*Runner)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.base = l
		}
	}
}

// Runner executes a Program one suspend point at a time.
type Runner struct {
	prog    *Program
	pc      int
	vars    map[string]any
	status  Status
	pending *Choice
	hooks   Hooks
	base    *slog.Logger
	log     *slog.Logger
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		vars:   map[string]any{},
		status: StatusFinished,
		base:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.base
	return r
}

// Load resets the runner to the start of p with p's initial variables.
func (r *Runner) Load(p *Program) {
	r.prog = p
	r.pc = 0
	r.vars = maps.Clone(p.Vars)
	if r.vars == nil {
		r.vars = map[string]any{}
	}
	r.pending = nil
	r.status = StatusReady
	r.log = r.base.With("story", p.ID)
}

func (r *Runner) Hooks(h Hooks) { r.hooks = h }

// Step runs ops until the next say, choice or end, or until the program
// runs out. Once ended or finished, Step does nothing. While a choice is
// pending, Step does nothing until Choose is called.
func (r *Runner) Step() Status {
	switch r.status {
	case StatusEnded, StatusFinished, StatusChoice:
		return r.status
	}

	code := r.prog.code
	for r.pc < len(code) {
		in := code[r.pc]
		r.pc++

		switch in.kind {
		case instrJump:
			r.pc = in.target
			continue
		case instrJumpUnless:
			ok, err := in.cond.Eval(r.vars)
			if err != nil {
				r.log.Error("story: condition failed, taking else branch", "error", err, "at", in.field)
			}
			if !ok {
				r.pc = in.target
			}
			continue
		}

		switch op := in.op.(type) {
		case Say:
			r.status = StatusSay
			if r.hooks.Say != nil {
				r.hooks.Say(op)
			}
			return r.status

		case Choice:
			r.status = StatusChoice
			r.pending = &op
			if r.hooks.Choice != nil {
				r.hooks.Choice(op)
			}
			return r.status

		case End:
			r.status = StatusEnded
			r.log.Debug("story: ended", "return_to", op.ReturnTo)
			if r.hooks.End != nil {
				r.hooks.End(op.ReturnTo)
			}
			return r.status

		case Background:
			if r.hooks.Background != nil {
				r.hooks.Background(op)
			}
		case BGMPlay:
			if r.hooks.PlayBGM != nil {
				r.hooks.PlayBGM(op)
			}
		case BGMStop:
			if r.hooks.StopBGM != nil {
				r.hooks.StopBGM(op)
			}
		case BGMCross:
			if r.hooks.CrossBGM != nil {
				r.hooks.CrossBGM(op)
			}
		case SE:
			if r.hooks.SE != nil {
				r.hooks.SE(op)
			}
		case Set:
			r.vars[op.Var] = op.Value
		case Label:
		case Goto:
			r.log.Error("story: skipping goto", "error", ErrUnknownLabel, "label", op.Label, "at", in.field)
		case Unknown:
			r.log.Warn("story: skipping unknown op", "op", op.Op, "line", op.Line)
		default:
			r.log.Warn("story: skipping op", "op", in.op.Name())
		}
	}

	r.status = StatusFinished
	return r.status
}

// Choose picks option i of the pending choice, jumps to its label and
// resumes.
func (r *Runner) Choose(i int) (Status, error) {
	if r.status != StatusChoice || r.pending == nil {
		return r.status, ErrNoChoice
	}
	if i < 0 || i >= len(r.pending.Options) {
		return r.status, fmt.Errorf("%w: %d of %d", ErrChoiceRange, i, len(r.pending.Options))
	}
	opt := r.pending.Options[i]
	r.pending = nil
	r.status = StatusReady
	if !r.Goto(opt.Label) {
		// Compile rejects choices with missing labels; fall through to the
		// next op if one slipped past.
		r.log.Error("story: choice target missing", "label", opt.Label)
	}
	return r.Step(), nil
}

// Goto moves execution to just after label. A missing label leaves the
// program counter where it is and returns false.
func (r *Runner) Goto(label string) bool {
	if r.prog == nil || r.status == StatusEnded {
		return false
	}
	idx, ok := r.prog.Label(label)
	if !ok {
		r.log.Error("story: goto ignored", "error", ErrUnknownLabel, "label", label, "pc", r.pc)
		return false
	}
	r.pc = idx
	r.pending = nil
	r.status = StatusReady
	return true
}

// Restore overlays saved variables on the current ones.
func (r *Runner) Restore(vars map[string]any) {
	maps.Copy(r.vars, vars)
}

func (r *Runner) Vars() map[string]any { return maps.Clone(r.vars) }

func (r *Runner) PC() int { return r.pc }

func (r *Runner) Status() Status { return r.status }

// Pending is the choice waiting for Choose, if any.
func (r *Runner) Pending() (Choice, bool) {
	if r.pending == nil {
		return Choice{}, false
	}
	return *r.pending, true
}

func (r *Runner) Ended() bool { return r.status == StatusEnded }

// Finished reports that Step will do nothing more.
func (r *Runner) Finished() bool {
	return r.status == StatusEnded || r.status == StatusFinished
}
