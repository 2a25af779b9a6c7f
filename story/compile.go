package story

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

type instrKind int

const (
	// instrOp hands op to the runner.
	instrOp instrKind = iota
	instrJump
	// instrJumpUnless jumps when cond is false.
	instrJumpUnless
)

type instr struct {
	kind   instrKind
	op     Op
	cond   *Condition
	target int
	// field is the document path the instruction was compiled from.
	field string
}

// Program is a Script with if blocks flattened into jumps and labels
// resolved. It is immutable and can back any number of Runners.
type Program struct {
	ID   string
	Vars map[string]any

	code   []instr
	labels map[string]int
	// unresolved lists goto targets with no matching label.
	unresolved []string
}

// Len is the number of compiled instructions.
func (p *Program) Len() int { return len(p.code) }

// Label returns the instruction index just after label name.
func (p *Program) Label(name string) (int, bool) {
	idx, ok := p.labels[name]
	if !ok {
		return 0, false
	}
	return idx + 1, true
}

// Unresolved returns goto targets that name no label. Those jumps are
// skipped at run time.
func (p *Program) Unresolved() []string { return slices.Clone(p.unresolved) }

// Compile flattens s. Conditions that do not compile, duplicate labels and
// choices pointing at missing labels are reported together.
func Compile(s *Script) (*Program, error) {
	c := &compiler{labels: map[string]int{}}
	c.collectLabels(s.Ops, "script")
	c.emit(s.Ops, "script")

	for i := range c.code {
		in := &c.code[i]
		switch op := in.op.(type) {
		case Goto:
			if idx, ok := c.labels[op.Label]; ok {
				*in = instr{kind: instrJump, target: idx + 1, field: in.field}
			} else if !slices.Contains(c.unresolved, op.Label) {
				c.unresolved = append(c.unresolved, op.Label)
			}
		case Choice:
			for j, o := range op.Options {
				if _, ok := c.labels[o.Label]; !ok {
					c.errs = append(c.errs, fieldErr(fmt.Sprintf("%s.options[%d].goto", in.field, j), "label %q not found", o.Label))
				}
			}
		}
	}
	if err := errors.Join(c.errs...); err != nil {
		return nil, err
	}

	return &Program{
		ID:         s.ID,
		Vars:       maps.Clone(s.Vars),
		code:       c.code,
		labels:     c.labels,
		unresolved: c.unresolved,
	}, nil
}

// Load parses and compiles a story document.
func Load(data []byte) (*Program, error) {
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Compile(s)
}

type compiler struct {
	code       []instr
	labels     map[string]int
	seen       map[string]string
	unresolved []string
	errs       []error
}

// collectLabels only checks for duplicates; positions are assigned by emit.
func (c *compiler) collectLabels(ops []Op, field string) {
	if c.seen == nil {
		c.seen = map[string]string{}
	}
	for i, op := range ops {
		f := fmt.Sprintf("%s[%d]", field, i)
		switch op := op.(type) {
		case Label:
			if prev, ok := c.seen[op.Label]; ok {
				c.errs = append(c.errs, fieldErr(f+".name", "label %q already defined at %s", op.Label, prev))
				continue
			}
			c.seen[op.Label] = f
		case If:
			c.collectLabels(op.Then, f+".then")
			c.collectLabels(op.Else, f+".else")
		}
	}
}

func (c *compiler) emit(ops []Op, field string) {
	for i, op := range ops {
		f := fmt.Sprintf("%s[%d]", field, i)
		switch op := op.(type) {
		case If:
			c.emitIf(op, f)
		case Label:
			if _, ok := c.labels[op.Label]; !ok {
				c.labels[op.Label] = len(c.code)
			}
			c.code = append(c.code, instr{kind: instrOp, op: op, field: f})
		default:
			c.code = append(c.code, instr{kind: instrOp, op: op, field: f})
		}
	}
}

// emitIf lays out
//
//	jumpUnless cond -> else
//	then...
//	jump -> end
//	else: else...
//	end:
//
// dropping the trailing jump when there is no else block.
func (c *compiler) emitIf(op If, field string) {
	cond, err := CompileCondition(op.Cond)
	if err != nil {
		c.errs = append(c.errs, fieldErr(field+".cond", "%v", err))
	}

	branch := len(c.code)
	c.code = append(c.code, instr{kind: instrJumpUnless, cond: cond, field: field})
	c.emit(op.Then, field+".then")

	if len(op.Else) == 0 {
		c.code[branch].target = len(c.code)
		return
	}
	skip := len(c.code)
	c.code = append(c.code, instr{kind: instrJump, field: field})
	c.code[branch].target = len(c.code)
	c.emit(op.Else, field+".else")
	c.code[skip].target = len(c.code)
}
