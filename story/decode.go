package story

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/volgkeep/common"
)

const (
	defaultBGMVolume = 0.7
	defaultCrossTime = 600
)

// Script is a decoded story document.
type Script struct {
	ID   string
	Vars map[string]any
	Ops  []Op
}

type rawScript struct {
	ID     string         `yaml:"id"`
	Vars   map[string]any `yaml:"vars"`
	Script []yaml.Node    `yaml:"script"`
}

// Parse decodes a story document. Unrecognised ops are kept as Unknown;
// malformed known ops are reported together.
func Parse(data []byte) (*Script, error) {
	var raw rawScript
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("story: unmarshal: %w", err)
	}

	var errs []error
	if raw.ID == "" {
		errs = append(errs, fieldErr("id", "is required"))
	}
	ops, opErrs := decodeOps(raw.Script, "script")
	errs = append(errs, opErrs...)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	vars := raw.Vars
	if vars == nil {
		vars = map[string]any{}
	}
	return &Script{ID: raw.ID, Vars: vars, Ops: ops}, nil
}

func decodeOps(nodes []yaml.Node, field string) ([]Op, []error) {
	ops := make([]Op, 0, len(nodes))
	var errs []error
	for i := range nodes {
		op, err := decodeOp(&nodes[i], fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ops = append(ops, op)
	}
	return ops, errs
}

func decodeOp(node *yaml.Node, field string) (Op, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fieldErr(field, "line %d: op must be a mapping", node.Line)
	}
	var head struct {
		Op string `yaml:"op"`
	}
	if err := node.Decode(&head); err != nil {
		return nil, fieldErr(field, "%v", err)
	}

	switch head.Op {
	case "say":
		var s Say
		if err := node.Decode(&s); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if len(s.Lines) == 0 {
			return nil, fieldErr(field+".lines", "at least one line is required")
		}
		return s, nil

	case "bg":
		b := Background{ScaleX: 1, ScaleY: 1}
		if err := node.Decode(&b); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if b.Image == "" {
			return nil, fieldErr(field+".name", "is required")
		}
		return b, nil

	case "bgm.play":
		p := BGMPlay{Loop: true, Volume: defaultBGMVolume}
		if err := node.Decode(&p); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if p.Track == "" {
			return nil, fieldErr(field+".name", "is required")
		}
		if p.Volume < 0 || p.Volume > 1 {
			return nil, fieldErr(field+".volume", "must be within [0, 1]")
		}
		return p, nil

	case "bgm.stop":
		var s BGMStop
		if err := node.Decode(&s); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		return s, nil

	case "bgm.cross":
		c := BGMCross{Time: common.Millis(defaultCrossTime), Loop: true}
		if err := node.Decode(&c); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if c.To == "" {
			return nil, fieldErr(field+".to", "is required")
		}
		return c, nil

	case "se":
		var s SE
		if err := node.Decode(&s); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if s.Sound == "" {
			return nil, fieldErr(field+".name", "is required")
		}
		return s, nil

	case "end":
		var e struct {
			ReturnTo string `yaml:"return_to"`
		}
		if err := node.Decode(&e); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		dest, ok := ParseDestination(e.ReturnTo)
		if !ok {
			return nil, fieldErr(field+".return_to", "unknown destination %q", e.ReturnTo)
		}
		return End{ReturnTo: dest}, nil

	case "label":
		var l Label
		if err := node.Decode(&l); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if l.Label == "" {
			return nil, fieldErr(field+".name", "is required")
		}
		return l, nil

	case "goto":
		var g Goto
		if err := node.Decode(&g); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if g.Label == "" {
			return nil, fieldErr(field+".name", "is required")
		}
		return g, nil

	case "set":
		var s Set
		if err := node.Decode(&s); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if s.Var == "" {
			return nil, fieldErr(field+".name", "is required")
		}
		return s, nil

	case "if":
		var raw struct {
			Cond string      `yaml:"cond"`
			Then []yaml.Node `yaml:"then"`
			Else []yaml.Node `yaml:"else"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if raw.Cond == "" {
			return nil, fieldErr(field+".cond", "is required")
		}
		then, thenErrs := decodeOps(raw.Then, field+".then")
		els, elseErrs := decodeOps(raw.Else, field+".else")
		if err := errors.Join(append(thenErrs, elseErrs...)...); err != nil {
			return nil, err
		}
		return If{Cond: raw.Cond, Then: then, Else: els}, nil

	case "choice":
		var c Choice
		if err := node.Decode(&c); err != nil {
			return nil, fieldErr(field, "%v", err)
		}
		if len(c.Options) == 0 {
			return nil, fieldErr(field+".options", "at least one option is required")
		}
		for i, o := range c.Options {
			if o.Label == "" {
				return nil, fieldErr(fmt.Sprintf("%s.options[%d].goto", field, i), "is required")
			}
		}
		return c, nil

	case "":
		return nil, fieldErr(field+".op", "is required")
	}

	return Unknown{Op: head.Op, Line: node.Line}, nil
}
