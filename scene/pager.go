package scene

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/volgkeep/story"
)

// pager shows a say op one line per advance.
type pager struct {
	say    story.Say
	line   int
	active bool
}

func (p *pager) open(s story.Say) {
	p.say = s
	p.line = 0
	p.active = len(s.Lines) > 0
}

func (p *pager) close() {
	p.active = false
}

// current is the speaker and the line on screen.
func (p *pager) current() (string, string) {
	if !p.active {
		return "", ""
	}
	return p.say.Speaker, p.say.Lines[p.line]
}

// next moves to the following line. It reports false, and closes the
// pager, once the last line has been acknowledged.
func (p *pager) next() bool {
	if !p.active {
		return false
	}
	if p.line+1 < len(p.say.Lines) {
		p.line++
		return true
	}
	p.close()
	return false
}

// Default portrait anchor, right of centre above the dialogue box.
var defaultPortraitAt = cp.Vector{X: 960, Y: 540}

// portrait is the image and placement of the current speaker's portrait.
func (p *pager) portrait() (string, cp.Vector, float64) {
	pos := defaultPortraitAt
	scale := 1.0
	if p.say.PortraitX != nil {
		pos.X = *p.say.PortraitX
	}
	if p.say.PortraitY != nil {
		pos.Y = *p.say.PortraitY
	}
	if p.say.PortraitScale != nil {
		scale = *p.say.PortraitScale
	}
	return p.say.Portrait, pos, scale
}
