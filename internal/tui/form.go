package tui

import (
	"strings"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
	"github.com/sk88studiosinc-maker/Soulsound/internal/platform"
	"github.com/sk88studiosinc-maker/Soulsound/internal/session"
)

type field int

const (
	fieldLink field = iota
	fieldMood
	fieldStyle
	fieldPlatforms
	fieldCount
)

// projectForm is the track intake form shared by both dashboards.
type projectForm struct {
	focus     field
	link      string
	mood      string
	style     int
	platforms map[model.SocialPlatform]bool
	cursor    int
}

func newProjectForm() projectForm {
	return projectForm{platforms: map[model.SocialPlatform]bool{model.SocialTikTok: true}}
}

func (f projectForm) input() session.SubmitInput {
	in := session.SubmitInput{
		Link:  strings.TrimSpace(f.link),
		Mood:  strings.TrimSpace(f.mood),
		Style: platform.VideoStyles()[f.style],
	}
	for _, p := range platform.SocialPlatforms() {
		if f.platforms[p] {
			in.TargetPlatforms = append(in.TargetPlatforms, p)
		}
	}
	return in
}

func (f projectForm) next() projectForm {
	f.focus = (f.focus + 1) % fieldCount
	return f
}

func (f projectForm) prev() projectForm {
	f.focus = (f.focus + fieldCount - 1) % fieldCount
	return f
}

func (f projectForm) typeRunes(r []rune) projectForm {
	switch f.focus {
	case fieldLink:
		f.link += string(r)
	case fieldMood:
		f.mood += string(r)
	case fieldPlatforms:
		if string(r) == " " {
			f = f.toggle()
		}
	}
	return f
}

func (f projectForm) backspace() projectForm {
	switch f.focus {
	case fieldLink:
		f.link = dropLast(f.link)
	case fieldMood:
		f.mood = dropLast(f.mood)
	}
	return f
}

// shift moves the selection inside the style and platform pickers.
func (f projectForm) shift(delta int) projectForm {
	switch f.focus {
	case fieldStyle:
		n := len(platform.VideoStyles())
		f.style = (f.style + delta + n) % n
	case fieldPlatforms:
		n := len(platform.SocialPlatforms())
		f.cursor = (f.cursor + delta + n) % n
	}
	return f
}

func (f projectForm) toggle() projectForm {
	p := platform.SocialPlatforms()[f.cursor]
	next := make(map[model.SocialPlatform]bool, len(f.platforms))
	for k, v := range f.platforms {
		next[k] = v
	}
	next[p] = !next[p]
	f.platforms = next
	return f
}

func dropLast(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
