package capture

import (
	"sort"
	"strings"
)

type Filter string

const (
	FilterNatural    Filter = "Natural"
	FilterNoir       Filter = "Noir"
	FilterEthereal   Filter = "Ethereal"
	FilterCyber      Filter = "Cyber"
	FilterUrban      Filter = "Urban"
	FilterVivid      Filter = "Vivid"
	FilterWarmth     Filter = "Warmth"
	FilterDiffusion  Filter = "Diffusion"
	Filter8mm        Filter = "8mm"
	FilterTealOrange Filter = "Teal & Orange"
)

// FilterStep is one ffmpeg filter with its positional and named options.
type FilterStep struct {
	Name   string
	Args   []string
	KwArgs map[string]string
}

func (s FilterStep) String() string {
	parts := append([]string(nil), s.Args...)
	keys := make([]string, 0, len(s.KwArgs))
	for k := range s.KwArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+"="+s.KwArgs[k])
	}
	if len(parts) == 0 {
		return s.Name
	}
	return s.Name + "=" + strings.Join(parts, ":")
}

// Descriptor is the visual effect of a filter: a CSS filter chain for
// previews rendered by a browser, and the equivalent ffmpeg steps.
type Descriptor struct {
	CSS    string
	FFmpeg []FilterStep
}

// Graph renders the ffmpeg steps as a -vf expression.
func (d Descriptor) Graph() string {
	if len(d.FFmpeg) == 0 {
		return "null"
	}
	parts := make([]string, len(d.FFmpeg))
	for i, s := range d.FFmpeg {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func eq(kw map[string]string) FilterStep { return FilterStep{Name: "eq", KwArgs: kw} }

var filterOrder = []Filter{
	FilterNatural, FilterNoir, FilterEthereal, FilterCyber, FilterUrban,
	FilterVivid, FilterWarmth, FilterDiffusion, Filter8mm, FilterTealOrange,
}

var descriptors = map[Filter]Descriptor{
	FilterNatural: {CSS: "none"},
	FilterNoir: {
		CSS: "grayscale(1) contrast(1.2) brightness(0.9)",
		FFmpeg: []FilterStep{
			{Name: "hue", KwArgs: map[string]string{"s": "0"}},
			eq(map[string]string{"contrast": "1.2", "brightness": "-0.05"}),
		},
	},
	FilterEthereal: {
		CSS: "brightness(1.1) saturate(0.6) blur(0.5px) contrast(0.9)",
		FFmpeg: []FilterStep{
			eq(map[string]string{"brightness": "0.05", "saturation": "0.6", "contrast": "0.9"}),
			{Name: "gblur", KwArgs: map[string]string{"sigma": "0.5"}},
		},
	},
	FilterCyber: {
		CSS: "hue-rotate(280deg) saturate(2) contrast(1.1) brightness(0.8)",
		FFmpeg: []FilterStep{
			{Name: "hue", KwArgs: map[string]string{"h": "280", "s": "2"}},
			eq(map[string]string{"contrast": "1.1", "brightness": "-0.1"}),
		},
	},
	FilterUrban: {
		CSS: "contrast(1.2) brightness(1.1) saturate(1.1) sepia(0.1)",
		FFmpeg: []FilterStep{
			eq(map[string]string{"contrast": "1.2", "brightness": "0.05", "saturation": "1.1"}),
			{Name: "colorbalance", KwArgs: map[string]string{"rm": "0.04", "bm": "-0.04"}},
		},
	},
	FilterVivid: {
		CSS:    "saturate(1.8) contrast(1.1) brightness(1.1)",
		FFmpeg: []FilterStep{eq(map[string]string{"saturation": "1.8", "contrast": "1.1", "brightness": "0.05"})},
	},
	FilterWarmth: {
		CSS: "sepia(0.4) saturate(1.4) brightness(1.05) hue-rotate(-10deg)",
		FFmpeg: []FilterStep{
			eq(map[string]string{"saturation": "1.4", "brightness": "0.02"}),
			{Name: "hue", KwArgs: map[string]string{"h": "-10"}},
			{Name: "colorbalance", KwArgs: map[string]string{"rm": "0.15", "gm": "0.05", "bm": "-0.15"}},
		},
	},
	FilterDiffusion: {
		CSS: "brightness(1.1) saturate(0.9) blur(1.5px) contrast(0.9)",
		FFmpeg: []FilterStep{
			eq(map[string]string{"brightness": "0.05", "saturation": "0.9", "contrast": "0.9"}),
			{Name: "gblur", KwArgs: map[string]string{"sigma": "1.5"}},
		},
	},
	Filter8mm: {
		CSS: "contrast(1.1) brightness(0.9) sepia(0.2) saturate(0.8) grayscale(0.1)",
		FFmpeg: []FilterStep{
			eq(map[string]string{"contrast": "1.1", "brightness": "-0.05", "saturation": "0.7"}),
			{Name: "colorbalance", KwArgs: map[string]string{"rm": "0.08", "bm": "-0.08"}},
			{Name: "noise", KwArgs: map[string]string{"alls": "12", "allf": "t"}},
		},
	},
	FilterTealOrange: {
		CSS: "contrast(1.2) brightness(1.0) saturate(1.1) hue-rotate(5deg)",
		FFmpeg: []FilterStep{
			eq(map[string]string{"contrast": "1.2", "saturation": "1.1"}),
			{Name: "hue", KwArgs: map[string]string{"h": "5"}},
			{Name: "colorbalance", KwArgs: map[string]string{"rs": "-0.1", "bs": "0.1", "rh": "0.1", "bh": "-0.1"}},
		},
	},
}

func Filters() []Filter {
	return append([]Filter(nil), filterOrder...)
}

// Describe returns the effect for f; unknown filters render unfiltered.
func Describe(f Filter) (Descriptor, bool) {
	d, ok := descriptors[f]
	if !ok {
		return descriptors[FilterNatural], false
	}
	return d, true
}

func ParseFilter(v string) (Filter, bool) {
	for _, f := range filterOrder {
		if strings.EqualFold(string(f), strings.TrimSpace(v)) {
			return f, true
		}
	}
	return "", false
}
