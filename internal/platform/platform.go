package platform

import (
	"strings"

	"github.com/sk88studiosinc-maker/Soulsound/internal/model"
)

type hostRule struct {
	platform  model.MusicPlatform
	fragments []string
}

// Order matters: the first rule with a matching fragment wins.
var hostRules = []hostRule{
	{platform: model.MusicSuno, fragments: []string{"suno.ai", "suno.com"}},
	{platform: model.MusicSoundCloud, fragments: []string{"soundcloud.com"}},
	{platform: model.MusicYouTube, fragments: []string{"youtube.com", "youtu.be"}},
	{platform: model.MusicSpotify, fragments: []string{"spotify.com"}},
}

// Detect maps a pasted track link to the music source it came from.
func Detect(url string) model.MusicPlatform {
	low := strings.ToLower(url)
	for _, rule := range hostRules {
		for _, f := range rule.fragments {
			if strings.Contains(low, f) {
				return rule.platform
			}
		}
	}
	return model.MusicUnknown
}

var socialPlatforms = []model.SocialPlatform{
	model.SocialTikTok,
	model.SocialInstagram,
	model.SocialSnapchat,
	model.SocialYouTubeShorts,
	model.SocialX,
	model.SocialFacebook,
}

var videoStyles = []model.VideoStyle{
	model.StyleCinematic, model.StyleLofi, model.StyleAbstract, model.StyleLyricBased, model.StyleNeon,
	model.StyleMinimalist, model.StyleGrainy, model.StyleCyberpunk, model.StyleVintageFilm, model.StyleDreamy,
	model.StyleGlitch, model.StyleSynthwave, model.StyleNoir, model.StylePsychedelic, model.StyleGrunge,
	model.StyleVaporwave, model.StyleEthereal, model.StyleGothic, model.StylePopArt,
}

func SocialPlatforms() []model.SocialPlatform {
	return append([]model.SocialPlatform(nil), socialPlatforms...)
}

func VideoStyles() []model.VideoStyle {
	return append([]model.VideoStyle(nil), videoStyles...)
}

func ParseSocialPlatform(v string) (model.SocialPlatform, bool) {
	for _, p := range socialPlatforms {
		if strings.EqualFold(string(p), strings.TrimSpace(v)) {
			return p, true
		}
	}
	return "", false
}

func ParseVideoStyle(v string) (model.VideoStyle, bool) {
	for _, s := range videoStyles {
		if strings.EqualFold(string(s), strings.TrimSpace(v)) {
			return s, true
		}
	}
	return "", false
}
