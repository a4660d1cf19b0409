package model

import "time"

type UserRole string

const (
	RoleArtist UserRole = "artist"
	RoleAdmin  UserRole = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

type MusicPlatform string

const (
	MusicSuno       MusicPlatform = "Suno"
	MusicSoundCloud MusicPlatform = "SoundCloud"
	MusicYouTube    MusicPlatform = "YouTube"
	MusicSpotify    MusicPlatform = "Spotify"
	MusicUnknown    MusicPlatform = "Unknown"
)

type SocialPlatform string

const (
	SocialTikTok        SocialPlatform = "TikTok"
	SocialInstagram     SocialPlatform = "Instagram"
	SocialSnapchat      SocialPlatform = "Snapchat"
	SocialYouTubeShorts SocialPlatform = "YouTube Shorts"
	SocialX             SocialPlatform = "X"
	SocialFacebook      SocialPlatform = "Facebook"
)

type VideoStyle string

const (
	StyleCinematic   VideoStyle = "Cinematic"
	StyleLofi        VideoStyle = "Lo-fi"
	StyleAbstract    VideoStyle = "Abstract"
	StyleLyricBased  VideoStyle = "Lyric-based"
	StyleNeon        VideoStyle = "Neon"
	StyleMinimalist  VideoStyle = "Minimalist"
	StyleGrainy      VideoStyle = "Grainy"
	StyleCyberpunk   VideoStyle = "Cyberpunk"
	StyleVintageFilm VideoStyle = "Vintage Film"
	StyleDreamy      VideoStyle = "Dreamy"
	StyleGlitch      VideoStyle = "Glitch"
	StyleSynthwave   VideoStyle = "Synthwave"
	StyleNoir        VideoStyle = "Noir"
	StylePsychedelic VideoStyle = "Psychedelic"
	StyleGrunge      VideoStyle = "Grunge"
	StyleVaporwave   VideoStyle = "Vaporwave"
	StyleEthereal    VideoStyle = "Ethereal"
	StyleGothic      VideoStyle = "Gothic"
	StylePopArt      VideoStyle = "Pop Art"
)

type CaptionType string

const (
	CaptionPunchyHook CaptionType = "Punchy Hook"
	CaptionPoetic     CaptionType = "Poetic"
	CaptionMinimalist CaptionType = "Minimalist"
	CaptionViral      CaptionType = "Viral/Curiosity"
	CaptionSpiritual  CaptionType = "Spiritual"
)

type Analysis struct {
	Genre  string `json:"genre"`
	Vibe   string `json:"vibe"`
	Energy string `json:"energy"`
}

type VideoConcept struct {
	VisualPlan   string   `json:"visualPlan"`
	MotionStyle  string   `json:"motionStyle"`
	ColorGrading string   `json:"colorGrading"`
	TextOverlays []string `json:"textOverlays"`
	Transitions  string   `json:"transitions"`
	LoopEnding   string   `json:"loopEnding"`
}

type CameraInstructions struct {
	Angles            string `json:"angles"`
	Lighting          string `json:"lighting"`
	Movement          string `json:"movement"`
	FiltersAndEffects string `json:"filtersAndEffects"`
}

type VoiceoverScript struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Text     string `json:"text"`
	Duration string `json:"duration"`
}

type Caption struct {
	ID    string      `json:"id"`
	Type  CaptionType `json:"type"`
	Text  string      `json:"text"`
	Emoji string      `json:"emoji"`
}

// PromotionPackage is the generated bundle for one track. Values are never
// mutated after decoding; use Clone when handing one out.
type PromotionPackage struct {
	Analysis           Analysis           `json:"analysis"`
	VideoConcept       VideoConcept       `json:"videoConcept"`
	CameraInstructions CameraInstructions `json:"cameraInstructions"`
	VoiceoverScripts   []VoiceoverScript  `json:"voiceoverScripts"`
	Captions           []Caption          `json:"captions"`
	Hashtags           string             `json:"hashtags"`
	RecommendedLengths []string           `json:"recommendedLengths"`
	PostingTips        string             `json:"postingTips"`
}

func (p PromotionPackage) Clone() PromotionPackage {
	out := p
	out.VideoConcept.TextOverlays = append([]string(nil), p.VideoConcept.TextOverlays...)
	out.VoiceoverScripts = append([]VoiceoverScript(nil), p.VoiceoverScripts...)
	out.Captions = append([]Caption(nil), p.Captions...)
	out.RecommendedLengths = append([]string(nil), p.RecommendedLengths...)
	return out
}

func (p PromotionPackage) Script(id string) (VoiceoverScript, bool) {
	for _, s := range p.VoiceoverScripts {
		if s.ID == id {
			return s, true
		}
	}
	return VoiceoverScript{}, false
}

// MediaRef points at a materialised media object (video clip, narration,
// camera recording).
type MediaRef struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

type VideoClip struct {
	ID       string   `json:"id"`
	URL      string   `json:"url"`
	Prompt   string   `json:"prompt"`
	Duration int      `json:"duration"`
	Media    MediaRef `json:"media"`
}

type Project struct {
	ID                string            `json:"id"`
	MusicLink         string            `json:"music_link"`
	Mood              string            `json:"mood,omitempty"`
	Platform          MusicPlatform     `json:"platform"`
	TargetPlatforms   []SocialPlatform  `json:"target_platforms"`
	Style             VideoStyle        `json:"style"`
	Package           *PromotionPackage `json:"package"`
	VideoClips        []VideoClip       `json:"video_clips"`
	ActiveVideoURL    string            `json:"active_video_url,omitempty"`
	IsGeneratingVideo bool              `json:"is_generating_video"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Clone returns a deep copy so callers never share slices with the owner.
func (p Project) Clone() Project {
	out := p
	out.TargetPlatforms = append([]SocialPlatform(nil), p.TargetPlatforms...)
	out.VideoClips = append([]VideoClip(nil), p.VideoClips...)
	if p.Package != nil {
		pkg := p.Package.Clone()
		out.Package = &pkg
	}
	return out
}

type EventType string

const (
	EventStateChanged EventType = "state_changed"
	EventVideoStatus  EventType = "video_status"
	EventClipReady    EventType = "clip_ready"
	EventError        EventType = "error"
	EventKeyRequired  EventType = "key_selection_required"
)

type ProjectEvent struct {
	EventID   string         `json:"event_id"`
	Seq       int64          `json:"seq"`
	UserID    string         `json:"user_id"`
	ProjectID string         `json:"project_id,omitempty"`
	Type      EventType      `json:"type"`
	TS        time.Time      `json:"ts"`
	Payload   map[string]any `json:"payload"`
}
