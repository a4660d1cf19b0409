package video

import "github.com/sk88studiosinc-maker/Soulsound/internal/model"

const fallbackDescriptor = "Cinematic lighting, fluid motion."

var styleDescriptors = map[model.VideoStyle]string{
	model.StyleNeon:        "Vibrant high-contrast lighting, glowing neon tubes, electric blues and pinks, dark reflections, sharp edges, synthwave aesthetic.",
	model.StyleMinimalist:  "Spacious compositions, simple geometric forms, monochromatic or neutral palette, clean lines, high-end design feel, quiet motion.",
	model.StyleGrainy:      "Heavy film grain texture, analog film look, 16mm or Super 8 aesthetic, flickering highlights, organic imperfections, nostalgic vibes.",
	model.StyleCinematic:   "Professional 35mm depth of field, anamorphic lens flares, rich color grading, dramatic shadows, wide aspect ratio feel.",
	model.StyleLofi:        "Low resolution textures, warm vintage filters, slightly blurry focus, cozy indoor lighting, retro desktop or room aesthetic.",
	model.StyleAbstract:    "Fluid shapes, swirling light trails, non-representational motion, morphing textures, kaleidoscopic patterns.",
	model.StyleLyricBased:  "Dynamic typography, kinetic text motion, high contrast backgrounds for readability, artistic font integration.",
	model.StyleCyberpunk:   "Futuristic urban decay, rain-slicked streets, holographic advertisements, purple and teal lighting, high-tech low-life vibe.",
	model.StyleVintageFilm: "Sepia tones, light leaks, dust and scratches, jittery frame rate, old camera motor sounds, classic Hollywood look.",
	model.StyleDreamy:      "Soft focus, ethereal glow, pastel gradients, slow motion floating particles, surreal transitions, lens diffusion.",
	model.StyleGlitch:      "Digital artifacts, chromatic aberration, data-bending visuals, fragmented frames, signal interference look.",
	model.StyleSynthwave:   "80s retro-futurism, wireframe grids, sunset horizons, chrome textures, pink and purple haze.",
	model.StyleNoir:        "Dramatic black and white, chiaroscuro lighting, long shadows, smoke and fog, hard contrast, gritty detective aesthetic.",
	model.StylePsychedelic: "Trippy swirling colors, melting forms, intense saturation, fractal geometry, mind-bending visual loops.",
	model.StyleGrunge:      "Dirty textures, desaturated colors, hand-held camera shake, distressed overlays, raw and unpolished aesthetic.",
	model.StyleVaporwave:   "90s web aesthetic, marble statues, palm trees, glitched windows, apathetic mood, pink and blue gradients.",
	model.StyleEthereal:    "Heavenly light beams, white-on-white aesthetics, holy glow, slow and graceful floating motion, spiritual atmosphere.",
	model.StyleGothic:      "Dark ornate architecture, velvet textures, candlelight, mysterious shadows, melancholic beauty, Victorian vibes.",
	model.StylePopArt:      "Ben-Day dots, bold outlines, primary colors, comic book style, high energy graphic motion.",
}

// Descriptor returns the prompt fragment for style.
func Descriptor(style model.VideoStyle) string {
	if d, ok := styleDescriptors[style]; ok {
		return d
	}
	return fallbackDescriptor
}

// InitialStatus is shown as soon as a render is requested.
const InitialStatus = "Visualizing the soul of your track..."

// StatusMessages rotate on every poll tick while a clip renders. They do not
// reflect real progress.
var StatusMessages = []string{
	"Painting with digital light...",
	"Synthesizing cinematic atmosphere...",
	"Mapping the rhythmic pulse to visuals...",
	"Polishing high-fidelity motion frames...",
	"The spirits are aligning for your debut...",
}
