package emotion

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Palette holds the visual descriptors associated with one emotion label.
// Every emotion in the taxonomy must have a palette entry.
type Palette struct {
	Colors     string `yaml:"colors" json:"colors"`
	Mood       string `yaml:"mood" json:"mood"`
	Lighting   string `yaml:"lighting" json:"lighting"`
	Atmosphere string `yaml:"atmosphere" json:"atmosphere"`
}

// Data is the raw lexicon configuration: trigger keywords per label plus the
// palette table. It is loaded once at startup and compiled into a Lexicon;
// nothing mutates it afterwards.
type Data struct {
	Emotions map[EmotionLabel][]string `yaml:"emotions"`
	Themes   map[ThemeLabel][]string   `yaml:"themes"`
	Palettes map[EmotionLabel]Palette  `yaml:"palettes"`
}

// DefaultData returns the built-in lexicon and palette tables.
func DefaultData() Data {
	return Data{
		Emotions: map[EmotionLabel][]string{
			Happy:       {"happy", "joy", "joyful", "amazing", "wonderful", "great", "fantastic", "awesome", "love", "delighted", "cheerful", "thrilled", "elated", "blessed", "blissful"},
			Calm:        {"calm", "peaceful", "serene", "relaxed", "tranquil", "quiet", "composed", "balanced", "zen", "mellow", "at ease", "steady", "centered"},
			Motivated:   {"motivated", "determined", "driven", "ambitious", "inspired", "pumped", "fired up", "focused", "productive", "energetic", "unstoppable", "goal", "hustle"},
			Grateful:    {"grateful", "thankful", "blessed", "appreciative", "fortunate", "lucky", "content", "fulfilled"},
			Stressed:    {"stressed", "pressure", "tense", "overwhelmed", "burned out", "burnout", "overloaded", "swamped", "strained", "deadline", "hectic", "chaos"},
			Anxious:     {"anxious", "worried", "nervous", "uneasy", "restless", "panicked", "dread", "fear", "uncertain", "overthinking", "apprehensive"},
			Overwhelmed: {"overwhelmed", "too much", "drowning", "overloaded", "swamped", "crushed", "buried", "cannot cope", "breaking point"},
			Tired:       {"tired", "exhausted", "fatigue", "drained", "sleepy", "weary", "worn out", "sluggish", "low energy", "lethargic", "burnt"},
			Sad:         {"sad", "down", "unhappy", "depressed", "lonely", "heartbroken", "melancholy", "gloomy", "dismal", "miserable", "hopeless"},
			Frustrated:  {"frustrated", "annoyed", "irritated", "angry", "mad", "furious", "stuck", "blocked", "fed up", "impatient", "aggravated"},
			Neutral:     {"okay", "fine", "alright", "normal", "average", "meh", "so-so", "uneventful", "routine"},
			Confident:   {"confident", "proud", "bold", "empowered", "capable", "strong", "self-assured", "accomplished", "victorious", "winning"},
			Excited:     {"excited", "ecstatic", "hyped", "eager", "enthusiastic", "looking forward", "can't wait", "stoked", "thrilling"},
			Reflective:  {"reflective", "thoughtful", "contemplative", "introspective", "pondering", "nostalgic", "wondering", "philosophical"},
		},
		Themes: map[ThemeLabel][]string{
			ThemeWork:      {"work", "job", "office", "meeting", "project", "client", "deadline", "colleague", "manager", "boss", "team", "presentation", "corporate", "business", "remote", "commute", "salary", "promotion"},
			ThemeLearning:  {"study", "studying", "learn", "learning", "exam", "class", "lecture", "homework", "assignment", "college", "university", "school", "course", "programming", "coding", "engineering", "reading", "research", "tutorial", "training", "certification", "book"},
			ThemeHealth:    {"exercise", "gym", "workout", "running", "jogging", "yoga", "meditation", "health", "fitness", "diet", "sleep", "walk", "hiking", "sport", "swimming", "cycling", "mental health", "therapy", "doctor", "headache", "sick", "rest", "run"},
			ThemePersonal:  {"family", "home", "chores", "cooking", "cleaning", "laundry", "garden", "pet", "kids", "parent", "partner", "spouse", "relationship", "house", "move", "errand"},
			ThemeSocial:    {"friend", "friends", "hangout", "party", "dinner", "gathering", "social", "chat", "call", "visit", "reunion", "celebrate", "coffee", "lunch"},
			ThemeCreative:  {"art", "music", "writing", "painting", "design", "photography", "creative", "craft", "draw", "sketch", "compose", "film", "video", "content", "blog", "poetry"},
			ThemeFinance:   {"money", "budget", "savings", "invest", "expense", "bills", "financial", "income", "debt", "tax", "stock", "crypto"},
			ThemeSpiritual: {"pray", "prayer", "meditate", "spiritual", "gratitude", "mindful", "faith", "church", "temple", "worship", "soul", "purpose", "meaning"},
		},
		Palettes: map[EmotionLabel]Palette{
			Happy:       {Colors: "warm golds, sunlit yellows, vibrant oranges", Mood: "bright and uplifting", Lighting: "golden hour sunlight, warm radiance", Atmosphere: "celebratory and lively"},
			Calm:        {Colors: "soft blues, gentle lavenders, seafoam greens", Mood: "serene and soothing", Lighting: "soft diffused ambient light, gentle glow", Atmosphere: "peaceful and still"},
			Motivated:   {Colors: "bold reds, electric blues, bright whites", Mood: "powerful and dynamic", Lighting: "dramatic spotlighting, sunrise beams", Atmosphere: "charged and purposeful"},
			Grateful:    {Colors: "warm ambers, rose golds, honey tones", Mood: "warm and heartfelt", Lighting: "soft warm backlighting, candlelit", Atmosphere: "intimate and appreciative"},
			Stressed:    {Colors: "deep grays, muted purples, storm blues", Mood: "tense yet resilient", Lighting: "overcast sky, filtered light through clouds", Atmosphere: "heavy but with breaking light"},
			Anxious:     {Colors: "swirling teals, shifting blues, pale greys", Mood: "restless and searching", Lighting: "flickering, uneven ambient light", Atmosphere: "uncertain, atmospheric fog"},
			Overwhelmed: {Colors: "dark indigos, scattered neon accents, deep shadows", Mood: "chaotic yet seeking clarity", Lighting: "harsh contrasts with pockets of warmth", Atmosphere: "busy, layered, with a calming focal point"},
			Tired:       {Colors: "muted earth tones, soft browns, dusty blues", Mood: "quiet and resting", Lighting: "dim twilight, soft lamplight", Atmosphere: "cozy, winding down"},
			Sad:         {Colors: "cool blues, soft grays, gentle purples", Mood: "melancholic but beautiful", Lighting: "overcast, rain-filtered light", Atmosphere: "somber with quiet beauty"},
			Frustrated:  {Colors: "burnt oranges, sharp reds, dark grays", Mood: "intense and restless", Lighting: "harsh directional light, deep shadows", Atmosphere: "turbulent with forward momentum"},
			Neutral:     {Colors: "balanced grays, soft whites, natural greens", Mood: "even and measured", Lighting: "natural daylight, clean illumination", Atmosphere: "ordinary, grounded"},
			Confident:   {Colors: "royal purples, deep golds, midnight blues", Mood: "commanding and assured", Lighting: "dramatic uplighting, stage presence", Atmosphere: "powerful and majestic"},
			Excited:     {Colors: "electric pinks, bright cyans, energetic yellows", Mood: "vibrant and explosive", Lighting: "neon glow, dynamic light streaks", Atmosphere: "euphoric, fast-paced"},
			Reflective:  {Colors: "soft ochres, twilight purples, misty whites", Mood: "contemplative and deep", Lighting: "golden hour fading into dusk", Atmosphere: "philosophical, time standing still"},
		},
	}
}

// LoadData reads a YAML lexicon file and overlays it on the defaults.
// Labels present in the file replace the built-in entry wholesale; labels
// absent from the file keep the defaults. Completeness is checked later by
// Compile, so a partial file cannot silently remove a label's coverage.
func LoadData(path string) (Data, error) {
	data := DefaultData()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var overlay Data
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return Data{}, fmt.Errorf("failed to parse lexicon file %s: %w", path, err)
	}

	for label, keywords := range overlay.Emotions {
		data.Emotions[label] = keywords
	}
	for label, keywords := range overlay.Themes {
		data.Themes[label] = keywords
	}
	for label, palette := range overlay.Palettes {
		data.Palettes[label] = palette
	}

	return data, nil
}
