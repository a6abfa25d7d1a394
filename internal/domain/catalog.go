package domain

// CatalogEntry describes one selectable style, voice or avatar.
type CatalogEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// Styles lists the supported visual styles.
func Styles() []CatalogEntry {
	return []CatalogEntry{
		{ID: "cinematic", Name: "Cinematic", Icon: "🎬", Description: "Movie-like quality"},
		{ID: "reels", Name: "Reels", Icon: "📱", Description: "Vertical video for social media"},
		{ID: "dark", Name: "Dark", Icon: "🌙", Description: "Dark theme with dramatic lighting"},
		{ID: "documentary", Name: "Documentary", Icon: "📹", Description: "Educational style"},
		{ID: "corporate", Name: "Corporate", Icon: "💼", Description: "Professional business style"},
		{ID: "animated", Name: "Animated", Icon: "✨", Description: "Animated graphics"},
	}
}

// Voices lists the supported narration voices.
func Voices() []CatalogEntry {
	return []CatalogEntry{
		{ID: "male", Name: "Male", Description: "Standard male voice"},
		{ID: "female", Name: "Female", Description: "Standard female voice"},
		{ID: "narrator", Name: "Narrator", Description: "Documentary narrator voice"},
	}
}

// Avatars lists the supported avatar presenters.
func Avatars() []CatalogEntry {
	return []CatalogEntry{
		{ID: "male", Name: "Male", Icon: "👨‍💼"},
		{ID: "female", Name: "Female", Icon: "👩‍💼"},
		{ID: "ai", Name: "AI", Icon: "🤖"},
		{ID: "none", Name: "No Avatar", Icon: "🚫"},
	}
}
