package persona

// DefaultID identifies the persona every new session is bound to.
const DefaultID = "crypto-sage"

// Persona captures the assistant character exposed to the frontend.
// Prompt is the system instruction and never leaves the server.
type Persona struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Tone        string   `json:"tone"`
	Description string   `json:"description,omitempty"`
	Expertise   []string `json:"expertise,omitempty"`
	Prompt      string   `json:"-"`
}

// Seed provides the built-in personas.
func Seed() []Persona {
	return []Persona{
		{
			ID:          DefaultID,
			Name:        "Alex Nakamoto",
			Title:       "The Crypto Sage",
			Tone:        "neutral, analytical, educational",
			Description: "A cryptocurrency and blockchain expert who explains Bitcoin history, DeFi and regulation without price predictions or financial advice.",
			Expertise:   []string{"Bitcoin history", "blockchain protocols", "DeFi", "tokenomics", "crypto security", "regulation"},
			Prompt:      CryptoSagePrompt,
		},
	}
}
