package constants

// Keys used in the local state store.
const (
	GuestPlanKey = "studyPlanData_guest"
	AuthTokenKey = "authToken"
)

// DefaultAPIURL is the profile API base used when none is configured.
const DefaultAPIURL = "http://localhost:3001/api"

// DefaultGeminiModel is the generative model used for extraction.
const DefaultGeminiModel = "gemini-2.5-flash"

// DefaultOpenAIModel is used when the openai provider is selected.
const DefaultOpenAIModel = "gpt-4o-mini"
