package rewrite

import "fmt"

// Sampling settings shared by every backend.
const (
	temperature = 0.7
	maxTokens   = 500
)

const (
	promptPreamble = "You are an expert copywriter for a gig-work marketplace called NomadShift. "
	promptLanguage = " Write in Spanish if the input is in Spanish, otherwise in English. Only return the improved description, no explanations."
)

var prompts = map[Context]string{
	ContextProfile: promptPreamble +
		"Improve this profile description to be attractive, professional, and concise. " +
		"Make it engaging and highlight the person's strengths. Keep it under 150 words." + promptLanguage,
	ContextJob: promptPreamble +
		"Improve this job description to be clear, professional, and attractive to potential workers. " +
		"Highlight key requirements and benefits. Keep it under 200 words." + promptLanguage,
}

func systemPrompt(c Context) (string, error) {
	p, ok := prompts[c]
	if !ok {
		return "", fmt.Errorf("context must be %q or %q", ContextProfile, ContextJob)
	}
	return p, nil
}
