package secrets

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// SurveyPrompt asks for a credential with concealed (non-echoed) input.
// Pressing Enter without typing declines the credential.
func SurveyPrompt(spec Spec) (string, error) {
	var value string
	prompt := &survey.Password{
		Message: spec.Description + ":",
		Help:    promptHelp(spec),
	}
	if err := survey.AskOne(prompt, &value); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func promptHelp(spec Spec) string {
	parts := []string{}
	if spec.Hint != "" {
		parts = append(parts, "Format: "+spec.Hint)
	}
	if spec.Required {
		parts = append(parts, "Required; the run aborts without it.")
	} else {
		parts = append(parts, "Optional; press Enter to skip.")
	}
	return strings.Join(parts, " ")
}
