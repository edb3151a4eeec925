package prompt

import "fmt"

// paperTemplate wraps the article text the model is asked to assess.
const paperTemplate = "Here is a scientific article, please stick exactly to the output format: <paper>%s</paper>"

// BuildPaperPrompt returns the instructions followed by the wrapped article text.
func BuildPaperPrompt(instructions, text string) string {
	return instructions + "\n\n" + fmt.Sprintf(paperTemplate, text)
}

// BuildValidationPrompt asks the model to re-evaluate a preliminary reply against the article.
func BuildValidationPrompt(instructions, text, preliminary string) string {
	return instructions + "\n\n" +
		"Here is a scientific article: " + text + "\n\n" +
		"Here is a preliminary evaluation that you should critically evaluate again " +
		"and output in the specified format: " + preliminary
}
