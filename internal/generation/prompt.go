package generation

import (
	"fmt"
	"strings"

	"flashcards.app/generator/internal/model"
)

// PromptVersion is stored on every claimed generation so results can be traced
// back to the instructions that produced them.
const PromptVersion = "flashcards-v1"

const noTagsLine = "No tags available. Use an empty tag_ids array."

const SystemPrompt = `You are an expert educator who turns study material into flashcards.

Write question/answer pairs that test one idea each:
- "front" is a question or prompt of at most 200 characters.
- "back" is a concise, self-contained answer of at most 450 characters.
- Cover the important facts, definitions and relationships in the text.
- Do not produce duplicate or near-duplicate cards.
- Do not invent facts that are not supported by the text.

Tagging:
- "tag_ids" may only contain ids from the provided tag list.
- Use an empty array when no tag fits.

Respond with JSON only, in the form:
{"cards":[{"front":"...","back":"...","tag_ids":[1,2]}]}`

// BuildPrompt renders the user message for a generation. The output depends
// only on its inputs.
func BuildPrompt(sourceText string, tags []model.Tag) string {
	var b strings.Builder

	b.WriteString("## Available tags\n")
	if len(tags) == 0 {
		b.WriteString(noTagsLine)
		b.WriteString("\n")
	} else {
		for _, t := range tags {
			fmt.Fprintf(&b, "- [%d] %s (slug: %s)\n", t.ID, t.Name, t.Slug)
		}
	}

	b.WriteString("\n## Source text\n")
	b.WriteString(sourceText)
	b.WriteString("\n")

	return b.String()
}
