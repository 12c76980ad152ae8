package translate

import (
	"fmt"
	"strings"
)

const systemPromptTemplate = `You are a professional translator. Translate each line the user sends into %s, keeping the meaning and tone.
If a line is already in %s, return it unchanged.
Reply with exactly one translated line per input line, in the same order, with no numbering and no commentary.`

func systemPrompt(language string) string {
	return fmt.Sprintf(systemPromptTemplate, language, language)
}

func userPrompt(language string, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following %d lines into %s, one result per line:\n", len(lines), language)
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
