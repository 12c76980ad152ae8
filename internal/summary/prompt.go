package summary

import (
	"fmt"
	"strconv"
	"strings"

	"ytpulse/internal/comments"
)

const systemPrompt = `You are an analyst who studies YouTube audience feedback for video creators.
Base every point on the comments supplied. Be specific, quote recurring themes, and avoid generic advice.`

const dimensions = `Analyse the comments along these five dimensions, using exactly these numbered headings:

## 1. Audience likes
- what viewers appreciate most and why highly liked comments resonate
## 2. Audience dislikes
- the main complaints, criticisms and pain points
## 3. Content expectations
- what viewers want to see next and topics they are curious about
## 4. Improvement suggestions
- concrete changes to content, production and viewer experience
## 5. Audience profile
- who the viewers are, their interests and how feedback differs between groups

Give 3-5 concrete points per dimension.`

var strategyIntro = map[Strategy]string{
	StrategyFull:      "Summarize the following %d YouTube comments.",
	StrategyPopular:   "Summarize the following %d most-liked YouTube comments (sorted by likes).",
	StrategyRecent:    "Summarize the following %d most recent YouTube comments.",
	StrategyPositive:  "Summarize the following %d positive YouTube comments.",
	StrategyNegative:  "Summarize the following %d negative YouTube comments.",
	StrategyNeutral:   "Summarize the following %d neutral YouTube comments.",
	StrategySentiment: "Summarize the following %d YouTube comments, grouped positive, negative, then neutral.",
}

// frameComment renders one comment as "[author] (likes N) text".
func frameComment(c comments.Comment) string {
	author := strings.TrimSpace(c.AuthorDisplayName)
	if author == "" {
		author = "anonymous"
	}
	text := comments.CleanText(c.TranslatedText)
	if text == "" {
		text = comments.CleanText(comments.PlainText(c))
	}
	return "[" + author + "] (likes " + strconv.Itoa(c.LikeCount) + ") " + text
}

func frameComments(list []comments.Comment) string {
	lines := make([]string, len(list))
	for i, c := range list {
		lines[i] = frameComment(c)
	}
	return strings.Join(lines, "\n")
}

func languageLine(language string) string {
	return fmt.Sprintf("Write the report in %s.", language)
}

func summaryPrompt(strategy Strategy, list []comments.Comment, language string) string {
	intro, ok := strategyIntro[strategy]
	if !ok {
		intro = strategyIntro[StrategyFull]
	}
	return fmt.Sprintf(intro, len(list)) + "\n\n" + frameComments(list) + "\n\n" + dimensions + "\n" + languageLine(language)
}

func batchPrompt(strategy Strategy, batch, batches int, list []comments.Comment, language string) string {
	intro, ok := strategyIntro[strategy]
	if !ok {
		intro = strategyIntro[StrategyFull]
	}
	header := fmt.Sprintf("This is batch %d of %d from a larger comment set; the batch reports will be merged later. ", batch, batches)
	return header + fmt.Sprintf(intro, len(list)) + "\n\n" + frameComments(list) + "\n\n" + dimensions + "\n" + languageLine(language)
}

func batchLabel(b BatchSummary) string {
	return fmt.Sprintf("## Batch %d (%d comments)", b.BatchIndex+1, b.CommentCount)
}

func labeledSummaries(batches []BatchSummary) string {
	parts := make([]string, 0, len(batches))
	for _, b := range batches {
		parts = append(parts, batchLabel(b)+"\n"+strings.TrimSpace(b.Summary))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func mergePrompt(batches []BatchSummary, totalComments int, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Merge the following %d batch reports of YouTube comment analysis into one consolidated report.\n", len(batches))
	fmt.Fprintf(&b, "Total comments: %d\n\n", totalComments)
	b.WriteString(labeledSummaries(batches))
	b.WriteString("\n\nKeep the five numbered dimensions (1. Audience likes, 2. Audience dislikes, 3. Content expectations, 4. Improvement suggestions, 5. Audience profile). ")
	b.WriteString("Remove repetition and keep the most important insights.\n")
	b.WriteString(languageLine(language))
	return b.String()
}

func concatenated(batches []BatchSummary, totalComments int) string {
	header := fmt.Sprintf("# Combined batch reports (%d comments, %d batches)", totalComments, len(batches))
	return header + "\n\n" + labeledSummaries(batches)
}
