package prompt

import (
	"fmt"
	"strings"
)

// MaxArticleChars bounds how much extracted page text is embedded.
const MaxArticleChars = 6000

// Article is readable text extracted from a web page.
type Article struct {
	URL      string
	Title    string
	SiteName string
	Text     string
}

// Research builds the research-assistant prompt for query. When article is
// non-nil its title and text (truncated to MaxArticleChars) are embedded as
// source material.
func Research(query string, article *Article) string {
	var b strings.Builder

	b.WriteString("You are a business research assistant. Research the following topic and provide key information that would be useful for a salesperson preparing for a call:\n\n")
	fmt.Fprintf(&b, "Query: %q\n\n", query)

	if article != nil {
		b.WriteString("SOURCE MATERIAL (base your answer on this page):\n")
		if article.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", article.Title)
		}
		if article.SiteName != "" {
			fmt.Fprintf(&b, "Site: %s\n", article.SiteName)
		}
		b.WriteString(truncate(article.Text, MaxArticleChars))
		b.WriteString("\n\n")
	}

	b.WriteString(`Please provide:
1. A brief 2-3 sentence summary
2. 5-7 key talking points or facts
3. Potential business benefits or value propositions

Format your response as:
SUMMARY: [your summary here]

KEY POINTS:
• [point 1]
• [point 2]
• [point 3]
• [point 4]
• [point 5]

Focus on information that would help a salesperson understand the company, product, or topic better for a sales conversation.`)
	return b.String()
}

// truncate cuts s to at most n runes, appending an ellipsis when it cut.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
