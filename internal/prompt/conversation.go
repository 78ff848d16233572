// Package prompt turns session state into model input.
//
// Every function here is pure: the output depends only on the arguments, with
// no clock, randomness, or map iteration involved, so identical inputs yield
// byte-identical prompts.
package prompt

import (
	"strings"

	"github.com/MrWong99/salespractice/internal/catalog"
	"github.com/MrWong99/salespractice/pkg/provider/llm"
)

// ResearchMarker heads the research block in the conversation system prompt.
const ResearchMarker = "RESEARCH CONTEXT"

// Conversation builds the chat request for one in-character customer turn.
//
// The first message is the single system message: persona behaviour, scenario
// context, the research block when research is non-nil, and the fixed
// in-character instructions. History follows in order, one user message per
// non-empty User and one assistant message per non-empty Assistant. The
// utterance is appended last when non-empty; the opening turn passes "".
func Conversation(p catalog.Persona, s catalog.Scenario, history []catalog.Exchange, utterance string, research *catalog.ResearchData) []llm.Message {
	msgs := make([]llm.Message, 0, 2+2*len(history))
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt(p, s, research)})

	for _, ex := range history {
		if ex.User != "" {
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: ex.User})
		}
		if ex.Assistant != "" {
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: ex.Assistant})
		}
	}

	if utterance != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: utterance})
	}
	return msgs
}

func systemPrompt(p catalog.Persona, s catalog.Scenario, research *catalog.ResearchData) string {
	var b strings.Builder
	b.WriteString(p.SystemPrompt)
	b.WriteString("\n\nSCENARIO CONTEXT: ")
	b.WriteString(s.InitialContext)

	if research != nil {
		b.WriteString("\n\n")
		b.WriteString(ResearchMarker)
		b.WriteString(":\n")
		b.WriteString("The salesperson has researched the following topic before this conversation: \"")
		b.WriteString(research.Query)
		b.WriteString("\"\n")
		if research.Summary != "" {
			b.WriteString("Summary: ")
			b.WriteString(research.Summary)
			b.WriteString("\n")
		}
		if len(research.KeyPoints) > 0 {
			b.WriteString("Key points:\n")
			for _, kp := range research.KeyPoints {
				b.WriteString("• ")
				b.WriteString(kp)
				b.WriteString("\n")
			}
		}
		b.WriteString("Treat this as background you may also know about. Expect the salesperson to use it and react to how well they do.")
	}

	b.WriteString("\n\nIMPORTANT INSTRUCTIONS:\n")
	b.WriteString("- Stay in character as ")
	b.WriteString(p.Name)
	b.WriteString(" throughout the conversation\n")
	b.WriteString(`- Respond naturally as this persona would in this scenario
- Keep responses conversational and realistic (1-3 sentences typically)
- Don't break character or mention that you're an AI
- React authentically based on your persona's traits and the scenario context
- If the salesperson is doing well, show appropriate interest
- If they're struggling, respond according to your persona's nature`)
	return b.String()
}

// Transcript renders history as "Salesperson: ...\n<Persona>: ..." blocks
// separated by blank lines.
func Transcript(history []catalog.Exchange, personaName string) string {
	blocks := make([]string, 0, len(history))
	for _, ex := range history {
		blocks = append(blocks, "Salesperson: "+ex.User+"\n"+personaName+": "+ex.Assistant)
	}
	return strings.Join(blocks, "\n\n")
}
