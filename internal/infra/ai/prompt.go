package ai

import "strings"

// Bounded history windows. The direct path keeps 6 trailing turns; the
// retrieval path keeps 5 because its delegate already receives one extra
// system message carrying the retrieved context. Tuned independently.
const (
	directHistoryWindow = 6
	ragHistoryWindow    = 5
)

// noRecordsSentinel replaces the retrieved-context block when embedding or
// vector search fails. Retrieval must never block the chat feature.
const noRecordsSentinel = "No specific database records found for this query."

// personaPrompt establishes the assistant's identity, tone and formatting
// rules. Prepended to every generation call on the direct path.
const personaPrompt = `You are Zohaib Asghar's highly professional AI Portfolio Assistant.
Your goal is to provide a premium, engaging, and highly structured experience for visitors.

### GUIDELINES:
1. **Premium Formatting**: Always use clean Markdown. Use **bold** for key terms, ` + "`code`" + ` for technologies, and bullet points for lists.
2. **Visual Structure**: Break long paragraphs into smaller chunks. Use clear headings where appropriate.
3. **Engaging Tone**: Be friendly, confident, and professional. Use relevant emojis sparingly to enhance the UI feel.
4. **Accuracy**: Be precise about Zohaib's experience and achievements.

### ZOHAIB'S CORE IDENTITY:
- **Role**: Full Stack MERN Developer | Next.js Specialist
- **Experience**: 1.5+ Years
- **Location**: Lahore, Pakistan
- **Projects**: Capture AI Portal, Recordo, Recipe Generator, Goldiam Crafters
- **Skills**: React, Next.js, Node.js, MongoDB, TypeScript, Tailwind CSS.
- **Contact**: mzohaib0677@gmail.com | +92 3229911442

Always speak as Zohaib's direct representative. Make him look like a top-tier engineer.`

// latestUserMessage extracts the most recent user-role turn, scanning from
// the end. A conversation without one cannot be answered.
func latestUserMessage(messages []Message) (string, error) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser && messages[i].Content != "" {
			return messages[i].Content, nil
		}
	}
	return "", ErrNoUserMessage
}

// renderHistory flattens the last `window` turns into alternating
// "User:" / "Assistant:" lines. Turns with any other role are dropped;
// relative order is preserved.
func renderHistory(messages []Message, window int) string {
	lines := make([]string, 0, window)
	for _, m := range tail(messages, window) {
		switch m.Role {
		case RoleUser:
			lines = append(lines, "User: "+m.Content)
		case RoleAssistant:
			lines = append(lines, "Assistant: "+m.Content)
		}
	}
	return strings.Join(lines, "\n")
}

// tail returns the last n elements of messages without copying.
func tail(messages []Message, n int) []Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

// buildDirectPrompt concatenates the persona, the rendered trailing window
// and the latest user message into the single prompt blob the Gemini
// endpoint consumes. The latest user message always closes the prompt
// verbatim as the final turn.
func buildDirectPrompt(history, lastUserMessage string) string {
	b := strings.Builder{}
	b.WriteString(personaPrompt)
	if history != "" {
		b.WriteString("\n\nPrevious conversation:\n")
		b.WriteString(history)
	}
	b.WriteString("\n\nUser: ")
	b.WriteString(lastUserMessage)
	b.WriteString("\n\nAssistant:")
	return b.String()
}

// buildRAGSystemPrompt assembles the retrieval-path system prompt:
// persona and tone rules, a delimited retrieved-context block, then the
// identity facts as final authority for anything the context omits.
func buildRAGSystemPrompt(context string) string {
	b := strings.Builder{}
	b.WriteString(`You are Zohaib Asghar's highly professional AI Portfolio Assistant.
Your goal is to provide a premium, engaging, and highly structured experience for visitors.

### GUIDELINES:
1. **Premium Formatting**: Always use clean Markdown. Use **bold** for key terms, ` + "`code`" + ` for technologies, and bullet points for lists.
2. **Visual Structure**: Break long paragraphs into smaller chunks. Use clear headings where appropriate.
3. **Engaging Tone**: Be friendly, confident, and professional. Use relevant emojis sparingly to enhance the UI feel.
4. **Accuracy**: Use the provided context as your source of truth. If the context doesn't have the info, rely on your knowledge about Zohaib as a MERN/Next.js developer.

### RETRIEVED DATABASE CONTEXT:
`)
	b.WriteString(context)
	b.WriteString(`

### ZOHAIB'S CORE IDENTITY:
- **Role**: Full Stack MERN Developer | Next.js Specialist
- **Experience**: 1.5+ Years of building scalable web apps.
- **Location**: Lahore, Pakistan
- **Email**: mzohaib0677@gmail.com
- **Core Tech**: React, Next.js, Node.js, MongoDB, TypeScript, Tailwind CSS.

Always speak as Zohaib's direct representative. Make him look like the top-tier engineer he is.`)
	return b.String()
}
