package prompts

import (
	"fmt"
	"strings"

	"github.com/yungbote/coco-backend/internal/domain"
	"github.com/yungbote/coco-backend/internal/extraction"
)

// MaxNotesChars bounds the summary excerpt sent to the flashcard and quiz
// stages to stay under request-size limits.
const MaxNotesChars = 10000

const (
	MinFlashcards     = 8
	MaxFlashcards     = 12
	QuizQuestionCount = 5
)

const summaryInstruction = `
You are an expert academic editor and professional curriculum writer. Given any input (text, lecture transcript, audio, slides or documents), produce an authoritative, concise, and highly-organized study guide in strict Markdown format.

REQUIREMENTS (MUST FOLLOW EXACTLY):

1) Top-level title (H1): descriptive and professional (no emojis here).

2) One-sentence TL;DR (single line, <= 20 words).

3) Executive summary (1 short paragraph, 2-4 sentences) that explains what the content covers and why it matters.

4) Learning objectives (bullet list of 3-5 measurable objectives; each starts with a verb such as "Explain", "Identify", "Apply").

5) Structured outline (H2): short table-of-contents style bullets for the sections you will cover.

6) Detailed notes (H2) with clear H3 subsections. For each major section:
   - H3 subsection title
   - Short explanatory paragraph (1-3 sentences)
   - Key points (1-6 bullets) with bolded terms and short supporting sentences
   - If applicable, an example, a formula (in a fenced code block), or a short step-by-step process.

7) Glossary (H2): 6-10 key terms, each formatted as **Term**: short concise definition (one line).

8) Study plan (H2): 2-3 short sessions with time estimates and focus areas.

9) Practice questions (H2): 5 questions total (3 conceptual, 1 applied, 1 challenge), followed by an **Answers** section with succinct answers.

10) Key takeaways (H2): 3-6 short, memorable lines.

FORMAT RULES (MANDATORY):
- Output only the study guide in valid Markdown. No extra commentary, no code fences except for formulas.
- Use a consistent heading hierarchy and spacing. Keep the tone professional and clear.
- Keep the executive summary and TL;DR short and sharp. Use bullet points for lists.
- Keep examples short and directly relevant.
- Do not exceed roughly 1200 words in total.
`

// Summary builds the study-guide request for pasted text or extracted content.
func Summary(content extraction.Content) Request {
	parts := make([]Part, 0, 2)
	if content.IsBinary() {
		parts = append(parts, BlobPart(content.Data, content.MimeType))
	} else {
		parts = append(parts, TextPart(content.Text))
	}
	parts = append(parts, TextPart(strings.TrimSpace(summaryInstruction)))
	return Request{Stage: StageSummary, Parts: parts}
}

func Flashcards(summary string) Request {
	prompt := fmt.Sprintf(`Based on the following notes, create %d-%d high-quality flashcards for studying.
Return a JSON array where each object has "front" and "back" properties.
Keep the front concise (question or term) and the back informative (answer or definition).

Notes:
%s`, MinFlashcards, MaxFlashcards, Truncate(summary, MaxNotesChars))
	return Request{
		Stage:            StageFlashcards,
		Parts:            []Part{TextPart(prompt)},
		Schema:           FlashcardSchema(),
		ResponseMIMEType: "application/json",
	}
}

func Quiz(summary string) Request {
	prompt := fmt.Sprintf(`Based on the following notes, create a multiple-choice quiz with exactly %d challenging questions.
Each question needs at least two options, the zero-based index of the correct option and a short explanation.
Return a JSON array.

Notes:
%s`, QuizQuestionCount, Truncate(summary, MaxNotesChars))
	return Request{
		Stage:            StageQuiz,
		Parts:            []Part{TextPart(prompt)},
		Schema:           QuizSchema(),
		ResponseMIMEType: "application/json",
	}
}

const tutorInstruction = `You are a dedicated and focused AI study assistant.
Your sole purpose is to help the student master the material in the provided notes.

STRICT GUIDELINES:
1. ONLY answer questions related to the provided study notes, academic concepts, or learning strategies.
2. If the user asks about unrelated topics (pop culture, sports, general life advice, jokes unrelated to the content), POLITELY REFUSE. Say something like: "I am focused on helping you study. Let's get back to the notes."
3. Be concise, encouraging, and clear.
4. Use formatting (bold, bullet points) to make explanations easy to read.

STUDY NOTES CONTEXT:
`

// Chat builds one tutor turn. history is the transcript before message.
func Chat(summary string, history []domain.ChatMessage, message string) Request {
	return Request{
		Stage:             StageChat,
		Parts:             []Part{TextPart(message)},
		History:           append([]domain.ChatMessage(nil), history...),
		SystemInstruction: tutorInstruction + summary,
	}
}

// StudyImage asks the image model for one illustration of topic.
func StudyImage(topic string) Request {
	prompt := fmt.Sprintf(`Create a clean, aesthetic, educational illustration that clearly explains the concept of: %s

STYLE: minimalist vector-art look, soft pastel palette (blue, white, grey), flat-design shapes with smooth edges, balanced composition, modern academic aesthetic. Landscape 16:9 framing.

CONTENT: present the core idea of %s visually and accurately using simple shapes, icons, labels or annotation callouts. Keep text minimal and readable, avoid clutter, keep strong contrast and clear visual hierarchy.

OUTPUT: one single illustration, vector-style clarity, no unrelated objects or extra artistic effects.`, topic, topic)
	return Request{Stage: StageStudyImage, Parts: []Part{TextPart(prompt)}, WantImage: true}
}

// Truncate clips s to at most n characters (runes).
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
