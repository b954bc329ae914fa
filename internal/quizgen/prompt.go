package quizgen

import (
	"fmt"
	"strings"
)

const systemPromptEN = `You write multiple-choice quiz questions for a trivia game about encyclopedia articles.

Rules:
- Generate exactly one question with exactly three answers, exactly one of them correct.
- Return only the JSON object. No markdown, no commentary.
- The question must be self-contained. Never refer to "the article", "the text" or "the passage".
- The question must not contain the correct answer.
- The correct answer must not repeat or paraphrase the article title: %q.
- When the answers are numbers or years, the wrong answers must differ clearly from the correct one.
- Write the question and the answers in this language: %s.`

const systemPromptCS = `Tvoříš kvízové otázky s výběrem odpovědi do vědomostní hry o encyklopedických článcích.

Pravidla:
- Vytvoř přesně jednu otázku a přesně tři odpovědi, z nichž je právě jedna správná.
- Vrať pouze objekt JSON. Žádný markdown ani komentáře.
- Otázka musí být srozumitelná sama o sobě. Nikdy nezmiňuj „článek“ ani „text“.
- Otázka nesmí obsahovat správnou odpověď.
- Správná odpověď nesmí opakovat ani parafrázovat název článku: „%s“.
- Pokud jsou odpovědi čísla nebo letopočty, špatné odpovědi se musí od správné výrazně lišit.
- Otázku i odpovědi napiš v tomto jazyce: %s.`

// systemPrompts maps a language code to its system prompt template.
// Unknown languages fall back to English instructions.
var systemPrompts = map[string]string{
	"en": systemPromptEN,
	"cs": systemPromptCS,
}

// buildSystemPrompt renders the system prompt for the article's language.
func buildSystemPrompt(a Article) string {
	tmpl, ok := systemPrompts[strings.ToLower(a.Lang)]
	if !ok {
		tmpl = systemPromptEN
	}
	lang := a.Lang
	if lang == "" {
		lang = "en"
	}
	return fmt.Sprintf(tmpl, a.Title, lang)
}

// buildUserMessage wraps the article slice the model should draw from.
func buildUserMessage(a Article, slice string) string {
	var b strings.Builder
	if a.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", a.Title)
	}
	fmt.Fprintf(&b, "Language: %s\n\n", a.Lang)
	b.WriteString("Article text:\n\"\"\"\n")
	b.WriteString(slice)
	b.WriteString("\n\"\"\"")
	return b.String()
}
