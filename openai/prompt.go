package openai

import "fmt"

// buildMenuPrompt instructs the vision model to extract menu entries as
// strict JSON. The schema mirrors models.MenuTranslation so the happy path
// unmarshals directly.
func buildMenuPrompt(targetCurrency string) string {
	return fmt.Sprintf(`You are a menu extraction and translation engine.

Look at the attached photo of a restaurant menu and extract every dish.
Output MUST be a single valid JSON object and nothing else — no markdown,
no explanations, no comments.

Required JSON schema:
{
  "source_language": "language the menu is written in, e.g. Spanish",
  "country": "country the cuisine most likely belongs to, or empty string",
  "original_currency": "ISO 4217 code of prices on the menu, e.g. EUR, or empty string",
  "dishes": [
    {
      "original_name": "dish name exactly as printed on the menu",
      "english_name": "English translation of the dish name",
      "description": "1-3 sentence description of the dish in English",
      "pronunciation": "simple phonetic pronunciation for an English speaker",
      "price": "price exactly as printed, e.g. €18.50, or empty string"
    }
  ]
}

Rules:
- Include every dish you can read, in menu order.
- Keep prices exactly as printed, including the currency symbol.
- If no dishes are visible, return {"dishes": [], "source_language": "", "country": "", "original_currency": ""}.
- The diner wants prices in %s; do not convert them yourself, just report the printed ones.`, targetCurrency)
}
