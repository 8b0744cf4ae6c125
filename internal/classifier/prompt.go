package classifier

import "fmt"

const systemPrompt = `You are a knowledgeable historian analyzing inventions, products, and services.
When given an item, determine who created or invented it (man or woman), provide the creator's name,
a category for the item, and a brief explanation.

Respond in this EXACT JSON format:
{
    "result": "man" or "woman" or "natural",
    "creator_name": "Full name of the creator",
    "category": "Category (e.g., Technology, Medicine, Literature, Science, etc.)",
    "explanation": "Brief 1-2 sentence explanation"
}

IMPORTANT:
- If the item is a natural phenomenon, natural resource, or something found in nature (not invented or created by humans), use "natural" for result.
- If multiple people were involved, name the primary inventor or creator.
- If the gender cannot be determined or it is a collective work, use "unknown" for result.`

func userMessage(text string) string {
	return fmt.Sprintf("Who invented/created: %s?", text)
}
