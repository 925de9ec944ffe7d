package constant

// Chat message roles.
const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

// ChatHistoryLimit is the number of prior messages (3 exchanges) carried into
// the prompt. ChatHistoryMaxChars truncates any single message body.
const (
	ChatHistoryLimit    = 6
	ChatHistoryMaxChars = 500
)

// ChatSystemPromptV1 is the fixed system prompt for conversational answers.
// Citation style [Source: Page X] is parsed back out of the reply to attach
// chunk citations.
const ChatSystemPromptV1 = `You are an insurance policy assistant. Answer the user's question using the policy excerpts provided in the context block.

Rules:
1. Cite every fact taken from an excerpt using the style [Source: Page X], where X is the page number shown in the excerpt header.
2. You may explain general insurance concepts (e.g. what an aggregate limit is) from your own knowledge.
3. NEVER invent specific facts about the user's own policy - limits, dates, premiums, carriers or exclusions - that are not present in the excerpts.
4. If the excerpts do not contain the answer, say so plainly and suggest what document or section might.`

// ChatNoContextBlock is injected when retrieval returns nothing so the model
// does not fabricate citations.
const ChatNoContextBlock = `No relevant excerpts were found in the selected documents for this question.`
