package llm

// ExtractionSystemPrompt is the fixed instruction sent with every message.
const ExtractionSystemPrompt = `You extract financial fields from bank and card SMS notifications.
Respond with ONLY a JSON object, no prose. Use these keys when the message contains them:
"amount", "balance", "card_number", "merchant", "type", "date",
"debit_account", "total_due", "minimum_due", "due_date", "reference_number".
Keep monetary values exactly as written, including currency. Mask card and
account numbers the way the message does. Omit keys that do not apply.`

// ExtractionConversation builds the conversation for one message.
func ExtractionConversation(content string) Conversation {
	return Conversation{
		System: ExtractionSystemPrompt,
		User:   "Message:\n" + content,
	}
}
