package question

const verifyPrompt = `Question: %s
Expected type: %s
Search query used: %s

Search results found:
%s

Task: Verify if these results correctly answer the question.
Respond with JSON:
{
  "is_correct": true/false,
  "reason": "explanation",
  "suggestion": "optional reformulated search query if incorrect"
}

Return ONLY the JSON.`

const reformulatePrompt = `The search query %q for question %q did not find the correct results.

Suggest a better search query. Consider:
- More specific terms
- Alternate naming (e.g., "User" vs "UserModel" vs "UserStruct")
- Related terms
- Type-specific searches

Respond with JSON:
{
  "new_query": "improved search query"
}

Return ONLY the JSON.`

const generatePrompt = `You are analyzing a %s project%s for the following user request:
%q

Generate 3-5 critical questions to ask about the existing codebase to avoid duplicating existing code.

For each question, specify:
- question: The question to ask
- search_query: What to search for in the codebase
- expected_type: What type of code element (component/function/type/constant/schema)
- priority: critical/high/medium

Examples for different languages:
- React/TypeScript: "Is there a Button component?", search: "Button", type: "component"
- Rust: "Is there a User struct?", search: "User struct", type: "type"
- Python: "Is there an auth decorator?", search: "auth decorator", type: "function"
- Go: "Is there a Store interface?", search: "Store", type: "type"

Respond with JSON array:
[
  {
    "question": "...",
    "search_query": "...",
    "expected_type": "...",
    "priority": "critical"
  }
]

Return ONLY the JSON array.`
