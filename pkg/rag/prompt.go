package rag

import "fmt"

// SummaryProbeQuery is the broad query used to pull representative chunks
// when summarizing a collection.
const SummaryProbeQuery = "main topics key findings important information overview"

// summaryLengthInstructions maps a requested summary length to its prompt instruction.
var summaryLengthInstructions = map[string]string{
	"short":  "Provide a concise 2-3 paragraph summary highlighting the most important points.",
	"medium": "Provide a comprehensive 4-5 paragraph summary covering key topics and findings.",
	"long":   "Provide a detailed summary with multiple sections covering all major topics and supporting details.",
}

// BuildAnswerPrompt produces the citation-aware prompt for answering a
// question over the assembled context. The prompt instructs the model to tag
// every factual claim with a bracketed reference drawn only from the context.
func BuildAnswerPrompt(query, context string) string {
	return fmt.Sprintf(`You are an AI assistant that answers questions based on provided source material. You must follow these citation rules:

CITATION REQUIREMENTS:
1. For each factual claim in your answer, include the citation reference number in square brackets [1], [2], etc.
2. Only use information from the provided context - do not add external knowledge
3. If you cannot find relevant information in the context, say so clearly
4. Be precise and accurate in your citations
5. When multiple sources support the same point, list all relevant citations like this [1], [2], [3].

CONTEXT (with citation references):
%s

QUESTION: %s

Please provide a comprehensive answer with proper citations. Make sure every factual statement is supported by a citation reference.`, context, query)
}

// BuildSummaryPrompt produces the prompt for summarizing the assembled
// context. Length is one of "short", "medium", or "long"; anything else
// falls back to "medium".
func BuildSummaryPrompt(context, length string) string {
	instruction, ok := summaryLengthInstructions[length]
	if !ok {
		instruction = summaryLengthInstructions["medium"]
	}

	return fmt.Sprintf(`You are tasked with creating a summary of the provided document content. Follow these guidelines:

1. %s
2. Include citations [1], [2], etc. for all factual claims
3. Organize information logically with clear topics
4. Focus on the most important and relevant information
5. Maintain accuracy and cite sources properly

DOCUMENT CONTENT (with citation references):
%s

Please provide a well-structured summary with proper citations:`, instruction, context)
}
