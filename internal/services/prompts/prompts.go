// Package prompts holds the prompt templates used by the extraction and
// question-answering pipelines. Templates are plain string assembly; none
// of them depend on which provider eventually serves the request.
package prompts

import (
	"fmt"
	"strings"

	"github.com/ternarybob/colligo/internal/services/index"
)

// ExtractionBase instructs the model to pull financial details out of a
// report excerpt and return them as a single JSON object.
const ExtractionBase = `You are a financial analyst AI. From the given company report text, extract and summarize available financial details.
Include core metrics (revenue, profit, EPS, margins, cash flow, debt, assets/liabilities), growth trends, segment performance,
major strategic moves, and risks/red flags. If some details are missing, note them as "Not mentioned."
Return the result as "JSON" and no other string just {
    <key1> : <value1>
    <key2> : <value2>
    ...
}
Include things like Financial Highlights, Growth & Trends, Risks & Red Flags, Strategic Notes, Analyst Observations.`

// SmallExpertSystem instructs the small model to emit strict JSON in the
// router schema.
const SmallExpertSystem = `You are a small expert model trained on a private financial corpus.
You must output STRICT JSON ONLY with this schema:
{
  "mode": "answer" | "facts",
  "answer": string,
  "facts": string[]
}

Rules:
- If the query can be answered concisely and factually with high confidence, use mode="answer" and fill "answer".
- Otherwise use mode="facts" and return a short list of factual, verifiable statements (5-10 bullets max).
- Avoid speculation. Be concise and concrete. No markdown or prose outside JSON.`

// BaseModelSystem instructs the large model to finish an answer from the
// small model's output.
const BaseModelSystem = `You are a careful, factual assistant.
You will receive:
1) the user query, and
2) either a direct answer proposed by a small expert model OR a short list of factual statements.
Combine them to produce a final answer that is concise and correct.
- If the small model provided facts: synthesize them into a clear answer; do not invent details.
- If the small model provided a direct answer: verify it using the facts or your general knowledge. If uncertain, hedge briefly.
- Prefer brevity and clarity. Include dates, numbers, and named entities when known.
- If information is missing, say what is missing and suggest a follow-up query.`

// NoContextAnswer is stored as the answer when retrieval returns nothing.
const NoContextAnswer = "I could not find relevant information in the documents."

// Extraction composes the extraction prompt for one report chunk. Part
// numbering starts at 1 so split chunks stay traceable in the job log.
func Extraction(chunk string, part int) string {
	return fmt.Sprintf("%s\n\nCompany Report Excerpt (Part %d):\n%s", ExtractionBase, part, chunk)
}

// Answer composes the retrieval-grounded answer prompt. Each source block
// carries the group key and excerpt id so the model can cite them.
func Answer(question string, matches []index.Match) string {
	blocks := make([]string, 0, len(matches))
	for _, match := range matches {
		blocks = append(blocks, fmt.Sprintf("Source (%s id=%s):\n%s",
			match.Excerpt.GroupKey, match.Excerpt.ID, match.Excerpt.Text))
	}
	context := strings.Join(blocks, "\n\n---\n\n")

	var b strings.Builder
	b.WriteString("You are an expert assistant specialized in financial reports.\n")
	b.WriteString("Use ONLY the provided context passages to answer the question. If the answer is not present, say you cannot find it.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(context)
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer (concise, reference sources by id if useful):")
	return b.String()
}

// SmallExpert composes the user turn for the small routing model.
func SmallExpert(query, context string) string {
	return fmt.Sprintf("Query:\n%s\n\nRelevant snippets:\n%s\n\nReturn ONLY the JSON object.", query, context)
}

// BaseModel composes the user turn for the large model, quoting the small
// model's JSON verbatim.
func BaseModel(query, smallJSON string) string {
	return fmt.Sprintf("User query:\n%s\n\nSmall-model output (verbatim):\n%s\n\nWrite your final answer for the user in plain text (no JSON).", query, smallJSON)
}
