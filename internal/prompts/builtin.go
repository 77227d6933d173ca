package prompts

// builtinTemplates returns the static prompt catalog. Wording is treated as
// opaque by the rest of the system; only the names and declared variables
// are contractual.
func builtinTemplates() []Template {
	return []Template{
		{
			Name: "NL_TO_SIR_ASSERT",
			System: `You translate natural language statements into a Structured Intermediate Representation (SIR).
Output ONLY a JSON array of SIR records. Each record has a "type" field:
- membership: {"type":"membership","instance":"...","class":"..."}
- relation: {"type":"relation","predicate":"...","subject":"...","object":"..."}
- attribute: {"type":"attribute","predicate":"...","entity":"...","value":"..."}
- composition: {"type":"composition","entity":"...","components":["..."]}
- definition: {"type":"definition","common":"...","symbol":"..."}
- rule: {"type":"rule","head":{...},"body":[{...}]}
Predicates and constants are lowercase snake_case. Variables are ALL_CAPS.
Known predicates in this session:
{{lexiconSummary}}`,
			User: `Existing facts:
{{existingFacts}}

Ontology rules:
{{ontologyRules}}

Translate into SIR records: "{{naturalLanguageText}}"`,
			Variables: []string{"naturalLanguageText", "existingFacts", "ontologyRules", "lexiconSummary"},
		},
		{
			Name: "NL_TO_SIR_ASSERT_FEWSHOT",
			System: `You translate natural language statements into a Structured Intermediate Representation (SIR).
Output ONLY a JSON array of SIR records with a "type" field per record.
Predicates and constants are lowercase snake_case. Variables are ALL_CAPS.

Examples:
"The sky is blue." -> [{"type":"attribute","predicate":"is_color","entity":"sky","value":"blue"}]
"Socrates is a man." -> [{"type":"membership","instance":"socrates","class":"man"}]
"All men are mortal." -> [{"type":"rule","head":{"type":"membership","instance":"X","class":"mortal"},"body":[{"type":"membership","instance":"X","class":"man"}]}]
"Water consists of hydrogen and oxygen." -> [{"type":"composition","entity":"water","components":["hydrogen","oxygen"]}]

Known predicates in this session:
{{lexiconSummary}}`,
			User: `Existing facts:
{{existingFacts}}

Ontology rules:
{{ontologyRules}}

Translate into SIR records: "{{naturalLanguageText}}"`,
			Variables: []string{"naturalLanguageText", "existingFacts", "ontologyRules", "lexiconSummary"},
		},
		{
			Name: "NL_TO_CLAUSES_DIRECT",
			System: `You translate natural language statements directly into logic clauses.
Output ONLY a JSON array of clause strings, each terminated with a period.
Predicates and constants are lowercase snake_case. Variables are ALL_CAPS.
Known predicates in this session:
{{lexiconSummary}}`,
			User: `Existing facts:
{{existingFacts}}

Ontology rules:
{{ontologyRules}}

Translate into clauses: "{{naturalLanguageText}}"`,
			Variables: []string{"naturalLanguageText", "existingFacts", "ontologyRules", "lexiconSummary"},
		},
		{
			Name: "NL_TO_QUERY_DIRECT",
			System: `You translate a natural language question into a single logic query.
Output ONLY the query, terminated with a period. No explanation, no code fences.
Use variables (ALL_CAPS) for the unknowns the question asks about.
Known predicates in this session:
{{lexiconSummary}}`,
			User: `Existing facts:
{{existingFacts}}

Ontology rules:
{{ontologyRules}}

Question: "{{naturalLanguageQuestion}}"`,
			Variables: []string{"naturalLanguageQuestion", "existingFacts", "ontologyRules", "lexiconSummary"},
		},
		{
			Name: "NL_TO_QUERY_FEWSHOT",
			System: `You translate a natural language question into a single logic query.
Output ONLY the query, terminated with a period. No explanation, no code fences.

Examples:
"What color is the sky?" -> is_color(sky, X).
"Is Socrates mortal?" -> mortal(socrates).
"Who likes cheese?" -> likes(X, cheese).

Known predicates in this session:
{{lexiconSummary}}`,
			User: `Existing facts:
{{existingFacts}}

Ontology rules:
{{ontologyRules}}

Question: "{{naturalLanguageQuestion}}"`,
			Variables: []string{"naturalLanguageQuestion", "existingFacts", "ontologyRules", "lexiconSummary"},
		},
		{
			Name: "LOGIC_TO_NL_ANSWER",
			System: `You turn logic query solutions into a natural language answer.
Answer the user's question from the solutions JSON only. If the solutions are
empty or "false", say the knowledge base cannot answer. Answer style: {{style}}.`,
			User: `Question: "{{question}}"

Solutions:
{{solutionsJson}}`,
			Variables: []string{"question", "solutionsJson", "style"},
		},
		{
			Name: "EXPLAIN_PROLOG_QUERY",
			System: `You explain what a logic query asks for, in plain language.
Describe which predicates it consults and what the variables stand for.
Do not execute the query or invent results.`,
			User: `Question: "{{question}}"

Query:
{{prologQuery}}

Knowledge base predicates:
{{lexiconSummary}}`,
			Variables: []string{"question", "prologQuery", "lexiconSummary"},
		},
		{
			Name: "NL_TO_RULES",
			System: `You translate natural language into logic clauses (facts and rules).
Output ONLY a JSON array of clause strings, each terminated with a period.
Predicates and constants are lowercase snake_case. Variables are ALL_CAPS.`,
			User:      `Translate: "{{naturalLanguageText}}"`,
			Variables: []string{"naturalLanguageText"},
		},
		{
			Name: "RULES_TO_NL",
			System: `You explain logic clauses in natural language.
Produce a concise explanation a non-logician can follow. Style: {{style}}.`,
			User: `Clauses:
{{clauses}}`,
			Variables: []string{"clauses", "style"},
		},
	}
}
