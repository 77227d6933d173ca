package strategy

// Binding sets shared by the built-in pipelines. Placeholder names equal the
// context names populated by the Coordinator, so the bindings are identity
// maps; custom strategies may rebind freely.
func assertBindings() map[string]string {
	return map[string]string{
		"naturalLanguageText": "naturalLanguageText",
		"existingFacts":       "existingFacts",
		"ontologyRules":       "ontologyRules",
		"lexiconSummary":      "lexiconSummary",
	}
}

func queryBindings() map[string]string {
	return map[string]string{
		"naturalLanguageQuestion": "naturalLanguageQuestion",
		"existingFacts":           "existingFacts",
		"ontologyRules":           "ontologyRules",
		"lexiconSummary":          "lexiconSummary",
	}
}

func builtinStrategies() []*Strategy {
	return []*Strategy{
		{
			ID:        "Direct-S1-Assert",
			Name:      "Direct single-shot assertion",
			Operation: OpAssert,
			Nodes: []Node{
				{Kind: KindLLMCall, PromptName: "NL_TO_CLAUSES_DIRECT", InputBindings: assertBindings(), OutputName: "rawResponse"},
				{Kind: KindParseJSON, Input: "rawResponse", OutputName: "clauses", SchemaTag: "clause_array"},
				{Kind: KindValidateClauses, Input: "clauses"},
				{Kind: KindReturn, Input: "clauses"},
			},
		},
		{
			ID:        "Direct-S1-Query",
			Name:      "Direct single-shot query",
			Operation: OpQuery,
			Nodes: []Node{
				{Kind: KindLLMCall, PromptName: "NL_TO_QUERY_DIRECT", InputBindings: queryBindings(), OutputName: "queryText"},
				{Kind: KindReturn, Input: "queryText"},
			},
		},
		{
			ID:        "SIR-R1-Assert",
			Name:      "SIR-mediated assertion",
			Operation: OpAssert,
			Nodes: []Node{
				{Kind: KindLLMCall, PromptName: "NL_TO_SIR_ASSERT", InputBindings: assertBindings(), OutputName: "sirJson"},
				{Kind: KindParseJSON, Input: "sirJson", OutputName: "sirRecords", SchemaTag: "sir_array"},
				{Kind: KindSIRTransform, Input: "sirRecords", OutputName: "clauses"},
				{Kind: KindValidateClauses, Input: "clauses"},
				{Kind: KindReturn, Input: "clauses"},
			},
		},
		{
			ID:        "SIR-R1-Query",
			Name:      "SIR-mediated query",
			Operation: OpQuery,
			Nodes: []Node{
				{Kind: KindLLMCall, PromptName: "NL_TO_QUERY_DIRECT", InputBindings: queryBindings(), OutputName: "queryText"},
				{Kind: KindReturn, Input: "queryText"},
			},
		},
		{
			ID:        "SIR-R2-FewShot-Assert",
			Name:      "SIR-mediated assertion with few-shot examples",
			Operation: OpAssert,
			Nodes: []Node{
				{Kind: KindLLMCall, PromptName: "NL_TO_SIR_ASSERT_FEWSHOT", InputBindings: assertBindings(), OutputName: "sirJson"},
				{Kind: KindParseJSON, Input: "sirJson", OutputName: "sirRecords", SchemaTag: "sir_array"},
				{Kind: KindSIRTransform, Input: "sirRecords", OutputName: "clauses"},
				{Kind: KindValidateClauses, Input: "clauses"},
				{Kind: KindReturn, Input: "clauses"},
			},
		},
		{
			ID:        "SIR-R2-FewShot-Query",
			Name:      "Few-shot query translation",
			Operation: OpQuery,
			Nodes: []Node{
				{Kind: KindLLMCall, PromptName: "NL_TO_QUERY_FEWSHOT", InputBindings: queryBindings(), OutputName: "queryText"},
				{Kind: KindReturn, Input: "queryText"},
			},
		},
	}
}
