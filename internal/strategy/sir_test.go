package strategy

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automenta/mcr/internal/types"
)

func sirFromJSON(t *testing.T, text string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &v))
	return v
}

func TestSIRMembership(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t,
		`[{"type":"membership","instance":"socrates","class":"man"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"man(socrates)."}, clauses)
}

func TestSIRRelation(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t,
		`[{"type":"relation","predicate":"likes","subject":"mary","object":"cheese"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"likes(mary, cheese)."}, clauses)
}

func TestSIRAttribute(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t,
		`[{"type":"attribute","predicate":"is_color","entity":"sky","value":"blue"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"is_color(sky, blue)."}, clauses)
}

func TestSIRComposition(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t,
		`[{"type":"composition","entity":"water","components":["hydrogen","oxygen"]}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"consists_of(water, hydrogen).",
		"consists_of(water, oxygen).",
	}, clauses)
}

func TestSIRDefinition(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t,
		`[{"type":"definition","common":"water","symbol":"h2o"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"defined_as(water, h2o)."}, clauses)
}

func TestSIRRule(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t, `[{
		"type":"rule",
		"head":{"type":"membership","instance":"X","class":"mortal"},
		"body":[{"type":"membership","instance":"X","class":"man"}]
	}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"mortal(X) :- man(X)."}, clauses)
}

func TestSIRRuleMultiAtomBody(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t, `[{
		"type":"rule",
		"head":{"type":"relation","predicate":"grandparent","subject":"X","object":"Z"},
		"body":[
			{"type":"relation","predicate":"parent","subject":"X","object":"Y"},
			{"type":"relation","predicate":"parent","subject":"Y","object":"Z"}
		]
	}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"grandparent(X, Z) :- parent(X, Y), parent(Y, Z)."}, clauses)
}

func TestSIRNormalizesSymbols(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t,
		`[{"type":"membership","instance":"Socrates","class":"Greek Philosopher"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"greek_philosopher(socrates)."}, clauses)
}

func TestSIRKeepsVariablesAndNumbers(t *testing.T) {
	clauses, err := sirToClauses(sirFromJSON(t,
		`[{"type":"attribute","predicate":"age","entity":"alice","value":30}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"age(alice, 30)."}, clauses)

	clauses, err = sirToClauses(sirFromJSON(t,
		`[{"type":"attribute","predicate":"age","entity":"_Anon","value":"AGE"}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"age(_Anon, AGE)."}, clauses)
}

func TestSIRShapeViolations(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"not an array", `{"type":"membership"}`},
		{"record not object", `["man(socrates)."]`},
		{"missing type", `[{"instance":"socrates","class":"man"}]`},
		{"unknown type", `[{"type":"negation","instance":"socrates"}]`},
		{"membership missing class", `[{"type":"membership","instance":"socrates"}]`},
		{"relation non-string subject", `[{"type":"relation","predicate":"p","subject":{},"object":"o"}]`},
		{"composition empty components", `[{"type":"composition","entity":"water","components":[]}]`},
		{"rule missing head", `[{"type":"rule","body":[{"type":"membership","instance":"X","class":"man"}]}]`},
		{"rule empty body", `[{"type":"rule","head":{"type":"membership","instance":"X","class":"mortal"},"body":[]}]`},
		{"rule nested in body", `[{"type":"rule","head":{"type":"membership","instance":"X","class":"a"},"body":[{"type":"rule"}]}]`},
		{"composition in rule head", `[{"type":"rule","head":{"type":"composition","entity":"e","components":["c"]},"body":[{"type":"membership","instance":"X","class":"a"}]}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sirToClauses(sirFromJSON(t, tc.json))
			require.Error(t, err)
			assert.Equal(t, types.ErrInvalidSIRStructure, types.AsMCRError(err).Code)
		})
	}
}

func TestNormalizeSymbol(t *testing.T) {
	for input, want := range map[string]string{
		"sky":          "sky",
		"Sky":          "sky",
		"Greek Hero":   "greek_hero",
		"X":            "X",
		"ALL_CAPS":     "ALL_CAPS",
		"_":            "_",
		"_Tail":        "_Tail",
		"with-hyphen":  "with_hyphen",
		"  padded  ":   "padded",
		"weird!chars?": "weird_chars",
	} {
		got, err := normalizeSymbol(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := normalizeSymbol("")
	assert.Error(t, err)
	_, err = normalizeSymbol("!!!")
	assert.Error(t, err)
}
