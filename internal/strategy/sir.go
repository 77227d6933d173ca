package strategy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/automenta/mcr/internal/types"
)

// SIR (structured intermediate representation) records arrive as parsed JSON
// from the LLM. Each record becomes one or more period-terminated clause
// strings. Shape violations fail with INVALID_SIR_STRUCTURE.

// sirToClauses converts a parsed JSON value (must be an array of records)
// into clause strings.
func sirToClauses(value interface{}) ([]string, error) {
	records, ok := value.([]interface{})
	if !ok {
		return nil, types.NewError(types.ErrInvalidSIRStructure,
			"SIR output must be an array of records, got %T", value)
	}

	var clauses []string
	for i, raw := range records {
		rec, ok := raw.(map[string]interface{})
		if !ok {
			return nil, types.NewError(types.ErrInvalidSIRStructure,
				"SIR record %d is not an object", i)
		}
		recClauses, err := recordToClauses(rec)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, recClauses...)
	}
	return clauses, nil
}

func recordToClauses(rec map[string]interface{}) ([]string, error) {
	recType, err := sirString(rec, "type")
	if err != nil {
		return nil, err
	}

	switch recType {
	case "membership", "relation", "attribute", "definition":
		atom, err := recordToAtom(rec)
		if err != nil {
			return nil, err
		}
		return []string{atom + "."}, nil

	case "composition":
		entity, err := sirSymbol(rec, "entity")
		if err != nil {
			return nil, err
		}
		rawComponents, ok := rec["components"].([]interface{})
		if !ok || len(rawComponents) == 0 {
			return nil, types.NewError(types.ErrInvalidSIRStructure,
				"composition record needs a non-empty components array")
		}
		clauses := make([]string, 0, len(rawComponents))
		for _, raw := range rawComponents {
			component, err := normalizeSymbol(raw)
			if err != nil {
				return nil, types.NewError(types.ErrInvalidSIRStructure,
					"composition component: %v", err)
			}
			clauses = append(clauses, fmt.Sprintf("consists_of(%s, %s).", entity, component))
		}
		return clauses, nil

	case "rule":
		headRec, ok := rec["head"].(map[string]interface{})
		if !ok {
			return nil, types.NewError(types.ErrInvalidSIRStructure, "rule record needs a head object")
		}
		bodyRecs, ok := rec["body"].([]interface{})
		if !ok || len(bodyRecs) == 0 {
			return nil, types.NewError(types.ErrInvalidSIRStructure, "rule record needs a non-empty body array")
		}

		head, err := recordToAtom(headRec)
		if err != nil {
			return nil, err
		}
		body := make([]string, len(bodyRecs))
		for i, raw := range bodyRecs {
			bodyRec, ok := raw.(map[string]interface{})
			if !ok {
				return nil, types.NewError(types.ErrInvalidSIRStructure, "rule body element %d is not an object", i)
			}
			atom, err := recordToAtom(bodyRec)
			if err != nil {
				return nil, err
			}
			body[i] = atom
		}
		return []string{fmt.Sprintf("%s :- %s.", head, strings.Join(body, ", "))}, nil

	default:
		return nil, types.NewError(types.ErrInvalidSIRStructure, "unknown SIR record type %q", recType)
	}
}

// recordToAtom renders the single-atom record types. Rule heads and bodies
// reuse this, so compositions and nested rules cannot appear there.
func recordToAtom(rec map[string]interface{}) (string, error) {
	recType, err := sirString(rec, "type")
	if err != nil {
		return "", err
	}

	switch recType {
	case "membership":
		instance, err := sirSymbol(rec, "instance")
		if err != nil {
			return "", err
		}
		class, err := sirSymbol(rec, "class")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", class, instance), nil

	case "relation":
		predicate, err := sirSymbol(rec, "predicate")
		if err != nil {
			return "", err
		}
		subject, err := sirSymbol(rec, "subject")
		if err != nil {
			return "", err
		}
		object, err := sirSymbol(rec, "object")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s, %s)", predicate, subject, object), nil

	case "attribute":
		predicate, err := sirSymbol(rec, "predicate")
		if err != nil {
			return "", err
		}
		entity, err := sirSymbol(rec, "entity")
		if err != nil {
			return "", err
		}
		value, err := sirSymbol(rec, "value")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s, %s)", predicate, entity, value), nil

	case "definition":
		common, err := sirSymbol(rec, "common")
		if err != nil {
			return "", err
		}
		symbol, err := sirSymbol(rec, "symbol")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("defined_as(%s, %s)", common, symbol), nil

	default:
		return "", types.NewError(types.ErrInvalidSIRStructure,
			"record type %q cannot appear as an atom", recType)
	}
}

func sirString(rec map[string]interface{}, field string) (string, error) {
	v, ok := rec[field]
	if !ok {
		return "", types.NewError(types.ErrInvalidSIRStructure, "SIR record missing field %q", field)
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", types.NewError(types.ErrInvalidSIRStructure, "SIR field %q must be a non-empty string", field)
	}
	return s, nil
}

func sirSymbol(rec map[string]interface{}, field string) (string, error) {
	v, ok := rec[field]
	if !ok {
		return "", types.NewError(types.ErrInvalidSIRStructure, "SIR record missing field %q", field)
	}
	sym, err := normalizeSymbol(v)
	if err != nil {
		return "", types.NewError(types.ErrInvalidSIRStructure, "SIR field %q: %v", field, err)
	}
	return sym, nil
}

var variableRe = regexp.MustCompile(`^(_[A-Za-z0-9_]*|[A-Z][A-Z0-9_]*)$`)
var invalidSymbolChars = regexp.MustCompile(`[^a-z0-9_]+`)

// normalizeSymbol maps a JSON value to clause surface form. Numbers stay
// numeric, variables (ALL_CAPS or leading underscore) pass through, and
// everything else is lowered to snake_case.
func normalizeSymbol(v interface{}) (string, error) {
	switch t := v.(type) {
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10), nil
		}
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", fmt.Errorf("empty symbol")
		}
		if variableRe.MatchString(s) {
			return s, nil
		}
		s = strings.ToLower(s)
		s = invalidSymbolChars.ReplaceAllString(s, "_")
		s = strings.Trim(s, "_")
		if s == "" {
			return "", fmt.Errorf("symbol %q has no usable characters", t)
		}
		return s, nil
	default:
		return "", fmt.Errorf("symbol must be a string or number, got %T", v)
	}
}
