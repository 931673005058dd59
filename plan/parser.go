package plan

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrParseFailed is returned by Parse when the LLM response cannot be turned
// into a RawPlan: it is blank, has no recognizable JSON object, or the JSON
// is structurally invalid.
var ErrParseFailed = errors.New("plan: could not parse a plan from the response")

// fencedJSON matches a fenced ```json ... ``` or ``` ... ``` block. Dotall
// so the fence can span multiple lines; the first match wins.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// Parse extracts a RawPlan from raw LLM text output:
//  1. blank input -> ErrParseFailed
//  2. a fenced ```json``` or ``` ``` block containing an object -> use it
//  3. otherwise, if the trimmed body is itself a `{...}` object -> use it verbatim
//  4. otherwise -> ErrParseFailed
//  5. JSON-decode into RawPlan; structural errors -> ErrParseFailed
func Parse(response string) (RawPlan, error) {
	var rp RawPlan

	trimmed := strings.TrimSpace(response)
	if trimmed == "" {
		return rp, ErrParseFailed
	}

	candidate := ""
	if m := fencedJSON.FindStringSubmatch(trimmed); m != nil {
		candidate = m[1]
	} else if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		candidate = trimmed
	} else {
		return rp, ErrParseFailed
	}

	if err := json.Unmarshal([]byte(candidate), &rp); err != nil {
		return rp, ErrParseFailed
	}
	return rp, nil
}
