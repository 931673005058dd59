package prompt

import (
	"fmt"
	"strings"

	"github.com/michaelfranz/springai-actions-go/action"
)

// renderPlanningDirective builds the authoritative instruction block that
// enumerates the four step shapes, the catalog of valid action ids, the
// rules on parameter-name fidelity, and the terminal stop marker. It is
// built fresh from the currently registered actions every turn, never
// memoized.
func renderPlanningDirective(actions []action.Descriptor) string {
	var b strings.Builder

	b.WriteString("Respond with a single JSON object of the form:\n")
	b.WriteString(`{"message":"<narration>","steps":[ <step>, ... ]}` + "\n\n")
	b.WriteString("Each step must use exactly one of these shapes:\n")
	b.WriteString(`- ACTION:     {"actionId":"<id>","description":"<why>","parameters":{...}}` + "\n")
	b.WriteString(`- PENDING:    {"actionId":"<id>","status":"pending","pendingParams":[{"name":"<p>","prompt":"<ask>"}],"providedParams":{...}}` + "\n")
	b.WriteString(`- NO-ACTION:  {"noAction":true,"reason":"<msg>"}` + "\n")
	b.WriteString(`- ERROR:      {"error":true,"reason":"<msg>"}` + "\n\n")

	if len(actions) == 0 {
		b.WriteString("No actions are currently registered; every response must use NO-ACTION or ERROR.\n\n")
	} else {
		b.WriteString("Valid action ids and their parameters:\n")
		for _, d := range actions {
			fmt.Fprintf(&b, "- %s: %s\n", d.ID, d.Description)
			for _, p := range d.Parameters {
				fmt.Fprintf(&b, "    - %s (%s%s)%s\n", p.Name, p.TypeID, requiredSuffix(p.Required), constraintSuffix(p))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Rules:\n")
	b.WriteString("- Use parameter names exactly as listed above; never rename, abbreviate, or translate them.\n")
	b.WriteString("- Never invent an actionId that is not in the list above.\n")
	b.WriteString("- Never guess a value for a required parameter you were not given or cannot infer; use PENDING instead.\n")
	b.WriteString("- Emit nothing before the opening brace or after the closing brace.\n")
	b.WriteString("STOP after the closing brace.\n")

	return b.String()
}

func requiredSuffix(required bool) string {
	if required {
		return ", required"
	}
	return ", optional"
}

func constraintSuffix(p action.ParameterDescriptor) string {
	switch {
	case len(p.AllowedValues) > 0:
		return " one of " + strings.Join(p.AllowedValues, "/")
	case p.AllowedRegex != "":
		return " matching /" + p.AllowedRegex + "/"
	default:
		return ""
	}
}
