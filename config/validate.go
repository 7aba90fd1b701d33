package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/jmgilman/go/xfer/errors"
)

// Issue is a single schema violation.
type Issue struct {
	// Path is the field path, e.g. ["mounts", "0", "dir"].
	Path []string

	Message string

	Position token.Pos
}

// String formats the issue as "path: message".
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return strings.Join(i.Path, ".") + ": " + i.Message
}

// Issues returns the schema violations recorded on err, if any.
func Issues(err error) []Issue {
	var te errors.TransferError
	if !errors.As(err, &te) {
		return nil
	}
	issues, _ := te.Context()["issues"].([]Issue)
	return issues
}

// validate unifies data with schema and requires a concrete result. Defaults
// are resolved, so the returned value decodes into a complete Config.
func validate(schema, data cue.Value) (cue.Value, error) {
	if err := schema.Err(); err != nil {
		return cue.Value{}, errors.WrapWithContext(err, errors.CodeInternal, "config schema is invalid",
			map[string]interface{}{"details": cueerrors.Details(err, nil)})
	}
	if err := data.Err(); err != nil {
		return cue.Value{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "config is invalid",
			map[string]interface{}{"issues": extractIssues(err)})
	}

	unified := schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true), cue.Final(), cue.All()); err != nil {
		return cue.Value{}, errors.WrapWithContext(err, errors.CodeInvalidConfig, "config validation failed",
			map[string]interface{}{
				"details": cueerrors.Details(err, nil),
				"issues":  extractIssues(err),
			})
	}
	return unified, nil
}

func extractIssues(err error) []Issue {
	var issues []Issue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()

		var pos token.Pos
		if positions := e.InputPositions(); len(positions) > 0 {
			pos = positions[0]
		}

		issues = append(issues, Issue{
			Path:     e.Path(),
			Message:  fmt.Sprintf(format, args...),
			Position: pos,
		})
	}
	return issues
}
