package main

import (
	"fmt"
	"strings"
)

// allowedTools is the fixed read-only operation set. Anything else is
// rejected before reaching the driver.
var allowedTools = map[string]bool{
	"find":            true,
	"aggregate":       true,
	"count":           true,
	"serverInfo":      true,
	"listCollections": true,
}

// writeStages are aggregation stages that persist results.
var writeStages = []string{"$out", "$merge"}

// jsOperators run server-side JavaScript and are blocked in filters and
// pipelines.
var jsOperators = []string{"$where", "$function", "$accumulator"}

func validateToolName(name string) error {
	if !allowedTools[name] {
		return fmt.Errorf("operation %q is not in the read-only allow-list", name)
	}
	return nil
}

func validateCollectionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty collection name")
	}
	if strings.ContainsAny(name, "$\x00") {
		return fmt.Errorf("invalid collection name %q", name)
	}
	return nil
}

// validateFilter rejects filters that invoke server-side JavaScript.
func validateFilter(filter map[string]any) error {
	return scanOperators(filter, jsOperators)
}

// validateProjection rejects projections that invoke server-side JavaScript.
// Find projections accept aggregation expressions on MongoDB 4.4+, so
// $function can ride in through here as well as through the filter.
func validateProjection(projection map[string]any) error {
	return scanOperators(projection, jsOperators)
}

// validatePipeline rejects pipelines containing write stages or server-side
// JavaScript.
func validatePipeline(pipeline []any) error {
	if len(pipeline) == 0 {
		return fmt.Errorf("empty pipeline")
	}
	for i, raw := range pipeline {
		stage, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("pipeline stage %d is not an object", i)
		}
		for _, name := range writeStages {
			if _, found := stage[name]; found {
				return fmt.Errorf("pipeline stage %s writes to the database and is not allowed", name)
			}
		}
		if err := scanOperators(stage, jsOperators); err != nil {
			return fmt.Errorf("pipeline stage %d: %w", i, err)
		}
	}
	return nil
}

// scanOperators walks a document and errors if any of the given operator
// keys appears at any depth.
func scanOperators(doc map[string]any, ops []string) error {
	for key, value := range doc {
		for _, op := range ops {
			if key == op {
				return fmt.Errorf("operator %s is not allowed", op)
			}
		}
		switch v := value.(type) {
		case map[string]any:
			if err := scanOperators(v, ops); err != nil {
				return err
			}
		case []any:
			for _, item := range v {
				if nested, ok := item.(map[string]any); ok {
					if err := scanOperators(nested, ops); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// clampLimit bounds a requested document limit to MaxResultDocs. Zero and
// negative limits mean "no limit" and get the cap.
func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxResultDocs {
		return MaxResultDocs
	}
	return limit
}
