package promo

import (
	"fmt"
	"sort"

	"github.com/sk88studiosinc-maker/Soulsound/internal/provider"
)

func str() *provider.Schema { return &provider.Schema{Type: provider.TypeString} }

func strList() *provider.Schema {
	return &provider.Schema{Type: provider.TypeArray, Items: str()}
}

func object(required []string, props map[string]*provider.Schema) *provider.Schema {
	return &provider.Schema{Type: provider.TypeObject, Properties: props, Required: required}
}

func flatObject(fields ...string) *provider.Schema {
	props := make(map[string]*provider.Schema, len(fields))
	for _, f := range fields {
		props[f] = str()
	}
	return object(fields, props)
}

// ResponseSchema describes every field of a PromotionPackage. All fields are
// required.
func ResponseSchema() *provider.Schema {
	return object(
		[]string{"analysis", "videoConcept", "cameraInstructions", "voiceoverScripts", "captions", "hashtags", "recommendedLengths", "postingTips"},
		map[string]*provider.Schema{
			"analysis": flatObject("genre", "vibe", "energy"),
			"videoConcept": object(
				[]string{"visualPlan", "motionStyle", "colorGrading", "textOverlays", "transitions", "loopEnding"},
				map[string]*provider.Schema{
					"visualPlan":   str(),
					"motionStyle":  str(),
					"colorGrading": str(),
					"textOverlays": strList(),
					"transitions":  str(),
					"loopEnding":   str(),
				},
			),
			"cameraInstructions": flatObject("angles", "lighting", "movement", "filtersAndEffects"),
			"voiceoverScripts": {
				Type:  provider.TypeArray,
				Items: flatObject("id", "type", "text", "duration"),
			},
			"captions": {
				Type:  provider.TypeArray,
				Items: flatObject("id", "type", "text", "emoji"),
			},
			"hashtags":           str(),
			"recommendedLengths": strList(),
			"postingTips":        str(),
		},
	)
}

// Validate checks a decoded JSON tree against schema. It returns the paths of
// string fields that are present but empty; those are not violations.
func Validate(tree any, schema *provider.Schema) ([]string, error) {
	var empties []string
	if err := validate(tree, schema, "$", &empties); err != nil {
		return nil, err
	}
	return empties, nil
}

func validate(v any, s *provider.Schema, path string, empties *[]string) error {
	if s == nil {
		return nil
	}
	switch s.Type {
	case provider.TypeString:
		sv, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s: want string, got %s", path, kindOf(v))
		}
		if sv == "" {
			*empties = append(*empties, path)
		}
	case provider.TypeArray:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: want array, got %s", path, kindOf(v))
		}
		for i, item := range items {
			if err := validate(item, s.Items, fmt.Sprintf("%s[%d]", path, i), empties); err != nil {
				return err
			}
		}
	case provider.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: want object, got %s", path, kindOf(v))
		}
		for _, name := range s.Required {
			if _, present := obj[name]; !present {
				return fmt.Errorf("%s.%s: required field missing", path, name)
			}
		}
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child, present := obj[name]
			if !present {
				continue
			}
			if err := validate(child, s.Properties[name], path+"."+name, empties); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%s: unsupported schema type %q", path, s.Type)
	}
	return nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
