package validator

import (
	"strings"

	"insights-client/model/rule_engine"

	jsoniter "github.com/json-iterator/go"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/xerrors"
)

const Draft7_Url = "https://json-schema.org/draft-07/schema"
const Prefix_Context = "Context_"
const Prefix_Rule = "Rule_"

type (
	// Validator checks a workbook document against a JSON schema and,
	// optionally, a grule rule for constraints the schema cannot say.
	Validator struct {
		name string
		sch  *jsonschema.Schema
		svc  *rule_engine.RuleEngineSvc
	}

	Result struct {
		IsValid bool
		Reason  string
	}
)

func NewWorkbookValidator(name string, schema string, rule string) (*Validator, error) {
	url := name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	if schema != "" {
		if err := compiler.AddResource(url, strings.NewReader(schema)); err != nil {
			return nil, err
		}
	} else {
		url = Draft7_Url
	}

	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, err
	}

	if rule != "" {
		ruleEngineSvc := rule_engine.NewRuleEngineSvc()
		err = ruleEngineSvc.AddRule(Prefix_Rule+name, []byte(rule))
		if err != nil {
			return nil, err
		}

		return &Validator{
			name: name,
			sch:  sch,
			svc:  ruleEngineSvc,
		}, nil
	}

	return &Validator{
		name: name,
		sch:  sch,
		svc:  nil,
	}, nil
}

// Validate checks content against the schema, then runs the rule with
// content registered under the validator's name plus any extra facts.
func (v *Validator) Validate(content interface{}, facts map[string]interface{}) error {
	raw, err := jsoniter.Marshal(content)
	if err != nil {
		return xerrors.Errorf(err.Error())
	}
	doc := jsoniter.Get(raw).GetInterface()

	err = v.sch.Validate(doc)
	if err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			if len(ve.Causes) == 1 {
				field := ve.Causes[0].InstanceLocation
				if len(field) > 0 && field[0] == '/' {
					field = field[1:]
				}

				return xerrors.Errorf("validation failed, invalid field '%s' due to '%s'", field, ve.Causes[0].Message)
			}
		}

		return xerrors.Errorf(err.Error())
	}

	if v.svc == nil {
		return nil
	}

	v.svc.Reset(Prefix_Context + v.name)

	if err = v.svc.AddFact(Prefix_Context+v.name, v.name, content); err != nil {
		return xerrors.Errorf(err.Error())
	}
	for name, fact := range facts {
		if err = v.svc.AddFact(Prefix_Context+v.name, name, fact); err != nil {
			return xerrors.Errorf(err.Error())
		}
	}

	result := &Result{
		IsValid: true,
		Reason:  "",
	}
	if err = v.svc.AddFact(Prefix_Context+v.name, "Result", result); err != nil {
		return xerrors.Errorf(err.Error())
	}

	if err = v.svc.Execute(Prefix_Rule+v.name, Prefix_Context+v.name); err != nil {
		return xerrors.Errorf(err.Error())
	}
	if !result.IsValid {
		return xerrors.Errorf("failed to pass the rule check due to " + result.Reason)
	}
	return nil
}
