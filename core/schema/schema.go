// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package schema validates forms against JSON schemas before they are sent to the backend
package schema

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"github.com/relabs-tech/aqaar/core/i18n"
)

// IDs of the embedded schemas
const (
	Login             = "https://aqaar.dussur.sa/schemas/login.json"
	RealOwner         = "https://aqaar.dussur.sa/schemas/realowner.json"
	RealOwnerUpdate   = "https://aqaar.dussur.sa/schemas/realowner-update.json"
	RealOwnerProperty = "https://aqaar.dussur.sa/schemas/realowner-property.json"
)

//go:embed schemas
var embedded embed.FS

// Default is the validator for the embedded form schemas
var Default = mustDefault()

func mustDefault() *Validator {
	sub, err := fs.Sub(embedded, "schemas")
	if err != nil {
		panic(err)
	}
	v, err := NewValidatorFromFS(sub)
	if err != nil {
		panic(err)
	}
	return v
}

// Validator is a utility to validate JSON object against a given schema
type Validator struct {
	schemaValidators map[string]*gojsonschema.Schema
}

// NewValidatorFromFS creates a new Validator using schemas from schemaFS. Json files
// from / will be used as toplevel schemas, while json files in /refs/ will be used
// as references
func NewValidatorFromFS(schemaFS fs.FS) (*Validator, error) {

	readDir := func(dir string) ([]string, error) {
		var strs []string
		files, err := fs.ReadDir(schemaFS, dir)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read dir %w", err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			fullPath := f.Name()
			if dir != "." {
				fullPath = dir + "/" + f.Name()
			}
			str, err := fs.ReadFile(schemaFS, fullPath)
			if err != nil {
				return nil, fmt.Errorf("cannot read file '%s' %w", f.Name(), err)
			}
			strs = append(strs, string(str))
		}
		return strs, nil
	}

	schemasString, err := readDir(".")
	if err != nil {
		return nil, err
	}

	refsString, err := readDir("refs")
	if err != nil {
		return nil, err
	}

	return NewValidator(schemasString, refsString)
}

// NewValidator creates a new Validator using schemas for the top level JSON schemas and refs
// for refs that may be referenced in the top level schemas. Top level schemas cannot reference each
// others. If a reference is mentioned, it can only be in the list of refs
func NewValidator(schemas []string, refs []string) (*Validator, error) {
	type schema struct {
		ID string `json:"$id"`
	}
	validator := Validator{schemaValidators: make(map[string]*gojsonschema.Schema)}
	for _, str := range schemas {
		s := schema{}
		err := json.Unmarshal([]byte(str), &s)
		if err != nil {
			return nil, fmt.Errorf("parse error '%v' in schema: '%s'", err, str)
		}
		if s.ID == "" {
			return nil, fmt.Errorf("schema does not contain $id: '%s'", str)
		}
		sl := gojsonschema.NewSchemaLoader()

		for _, ref := range refs {
			loader := gojsonschema.NewStringLoader(ref)
			err := sl.AddSchemas(loader)
			if err != nil {
				return nil, fmt.Errorf("cannot add ref %s %s", ref, err)
			}
		}
		schema, err := sl.Compile(gojsonschema.NewStringLoader(str))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s %s", s.ID, err)
		}
		validator.schemaValidators[s.ID] = schema
	}

	return &validator, nil
}

// HasSchema returns true if schemaID is known
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.schemaValidators[schemaID]
	return ok
}

// ValidateStruct validates the given object as a struct against schemaID. If no error is
// returned, then the object is valid. Otherwise the error is a *ValidationError with
// messages in lang.
func (v *Validator) ValidateStruct(lang string, object interface{}, schemaID string) error {
	return v.validate(lang, gojsonschema.NewGoLoader(object), schemaID)
}

// ValidateString validates the given json against schemaID. If no error is returned, then the
// passed json is valid
func (v *Validator) ValidateString(lang string, json, schemaID string) error {
	return v.validate(lang, gojsonschema.NewStringLoader(json), schemaID)
}

// validate validates the given loader against schemaID. If no error is returned, then the passed json
// is valid
func (v *Validator) validate(lang string, loader gojsonschema.JSONLoader, schemaID string) error {

	schema, ok := v.schemaValidators[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s ", schemaID)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return fmt.Errorf("cannot validate with schema %s %s", schemaID, err)
	}

	if result.Valid() {
		return nil
	}

	verr := &ValidationError{}
	seen := map[string]bool{}
	for _, e := range result.Errors() {
		field := fieldOf(e)
		if seen[field] {
			continue
		}
		seen[field] = true
		verr.Fields = append(verr.Fields, FieldError{
			Field:   field,
			Type:    e.Type(),
			Message: i18n.T(lang, messageKey(schemaID, field, e)),
		})
	}
	sort.SliceStable(verr.Fields, func(i, j int) bool {
		return verr.Fields[i].Field < verr.Fields[j].Field
	})
	return verr
}

// FieldError is the first violation found for one field of a form
type FieldError struct {
	Field   string
	Type    string
	Message string
}

// ValidationError lists the invalid fields of a form
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Field returns the violation for field, if any
func (e *ValidationError) Field(field string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f, true
		}
	}
	return FieldError{}, false
}

func fieldOf(e gojsonschema.ResultError) string {
	field := e.Field()
	if e.Type() == "required" {
		property, _ := e.Details()["property"].(string)
		if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
			return property
		}
		return field + "." + property
	}
	return field
}

var arrayIndex = regexp.MustCompile(`\.\d+(\.|$)`)

// rule holds the message keys of one field. required is used when the field is
// missing or blank, invalid for every other violation.
type rule struct {
	required string
	invalid  string
}

var realOwnerRules = map[string]rule{
	"fullName":    {required: "realOwners.validation.fullNameRequired", invalid: "realOwners.validation.fullNameInvalid"},
	"nationalId":  {required: "realOwners.validation.nationalIdRequired", invalid: "realOwners.validation.notAvailable"},
	"phoneNumber": {required: "realOwners.validation.phoneNumberRequired", invalid: "realOwners.validation.notAvailable"},
	"accountBank": {required: "realOwners.validation.accountBankRequired", invalid: "realOwners.validation.notAvailable"},
	"iban":        {required: "realOwners.validation.ibanRequired", invalid: "realOwners.validation.notAvailable"},
}

var rules = map[string]map[string]rule{
	Login: {
		"email":    {required: "auth.validation.emailRequired", invalid: "auth.validation.emailInvalid"},
		"password": {required: "auth.validation.passwordRequired", invalid: "auth.validation.passwordMinLength"},
	},
	RealOwner:       realOwnerRules,
	RealOwnerUpdate: realOwnerRules,
	RealOwnerProperty: {
		"title":                     {required: "realOwnerProperties.validation.titleRequired", invalid: "realOwnerProperties.validation.titleRequired"},
		"regionId":                  {required: "realOwnerProperties.validation.locationRequired", invalid: "realOwnerProperties.validation.locationRequired"},
		"cityId":                    {required: "realOwnerProperties.validation.locationRequired", invalid: "realOwnerProperties.validation.locationRequired"},
		"neighborhoodId":            {required: "realOwnerProperties.validation.locationRequired", invalid: "realOwnerProperties.validation.locationRequired"},
		"listingTypeId":             {required: "realOwnerProperties.validation.listingTypeRequired", invalid: "realOwnerProperties.validation.listingTypeRequired"},
		"subUnits.*.paymentType":    {required: "realOwnerProperties.validation.paymentTypeInvalid", invalid: "realOwnerProperties.validation.paymentTypeInvalid"},
		"subUnits.*.paymentValue":   {required: "realOwnerProperties.validation.amountInvalid", invalid: "realOwnerProperties.validation.amountInvalid"},
		"subUnits.*.price":          {required: "realOwnerProperties.validation.amountInvalid", invalid: "realOwnerProperties.validation.amountInvalid"},
		"subUnits.*.paidAmount":     {required: "realOwnerProperties.validation.amountInvalid", invalid: "realOwnerProperties.validation.amountInvalid"},
		"subUnits.*.propertyTypeId": {required: "validation.invalid", invalid: "validation.invalid"},
	},
}

func messageKey(schemaID, field string, e gojsonschema.ResultError) string {
	generic := arrayIndex.ReplaceAllString(field, ".*$1")
	r, ok := rules[schemaID][generic]
	if !ok {
		return "validation.invalid"
	}
	if isBlank(e) {
		return r.required
	}
	return r.invalid
}

func isBlank(e gojsonschema.ResultError) bool {
	switch e.Type() {
	case "required":
		return true
	case "string_gte", "pattern", "format":
		s, ok := e.Value().(string)
		return ok && strings.TrimSpace(s) == ""
	}
	return false
}
