package ifc

import (
	"fmt"
	"regexp"

	"go.uber.org/multierr"
)

// ============================================================
// Validation
// ============================================================

// ValidationError означает, что собранный документ не прошёл структурную проверку.
// Это ошибка самого писателя, повторять вызов бессмысленно.
type ValidationError struct {
	Check   string
	Pattern string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ifc validation failed: %s (pattern %s)", e.Check, e.Pattern)
}

type check struct {
	name    string
	pattern *regexp.Regexp
}

// Имена проверок.
const (
	CheckFileDescription     = "file_description"
	CheckFileName            = "file_name"
	CheckFileSchema          = "file_schema"
	CheckProject             = "project"
	CheckShapeRepresentation = "shape_representation"
	CheckEntity              = "ifc_entity"
	CheckEndMarker           = "end_marker"
)

var checks = []check{
	{CheckFileDescription, regexp.MustCompile(`FILE_DESCRIPTION\(`)},
	{CheckFileName, regexp.MustCompile(`FILE_NAME\(`)},
	{CheckFileSchema, regexp.MustCompile(`FILE_SCHEMA\(\('IFC[0-9A-Z_]+'\)\)`)},
	{CheckProject, regexp.MustCompile(`(?m)^#\d+=IFCPROJECT\(`)},
	{CheckShapeRepresentation, regexp.MustCompile(`(?m)^#\d+=IFCSHAPEREPRESENTATION\(`)},
	{CheckEntity, regexp.MustCompile(`(?m)^#\d+=IFC[A-Z0-9_]+\(`)},
	{CheckEndMarker, regexp.MustCompile(`END-ISO-10303-21;\s*$`)},
}

// Validate прогоняет семь проверок и возвращает все провалившиеся.
// Каждая ошибка в результате имеет тип *ValidationError, список даёт multierr.Errors(err).
func Validate(text string) error {
	var err error
	for _, c := range checks {
		if !c.pattern.MatchString(text) {
			err = multierr.Append(err, &ValidationError{Check: c.name, Pattern: c.pattern.String()})
		}
	}
	return err
}

// FailedChecks возвращает имена проваленных проверок из ошибки Validate.
func FailedChecks(err error) []string {
	var names []string
	for _, e := range multierr.Errors(err) {
		if v, ok := e.(*ValidationError); ok {
			names = append(names, v.Check)
		}
	}
	return names
}
