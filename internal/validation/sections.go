// Package validation provides the per-section schema validators and the strict-mode
// structural check applied to candidate documents before commit.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-editor/internal/schemas"
	"github.com/jonathan/resume-editor/internal/types"
)

// Options provides optional parameters for section validation
type Options struct {
	// AllowEmpty permits an empty text blob. Set only when the request asked for removal.
	AllowEmpty bool
	Logger     *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

type sectionValidator func(content any, opts *Options) []string

var sectionValidators = map[string]sectionValidator{
	types.SectionSummary:     textValidator("summary"),
	types.SectionCoverLetter: textValidator("cover letter"),
	types.SectionSkills:      validateSkills,
	types.SectionExperiences: validateExperiences,
	types.SectionProjects:    validateProjects,
	types.SectionEducation:   validateEducation,
	types.SectionHeader:      validateHeader,
}

var fieldValidator = validator.New()

// Validate checks a section's content against its structural rules.
// It never mutates content. Sections without a validator are treated as valid.
func Validate(section string, content any, opts *Options) types.ValidationReport {
	if opts == nil {
		opts = &Options{}
	}
	report := types.ValidationReport{Section: section, Valid: true}

	check, ok := sectionValidators[section]
	if !ok {
		opts.logger().Warn("no validator for section, treating as valid", "section", section)
		return report
	}

	var errs []string
	if err := schemas.ValidateSection(section, content); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			errs = append(errs, ve.Messages()...)
		} else {
			errs = append(errs, err.Error())
		}
	}
	// Field checks assume the schema's kinds, so run them only on conforming content
	if len(errs) == 0 {
		errs = append(errs, check(content, opts)...)
	}

	if len(errs) > 0 {
		report.Valid = false
		report.Errors = errs
	}
	return report
}

// ValidateDocument validates every section present in the document.
func ValidateDocument(doc types.Document, opts *Options) []types.ValidationReport {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	reports := make([]types.ValidationReport, 0, len(keys))
	for _, k := range keys {
		reports = append(reports, Validate(k, doc[k], opts))
	}
	return reports
}

func textValidator(label string) sectionValidator {
	return func(content any, opts *Options) []string {
		s, ok := content.(string)
		if !ok {
			return []string{fmt.Sprintf("%s must be text", label)}
		}
		if strings.TrimSpace(s) == "" && !opts.AllowEmpty {
			return []string{fmt.Sprintf("%s cannot be empty", label)}
		}
		return nil
	}
}

func validateSkills(content any, _ *Options) []string {
	items, ok := content.([]any)
	if !ok {
		return []string{"skills must be a list"}
	}
	var errs []string
	for i, item := range items {
		s, _ := item.(string)
		if strings.TrimSpace(s) == "" {
			errs = append(errs, fmt.Sprintf("skill %d cannot be blank", i))
		}
	}
	return errs
}

func validateExperiences(content any, _ *Options) []string {
	return validateEntries("experience", content, func(i int, entry map[string]any) []string {
		var errs []string
		if firstString(entry, "organization", "company") == "" {
			errs = append(errs, fmt.Sprintf("experience %d missing required 'organization' or 'company' field", i))
		}
		return append(errs, checkBullets("experience", i, entry)...)
	})
}

func validateProjects(content any, _ *Options) []string {
	return validateEntries("project", content, func(i int, entry map[string]any) []string {
		var errs []string
		if firstString(entry, "name") == "" {
			errs = append(errs, fmt.Sprintf("project %d missing required 'name' field", i))
		}
		return append(errs, checkBullets("project", i, entry)...)
	})
}

func validateEducation(content any, _ *Options) []string {
	return validateEntries("education entry", content, func(i int, entry map[string]any) []string {
		var errs []string
		if firstString(entry, "institution", "school") == "" {
			errs = append(errs, fmt.Sprintf("education entry %d missing required 'institution' field", i))
		}
		if firstString(entry, "credential", "degree") == "" {
			errs = append(errs, fmt.Sprintf("education entry %d missing required 'credential' field", i))
		}
		if !hasDateRange(entry) {
			errs = append(errs, fmt.Sprintf("education entry %d missing required date range", i))
		}
		return errs
	})
}

func validateHeader(content any, _ *Options) []string {
	header, ok := content.(map[string]any)
	if !ok {
		return []string{"header must be a mapping"}
	}

	var errs []string
	for _, key := range []string{"title_line", "title"} {
		v, present := header[key]
		if !present {
			continue
		}
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			errs = append(errs, fmt.Sprintf("header '%s' cannot be empty", key))
		}
	}

	walkEmails("header", header, func(path, email string) {
		if err := fieldValidator.Var(strings.TrimSpace(email), "required,email"); err != nil {
			errs = append(errs, fmt.Sprintf("%s has invalid format: %s", path, email))
		}
	})
	return errs
}

func validateEntries(label string, content any, check func(int, map[string]any) []string) []string {
	items, ok := content.([]any)
	if !ok {
		return []string{fmt.Sprintf("%s list must be a list", label)}
	}
	var errs []string
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("%s %d must be a mapping", label, i))
			continue
		}
		errs = append(errs, check(i, entry)...)
	}
	return errs
}

func checkBullets(label string, i int, entry map[string]any) []string {
	raw, ok := entry["bullets"]
	if !ok {
		return nil
	}
	bullets, ok := raw.([]any)
	if !ok {
		return []string{fmt.Sprintf("%s %d 'bullets' must be a list", label, i)}
	}
	for j, b := range bullets {
		if _, ok := b.(string); !ok {
			return []string{fmt.Sprintf("%s %d, bullet %d must be a string", label, i, j)}
		}
	}
	return nil
}

func hasDateRange(entry map[string]any) bool {
	for _, key := range []string{"dates", "date_range"} {
		switch v := entry[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return true
			}
		case map[string]any:
			for _, inner := range v {
				if s, ok := inner.(string); ok && strings.TrimSpace(s) != "" {
					return true
				}
			}
		}
	}
	return false
}

// firstString returns the first non-blank string value among keys.
func firstString(entry map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := entry[k].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// walkEmails visits every string stored under a key named "email" at any depth.
func walkEmails(path string, v any, visit func(path, email string)) {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			child := path + "." + k
			if s, ok := inner.(string); ok && strings.EqualFold(k, "email") {
				visit(child, s)
				continue
			}
			walkEmails(child, inner, visit)
		}
	case []any:
		for i, inner := range t {
			walkEmails(fmt.Sprintf("%s[%d]", path, i), inner, visit)
		}
	}
}
