// Package validate checks form input before it is sent to the Gateway, so an
// operator gets field-level feedback without a round trip. The Gateway remains
// the authority; these rules only mirror its most common rejections.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
)

// Rule constrains one named field.
type Rule struct {
	Field    string
	Required bool
	MinLen   int
	MaxLen   int
	Pattern  *regexp.Regexp
	// PatternMessage replaces the generic message when Pattern fails.
	PatternMessage string
	// Check runs after the built-in constraints pass. Return a non-nil
	// error to reject the value.
	Check func(value string) error
}

// Schema is the ordered rule set for one form.
type Schema []Rule

// Errors maps field names to the first problem found for each.
type Errors map[string]string

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msg := range e {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// Common field patterns.
var (
	BarcodePattern = regexp.MustCompile(`^[0-9A-Za-z-]+$`)
	PricePattern   = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	PhonePattern   = regexp.MustCompile(`^\+?[0-9 ]{6,20}$`)
	EmailPattern   = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Apply checks every rule against values. A nil return means the form is
// valid; otherwise the result holds one message per failing field.
func (s Schema) Apply(values map[string]string) Errors {
	errs := make(Errors)
	for _, r := range s {
		value := strings.TrimSpace(values[r.Field])
		if msg := r.check(value); msg != "" {
			if _, seen := errs[r.Field]; !seen {
				errs[r.Field] = msg
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r Rule) check(value string) string {
	if value == "" {
		if r.Required {
			return "ce champ est obligatoire"
		}
		return ""
	}

	n := utf8.RuneCountInString(value)
	if r.MinLen > 0 && n < r.MinLen {
		return errors.Errorf("au moins %d caractères requis", r.MinLen).Error()
	}
	if r.MaxLen > 0 && n > r.MaxLen {
		return errors.Errorf("au plus %d caractères autorisés", r.MaxLen).Error()
	}
	if r.Pattern != nil && !r.Pattern.MatchString(value) {
		if r.PatternMessage != "" {
			return r.PatternMessage
		}
		return "format invalide"
	}
	if r.Check != nil {
		if err := r.Check(value); err != nil {
			return err.Error()
		}
	}
	return ""
}

// ProductForm is the schema behind the product create/edit form.
var ProductForm = Schema{
	{Field: "name", Required: true, MinLen: 2, MaxLen: 200},
	{Field: "barcode", Required: true, Pattern: BarcodePattern,
		PatternMessage: "le code-barres ne peut contenir que chiffres, lettres et tirets"},
	{Field: "purchase_price", Required: true, Pattern: PricePattern,
		PatternMessage: "prix invalide"},
	{Field: "sale_price_ht", Required: true, Pattern: PricePattern,
		PatternMessage: "prix invalide"},
}

// SupplierForm is the schema behind the supplier create/edit form.
var SupplierForm = Schema{
	{Field: "name", Required: true, MinLen: 2, MaxLen: 200},
	{Field: "email", Pattern: EmailPattern, PatternMessage: "email invalide"},
	{Field: "phone", Pattern: PhonePattern, PatternMessage: "numéro invalide"},
}

// UserForm is the schema behind the operator account form.
var UserForm = Schema{
	{Field: "username", Required: true, MinLen: 3, MaxLen: 150},
	{Field: "password", Required: true, MinLen: 8},
	{Field: "email", Pattern: EmailPattern, PatternMessage: "email invalide"},
}
