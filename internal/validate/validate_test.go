package validate

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductFormValid(t *testing.T) {
	errs := ProductForm.Apply(map[string]string{
		"name":           "Stylo Plume",
		"barcode":        "6111000000077",
		"purchase_price": "8.00",
		"sale_price_ht":  "12.50",
	})
	assert.Nil(t, errs)
}

func TestProductFormMissingFields(t *testing.T) {
	errs := ProductForm.Apply(map[string]string{})
	require.NotNil(t, errs)
	assert.Equal(t, "ce champ est obligatoire", errs["name"])
	assert.Equal(t, "ce champ est obligatoire", errs["barcode"])
	assert.Len(t, errs, 4)
}

func TestProductFormBadValues(t *testing.T) {
	errs := ProductForm.Apply(map[string]string{
		"name":           "S",
		"barcode":        "abc def",
		"purchase_price": "8,00",
		"sale_price_ht":  "12.555",
	})
	require.NotNil(t, errs)
	assert.Equal(t, "au moins 2 caractères requis", errs["name"])
	assert.Contains(t, errs["barcode"], "code-barres")
	assert.Equal(t, "prix invalide", errs["purchase_price"])
	assert.Equal(t, "prix invalide", errs["sale_price_ht"])
}

func TestOptionalFieldsSkipWhenEmpty(t *testing.T) {
	errs := SupplierForm.Apply(map[string]string{"name": "Papeterie Atlas"})
	assert.Nil(t, errs)

	errs = SupplierForm.Apply(map[string]string{
		"name":  "Papeterie Atlas",
		"email": "not-an-email",
	})
	require.NotNil(t, errs)
	assert.Equal(t, "email invalide", errs["email"])
}

func TestWhitespaceOnlyCountsAsEmpty(t *testing.T) {
	errs := UserForm.Apply(map[string]string{
		"username": "   ",
		"password": "longenough",
	})
	require.NotNil(t, errs)
	assert.Equal(t, "ce champ est obligatoire", errs["username"])
}

func TestCustomCheck(t *testing.T) {
	schema := Schema{
		{Field: "password", Required: true, MinLen: 8},
		{Field: "password_confirm", Required: true, Check: func(string) error {
			return errors.New("les mots de passe ne correspondent pas")
		}},
	}
	errs := schema.Apply(map[string]string{
		"password":         "secret123",
		"password_confirm": "secret124",
	})
	require.NotNil(t, errs)
	assert.Equal(t, "les mots de passe ne correspondent pas", errs["password_confirm"])
}

func TestErrorsString(t *testing.T) {
	errs := Errors{"name": "ce champ est obligatoire"}
	assert.Equal(t, "name: ce champ est obligatoire", errs.Error())
}
