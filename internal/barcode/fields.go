package barcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/starford/guia/internal/apperr"
)

const (
	storedDateLayout  = "20060102"
	displayDateLayout = "02/01/2006"

	maxValueCents  = 99_999_999_999
	maxInstallment = 46
)

const (
	msgNotNumber        = "not a valid number"
	msgTooLong          = "does not fit in %d digits"
	msgBadDate          = "not a valid date, use DD/MM/YYYY"
	msgBadInstallment   = "invalid installment count"
	msgFiscalYearDiffer = "year differs from due date's year"
)

// InputError is a rejected field edit. It matches apperr.ErrInvalidFieldInput.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *InputError) Unwrap() error {
	return apperr.ErrInvalidFieldInput
}

// Reason returns the user-facing message of a rejected edit.
func Reason(err error) string {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Reason
	}
	return err.Error()
}

func reject(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}

func pad(n uint64, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

func parseUnsigned(field, text string, width int) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, reject(field, msgNotNumber)
	}
	limit := uint64(1)
	for range width {
		limit *= 10
	}
	if err := validation.Validate(n, validation.Max(limit-1).Error(fmt.Sprintf(msgTooLong, width))); err != nil {
		return 0, reject(field, err.Error())
	}
	return n, nil
}

// ParseValue reads a currency amount typed by the user and returns it in cents.
// Both "." and "," are stripped before parsing, so "12,34", "12.34" and
// "1234" are the same amount.
func ParseValue(text string) (uint64, error) {
	s := strings.NewReplacer(".", "", ",", "").Replace(strings.TrimSpace(text))
	cents, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, reject("value", msgNotNumber)
	}
	if err := validation.Validate(cents,
		validation.Max(uint64(maxValueCents)).Error(fmt.Sprintf(msgTooLong, Layout[Value])),
	); err != nil {
		return 0, reject("value", err.Error())
	}
	return cents, nil
}

// FormatValue stores cents as the zero-padded 11-digit field.
func FormatValue(cents uint64) string {
	return pad(cents, Layout[Value])
}

// DisplayValue renders stored cents with two decimals and a comma, e.g. "1,50".
func DisplayValue(stored string) string {
	d, err := decimal.NewFromString(stored)
	if err != nil {
		return stored
	}
	return strings.Replace(d.Shift(-2).StringFixed(2), ".", ",", 1)
}

// ParseDueDate reads a DD/MM/YYYY date.
func ParseDueDate(text string) (time.Time, error) {
	s := strings.TrimSpace(text)
	if err := validation.Validate(s,
		validation.Required.Error(msgBadDate),
		validation.Length(len(displayDateLayout), len(displayDateLayout)).Error(msgBadDate),
		validation.Date(displayDateLayout).Error(msgBadDate),
	); err != nil {
		return time.Time{}, reject("due date", msgBadDate)
	}
	t, err := time.Parse(displayDateLayout, s)
	if err != nil {
		return time.Time{}, reject("due date", msgBadDate)
	}
	return t, nil
}

// FormatDueDate stores a date as YYYYMMDD.
func FormatDueDate(t time.Time) string {
	return t.Format(storedDateLayout)
}

// DisplayDueDate converts a stored YYYYMMDD date into DD/MM/YYYY.
func DisplayDueDate(stored string) (string, error) {
	t, err := time.Parse(storedDateLayout, stored)
	if err != nil {
		return "", fmt.Errorf("due date %q: %w", stored, err)
	}
	return t.Format(displayDateLayout), nil
}

// ParseGuideNumber reads a guide number of up to 7 digits.
func ParseGuideNumber(text string) (uint64, error) {
	return parseUnsigned("guide number", text, Layout[GuideNumber])
}

// ParseInstallment reads an installment number in [1, 46].
func ParseInstallment(text string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, reject("installment", msgBadInstallment)
	}
	if err := validation.Validate(n,
		validation.Required.Error(msgBadInstallment),
		validation.Min(uint64(1)).Error(msgBadInstallment),
		validation.Max(uint64(maxInstallment)).Error(msgBadInstallment),
	); err != nil {
		return 0, reject("installment", msgBadInstallment)
	}
	return n, nil
}

// ParseFiscalYear reads the two-digit fiscal year and checks it against the
// due date: the due date's year suffix minus the entered year must be 0 or
// fall within [1, 4].
func ParseFiscalYear(text, storedDueDate string) (uint64, error) {
	year, err := parseUnsigned("fiscal year", text, Layout[FiscalYear])
	if err != nil {
		return 0, err
	}
	dueYear, err := dueYearSuffix(storedDueDate)
	if err != nil {
		return 0, reject("fiscal year", msgFiscalYearDiffer)
	}
	diff := dueYear - int(year)
	if err := validation.Validate(diff,
		validation.When(diff != 0,
			validation.Min(1).Error(msgFiscalYearDiffer),
			validation.Max(4).Error(msgFiscalYearDiffer),
		),
	); err != nil {
		return 0, reject("fiscal year", msgFiscalYearDiffer)
	}
	return year, nil
}

func dueYearSuffix(stored string) (int, error) {
	if len(stored) != Layout[DueDate] {
		return 0, fmt.Errorf("due date %q has the wrong width", stored)
	}
	return strconv.Atoi(stored[2:4])
}

// ParseTribute reads a tribute code of up to 4 digits.
func ParseTribute(text string) (uint64, error) {
	return parseUnsigned("tribute", text, Layout[Tribute])
}

// Number renders a stored numeric field without its zero padding.
func Number(stored string) string {
	n, err := strconv.ParseUint(stored, 10, 64)
	if err != nil {
		return stored
	}
	return strconv.FormatUint(n, 10)
}
