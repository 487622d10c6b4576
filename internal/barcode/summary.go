package barcode

// Summary is the human-readable projection of Fields.
type Summary struct {
	Barcode      string `yaml:"barcode" json:"barcode"`
	Value        string `yaml:"value" json:"value"`
	DueDate      string `yaml:"due_date" json:"due_date"`
	DueDateValid bool   `yaml:"due_date_valid" json:"due_date_valid"`
	GuideNumber  string `yaml:"guide_number" json:"guide_number"`
	Installment  string `yaml:"installment" json:"installment"`
	FiscalYear   string `yaml:"fiscal_year" json:"fiscal_year"`
	Tribute      string `yaml:"tribute" json:"tribute"`
	Municipality string `yaml:"municipality" json:"municipality"`
	CheckDigit   string `yaml:"check_digit" json:"check_digit"`
	CheckDigitOK bool   `yaml:"check_digit_ok" json:"check_digit_ok"`
}

// Summarize projects f into a Summary without modifying it.
func Summarize(f Fields) Summary {
	s := Summary{
		Barcode:      f.Encode(),
		Value:        DisplayValue(f[Value]),
		GuideNumber:  Number(f[GuideNumber]),
		Installment:  Number(f[Installment]),
		FiscalYear:   "20" + f[FiscalYear],
		Tribute:      Number(f[Tribute]),
		Municipality: f[Municipality],
		CheckDigit:   f[CheckDigit],
		CheckDigitOK: f.CheckDigitOK(),
	}
	if d, err := DisplayDueDate(f[DueDate]); err == nil {
		s.DueDate, s.DueDateValid = d, true
	} else {
		s.DueDate = f[DueDate]
	}
	return s
}

// SingleInstallment reports whether the guide is paid in a single installment.
func (s Summary) SingleInstallment() bool {
	return s.Installment == "0"
}
