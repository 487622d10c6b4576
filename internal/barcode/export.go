package barcode

import "fmt"

// Export formats.
const (
	FormatDigits = "digits"
	FormatDebug  = "debug"
	FormatLine   = "line"
)

// Formats lists the accepted export formats.
var Formats = []string{FormatDigits, FormatDebug, FormatLine}

// Format serialises f in one of the export formats.
func (f Fields) Format(format string) (string, error) {
	switch format {
	case FormatDigits, "":
		return f.Encode(), nil
	case FormatDebug:
		return f.Debug(), nil
	case FormatLine:
		return f.Line(), nil
	default:
		return "", fmt.Errorf("barcode: unknown export format %q", format)
	}
}
