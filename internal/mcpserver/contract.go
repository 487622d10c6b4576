package mcpserver

// LayoutContract documents the barcode layout for MCP clients.
const LayoutContract = `# Municipal Collection Barcode Layout

The barcode has 44 digits split into 10 fixed-width fields. It is usually typed
as a 55-character line: four 11-digit blocks, each followed by a space, the
block check digit and another space (the last trailing space is omitted).

` + "```" + `
81630000000 6 01500123202 2 40315000123 4 40001241234 4
` + "```" + `

## Fields

| idx | name | width | content |
|---|---|---|---|
| 0 | segment | 3 | "816" |
| 1 | check_digit | 1 | general check digit |
| 2 | value | 11 | value in cents |
| 3 | municipality | 4 | municipal code (Febraban) |
| 4 | due_date | 8 | YYYYMMDD |
| 5 | guide_number | 7 | guide number |
| 6 | installment | 3 | "000" is a single installment |
| 7 | layout_code | 1 | layout code |
| 8 | fiscal_year | 2 | last two digits of the year |
| 9 | tribute | 4 | tribute code |

## Editing rules

- **value**: decimal amount; "." and "," are both stripped, so "12,34" and
  "1234" are the same 1234 cents. At most 11 digits.
- **due_date**: DD/MM/YYYY, a real calendar date.
- **guide_number**: up to 7 digits.
- **installment**: 1 to 46.
- **fiscal_year**: two digits; the due date's year minus it must be 0 or 1..4.
- **tribute**: up to 4 digits.

Edits never recompute the general check digit.
`
