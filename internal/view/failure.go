package view

import "github.com/rxtech-lab/stockview/pkg/errors"

// NoDataMessage describes an empty or unknown symbol.
const NoDataMessage = "No data found for the symbol"

// ErrorMessage is the text displayed in place of the chart after a failed fetch.
func ErrorMessage(err error) string {
	description := errors.Describe(err)
	if description == "" {
		description = NoDataMessage
	}

	return "Error: " + description
}
