package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexUnterminatedTag      Code = 1001
	LexUnterminatedComment  Code = 1002
	LexUnterminatedTemplate Code = 1003
	LexUnterminatedArg      Code = 1004
	LexUnterminatedQuote    Code = 1005
	LexEmptyTemplateName    Code = 1006

	// Transform
	XfmRecursionDepth  Code = 2001
	XfmUnknownTemplate Code = 2002
	XfmHandlerFailed   Code = 2005

	// IO and configuration
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002
	IOConfigError   Code = 4003

	// Observability
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	LexUnterminatedTag:      "Unterminated tag",
	LexUnterminatedComment:  "Unterminated comment",
	LexUnterminatedTemplate: "Unterminated template invocation",
	LexUnterminatedArg:      "Unterminated template argument",
	LexUnterminatedQuote:    "Unterminated attribute quote",
	LexEmptyTemplateName:    "Template invocation without a name",
	XfmRecursionDepth:       "Template expansion too deep",
	XfmUnknownTemplate:      "Unknown template",
	XfmHandlerFailed:        "Transform handler failed",
	IOLoadFileError:         "Could not read document",
	IOCacheError:            "Cache error",
	IOConfigError:           "Invalid configuration",
	ObsTimings:              "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("XFM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
