package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Example     string
}

// Suggest returns fix-it hints for a build error, keyed on its code. Errors
// without a known code get a hint for their kind; internal errors get none.
func Suggest(err error) []ErrorSuggestion {
	var be *BuildError
	if !errors.As(err, &be) {
		return nil
	}

	manifestFile := "manifest.json"
	if name := TemplateOf(err); name != "" {
		manifestFile = name + "/manifest.json"
	}

	switch be.Code {
	case "MANIFEST_JSON":
		return []ErrorSuggestion{{
			Title:       "Check " + manifestFile + " is valid JSON",
			Description: "The manifest must hold a single JSON object; trailing commas and comments are not allowed",
			Example:     `{"width": 1920, "parameters": [{"id": "title"}]}`,
		}}
	case "MANIFEST_PARAM":
		return []ErrorSuggestion{{
			Title:       "Give every parameter an id",
			Description: "Entries in parameters need a non-empty id; type and info are optional",
			Example:     `{"id": "title", "type": "string", "info": "Main title"}`,
		}}
	case "SASS_COMPILE":
		return []ErrorSuggestion{{
			Title:       "Check the stylesheet syntax",
			Description: "template.sass uses the indented syntax; use template.scss for braces and semicolons",
		}}
	case "TEMPLATE_SOURCE":
		return []ErrorSuggestion{{
			Title:       "Check the template directory exists",
			Description: "Templates are the directories directly inside the source directory",
		}}
	case "PACKAGE_SOURCE":
		return []ErrorSuggestion{{
			Title:       "Build the template before packaging",
			Description: "Archives are made from the build directory, which has no output for this template",
		}}
	}

	switch {
	case IsStylesheetError(err):
		return []ErrorSuggestion{{
			Title:       "Run sass on the stylesheet",
			Description: "The sass command line prints the full diagnostic with source context",
		}}
	case IsManifestParseError(err):
		return []ErrorSuggestion{{
			Title:       "Check " + manifestFile + " against the manifest fields",
			Description: "Known fields are author_name, author_email, width, height, frame_rate and parameters",
		}}
	case IsFileSystemError(err):
		return []ErrorSuggestion{{
			Title:       "Check file permissions",
			Description: "Sources must be readable and the build directory writable",
		}}
	case IsPackagingError(err):
		return []ErrorSuggestion{{
			Title:       "Check the dist directory is writable",
			Description: "Archives are written next to their final name and then renamed into place",
		}}
	}
	return nil
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return ""
	}

	var output strings.Builder
	for _, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  hint: %s\n", suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("        %s\n", suggestion.Description))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("        e.g. %s\n", suggestion.Example))
		}
	}
	return output.String()
}
