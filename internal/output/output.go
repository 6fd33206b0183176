// Package output renders the console report printed after a cfl run.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/temirov/cfl/internal/types"
	"github.com/temirov/cfl/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	showHeader      = "Target files:\n"
	showFileFormat  = "  %s (%s bytes, %s tokens)\n"
	showTotalFormat = "\nTotal: %s files\n"

	copiedHeaderFormat    = "\n✨ Successfully copied %s files to clipboard:\n"
	collectedHeaderFormat = "\n✨ Collected %s files:\n"
	filesHeader           = "📁 Files:\n"
	copiedFileFormat      = "  • %s (%s bytes, %s tokens)\n"
	summaryHeader         = "\n📊 Summary:\n"
	summaryFilesFormat    = "  • Total files: %s\n"
	summarySizeFormat     = "  • Total size: %s bytes\n"
	summaryTokensFormat   = "  • Total tokens: %s\n"
	summaryModelFormat    = "  • Token model: %s\n"
	structureHeader       = "\n📁 Directory Structure:\n"
	includePatternsFormat = "  • Include patterns: %s\n"
	excludePatternsFormat = "  • Exclude patterns: %s\n"
	noFilesCopiedHint     = "\n⚠️  No files were copied. Check your include/exclude patterns.\n"
	patternListSeparator  = ","
)

// RenderShowList returns the plain file listing used by --show.
func RenderShowList(report types.Report) string {
	var buffer bytes.Buffer
	buffer.WriteString(showHeader)
	for _, fileRecord := range report.Files {
		writeFileLine(&buffer, showFileFormat, fileRecord)
	}
	fmt.Fprintf(&buffer, showTotalFormat, utils.FormatNumber(report.Summary.TotalFiles))
	return buffer.String()
}

// RenderRaw returns the decorated report: file list, summary, directory structure and patterns.
func RenderRaw(report types.Report) string {
	var buffer bytes.Buffer
	headerFormat := collectedHeaderFormat
	if report.Copied {
		headerFormat = copiedHeaderFormat
	}
	fmt.Fprintf(&buffer, headerFormat, utils.FormatNumber(report.Summary.TotalFiles))
	buffer.WriteString(filesHeader)
	for _, fileRecord := range report.Files {
		writeFileLine(&buffer, copiedFileFormat, fileRecord)
	}

	buffer.WriteString(summaryHeader)
	fmt.Fprintf(&buffer, summaryFilesFormat, utils.FormatNumber(report.Summary.TotalFiles))
	fmt.Fprintf(&buffer, summarySizeFormat, utils.FormatNumber(report.Summary.TotalSize))
	fmt.Fprintf(&buffer, summaryTokensFormat, utils.FormatNumber(report.Summary.TotalTokens))
	if report.Summary.Model != "" {
		fmt.Fprintf(&buffer, summaryModelFormat, report.Summary.Model)
	}

	buffer.WriteString(structureHeader)
	buffer.WriteString(report.DirectoryStructure)
	buffer.WriteString("\n")

	if len(report.IncludePatterns) > 0 {
		fmt.Fprintf(&buffer, includePatternsFormat, strings.Join(report.IncludePatterns, patternListSeparator))
	}
	if len(report.ExcludePatterns) > 0 {
		fmt.Fprintf(&buffer, excludePatternsFormat, strings.Join(report.ExcludePatterns, patternListSeparator))
	}
	if report.Summary.TotalFiles == 0 {
		buffer.WriteString(noFilesCopiedHint)
	}
	return buffer.String()
}

// RenderJSON marshals the report as indented JSON.
func RenderJSON(report types.Report) (string, error) {
	if report.Files == nil {
		report.Files = []types.FileRecord{}
	}
	encoded, jsonEncodeError := json.MarshalIndent(report, indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded) + "\n", nil
}

// Render dispatches on format. Unknown formats fall back to raw.
func Render(format string, report types.Report) (string, error) {
	if format == types.FormatJSON {
		return RenderJSON(report)
	}
	return RenderRaw(report), nil
}

func writeFileLine(buffer *bytes.Buffer, lineFormat string, fileRecord types.FileRecord) {
	fmt.Fprintf(buffer, lineFormat, fileRecord.Path, utils.FormatNumber(fileRecord.SizeBytes), utils.FormatNumber(fileRecord.TokenCount))
}
