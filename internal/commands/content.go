package commands

import (
	"strings"

	"github.com/temirov/cfl/internal/types"
)

const (
	fenceMarker    = "```"
	blockSeparator = "\n"
)

// FormatFencedBlock renders one file as "```<path>\n<content>\n```\n".
func FormatFencedBlock(relativePath string, content string) string {
	var blockBuilder strings.Builder
	blockBuilder.Grow(len(relativePath) + len(content) + 2*len(fenceMarker) + 3*len(blockSeparator))
	blockBuilder.WriteString(fenceMarker)
	blockBuilder.WriteString(relativePath)
	blockBuilder.WriteString(blockSeparator)
	blockBuilder.WriteString(content)
	blockBuilder.WriteString(blockSeparator)
	blockBuilder.WriteString(fenceMarker)
	blockBuilder.WriteString(blockSeparator)
	return blockBuilder.String()
}

// ContentAggregator accumulates fenced file blocks and their records in arrival order.
// Records and buffer only grow.
type ContentAggregator struct {
	buffer  strings.Builder
	records []types.FileRecord
}

// Append records one file and appends its fenced block to the buffer.
func (aggregator *ContentAggregator) Append(relativePath string, content string, tokenCount int) types.FileRecord {
	record := types.FileRecord{
		Path:       relativePath,
		SizeBytes:  len(content),
		TokenCount: tokenCount,
	}
	aggregator.buffer.WriteString(FormatFencedBlock(relativePath, content))
	aggregator.records = append(aggregator.records, record)
	return record
}

// Records returns a copy of the accumulated records.
func (aggregator *ContentAggregator) Records() []types.FileRecord {
	recordsCopy := make([]types.FileRecord, len(aggregator.records))
	copy(recordsCopy, aggregator.records)
	return recordsCopy
}

// Result returns the concatenated buffer.
func (aggregator *ContentAggregator) Result() string {
	return aggregator.buffer.String()
}

// Len returns the byte length of the buffer.
func (aggregator *ContentAggregator) Len() int {
	return aggregator.buffer.Len()
}

// TotalTokens sums the token counts of every record.
func (aggregator *ContentAggregator) TotalTokens() int {
	totalTokens := 0
	for _, record := range aggregator.records {
		totalTokens += record.TokenCount
	}
	return totalTokens
}
