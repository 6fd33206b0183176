package commands

// CopyFiles aggregates every file under path, rooted at path itself, and returns the result buffer.
func CopyFiles(path string) (string, error) {
	return CopyFilesWithPatterns(path, "", "")
}

// CopyFilesWithPatterns is CopyFiles with include and exclude pattern lists.
func CopyFilesWithPatterns(path string, includePatterns string, excludePatterns string) (string, error) {
	processor, processorError := NewProcessor(Options{
		Root:            path,
		IncludePatterns: includePatterns,
		ExcludePatterns: excludePatterns,
	})
	if processorError != nil {
		return "", processorError
	}
	if processError := processor.Process(path); processError != nil {
		return "", processError
	}
	return processor.Result(), nil
}
