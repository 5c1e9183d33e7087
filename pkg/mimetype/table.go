package mimetype

// DefaultTable maps lower-case file extensions (with the leading dot) to the
// MIME type stored for uploads carrying that extension.
var DefaultTable = map[string]string{
	".c":     "text/x-c",
	".cpp":   "text/x-c++",
	".cs":    "text/x-csharp",
	".css":   "text/css",
	".csv":   "text/csv",
	".doc":   "application/msword",
	".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".gif":   "image/gif",
	".go":    "text/x-golang",
	".html":  "text/html",
	".java":  "text/x-java",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".js":    "text/javascript",
	".json":  "application/json",
	".jsonl": "application/jsonl",
	".md":    "text/markdown",
	".pdf":   "application/pdf",
	".php":   "text/x-php",
	".png":   "image/png",
	".pptx":  "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".py":    "text/x-python",
	".rb":    "text/x-ruby",
	".sh":    "application/x-sh",
	".svg":   "image/svg+xml",
	".tar":   "application/x-tar",
	".tex":   "text/x-tex",
	".ts":    "application/typescript",
	".tsv":   "text/tab-separated-values",
	".txt":   "text/plain",
	".webp":  "image/webp",
	".xls":   "application/vnd.ms-excel",
	".xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xml":   "application/xml",
	".yaml":  "application/x-yaml",
	".yml":   "application/x-yaml",
	".zip":   "application/zip",
	".bmp":   "image/bmp",
	".rtf":   "application/rtf",
	".log":   "text/plain",
}
