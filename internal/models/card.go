package models

// CardImage is a rendered slide written to the output tree
type CardImage struct {
	PageIndex int // 1-based
	FilePath  string
	DateStamp string
	URL       string // empty when no pages base URL is configured
}
