package models

// VideoRecord is one row of the "Video Data" sheet. Counts are kept as the
// decimal strings the API returns, "0" when the statistic is absent.
type VideoRecord struct {
	VideoID       string `json:"videoId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	PublishedDate string `json:"publishedDate"`
	ViewCount     string `json:"viewCount"`
	LikeCount     string `json:"likeCount"`
	CommentCount  string `json:"commentCount"`
	Duration      string `json:"duration"`
	ThumbnailURL  string `json:"thumbnailUrl"`
}

// VideoHeaders is the column order of the "Video Data" sheet
var VideoHeaders = []string{
	"Video ID",
	"Title",
	"Description",
	"Published Date",
	"View Count",
	"Like Count",
	"Comment Count",
	"Duration",
	"Thumbnail URL",
}

// Row returns the record's cells in VideoHeaders order
func (v VideoRecord) Row() []interface{} {
	return []interface{}{
		v.VideoID,
		v.Title,
		v.Description,
		v.PublishedDate,
		v.ViewCount,
		v.LikeCount,
		v.CommentCount,
		v.Duration,
		v.ThumbnailURL,
	}
}
