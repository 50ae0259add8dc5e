package models

// CommentRecord is one row of the "Comments Data" sheet. ReplyTo is empty for
// top-level comments and holds the parent thread's comment id for replies.
type CommentRecord struct {
	CommentID     string `json:"commentId"`
	CommentText   string `json:"commentText"`
	Author        string `json:"author"`
	PublishedDate string `json:"publishedDate"`
	LikeCount     int64  `json:"likeCount"`
	ReplyTo       string `json:"replyTo,omitempty"`
}

// CommentHeaders is the column order of the "Comments Data" sheet
var CommentHeaders = []string{
	"Comment ID",
	"Comment Text",
	"Author",
	"Published Date",
	"Like Count",
	"Reply to",
}

// IsReply reports whether the record is a reply to a top-level comment
func (c CommentRecord) IsReply() bool {
	return c.ReplyTo != ""
}

// Row returns the record's cells in CommentHeaders order. Top-level comments
// get an empty "Reply to" cell.
func (c CommentRecord) Row() []interface{} {
	return []interface{}{
		c.CommentID,
		c.CommentText,
		c.Author,
		c.PublishedDate,
		c.LikeCount,
		c.ReplyTo,
	}
}
