package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/yt-export/internal/config"
	"github.com/yt-export/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	PartID             = "id"
	PartSnippet        = "snippet"
	PartStatistics     = "statistics"
	PartContentDetails = "contentDetails"
	PartReplies        = "replies"

	TypeChannel = "channel"
	TypeVideo   = "video"

	// MaxVideoResults is the page size of search listings and the id limit
	// of a single videos.list call.
	MaxVideoResults = 50
	// MaxCommentResults is the page size of commentThreads.list.
	MaxCommentResults = 100

	apiVersionPath = "youtube/v3"
)

var ErrChannelNotFound = errors.New("channel not found")

// BatchError reports a failed videos.list call for one chunk of ids.
type BatchError struct {
	Index int
	IDs   []string
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("video batch %d (%d ids): %v", e.Index, len(e.IDs), e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// YouTubeClient talks to the YouTube Data API v3
type YouTubeClient struct {
	service *youtube.Service
	logger  *zap.SugaredLogger
}

// NewYouTubeClient creates a new YouTube client for cfg.BaseURL. The API key
// is attached to every request by the transport.
func NewYouTubeClient(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*YouTubeClient, error) {
	httpClient := cleanhttp.DefaultClient()
	httpClient.Transport = &transport.APIKey{
		Key:       cfg.YouTubeAPIKey,
		Transport: httpClient.Transport,
	}

	service, err := youtube.NewService(ctx,
		option.WithEndpoint(serviceEndpoint(cfg.BaseURL)),
		option.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &YouTubeClient{
		service: service,
		logger:  logger,
	}, nil
}

// serviceEndpoint turns a base URL such as https://www.googleapis.com/youtube/v3
// into the root the generated client expects; it appends "youtube/v3/<method>"
// itself.
func serviceEndpoint(baseURL string) string {
	endpoint := strings.TrimRight(baseURL, "/")
	endpoint = strings.TrimSuffix(endpoint, "/"+apiVersionPath)
	return endpoint + "/"
}

// NormalizeHandle strips a leading "@" from a channel handle
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// ResolveChannelID maps a channel handle to its channel id using a
// channel-type search and taking the first result.
func (c *YouTubeClient) ResolveChannelID(ctx context.Context, handle string) (string, error) {
	query := NormalizeHandle(handle)

	response, err := c.service.Search.List([]string{PartSnippet}).
		Q(query).
		Type(TypeChannel).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search channel %q: %w", query, err)
	}

	for _, item := range response.Items {
		if item == nil {
			continue
		}
		if item.Snippet != nil && item.Snippet.ChannelId != "" {
			return item.Snippet.ChannelId, nil
		}
		if item.Id != nil && item.Id.ChannelId != "" {
			return item.Id.ChannelId, nil
		}
		break
	}

	return "", fmt.Errorf("%w for handle: %s", ErrChannelNotFound, handle)
}

// ListVideoIDs pages through a channel's video search listing and collects the
// video ids in API order. A failing page stops pagination: the ids gathered so
// far are returned together with the error.
func (c *YouTubeClient) ListVideoIDs(ctx context.Context, channelID string) ([]string, error) {
	var videoIDs []string
	var nextPageToken string

	for page := 1; ; page++ {
		call := c.service.Search.List([]string{PartID}).
			ChannelId(channelID).
			MaxResults(MaxVideoResults).
			Type(TypeVideo).
			Context(ctx)
		if nextPageToken != "" {
			call = call.PageToken(nextPageToken)
		}

		response, err := call.Do()
		if err != nil {
			return videoIDs, fmt.Errorf("failed to list videos page %d for channel %s: %w", page, channelID, err)
		}

		for _, item := range response.Items {
			if item != nil && item.Id != nil && item.Id.VideoId != "" {
				videoIDs = append(videoIDs, item.Id.VideoId)
			}
		}
		c.logger.Debugf("Listed page %d for channel %s: %d videos so far", page, channelID, len(videoIDs))

		nextPageToken = response.NextPageToken
		if nextPageToken == "" {
			return videoIDs, nil
		}
	}
}

// Chunk splits ids into consecutive groups of at most size elements.
func Chunk(ids []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(ids); i += size {
		end := i + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}

// FetchVideoDetails fetches snippet, statistics and content details for ids
// in batches of MaxVideoResults. Records of failed batches are dropped and
// each failure is reported as a *BatchError in the joined error.
func (c *YouTubeClient) FetchVideoDetails(ctx context.Context, videoIDs []string) ([]models.VideoRecord, error) {
	var records []models.VideoRecord
	var errs []error

	for i, batch := range Chunk(videoIDs, MaxVideoResults) {
		response, err := c.service.Videos.List([]string{PartSnippet, PartStatistics, PartContentDetails}).
			Id(strings.Join(batch, ",")).
			Context(ctx).
			Do()
		if err != nil {
			c.logger.Warnf("Skipping video batch %d: %v", i, err)
			errs = append(errs, &BatchError{Index: i, IDs: batch, Err: err})
			continue
		}

		for _, item := range response.Items {
			if item != nil {
				records = append(records, NewVideoRecord(item))
			}
		}
	}

	return records, errors.Join(errs...)
}

// NewVideoRecord flattens an API video resource into a sheet row
func NewVideoRecord(item *youtube.Video) models.VideoRecord {
	record := models.VideoRecord{
		VideoID:      item.Id,
		ViewCount:    "0",
		LikeCount:    "0",
		CommentCount: "0",
	}

	if snippet := item.Snippet; snippet != nil {
		record.Title = snippet.Title
		record.Description = snippet.Description
		record.PublishedDate = snippet.PublishedAt
		if snippet.Thumbnails != nil && snippet.Thumbnails.Default != nil {
			record.ThumbnailURL = snippet.Thumbnails.Default.Url
		}
	}

	if stats := item.Statistics; stats != nil {
		record.ViewCount = strconv.FormatUint(stats.ViewCount, 10)
		record.LikeCount = strconv.FormatUint(stats.LikeCount, 10)
		record.CommentCount = strconv.FormatUint(stats.CommentCount, 10)
	}

	if item.ContentDetails != nil {
		record.Duration = item.ContentDetails.Duration
	}

	return record
}

// FetchComments fetches a single page of up to MaxCommentResults comment
// threads for a video and flattens them: each top-level comment is followed
// by its replies. Threads beyond the first page are not fetched.
func (c *YouTubeClient) FetchComments(ctx context.Context, videoID string) ([]models.CommentRecord, error) {
	response, err := c.service.CommentThreads.List([]string{PartSnippet, PartReplies}).
		VideoId(videoID).
		MaxResults(MaxCommentResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments for video %s: %w", videoID, err)
	}

	if response.NextPageToken != "" {
		c.logger.Debugf("Video %s has more than %d comment threads; only the first page is exported", videoID, MaxCommentResults)
	}

	return FlattenThreads(response.Items), nil
}

// FlattenThreads converts comment threads into records, parent before replies
func FlattenThreads(threads []*youtube.CommentThread) []models.CommentRecord {
	comments := make([]models.CommentRecord, 0, len(threads))

	for _, thread := range threads {
		if thread == nil {
			continue
		}

		top := models.CommentRecord{CommentID: thread.Id}
		if thread.Snippet != nil {
			fillComment(&top, thread.Snippet.TopLevelComment)
		}
		comments = append(comments, top)

		if thread.Replies == nil {
			continue
		}
		for _, reply := range thread.Replies.Comments {
			if reply == nil {
				continue
			}
			record := models.CommentRecord{
				CommentID: reply.Id,
				ReplyTo:   thread.Id,
			}
			fillComment(&record, reply)
			comments = append(comments, record)
		}
	}

	return comments
}

func fillComment(record *models.CommentRecord, comment *youtube.Comment) {
	if comment == nil || comment.Snippet == nil {
		return
	}
	record.CommentText = comment.Snippet.TextDisplay
	record.Author = comment.Snippet.AuthorDisplayName
	record.PublishedDate = comment.Snippet.PublishedAt
	record.LikeCount = comment.Snippet.LikeCount
}
