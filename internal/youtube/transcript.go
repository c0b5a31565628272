package youtube

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	kkdai "github.com/kkdai/youtube/v2"
	"github.com/rlou/tubescope/internal/domain"
	"github.com/rlou/tubescope/internal/logger"
)

// TranscriptFetcher pulls caption tracks through the innertube player
// response instead of the Data API, which does not expose caption bodies
// without OAuth.
type TranscriptFetcher struct {
	client kkdai.Client
	http   *Client
}

// NewTranscriptFetcher creates a transcript fetcher. The Data API client
// is reused for its resty transport when downloading caption XML.
func NewTranscriptFetcher(api *Client) *TranscriptFetcher {
	return &TranscriptFetcher{
		client: kkdai.Client{},
		http:   api,
	}
}

// Caption XML as served by the timedtext endpoint.
type timedText struct {
	XMLName xml.Name       `xml:"timedtext"`
	Lines   []timedTextRow `xml:"body>p"`
}

type timedTextRow struct {
	Text     string            `xml:",chardata"`
	Segments []timedTextString `xml:"s"`
}

type timedTextString struct {
	Text string `xml:",chardata"`
}

// FetchTranscript returns the English transcript for a video, falling
// back to the first available caption track. A video without captions is
// not an error: the transcript comes back marked unavailable.
func (t *TranscriptFetcher) FetchTranscript(ctx context.Context, videoID string) (*domain.Transcript, error) {
	video, err := t.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("resolve video %s: %w", videoID, err)
	}

	track := pickCaptionTrack(video.CaptionTracks, "en")
	if track == nil {
		logger.CtxDebug(ctx, "No caption tracks for video %s", videoID)
		return &domain.Transcript{Available: false}, nil
	}

	resp, err := t.http.client.R().
		SetContext(ctx).
		Get(track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("download captions for %s: %w", videoID, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("download captions for %s: HTTP %d", videoID, resp.StatusCode())
	}

	text, err := parseTimedText(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("parse captions for %s: %w", videoID, err)
	}
	if text == "" {
		return &domain.Transcript{Available: false}, nil
	}

	return &domain.Transcript{Text: text, Available: true}, nil
}

func pickCaptionTrack(tracks []kkdai.CaptionTrack, lang string) *kkdai.CaptionTrack {
	if len(tracks) == 0 {
		return nil
	}
	for i := range tracks {
		if strings.HasPrefix(tracks[i].LanguageCode, lang) {
			return &tracks[i]
		}
	}
	return &tracks[0]
}

// parseTimedText flattens caption XML into one whitespace-joined string.
func parseTimedText(data []byte) (string, error) {
	var doc timedText
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, line := range doc.Lines {
		text := line.Text
		if len(line.Segments) > 0 {
			var parts []string
			for _, seg := range line.Segments {
				parts = append(parts, seg.Text)
			}
			text = strings.Join(parts, "")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
