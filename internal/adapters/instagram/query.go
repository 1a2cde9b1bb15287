package instagram

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"postgrab/internal/domain"
)

const (
	// DefaultEndpoint is the generic GraphQL query endpoint.
	DefaultEndpoint = "https://www.instagram.com/graphql/query/"

	// DefaultDocID identifies the persisted shortcode media query.
	DefaultDocID = "8845758582119845"

	// postNodePath is where the post lives in the query response.
	postNodePath = "data.xdt_shortcode_media"
)

// queryVariables is the variables object of the shortcode query. The
// optional fields must be present as null for the upstream schema.
type queryVariables struct {
	Shortcode            string  `json:"shortcode"`
	FetchTaggedUserCount *int    `json:"fetch_tagged_user_count"`
	HoistedCommentID     *string `json:"hoisted_comment_id"`
	HoistedReplyID       *string `json:"hoisted_reply_id"`
}

// buildVariables returns the JSON variables payload for a shortcode.
func buildVariables(shortcode string) (string, error) {
	data, err := json.Marshal(queryVariables{Shortcode: shortcode})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// extractEntries maps a post node to media entries in display order.
// Sidecar posts yield one entry per child; other posts yield one entry.
func extractEntries(node gjson.Result) []domain.MediaEntry {
	if isSidecar(node) {
		children := node.Get("edge_sidecar_to_children.edges.#.node").Array()
		entries := make([]domain.MediaEntry, 0, len(children))
		for _, child := range children {
			entries = append(entries, entryFromNode(child))
		}
		return entries
	}
	return []domain.MediaEntry{entryFromNode(node)}
}

func isSidecar(node gjson.Result) bool {
	return strings.HasSuffix(node.Get("__typename").String(), "GraphSidecar") ||
		node.Get("edge_sidecar_to_children.edges").IsArray()
}

func isVideo(node gjson.Result) bool {
	return strings.HasSuffix(node.Get("__typename").String(), "GraphVideo") ||
		node.Get("is_video").Bool()
}

func entryFromNode(node gjson.Result) domain.MediaEntry {
	display := node.Get("display_url").String()
	if !isVideo(node) {
		return domain.MediaEntry{Kind: domain.MediaImage, Source: display}
	}
	return domain.MediaEntry{
		Kind:   domain.MediaVideo,
		Source: firstNonEmpty(node.Get("video_url").String(), display),
		Poster: firstNonEmpty(node.Get("thumbnail_src").String(), display),
	}
}

// itemFromEntry maps an entry to an item that links to the remote URLs
// directly: images preview and download their display URL, videos preview
// their thumbnail and download the video.
func itemFromEntry(e domain.MediaEntry) domain.MediaItem {
	if e.Kind == domain.MediaVideo {
		return domain.MediaItem{Kind: e.Kind, Preview: e.Poster, Download: e.Source}
	}
	return domain.MediaItem{Kind: e.Kind, Preview: e.Source, Download: e.Source}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
